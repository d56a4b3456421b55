package config

import (
	"path/filepath"
	"testing"
)

func tempConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.json")
}

func TestLoad_WritesDefaults(t *testing.T) {
	path := tempConfigPath(t)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Render.BaseURL == "" {
		t.Error("expected a default base url")
	}
	if cfg.MaxWatch != 4 {
		t.Errorf("expected default max_watch 4, got %d", cfg.MaxWatch)
	}

	// A second load reads the file written by the first.
	again, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Render.BaseURL != cfg.Render.BaseURL {
		t.Errorf("reload mismatch: %s != %s", again.Render.BaseURL, cfg.Render.BaseURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := tempConfigPath(t)
	t.Setenv("DRAFTGEN_API_KEY", "env-key")
	t.Setenv("DRAFTGEN_BASE_URL", "http://render.example:9001")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Render.APIKey != "env-key" {
		t.Errorf("expected env api key, got %q", cfg.Render.APIKey)
	}
	if cfg.Render.BaseURL != "http://render.example:9001" {
		t.Errorf("expected env base url, got %q", cfg.Render.BaseURL)
	}
}

func TestSave_ReloadRoundTrip(t *testing.T) {
	path := tempConfigPath(t)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Render.BaseURL = "http://other:9001"
	cfg.Draft.FPS = 60
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Render.BaseURL != "http://other:9001" || loaded.Draft.FPS != 60 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestListValues_WithMask(t *testing.T) {
	cfg := &Config{}
	cfg.Render.APIKey = "supersecret"
	cfg.Telegram.Token = "tok"

	values, err := ListValues(cfg, true)
	if err != nil {
		t.Fatal(err)
	}
	if values["render.api_key"] != "***cret" {
		t.Errorf("expected masked api key, got %v", values["render.api_key"])
	}
	if values["telegram.token"] != "***tok" {
		t.Errorf("expected masked short token, got %v", values["telegram.token"])
	}
}

func TestGetSetValue(t *testing.T) {
	path := tempConfigPath(t)
	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}

	if err := SetValue(path, "render.poll_interval_seconds", "5"); err != nil {
		t.Fatal(err)
	}
	val, err := GetValue(path, "render.poll_interval_seconds")
	if err != nil {
		t.Fatal(err)
	}
	// JSON round trip reads numbers back as float64.
	if f, ok := val.(float64); !ok || f != 5 {
		t.Errorf("expected 5, got %v (%T)", val, val)
	}

	if _, err := GetValue(path, "no.such.key"); err == nil {
		t.Error("expected an error for an unknown key")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Render.PollIntervalSeconds != 5 {
		t.Errorf("set value not visible after reload: %d", cfg.Render.PollIntervalSeconds)
	}
}

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	nested := map[string]any{
		"render": map[string]any{
			"base_url": "http://x",
			"timeout_seconds": float64(30),
		},
		"log_level": "debug",
	}

	flat := Flatten(nested)
	if flat["render.base_url"] != "http://x" {
		t.Errorf("flatten lost a key: %v", flat)
	}

	back := Unflatten(flat)
	render, ok := back["render"].(map[string]any)
	if !ok || render["timeout_seconds"] != float64(30) {
		t.Errorf("unflatten mismatch: %v", back)
	}
}
