package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/draftgen/internal/config"
	"github.com/user/draftgen/pkg/render"
	"github.com/user/draftgen/pkg/render/httpapi"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "draftgen",
	Short:         "Resolve rule groups against a video project and drive draft generation",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath,
		"config",
		filepath.Join(os.Getenv("HOME"), ".draftgen", "config.json"),
		"config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func newRenderer(cfg *config.Config) render.Renderer {
	return httpapi.New(&render.Config{
		BaseURL: cfg.Render.BaseURL,
		APIKey:  cfg.Render.APIKey,
		Timeout: cfg.Render.TimeoutSeconds,
	})
}

func draftConfigFrom(cfg *config.Config) *render.DraftConfig {
	return &render.DraftConfig{
		CanvasConfig: &render.CanvasConfig{
			CanvasWidth:  cfg.Draft.CanvasWidth,
			CanvasHeight: cfg.Draft.CanvasHeight,
		},
		FPS: cfg.Draft.FPS,
	}
}
