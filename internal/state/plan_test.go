// internal/state/plan_test.go
package state

import (
	"path/filepath"
	"testing"
)

func testPlan() *Plan {
	return &Plan{
		Name:         "nightly-intro",
		ProjectPath:  "/projects/intro/draft.json",
		GroupPath:    "/projects/intro/rules.json",
		TestDataPath: "/projects/intro/testdata.json",
		Schedule:     "0 3 * * *",
		NotifyKey:    "telegram:123",
		Enabled:      true,
	}
}

func TestPlanStore_ListEmpty(t *testing.T) {
	store := NewPlanStore(filepath.Join(t.TempDir(), "plans.json"))

	plans, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 0 {
		t.Errorf("expected empty list, got %d plans", len(plans))
	}
}

func TestPlanStore_AddAndGet(t *testing.T) {
	store := NewPlanStore(filepath.Join(t.TempDir(), "plans.json"))

	if err := store.Add(testPlan()); err != nil {
		t.Fatal(err)
	}

	plan, err := store.Get("nightly-intro")
	if err != nil {
		t.Fatal(err)
	}
	if plan.Schedule != "0 3 * * *" {
		t.Errorf("expected schedule preserved, got %s", plan.Schedule)
	}

	if err := store.Add(testPlan()); err == nil {
		t.Error("expected duplicate name to be rejected")
	}
}

func TestPlanStore_RemoveAndToggle(t *testing.T) {
	store := NewPlanStore(filepath.Join(t.TempDir(), "plans.json"))
	if err := store.Add(testPlan()); err != nil {
		t.Fatal(err)
	}

	if err := store.SetEnabled("nightly-intro", false); err != nil {
		t.Fatal(err)
	}
	plan, err := store.Get("nightly-intro")
	if err != nil {
		t.Fatal(err)
	}
	if plan.Enabled {
		t.Error("expected plan disabled")
	}

	if err := store.Remove("nightly-intro"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get("nightly-intro"); err == nil {
		t.Error("expected plan gone after remove")
	}
}
