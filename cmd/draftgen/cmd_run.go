package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/draftgen/internal/config"
	"github.com/user/draftgen/internal/engine"
	"github.com/user/draftgen/internal/project"
	"github.com/user/draftgen/internal/state"
	"github.com/user/draftgen/internal/tracker"
	"github.com/user/draftgen/internal/types"
	"github.com/user/draftgen/pkg/render"
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("project", "", "project file path (required)")
	runCmd.Flags().String("group", "", "rule group file path (required)")
	runCmd.Flags().String("testdata", "", "test data file path (required)")
	runCmd.Flags().Bool("sync", false, "generate synchronously and wait for the result")
	runCmd.Flags().Bool("watch", false, "after async submit, poll until the task is terminal")
	runCmd.Flags().String("out", "", "write the resolved request to a file instead of submitting")
	_ = runCmd.MarkFlagRequired("project")
	_ = runCmd.MarkFlagRequired("group")
	_ = runCmd.MarkFlagRequired("testdata")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Resolve a rule group and submit a generation run",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func runStore(cfg *config.Config) *state.RunStore {
	return state.NewRunStore(cfg.DataDir)
}

func payloadStore(cfg *config.Config) *state.PayloadStore {
	return state.NewPayloadStore(cfg.DataDir)
}

// buildFromFiles loads the three inputs and resolves them into a request.
// Validation violations are printed one per line and reported as a single
// error so the command exits non-zero.
func buildFromFiles(cfg *config.Config, projectPath, groupPath, dataPath string) (*render.GenerateRequest, *types.RuleGroup, error) {
	proj, err := project.Load(projectPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load project: %w", err)
	}
	group, err := project.LoadRuleGroup(groupPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load rule group: %w", err)
	}
	data, err := project.LoadTestData(dataPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load test data: %w", err)
	}

	req, err := engine.BuildRequest(group, data, proj.Catalog, proj.Tracks, proj.Native, draftConfigFrom(cfg))
	if err != nil {
		var verr *engine.ValidationError
		if errors.As(err, &verr) {
			for _, v := range verr.Violations {
				fmt.Fprintf(os.Stderr, "  %s\n", v.Message)
			}
			return nil, nil, fmt.Errorf("%d validation violation(s)", len(verr.Violations))
		}
		return nil, nil, err
	}
	return req, group, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	projectPath, _ := cmd.Flags().GetString("project")
	groupPath, _ := cmd.Flags().GetString("group")
	dataPath, _ := cmd.Flags().GetString("testdata")
	syncMode, _ := cmd.Flags().GetBool("sync")
	watch, _ := cmd.Flags().GetBool("watch")
	outPath, _ := cmd.Flags().GetString("out")

	req, group, err := buildFromFiles(cfg, projectPath, groupPath, dataPath)
	if err != nil {
		return err
	}

	if outPath != "" {
		blob, err := json.MarshalIndent(req, "", "  ")
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		if err := os.WriteFile(outPath, blob, 0644); err != nil {
			return fmt.Errorf("write request: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Request written to %s\n", outPath)
		return nil
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	runs := runStore(cfg)
	payloads := payloadStore(cfg)
	renderer := newRenderer(cfg)

	rec := &state.RunRecord{
		ID:         types.NewRunID(),
		GroupID:    group.ID,
		GroupTitle: group.Title,
		Mode:       "async",
		Status:     render.StatePending,
	}
	if syncMode {
		rec.Mode = "sync"
	}
	if err := runs.Add(rec); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	if err := payloads.Save(rec.ID, req); err != nil {
		return fmt.Errorf("archive request: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if syncMode {
		result, err := renderer.Generate(ctx, req)
		handle := tracker.Immediate(result, err)
		snap := handle.Snapshot()
		if serr := runs.SetOutcome(rec.ID, snap.State, snap.DraftPath, snap.ErrorMessage); serr != nil {
			return fmt.Errorf("record outcome: %w", serr)
		}
		return printOutcome(rec.ID, snap)
	}

	info, err := renderer.Submit(ctx, req)
	if err != nil {
		_ = runs.SetOutcome(rec.ID, render.StateFailed, "", err.Error())
		return fmt.Errorf("submit: %w", err)
	}

	if uerr := runs.SetTask(rec.ID, info.TaskID); uerr != nil {
		return fmt.Errorf("record task id: %w", uerr)
	}
	fmt.Fprintf(os.Stdout, "Run %s submitted as task %s\n", rec.ID, info.TaskID)

	if !watch {
		return nil
	}

	interval := time.Duration(cfg.Render.PollIntervalSeconds) * time.Second
	w := tracker.NewWatcher(renderer, info.TaskID, interval, info,
		tracker.WithOnUpdate(printProgress))
	w.Start(ctx)
	defer w.Stop()

	snap, err := w.Final(ctx)
	if err != nil {
		return err
	}
	if serr := runs.SetOutcome(rec.ID, snap.State, snap.DraftPath, snap.ErrorMessage); serr != nil {
		return fmt.Errorf("record outcome: %w", serr)
	}
	return printOutcome(rec.ID, snap)
}

func printProgress(snap tracker.Snapshot) {
	if snap.Progress == nil {
		fmt.Fprintf(os.Stdout, "  %s\n", snap.State)
		return
	}
	line := fmt.Sprintf("  %s %.1f%%", snap.State, snap.Progress.ProgressPercent)
	if snap.Progress.ETASeconds != nil {
		line += fmt.Sprintf(" (eta %.0fs)", *snap.Progress.ETASeconds)
	}
	fmt.Fprintln(os.Stdout, line)
}

func printOutcome(id types.RunID, snap tracker.Snapshot) error {
	switch snap.State {
	case render.StateCompleted:
		fmt.Fprintf(os.Stdout, "Run %s completed: %s\n", id, snap.DraftPath)
		return nil
	case render.StateCancelled:
		fmt.Fprintf(os.Stdout, "Run %s cancelled.\n", id)
		return nil
	default:
		reason := snap.ErrorMessage
		if reason == "" {
			reason = snap.Message
		}
		return fmt.Errorf("run %s failed: %s", id, reason)
	}
}
