package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/draftgen/internal/tracker"
	"github.com/user/draftgen/pkg/render"
)

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskListCmd, taskStatusCmd, taskWatchCmd, taskCancelCmd, taskPayloadCmd)
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Inspect and manage generation runs",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		runs, err := runStore(cfg).List()
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tGROUP\tMODE\tSTATUS\tTASK\tCREATED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ID,
				r.GroupTitle,
				r.Mode,
				r.Status,
				r.TaskID,
				r.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		return w.Flush()
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <run|task>",
	Short: "Fetch the current backend status of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		rec, err := runStore(cfg).Get(args[0])
		if err != nil {
			return err
		}
		if rec.TaskID == "" {
			fmt.Fprintf(os.Stdout, "Run %s (%s): %s\n", rec.ID, rec.Mode, rec.Status)
			return nil
		}

		info, err := newRenderer(cfg).Task(context.Background(), rec.TaskID)
		if err != nil {
			return fmt.Errorf("fetch task: %w", err)
		}
		printTaskInfo(info)
		return nil
	},
}

var taskWatchCmd = &cobra.Command{
	Use:   "watch <run|task>",
	Short: "Poll a run until it reaches a terminal state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		runs := runStore(cfg)
		rec, err := runs.Get(args[0])
		if err != nil {
			return err
		}
		if rec.TaskID == "" {
			return fmt.Errorf("run %s has no backend task", rec.ID)
		}

		interval := time.Duration(cfg.Render.PollIntervalSeconds) * time.Second
		w := tracker.NewWatcher(newRenderer(cfg), rec.TaskID, interval, nil,
			tracker.WithOnUpdate(printProgress))
		ctx := context.Background()
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
	},
}

var taskCancelCmd = &cobra.Command{
	Use:   "cancel <run|task>",
	Short: "Ask the backend to cancel a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		rec, err := runStore(cfg).Get(args[0])
		if err != nil {
			return err
		}
		if rec.TaskID == "" {
			return fmt.Errorf("run %s has no backend task", rec.ID)
		}
		if err := newRenderer(cfg).Cancel(context.Background(), rec.TaskID); err != nil {
			return fmt.Errorf("cancel task: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Cancel requested for task %s.\n", rec.TaskID)
		return nil
	},
}

var taskPayloadCmd = &cobra.Command{
	Use:   "payload <run>",
	Short: "Print the archived request of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		rec, err := runStore(cfg).Get(args[0])
		if err != nil {
			return err
		}
		raw, err := payloadStore(cfg).Load(rec.ID)
		if err != nil {
			return fmt.Errorf("load payload: %w", err)
		}
		var buf map[string]any
		if err := json.Unmarshal(raw, &buf); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		out, err := json.MarshalIndent(buf, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	},
}

func printTaskInfo(info *render.TaskInfo) {
	fmt.Fprintf(os.Stdout, "Task %s: %s\n", info.TaskID, info.Status)
	if info.Message != "" {
		fmt.Fprintf(os.Stdout, "  message: %s\n", info.Message)
	}
	if info.Progress != nil {
		fmt.Fprintf(os.Stdout, "  progress: %.1f%% (%d/%d files)\n",
			info.Progress.ProgressPercent,
			info.Progress.CompletedFiles,
			info.Progress.TotalFiles,
		)
	}
	if info.DraftPath != "" {
		fmt.Fprintf(os.Stdout, "  draft: %s\n", info.DraftPath)
	}
	if info.ErrorMessage != "" {
		fmt.Fprintf(os.Stdout, "  error: %s\n", info.ErrorMessage)
	}
}
