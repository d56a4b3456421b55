package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/draftgen/internal/callback"
	"github.com/user/draftgen/internal/notify"
	"github.com/user/draftgen/internal/scheduler"
	"github.com/user/draftgen/internal/state"
	"github.com/user/draftgen/internal/tracker"
	"github.com/user/draftgen/internal/types"
	"github.com/user/draftgen/pkg/render"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the draftgen daemon",
	RunE:  runServe,
}

func writePIDFile(dataDir string) (string, error) {
	pidPath := filepath.Join(dataDir, "draftgen.pid")
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return pidPath, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// Write PID file
	pidPath, err := writePIDFile(cfg.DataDir)
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	// Stores
	runs := runStore(cfg)
	payloads := payloadStore(cfg)
	plans := planStore(cfg)

	renderer := newRenderer(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Watch pool
	pool := tracker.NewPool(int64(cfg.MaxWatch))
	pool.Start(ctx)
	defer pool.Stop()

	// Notify registry
	notifyReg := notify.NewRegistry()
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			return fmt.Errorf("create telegram notifier: %w", err)
		}
		notifyReg.Register("telegram:", tg.Notify)
		slog.Info("telegram notifier registered")
	} else {
		slog.Warn("telegram notifier disabled (no token)")
	}

	// Callback server: the backend may push task status events here, which
	// plan watchers consume alongside their reconciliation poll.
	var callbacks *callback.Server
	if cfg.Callback.Addr != "" {
		callbacks = callback.NewServer(runs)
		httpServer := &http.Server{
			Addr:    cfg.Callback.Addr,
			Handler: callbacks,
		}
		go func() {
			slog.Info("callback server started", "listen", cfg.Callback.Addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("callback server error", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			httpServer.Close()
		}()
	}

	// Fires one plan: resolve its inputs, submit, and track to completion.
	firePlan := func(plan *state.Plan) {
		req, group, err := buildFromFiles(cfg, plan.ProjectPath, plan.GroupPath, plan.TestDataPath)
		if err != nil {
			slog.Error("plan build failed", "plan", plan.Name, "error", err)
			return
		}

		rec := &state.RunRecord{
			ID:         types.NewRunID(),
			GroupID:    group.ID,
			GroupTitle: group.Title,
			Mode:       "async",
			Status:     render.StatePending,
		}
		if plan.Sync {
			rec.Mode = "sync"
		}
		if err := runs.Add(rec); err != nil {
			slog.Error("record run failed", "plan", plan.Name, "error", err)
			return
		}
		if err := payloads.Save(rec.ID, req); err != nil {
			slog.Error("archive request failed", "run", rec.ID, "error", err)
		}

		finish := func(snap tracker.Snapshot) {
			if err := runs.SetOutcome(rec.ID, snap.State, snap.DraftPath, snap.ErrorMessage); err != nil {
				slog.Error("record outcome failed", "run", rec.ID, "error", err)
			}
			slog.Info("plan run finished", "plan", plan.Name, "run", rec.ID, "status", snap.State)
			if plan.NotifyKey != "" {
				msg := notify.FormatOutcome(group.Title, snap)
				if err := notifyReg.Notify(plan.NotifyKey, msg); err != nil {
					slog.Error("notify failed", "plan", plan.Name, "error", err)
				}
			}
		}

		if plan.Sync {
			result, err := renderer.Generate(ctx, req)
			finish(tracker.Immediate(result, err).Snapshot())
			return
		}

		info, err := renderer.Submit(ctx, req)
		if err != nil {
			_ = runs.SetOutcome(rec.ID, render.StateFailed, "", err.Error())
			slog.Error("plan submit failed", "plan", plan.Name, "error", err)
			return
		}
		if err := runs.SetTask(rec.ID, info.TaskID); err != nil {
			slog.Error("record task id failed", "run", rec.ID, "error", err)
		}
		slog.Info("plan run submitted", "plan", plan.Name, "run", rec.ID, "task", info.TaskID)

		interval := time.Duration(cfg.Render.PollIntervalSeconds) * time.Second
		var opts []tracker.WatcherOption
		if callbacks != nil {
			opts = append(opts, tracker.WithEvents(callbacks.Subscribe(info.TaskID)))
		}
		w := tracker.NewWatcher(renderer, info.TaskID, interval, info, opts...)
		if err := pool.Watch(w, func(snap tracker.Snapshot) {
			if callbacks != nil {
				callbacks.Unsubscribe(info.TaskID)
			}
			finish(snap)
		}); err != nil {
			slog.Error("watch failed", "run", rec.ID, "error", err)
		}
	}

	// Scheduler
	sched := scheduler.New(plans, firePlan)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()
	slog.Info("scheduler started")

	slog.Info("draftgen started",
		"data_dir", cfg.DataDir,
		"log_level", cfg.LogLevel,
		"max_watch", cfg.MaxWatch,
		"render_base_url", cfg.Render.BaseURL,
		"pid_file", pidPath,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigChan
		if sig == syscall.SIGHUP {
			slog.Info("received SIGHUP, reloading plans")
			if err := sched.Reload(); err != nil {
				slog.Error("reload failed", "error", err)
			}
			continue
		}
		// SIGINT or SIGTERM
		slog.Info("shutting down", "signal", sig)
		return nil
	}
}
