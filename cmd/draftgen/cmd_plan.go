package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/draftgen/internal/config"
	"github.com/user/draftgen/internal/state"
)

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planAddCmd, planListCmd, planRemoveCmd, planEnableCmd, planDisableCmd)

	planAddCmd.Flags().String("name", "", "plan name (required)")
	planAddCmd.Flags().String("project", "", "project file path (required)")
	planAddCmd.Flags().String("group", "", "rule group file path (required)")
	planAddCmd.Flags().String("testdata", "", "test data file path (required)")
	planAddCmd.Flags().String("schedule", "", "cron schedule expression")
	planAddCmd.Flags().Bool("sync", false, "run synchronously when fired")
	planAddCmd.Flags().String("notify", "", "notify key, e.g. telegram:<chat_id>")
	_ = planAddCmd.MarkFlagRequired("name")
	_ = planAddCmd.MarkFlagRequired("project")
	_ = planAddCmd.MarkFlagRequired("group")
	_ = planAddCmd.MarkFlagRequired("testdata")
}

func planStore(cfg *config.Config) *state.PlanStore {
	return state.NewPlanStore(filepath.Join(cfg.DataDir, "plans.json"))
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage generation plans",
}

var planAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new plan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		projectPath, _ := cmd.Flags().GetString("project")
		groupPath, _ := cmd.Flags().GetString("group")
		dataPath, _ := cmd.Flags().GetString("testdata")
		schedule, _ := cmd.Flags().GetString("schedule")
		syncMode, _ := cmd.Flags().GetBool("sync")
		notifyKey, _ := cmd.Flags().GetString("notify")

		cfg := loadConfig()
		plan := &state.Plan{
			Name:         name,
			ProjectPath:  projectPath,
			GroupPath:    groupPath,
			TestDataPath: dataPath,
			Schedule:     schedule,
			Sync:         syncMode,
			NotifyKey:    notifyKey,
			Enabled:      true,
		}
		if err := planStore(cfg).Add(plan); err != nil {
			return fmt.Errorf("add plan: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Plan %q added.\n", name)
		return nil
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all plans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		plans, err := planStore(cfg).List()
		if err != nil {
			return fmt.Errorf("list plans: %w", err)
		}

		if len(plans) == 0 {
			fmt.Println("No plans configured.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSCHEDULE\tMODE\tENABLED\tGROUP")
		for _, p := range plans {
			mode := "async"
			if p.Sync {
				mode = "sync"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
				p.Name, p.Schedule, mode, p.Enabled, p.GroupPath)
		}
		return w.Flush()
	},
}

var planRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if err := planStore(cfg).Remove(args[0]); err != nil {
			return fmt.Errorf("remove plan: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Plan %q removed.\n", args[0])
		return nil
	},
}

var planEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if err := planStore(cfg).SetEnabled(args[0], true); err != nil {
			return fmt.Errorf("enable plan: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Plan %q enabled.\n", args[0])
		return nil
	},
}

var planDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if err := planStore(cfg).SetEnabled(args[0], false); err != nil {
			return fmt.Errorf("disable plan: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Plan %q disabled.\n", args[0])
		return nil
	},
}
