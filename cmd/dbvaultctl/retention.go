package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbvault/pkg/audit"
	"github.com/doodlesbykumbi/dbvault/pkg/retention"
)

// retentionCmd represents the retention command
var retentionCmd = &cobra.Command{
	Use:   "retention",
	Short: "Plan and apply GFS retention of backup artifacts",
	Long: `Plan and apply grandfather-father-son retention of backup artifacts.

Artifacts are read from <root>/<instance>/<database>/ and classified as
monthly (1st of the month), weekly (Monday) or daily.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'retention' requires a subcommand (plan, apply)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(retentionCmd)
	retentionCmd.PersistentFlags().String("root", "", "Backup root (default: backup_root from config)")
}

func backupRoot(cmd *cobra.Command, a *app) string {
	if root, _ := cmd.Flags().GetString("root"); root != "" {
		return root
	}
	return a.cfg.BackupRoot
}

func planRetention(root string, policy retention.Policy, dryRun bool) (retention.Plan, error) {
	artifacts, err := retention.Scan(root, time.Local)
	if err != nil {
		return retention.Plan{}, err
	}
	return retention.PlanEviction(artifacts, policy, dryRun), nil
}

func printPlan(w io.Writer, plan retention.Plan) {
	fmt.Fprintf(w, "Keep %d, delete %d\n", len(plan.Keep), len(plan.Delete))
	for _, path := range plan.Keep {
		fmt.Fprintf(w, "  keep    %s (%s)\n", path, strings.Join(plan.Reasons[path], ","))
	}
	for _, path := range plan.Delete {
		fmt.Fprintf(w, "  delete  %s\n", path)
	}
}

// retentionPlanCmd represents the retention plan command
var retentionPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show which artifacts the retention policy keeps and deletes",
	Run: run(func(cmd *cobra.Command, a *app) error {
		policy, err := a.cfg.RetentionPolicy()
		if err != nil {
			return err
		}
		plan, err := planRetention(backupRoot(cmd, a), policy, true)
		if err != nil {
			return err
		}
		printPlan(os.Stdout, plan)
		return nil
	}),
}

// retentionApplyCmd represents the retention apply command
var retentionApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Delete the artifacts the retention policy does not keep",
	Long: `Delete the artifacts the retention policy does not keep.

With --dry-run nothing is deleted. Artifacts that disappeared since the plan
was made are reported as missing, so applying twice is safe.`,
	Run: run(func(cmd *cobra.Command, a *app) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		policy, err := a.cfg.RetentionPolicy()
		if err != nil {
			return err
		}
		return applyRetention(os.Stdout, a.audit, backupRoot(cmd, a), policy, dryRun, nil)
	}),
}

func init() {
	retentionCmd.AddCommand(retentionPlanCmd)
	retentionCmd.AddCommand(retentionApplyCmd)
	retentionApplyCmd.Flags().Bool("dry-run", false, "Show the plan without deleting anything")
}

func applyRetention(w io.Writer, sink audit.Sink, root string, policy retention.Policy, dryRun bool, remove retention.Remover) error {
	plan, err := planRetention(root, policy, dryRun)
	if err != nil {
		return err
	}
	printPlan(w, plan)

	result, err := retention.Apply(plan, remove)
	event := audit.RetentionEvent{
		Root:    root,
		Kept:    len(plan.Keep),
		Deleted: len(result.Deleted),
		Missing: len(result.Missing),
		DryRun:  dryRun,
		Success: err == nil,
	}
	if dryRun {
		event.Deleted = len(plan.Delete)
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	sink.Log(event)

	switch {
	case dryRun:
		fmt.Fprintln(w, "Dry run: nothing deleted")
	default:
		fmt.Fprintf(w, "Deleted %d, already gone %d\n", len(result.Deleted), len(result.Missing))
	}
	return err
}
