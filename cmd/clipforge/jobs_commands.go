package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipforge/internal/config"
	"clipforge/internal/queue"
	"clipforge/internal/views"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage analysis jobs",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsStatsCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsCancelCommand(ctx))
	jobsCmd.AddCommand(newJobsRetryCommand(ctx))
	jobsCmd.AddCommand(newJobsClearCommand(ctx))

	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var statusFilters []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				statuses, err := parseStatusFilters(statusFilters)
				if err != nil {
					return err
				}
				jobs, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), views.Jobs(jobs))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statusFilters, "status", nil, "Only show jobs with these statuses")
	return cmd
}

func newJobsStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-status job counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), views.QueueStats(stats))
				return nil
			})
		},
	}
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				job, err := store.GetJob(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if job == nil {
					return fmt.Errorf("no job with id %s", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:       %s\n", job.ID)
				fmt.Fprintf(out, "Video:    %s\n", job.VideoID)
				fmt.Fprintf(out, "Source:   %s\n", job.SourcePath)
				fmt.Fprintf(out, "Status:   %s\n", views.StatusLabel(string(job.Status)))
				fmt.Fprintf(out, "Progress: %.0f%%\n", job.Progress)
				fmt.Fprintf(out, "Created:  %s\n", job.CreatedAt.Local().Format("2006-01-02 15:04:05"))
				if job.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:    %s\n", job.ErrorMessage)
				}
				if strings.TrimSpace(job.LogsJSON) != "" {
					fmt.Fprintf(out, "Summary:  %s\n", job.LogsJSON)
				}
				return nil
			})
		},
	}
}

func newJobsCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a pending or processing job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				requested, err := store.RequestCancel(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !requested {
					return fmt.Errorf("job %s is not pending or processing", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancellation requested for job %s\n", args[0])
				return nil
			})
		},
	}
}

func newJobsRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <job-id>...",
		Short: "Queue failed jobs for a fresh analysis",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				retried, err := store.RetryFailed(cmd.Context(), args...)
				if err != nil {
					return err
				}
				if retried == 0 {
					return fmt.Errorf("no failed jobs matched")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %d job(s) for retry\n", retried)
				return nil
			})
		},
	}
}

func newJobsClearCommand(ctx *commandContext) *cobra.Command {
	var clearFailed bool
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove completed jobs (or failed, or everything)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				var removed int64
				var err error
				switch {
				case clearAll:
					removed, err = store.Clear(cmd.Context())
				case clearFailed:
					removed, err = store.ClearFailed(cmd.Context())
				default:
					removed, err = store.ClearCompleted(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s)\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove failed jobs instead of completed ones")
	cmd.Flags().BoolVar(&clearAll, "all", false, "Remove every job regardless of status")
	return cmd
}

func parseStatusFilters(raw []string) ([]queue.Status, error) {
	var statuses []queue.Status
	for _, value := range raw {
		for _, piece := range strings.Split(value, ",") {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			status, ok := queue.ParseStatus(piece)
			if !ok {
				return nil, fmt.Errorf("unknown status %q", piece)
			}
			statuses = append(statuses, status)
		}
	}
	return statuses, nil
}
