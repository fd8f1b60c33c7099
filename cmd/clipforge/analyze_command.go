package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"clipforge/internal/config"
	"clipforge/internal/pipeline"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/views"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var videoID string
	var keywords []string
	var maxCandidates int

	cmd := &cobra.Command{
		Use:   "analyze <video-file>",
		Short: "Analyze one video and print the selected clip candidates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				source, err := filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("resolve source path: %w", err)
				}
				id := strings.TrimSpace(videoID)
				if id == "" {
					id = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
				}

				paramsJSON, err := encodeParams(cfg, keywords, maxCandidates)
				if err != nil {
					return err
				}

				logger, err := ctx.newLogger(cfg)
				if err != nil {
					return fmt.Errorf("configure logging: %w", err)
				}

				job, err := store.NewJob(cmd.Context(), id, source, paramsJSON)
				if err != nil {
					return fmt.Errorf("enqueue job: %w", err)
				}

				analyzer := pipeline.NewAnalyzer(cfg, store, logger)
				job.Status = queue.StatusProcessing
				if err := store.Update(cmd.Context(), job); err != nil {
					return err
				}

				runErr := analyzer.Prepare(cmd.Context(), job)
				if runErr == nil {
					runErr = analyzer.Execute(cmd.Context(), job)
				}
				if runErr != nil {
					job.SetFailed(services.FailureReason(runErr))
					_ = store.Update(cmd.Context(), job)
					return runErr
				}

				job.Status = queue.StatusCompleted
				if err := store.Update(cmd.Context(), job); err != nil {
					return err
				}

				candidates, err := store.CandidatesByVideo(cmd.Context(), id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Video %s: %d candidate(s)\n", id, len(candidates))
				fmt.Fprintln(out, views.Candidates(candidates))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&videoID, "video-id", "", "Identifier for the video (defaults to the file name)")
	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "Keywords that boost matching windows")
	cmd.Flags().IntVar(&maxCandidates, "max", 0, "Override the maximum number of candidates")
	return cmd
}

func encodeParams(cfg *config.Config, keywords []string, maxCandidates int) (string, error) {
	if len(keywords) == 0 && maxCandidates <= 0 {
		return "", nil
	}
	params := cfg.DefaultJobParams()
	params.Keywords = keywords
	if maxCandidates > 0 {
		params.MaxCandidates = maxCandidates
	}
	params.Normalize()
	if err := params.Validate(); err != nil {
		return "", err
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode job params: %w", err)
	}
	return string(encoded), nil
}
