package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/config"
	"clipforge/internal/queue"
	"clipforge/internal/views"
)

func newCandidatesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "candidates <video-id>",
		Short: "Show the selected clip candidates for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				candidates, err := store.CandidatesByVideo(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					encoder := json.NewEncoder(cmd.OutOrStdout())
					encoder.SetIndent("", "  ")
					return encoder.Encode(candidates)
				}
				fmt.Fprintln(cmd.OutOrStdout(), views.Candidates(candidates))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit candidates as JSON")
	return cmd
}

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "transcript <video-id>",
		Short: "Show the stored transcript for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				transcript, ok, err := store.TranscriptByVideo(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no transcript stored for video %s", args[0])
				}
				if asJSON {
					encoder := json.NewEncoder(cmd.OutOrStdout())
					encoder.SetIndent("", "  ")
					return encoder.Encode(transcript)
				}
				out := cmd.OutOrStdout()
				if transcript.Language != "" {
					fmt.Fprintf(out, "Language: %s\n", transcript.Language)
				}
				fmt.Fprintln(out, transcript.Text())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the transcript as JSON")
	return cmd
}
