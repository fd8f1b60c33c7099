package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/config"
	"clipforge/internal/queue"
	"clipforge/internal/render"
)

func newRenderRequestsCommand(ctx *commandContext) *cobra.Command {
	var (
		aspect   string
		loudness float64
		captions bool
	)

	cmd := &cobra.Command{
		Use:   "render-requests <video-id>",
		Short: "Build renderer requests from a video's selected candidates",
		Long: `Builds the request payloads a rendering service needs to cut the
selected clips: source path, clip bounds, thumbnail timestamp, aspect
preset, caption style, and loudness target. Output is JSON on stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				videoID := args[0]
				job, err := store.LatestJobForVideo(cmd.Context(), videoID)
				if err != nil {
					return err
				}
				if job == nil {
					return fmt.Errorf("no job found for video %s", videoID)
				}
				candidates, err := store.CandidatesByVideo(cmd.Context(), videoID)
				if err != nil {
					return err
				}
				if len(candidates) == 0 {
					return fmt.Errorf("no candidates stored for video %s", videoID)
				}

				style := render.DefaultCaptionStyle()
				style.Enabled = captions
				requests, err := render.BuildRequests(videoID, job.SourcePath, candidates, render.Options{
					Aspect:   render.AspectPreset(aspect),
					Captions: style,
					Loudness: loudness,
				})
				if err != nil {
					return err
				}

				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(requests)
			})
		},
	}

	cmd.Flags().StringVar(&aspect, "aspect", string(render.AspectVertical), "Output aspect preset (9:16, 1:1, 16:9)")
	cmd.Flags().Float64Var(&loudness, "loudness", render.DefaultLoudnessLUFS, "Integrated loudness target in LUFS")
	cmd.Flags().BoolVar(&captions, "captions", true, "Include burned-in captions")
	return cmd
}
