package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lyricsync/internal/api"
	"lyricsync/internal/logging"
	"lyricsync/internal/player"
	"lyricsync/internal/provider"
	"lyricsync/internal/services"
	"lyricsync/internal/transcription"
)

// newProvider is replaced in tests.
var newProvider = provider.New

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var language string
	var trackID string
	var jsonOutput bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file into timed lyrics",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read audio: %w", err)
			}

			stderr := cmd.ErrOrStderr()
			logger, err := ctx.cliLogger(stderr)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			p, err := newProvider(cfg, logger)
			if err != nil {
				return err
			}

			if strings.TrimSpace(language) == "" {
				language = cfg.Transcription.Language
			}
			trackID = strings.TrimSpace(trackID)
			if trackID == "" {
				trackID = player.ContentID(data)
			}

			opts := transcription.Options{Language: language}
			if !quiet && isTerminal(stderr) {
				opts.Progress = progressPrinter(stderr)
			}

			runCtx := services.WithTrackID(cmd.Context(), trackID)
			runCtx = services.WithProvider(runCtx, p.Name())
			runCtx, cancel := context.WithTimeout(runCtx, cfg.TranscriptionTimeout())
			defer cancel()

			audio := transcription.Audio{Name: filepath.Base(path), Data: data}
			result, err := p.Transcribe(runCtx, audio, opts)
			if opts.Progress != nil {
				fmt.Fprintln(stderr)
			}
			if err != nil {
				err = services.Classify(p.Name(), "transcribe", err)
				logging.ErrorWithContext(logging.WithContext(runCtx, logger), "transcription failed", "transcription_failed",
					logging.ErrorKind(err),
					logging.Error(err),
				)
				return fmt.Errorf("%s (%w)", services.UserMessage(err), err)
			}

			if jsonOutput {
				resp := api.FromTranscript(result)
				resp.TrackID = trackID
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			if result.Empty() {
				fmt.Fprintln(out, "No lyrics recognized")
				return nil
			}
			fmt.Fprintln(out, renderLyrics(result))
			summary := fmt.Sprintf("Track %s, %d lines", trackID, result.Len())
			if result.Language != "" {
				summary += ", language " + result.Language
			}
			fmt.Fprintln(out, summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Language hint (ISO 639-1 or BCP 47); defaults to transcription.language")
	cmd.Flags().StringVar(&trackID, "track-id", "", "Track identifier reported with the result (defaults to a content hash)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the transcript as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the progress indicator")
	return cmd
}

func progressPrinter(w io.Writer) func(float64) {
	return func(percent float64) {
		fmt.Fprintf(w, "\rTranscribing... %3.0f%%", percent)
	}
}
