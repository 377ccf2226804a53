package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"lyricsync/internal/align"
	"lyricsync/internal/api"
)

func newAlignCommand() *cobra.Command {
	var positions []float64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "align <transcript.json>",
		Short:       "Show the active lyric line at playback positions",
		Long:        "Reads a transcript produced by `lyricsync transcribe --json` and reports the line to highlight at each --at position (seconds).",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE:        func(cmd *cobra.Command, args []string) error {
			if len(positions) == 0 {
				return fmt.Errorf("at least one --at position is required")
			}
			for _, pos := range positions {
				if math.IsNaN(pos) || math.IsInf(pos, 0) {
					return fmt.Errorf("--at must be a finite number of seconds")
				}
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}
			var resp api.LyricsResponse
			if err := json.Unmarshal(data, &resp); err != nil {
				return fmt.Errorf("parse transcript: %w", err)
			}
			t := api.ToTranscript(resp)

			var cursor align.Cursor
			cursor.Install(t)

			if jsonOutput {
				results := make([]api.ActiveResponse, 0, len(positions))
				for _, pos := range positions {
					line, ok := cursor.At(pos)
					results = append(results, api.FromActive(line, ok, pos))
				}
				return writeJSON(cmd, results)
			}

			rows := make([][]string, 0, len(positions))
			for _, pos := range positions {
				line, ok := cursor.At(pos)
				if !ok {
					rows = append(rows, []string{formatTimestamp(pos), "-", "-", ""})
					continue
				}
				rows = append(rows, []string{
					formatTimestamp(pos),
					strconv.Itoa(line.Index),
					formatTimestamp(line.Segment.Start),
					line.Segment.Text,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Clock", "#", "Time", "Text"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().Float64SliceVar(&positions, "at", nil, "Playback position in seconds (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	return cmd
}
