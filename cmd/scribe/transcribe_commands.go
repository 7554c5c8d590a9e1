package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"scribe/internal/ipc"
)

func newLoadModelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "load-model [model]",
		Short: "Load a Whisper model in the worker",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := ""
			if len(args) > 0 {
				model = args[0]
			}
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				resp, err := client.LoadModel(model)
				if err != nil {
					return err
				}
				if !resp.Accepted {
					fmt.Fprintln(stdout, resp.Message)
					return nil
				}
				if resp.Model != "" {
					fmt.Fprintf(stdout, "Loading model %s...\n", resp.Model)
				} else {
					fmt.Fprintln(stdout, "Loading default model...")
				}
				return nil
			})
		},
	}
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				resp, err := client.Transcribe(args[0])
				if err != nil {
					return err
				}
				if !resp.Accepted {
					fmt.Fprintln(stdout, resp.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Transcribing... check `scribe status` for progress and `scribe show` for the result")
				return nil
			})
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var segments bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the most recent transcription",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				resp, err := client.Result()
				if err != nil {
					return err
				}
				if !resp.Available {
					fmt.Fprintln(stdout, "No transcription available yet")
					return nil
				}
				printResult(stdout, resp, segments)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&segments, "segments", false, "Include per-segment timestamps")
	return cmd
}

func printResult(stdout io.Writer, resp *ipc.ResultResponse, segments bool) {
	fmt.Fprintln(stdout, resp.Transcript)
	fmt.Fprintln(stdout)
	if resp.Language != "" {
		fmt.Fprintf(stdout, "Language:    %s\n", languageDisplayName(resp.Language))
	}
	if resp.ModelUsed != "" {
		fmt.Fprintf(stdout, "Model:       %s\n", resp.ModelUsed)
	}
	if resp.AudioDuration > 0 {
		fmt.Fprintf(stdout, "Duration:    %.1fs\n", resp.AudioDuration)
	}
	if resp.ProcessingTime > 0 {
		fmt.Fprintf(stdout, "Processed:   %.1fs\n", resp.ProcessingTime)
	}
	if segments && len(resp.Segments) > 0 {
		fmt.Fprintln(stdout)
		for _, seg := range resp.Segments {
			fmt.Fprintf(stdout, "[%7.2f - %7.2f] %s\n", seg.Start, seg.End, strings.TrimSpace(seg.Text))
		}
	}
}

// languageDisplayName turns a BCP 47 or ISO 639 code like "en" into a
// human-readable name. Unknown codes pass through unchanged.
func languageDisplayName(code string) string {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return fmt.Sprintf("%s (%s)", name, code)
}

func newModelsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available Whisper models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Models()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderModelsTable(resp.Models))
				return nil
			})
		},
	}
}
