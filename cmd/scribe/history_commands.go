package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/ipc"
)

const transcriptPreviewLength = 60

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect stored transcriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newHistoryListCommand(ctx))
	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent transcriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				resp, err := client.HistoryList(limit)
				if err != nil {
					return err
				}
				if len(resp.Entries) == 0 {
					fmt.Fprintln(stdout, "No transcriptions recorded")
					return nil
				}
				fmt.Fprintln(stdout, renderHistoryTable(resp.Entries))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				resp, err := client.HistoryShow(args[0])
				if err != nil {
					return err
				}
				entry := resp.Entry
				if entry == nil {
					fmt.Fprintln(stdout, "Transcription not found")
					return nil
				}
				fmt.Fprintln(stdout, entry.Transcript)
				fmt.Fprintln(stdout)
				fmt.Fprintf(stdout, "ID:          %s\n", entry.ID)
				fmt.Fprintf(stdout, "Completed:   %s\n", formatCompletedAt(entry.CompletedAt))
				fmt.Fprintf(stdout, "Model:       %s\n", entry.Model)
				fmt.Fprintf(stdout, "Audio:       %s\n", entry.AudioPath)
				if entry.Language != "" {
					fmt.Fprintf(stdout, "Language:    %s\n", languageDisplayName(entry.Language))
				}
				fmt.Fprintf(stdout, "Duration:    %.1fs\n", entry.AudioDuration)
				fmt.Fprintf(stdout, "Processed:   %.1fs\n", entry.ProcessingTime)
				return nil
			})
		},
	}
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all stored transcriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.HistoryClear()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d transcriptions\n", resp.Removed)
				return nil
			})
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatCompletedAt(raw string) string {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return parsed.Local().Format("2006-01-02 15:04")
}

func previewText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > transcriptPreviewLength {
		return text[:transcriptPreviewLength-3] + "..."
	}
	return text
}
