package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"scribe/internal/ipc"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var limit int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show daemon log output",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				resp, err := client.LogTail(ipc.LogTailRequest{Limit: limit})
				if err != nil {
					return err
				}
				printLogEvents(stdout, resp.Events, colorize)
				if !follow {
					return nil
				}

				cursor := resp.Next
				for {
					resp, err := client.LogTail(ipc.LogTailRequest{
						Since:      cursor,
						Limit:      limit,
						Follow:     true,
						WaitMillis: 2000,
					})
					if err != nil {
						return err
					}
					printLogEvents(stdout, resp.Events, colorize)
					cursor = resp.Next
					select {
					case <-cmd.Context().Done():
						return nil
					default:
					}
				}
			})
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream new log events")
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "Maximum number of events per fetch")
	return cmd
}

func printLogEvents(stdout io.Writer, events []ipc.LogEvent, colorize bool) {
	for _, evt := range events {
		line := formatLogEvent(evt)
		if colorize {
			if color := levelColor(evt.Level); color != "" {
				line = color + line + ansiReset
			}
		}
		fmt.Fprintln(stdout, line)
	}
}

func formatLogEvent(evt ipc.LogEvent) string {
	var sb strings.Builder
	sb.WriteString(evt.Timestamp)
	sb.WriteString(" ")
	sb.WriteString(evt.Level)
	if evt.Component != "" {
		sb.WriteString(" [")
		sb.WriteString(evt.Component)
		sb.WriteString("]")
	}
	sb.WriteString(" ")
	sb.WriteString(evt.Message)
	keys := make([]string, 0, len(evt.Fields))
	for key := range evt.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		sb.WriteString(" ")
		sb.WriteString(key)
		sb.WriteString("=")
		sb.WriteString(evt.Fields[key])
	}
	return sb.String()
}

func levelColor(level string) string {
	switch strings.ToUpper(level) {
	case "ERROR":
		return ansiRed
	case "WARN":
		return ansiYellow
	case "DEBUG":
		return ansiBlue
	default:
		return ""
	}
}
