package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scribe/internal/ipc"
)

func newStartCommand(ctx *commandContext) *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the transcription worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				resp, err := client.StartWorker()
				if err != nil {
					return err
				}
				if !resp.Started {
					fmt.Fprintln(stdout, resp.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Worker started")
				if model != "" {
					loadResp, err := client.LoadModel(model)
					if err != nil {
						return err
					}
					if !loadResp.Accepted {
						fmt.Fprintln(stdout, loadResp.Message)
						return nil
					}
					fmt.Fprintf(stdout, "Loading model %s...\n", model)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model to load once the worker is ready")
	return cmd
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the transcription worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.StopWorker(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Worker stopped")
				return nil
			})
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var showLog bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and worker status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, runningLine(resp.Running).render(colorize))
				fmt.Fprintln(stdout, infoLine("PID", strconv.Itoa(resp.PID)).render(colorize))
				fmt.Fprintln(stdout, infoLine("Socket", resp.SocketPath).render(colorize))
				if resp.HistoryDBPath != "" {
					detail := fmt.Sprintf("%s (%d entries)", resp.HistoryDBPath, resp.HistoryCount)
					fmt.Fprintln(stdout, infoLine("History", detail).render(colorize))
				}
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Worker", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, phaseLine(resp.Phase).render(colorize))
				fmt.Fprintln(stdout, infoLine("Lifecycle", resp.Lifecycle).render(colorize))
				if resp.SessionID != "" {
					fmt.Fprintln(stdout, infoLine("Session", resp.SessionID).render(colorize))
				}
				if resp.LoadedModel != "" {
					fmt.Fprintln(stdout, loadedModelLine(resp.LoadedModel).render(colorize))
				}
				if resp.StatusText != "" {
					fmt.Fprintln(stdout, statusTextLine(resp.StatusText).render(colorize))
				}
				if resp.Progress > 0 {
					fmt.Fprintln(stdout, infoLine("Progress", fmt.Sprintf("%d%%", resp.Progress)).render(colorize))
				}
				if resp.ExitCode != nil {
					fmt.Fprintln(stdout, exitCodeLine(*resp.ExitCode).render(colorize))
				}

				if showLog && len(resp.Log) > 0 {
					fmt.Fprintln(stdout)
					for _, line := range renderSectionHeader("Recent Output", colorize) {
						fmt.Fprintln(stdout, line)
					}
					for _, line := range resp.Log {
						fmt.Fprintf(stdout, "%s%s\n", statusIndent, line)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&showLog, "log", false, "Include recent worker output")
	return cmd
}

