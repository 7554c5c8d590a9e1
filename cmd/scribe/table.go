package main

import (
	"fmt"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"scribe/internal/ipc"
)

func newTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

// renderModelsTable lists the model catalog with the loaded model flagged.
func renderModelsTable(models []ipc.ModelInfo) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{"Model", "Size", "Status"})
	for _, model := range models {
		status := ""
		if model.Loaded {
			status = "loaded"
		}
		tw.AppendRow(table.Row{model.Name, model.Size, status})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// renderHistoryTable summarizes stored transcriptions, one row per entry.
func renderHistoryTable(entries []ipc.HistoryEntry) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{"ID", "Completed", "Model", "Audio", "Duration", "Transcript"})
	for _, entry := range entries {
		tw.AppendRow(table.Row{
			shortID(entry.ID),
			formatCompletedAt(entry.CompletedAt),
			entry.Model,
			filepath.Base(entry.AudioPath),
			fmt.Sprintf("%.1fs", entry.AudioDuration),
			previewText(entry.Transcript),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
