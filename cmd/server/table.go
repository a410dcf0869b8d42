package main

import (
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/codebuildervaibhav/batch-transcription/internal/deps"
	"github.com/codebuildervaibhav/batch-transcription/internal/pipeline"
)

// detailWidth wraps yt-dlp and whisper error output instead of letting it
// stretch the table.
const detailWidth = 80

func newTable(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	return tw
}

// renderOutcomes prints one row per batch item in input order, with a
// succeeded/failed footer.
func renderOutcomes(outcomes []pipeline.Outcome) string {
	tw := newTable(table.Row{"#", "URL", "Status", "Detail"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, WidthMax: detailWidth},
		{Number: 4, WidthMax: detailWidth},
	})

	for _, o := range outcomes {
		status, detail := "transcribed", filepath.Base(o.TranscriptPath)
		if !o.Transcribed() {
			status = "failed: " + string(o.Stage)
			if o.Err != nil {
				detail = o.Err.Error()
			}
		}
		tw.AppendRow(table.Row{strconv.Itoa(o.Index + 1), o.URL, status, detail})
	}

	summary := pipeline.Summarize(outcomes)
	tw.AppendFooter(table.Row{"", "", strconv.Itoa(summary.Succeeded) + " transcribed", strconv.Itoa(summary.Failed) + " failed"})
	return tw.Render()
}

// renderDependencies prints the binary checks followed by the engine probe.
func renderDependencies(statuses []deps.Status, engine string, engineErr error) string {
	tw := newTable(table.Row{"Dependency", "Command", "Status", "Detail"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: detailWidth},
	})

	for _, s := range statuses {
		tw.AppendRow(table.Row{s.Name, s.Command, availability(s.Available), s.Detail})
	}

	detail := ""
	if engineErr != nil {
		detail = engineErr.Error()
	}
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"Engine", engine, availability(engineErr == nil), detail})
	return tw.Render()
}

func availability(ok bool) string {
	if ok {
		return "ok"
	}
	return "missing"
}
