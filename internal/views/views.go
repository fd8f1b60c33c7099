// Package views renders jobs and candidates as terminal tables for the CLI.
package views

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"clipforge/internal/queue"
	"clipforge/internal/selection"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// Jobs renders a job list, newest first.
func Jobs(jobs []*queue.Job) string {
	if len(jobs) == 0 {
		return "No jobs in the queue."
	}

	sorted := make([]*queue.Job, len(jobs))
	copy(sorted, jobs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID > sorted[j].ID
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	rows := make([][]string, 0, len(sorted))
	for _, job := range sorted {
		rows = append(rows, []string{
			shortID(job.ID),
			job.VideoID,
			sourceLabel(job.SourcePath),
			StatusLabel(string(job.Status)),
			fmt.Sprintf("%.0f%%", job.Progress),
			formatTime(job.CreatedAt),
			job.ErrorMessage,
		})
	}
	return renderTable(
		[]string{"ID", "Video", "Source", "Status", "Progress", "Created", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}

// Candidates renders a ranked candidate list.
func Candidates(candidates []selection.Candidate) string {
	if len(candidates) == 0 {
		return "No candidates recorded for this video."
	}

	rows := make([][]string, 0, len(candidates))
	for rank, candidate := range candidates {
		rows = append(rows, []string{
			fmt.Sprintf("%d", rank+1),
			shortID(candidate.ID),
			formatSpan(candidate.Window.Start, candidate.Window.End),
			fmt.Sprintf("%.1fs", candidate.Window.Duration()),
			fmt.Sprintf("%.3f", candidate.Score),
			fmt.Sprintf("%.2f", candidate.Features.SpeechHook),
			fmt.Sprintf("%.2f", candidate.Features.Motion),
			fmt.Sprintf("%.2f", candidate.Features.AudioPeak),
		})
	}
	return renderTable(
		[]string{"#", "ID", "Span", "Length", "Score", "Hook", "Motion", "Audio"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	)
}

// QueueStats renders per-status job counts in a stable order.
func QueueStats(stats map[queue.Status]int) string {
	if len(stats) == 0 {
		return "Queue is empty."
	}

	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{StatusLabel(key), fmt.Sprintf("%d", stats[queue.Status(key)])})
	}
	return renderTable(
		[]string{"Status", "Jobs"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	)
}

// StatusLabel humanizes a status value for display.
func StatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func sourceLabel(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

func formatSpan(start, end float64) string {
	return fmt.Sprintf("%s-%s", formatClock(start), formatClock(end))
}

func formatClock(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format("2006-01-02 15:04")
}
