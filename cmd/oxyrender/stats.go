package main

import (
	"bytes"
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/engine/profiler"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/olekukonko/tablewriter"
)

// formatFrameStats renders the pass timings of one frame as a table.
func formatFrameStats(res *renderer.FrameResult) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Pass", "Time", "% of frame"})
	total := res.Duration()
	for _, t := range res.Timings {
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(t.Duration) / float64(total)
		}
		table.Append([]string{
			t.Pass,
			t.Duration.String(),
			fmt.Sprintf("%02.1f %%", pct),
		})
	}
	table.SetFooter([]string{"TOTAL", total.String(), fmt.Sprintf("%d warnings", len(res.Warnings))})

	table.Render()
	return buf.String()
}

// formatPassStats renders cumulative per-pass statistics as a table.
func formatPassStats(passes []profiler.PassStats) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Pass", "Frames", "Avg", "Max", "Total"})
	for _, p := range passes {
		table.Append([]string{
			p.Pass,
			fmt.Sprintf("%d", p.Frames),
			p.Avg().String(),
			p.Max.String(),
			p.Total.String(),
		})
	}

	table.Render()
	return buf.String()
}

func displayFrameStats(res *renderer.FrameResult) {
	logger.Noticef("frame statistics\n%s", formatFrameStats(res))
}

func displayPassStats(passes []profiler.PassStats) {
	logger.Noticef("pass statistics\n%s", formatPassStats(passes))
}
