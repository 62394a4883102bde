package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/tastelens/backend/internal/domain"
	"github.com/tastelens/backend/internal/usecase"
)

const maxCellWidth = 60

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func renderBatchReport(w io.Writer, title string, report domain.BatchReport) {
	t := newTable(w, title)
	t.AppendHeader(table.Row{"Processed", "Failed", "Skipped"})
	t.AppendRow(table.Row{report.Processed, report.Failed, report.Skipped})
	t.Render()
}

func renderClassification(w io.Writer, report *usecase.ClassificationReport) {
	mode := "dry run"
	if report.Applied {
		mode = "applied"
	}

	t := newTable(w, fmt.Sprintf("classify %s (%s)", report.Channel, mode))
	t.AppendHeader(table.Row{"Block", "Title", "Destinations", "Label", "Why"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: maxCellWidth},
		{Number: 5, WidthMax: maxCellWidth},
	})
	for _, o := range report.Outcomes {
		why := o.Decision.Justification
		if o.Error != "" {
			why = text.FgRed.Sprint("error: " + o.Error)
		}
		t.AppendRow(table.Row{
			o.Block.ID,
			o.Block.Title,
			destinationKeys(o.Decision.Destinations),
			o.Decision.SuggestedLabel,
			why,
		})
	}
	t.AppendFooter(table.Row{"", "", "processed", report.Summary.Processed, fmt.Sprintf("failed %d, skipped %d", report.Summary.Failed, report.Summary.Skipped)})
	t.Render()
}

func renderMatches(w io.Writer, resp *usecase.MatchResponse) {
	for i, img := range resp.Images {
		if img.Error != "" {
			fmt.Fprintf(w, "image %d: %s\n", i+1, text.FgRed.Sprint(img.Error))
		}
	}

	t := newTable(w, "matches")
	t.AppendHeader(table.Row{"#", "Score", "Title", "Channel", "Why"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: maxCellWidth},
		{Number: 5, WidthMax: maxCellWidth},
	})
	for i, m := range resp.Matches {
		title := m.Candidate.Title
		if title == "" {
			title = m.Candidate.ID
		}
		t.AppendRow(table.Row{i + 1, fmt.Sprintf("%.1f", m.Score), title, m.Candidate.Channel, m.Note})
	}
	t.AppendFooter(table.Row{"", "", "Total", len(resp.Matches), queryTags(resp.Query)})
	t.Render()
}

func renderStyleGuide(w io.Writer, guide *domain.AggregatedStyleGuide) {
	t := newTable(w, fmt.Sprintf("style guide (%d samples)", guide.SampleCount))
	t.AppendHeader(table.Row{"Family", "Values", "Confidence"})

	rows := []struct {
		family domain.StyleFamily
		values []string
	}{
		{domain.FamilyColors, []string{guide.Colors.PaletteTemperature, guide.Colors.ContrastLevel, guide.Colors.AccentUsage}},
		{domain.FamilyTypography, []string{guide.Typography.FontCategory, guide.Typography.HeadingWeight, guide.Typography.TypeScale}},
		{domain.FamilySpacing, []string{guide.Spacing.Density}},
		{domain.FamilyElevation, []string{guide.Elevation.ShadowPresence}},
		{domain.FamilyBorders, []string{guide.Borders.RadiusCategory, guide.Borders.BorderUsage, fmt.Sprintf("%dpx", guide.Borders.RadiusPx)}},
	}
	for _, r := range rows {
		t.AppendRow(table.Row{r.family, joinNonEmpty(r.values), guide.Confidence[r.family].Tier})
	}
	t.AppendRow(table.Row{"motion", joinNonEmpty([]string{guide.Motion.Duration, guide.Motion.Easing, guide.Motion.Hover}), guide.Motion.Confidence.Tier})
	t.Render()

	if len(guide.AntiPatterns) > 0 {
		fmt.Fprintf(w, "avoid: %s\n", strings.Join(guide.AntiPatterns, ", "))
	}
	names := make([]string, 0, len(guide.Contexts))
	for name := range guide.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "context %s: %d samples\n", name, guide.Contexts[name].SampleCount)
	}
}

func destinationKeys(dests []domain.Destination) string {
	keys := make([]string, 0, len(dests))
	for _, d := range dests {
		keys = append(keys, d.Key())
	}
	return strings.Join(keys, ", ")
}

func queryTags(tags domain.TagSet) string {
	var parts []string
	for _, c := range domain.TagCategories {
		if values := tags.Get(c); len(values) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", c, strings.Join(values, ", ")))
		}
	}
	return strings.Join(parts, "; ")
}

func joinNonEmpty(values []string) string {
	var kept []string
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, ", ")
}
