package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/bookstore-insights/backend/internal/views"
	"github.com/pterm/pterm"
)

// barScale turns fractional chart values into the integer bar lengths pterm draws.
const barScale = 100

// RenderPayload renders every section of p as terminal text.
func RenderPayload(p *views.Payload) (string, error) {
	var b strings.Builder
	b.WriteString(pterm.DefaultHeader.Sprint(p.Title))
	b.WriteString("\n")

	for _, s := range p.Sections {
		if s.Heading != "" {
			b.WriteString(pterm.DefaultSection.Sprint(s.Heading))
		}
		out, err := renderSection(s)
		if err != nil {
			return "", fmt.Errorf("rendering %s section: %w", s.Kind, err)
		}
		b.WriteString(out)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func renderSection(s views.Section) (string, error) {
	switch s.Kind {
	case views.KindMarkdown:
		return s.Markdown + "\n", nil
	case views.KindTable:
		return renderTable(s.Table)
	case views.KindMetrics:
		return renderMetrics(s.Metrics)
	case views.KindBarChart:
		return renderBarChart(s.BarChart)
	case views.KindHistogram:
		return renderHistogram(s.Histogram)
	case views.KindMessage:
		return renderMessage(s.Message), nil
	}
	return "", fmt.Errorf("unknown section kind %q", s.Kind)
}

func renderTable(t *views.Table) (string, error) {
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	data := pterm.TableData{header}
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		data = append(data, cells)
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return "", err
	}
	return out + fmt.Sprintf("\n%d row(s)\n", t.RowCount), nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return fmt.Sprintf("%.0f", x)
		}
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}

func renderMetrics(metrics []views.Metric) (string, error) {
	items := make([]pterm.BulletListItem, 0, len(metrics))
	for _, m := range metrics {
		text := fmt.Sprintf("%s: %s", m.Label, m.Value)
		if m.Error != "" {
			text = fmt.Sprintf("%s: unavailable (%s)", m.Label, m.Error)
		}
		items = append(items, pterm.BulletListItem{Level: 0, Text: text})
	}
	return pterm.DefaultBulletList.WithItems(items).Srender()
}

func renderBarChart(c *views.BarChart) (string, error) {
	if len(c.Labels) == 0 {
		return pterm.Info.Sprintln("No data to plot."), nil
	}
	bars := make(pterm.Bars, len(c.Labels))
	for i, label := range c.Labels {
		bars[i] = pterm.Bar{
			Label: fmt.Sprintf("%s (%s)", label, formatCell(c.Values[i])),
			Value: scaled(c.Values[i]),
		}
	}
	chart := pterm.DefaultBarChart.WithBars(bars)
	if c.Orientation == "horizontal" {
		chart = chart.WithHorizontal()
	}
	out, err := chart.Srender()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s vs %s\n%s", c.XLabel, c.YLabel, out), nil
}

// scaled keeps ratings like 4.37 distinguishable once truncated to int bars.
func scaled(v float64) int {
	if v < 0 {
		return 0
	}
	return int(math.Round(v * barScale))
}

func renderHistogram(h *views.HistogramChart) (string, error) {
	if h == nil || h.Histogram == nil {
		return pterm.Info.Sprintln("No data to plot."), nil
	}
	bars := make(pterm.Bars, len(h.Counts))
	for i, n := range h.Counts {
		bars[i] = pterm.Bar{
			Label: fmt.Sprintf("%.2f-%.2f", h.Edges[i], h.Edges[i+1]),
			Value: n,
		}
	}
	out, err := pterm.DefaultBarChart.WithBars(bars).WithHorizontal().WithShowValue().Srender()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (%d values, %d bins)\n%s", h.XLabel, len(h.Values), h.Bins, out), nil
}

func renderMessage(m *views.Message) string {
	switch m.Level {
	case views.LevelSuccess:
		return pterm.Success.Sprintln(m.Text)
	case views.LevelWarning:
		return pterm.Warning.Sprintln(m.Text)
	case views.LevelError:
		return pterm.Error.Sprintln(m.Text)
	default:
		return pterm.Info.Sprintln(m.Text)
	}
}
