package output

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/paysplit/internal/domain"
)

// DataSeries is a single line in a chart
type DataSeries struct {
	Name   string
	Points []float64
	Color  lipgloss.Color
}

// ASCIIChart draws line series on a character grid
type ASCIIChart struct {
	Title      string
	Series     []*DataSeries
	Labels     []string // X-axis labels
	Width      int
	Height     int
	ShowLegend bool
	XAxisLabel string
}

// NewASCIIChart creates a new ASCII chart
func NewASCIIChart(title string) *ASCIIChart {
	return &ASCIIChart{
		Title:      title,
		Series:     []*DataSeries{},
		Labels:     []string{},
		Width:      60,
		Height:     12,
		ShowLegend: true,
	}
}

// AddSeries adds a data series to the chart
func (c *ASCIIChart) AddSeries(name string, points []float64, color lipgloss.Color) *ASCIIChart {
	c.Series = append(c.Series, &DataSeries{Name: name, Points: points, Color: color})
	return c
}

// WithLabels sets the X-axis labels
func (c *ASCIIChart) WithLabels(labels []string) *ASCIIChart {
	c.Labels = labels
	return c
}

// WithSize sets the chart dimensions
func (c *ASCIIChart) WithSize(width, height int) *ASCIIChart {
	c.Width = width
	c.Height = height
	return c
}

// Render returns the styled chart
func (c *ASCIIChart) Render() string {
	if !c.hasPoints() {
		return SubtitleStyle.Render("No data to display")
	}

	var content strings.Builder
	if c.Title != "" {
		content.WriteString(TitleStyle.Render(c.Title))
		content.WriteString("\n\n")
	}

	minVal, maxVal := c.bounds()
	content.WriteString(c.renderGrid(minVal, maxVal))

	if c.XAxisLabel != "" {
		content.WriteString("\n")
		content.WriteString(SubtitleStyle.Render(c.XAxisLabel))
	}
	if c.ShowLegend && len(c.Series) > 1 {
		content.WriteString("\n")
		content.WriteString(c.renderLegend())
	}

	return content.String()
}

func (c *ASCIIChart) hasPoints() bool {
	for _, s := range c.Series {
		if len(s.Points) > 0 {
			return true
		}
	}
	return false
}

// bounds returns the padded min and max across all series
func (c *ASCIIChart) bounds() (float64, float64) {
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, series := range c.Series {
		for _, p := range series.Points {
			minVal = math.Min(minVal, p)
			maxVal = math.Max(maxVal, p)
		}
	}

	padding := (maxVal - minVal) * 0.1
	if padding == 0 {
		padding = 1
	}
	return minVal - padding, maxVal + padding
}

func (c *ASCIIChart) renderGrid(minVal, maxVal float64) string {
	yAxisWidth := 10
	chartWidth := c.Width - yAxisWidth
	if chartWidth < 2 {
		chartWidth = 2
	}

	grid := make([][]rune, c.Height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", chartWidth))
	}

	for seriesIdx, series := range c.Series {
		pointChar := seriesChar(seriesIdx)
		prevX, prevY := -1, -1
		for i, point := range series.Points {
			x := c.column(i, len(series.Points), chartWidth)
			y := c.Height - 1 - int((point-minVal)/(maxVal-minVal)*float64(c.Height-1))
			if prevX >= 0 {
				drawLine(grid, prevX, prevY, x, y, pointChar)
			} else if y >= 0 && y < c.Height {
				grid[y][x] = pointChar
			}
			prevX, prevY = x, y
		}
	}

	var out strings.Builder
	axisStyle := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Width(yAxisWidth).
		Align(lipgloss.Right)
	valueRange := maxVal - minVal

	for i, row := range grid {
		yValue := maxVal - (float64(i)/float64(c.Height-1))*valueRange
		out.WriteString(axisStyle.Render(formatChartValue(yValue)))
		out.WriteString(" │ ")
		out.WriteString(string(row))
		out.WriteString("\n")
	}

	out.WriteString(strings.Repeat(" ", yAxisWidth))
	out.WriteString(" └")
	out.WriteString(strings.Repeat("─", chartWidth))
	out.WriteString("\n")

	if len(c.Labels) > 0 {
		out.WriteString(strings.Repeat(" ", yAxisWidth+3))
		out.WriteString(SubtitleStyle.Render(c.Labels[0]))
		if len(c.Labels) > 1 {
			last := c.Labels[len(c.Labels)-1]
			gap := chartWidth - len(c.Labels[0]) - len(last)
			if gap < 1 {
				gap = 1
			}
			out.WriteString(strings.Repeat(" ", gap))
			out.WriteString(SubtitleStyle.Render(last))
		}
		out.WriteString("\n")
	}

	return out.String()
}

func (c *ASCIIChart) column(i, n, width int) int {
	if n <= 1 {
		return 0
	}
	return int(float64(i) / float64(n-1) * float64(width-1))
}

func (c *ASCIIChart) renderLegend() string {
	items := make([]string, 0, len(c.Series))
	for i, series := range c.Series {
		symbol := lipgloss.NewStyle().Foreground(series.Color).Render(string(seriesChar(i)))
		items = append(items, fmt.Sprintf("%s %s", symbol, series.Name))
	}
	return SubtitleStyle.Render("Legend: " + strings.Join(items, " • "))
}

func seriesChar(index int) rune {
	chars := []rune{'●', '■', '▲', '♦'}
	return chars[index%len(chars)]
}

// drawLine connects two grid cells with Bresenham's algorithm
func drawLine(grid [][]rune, x0, y0, x1, y1 int, char rune) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}

	err := dx - dy
	x, y := x0, y0
	for {
		if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) && grid[y][x] == ' ' {
			grid[y][x] = char
		}
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

func formatChartValue(value float64) string {
	if math.Abs(value) >= 1000 {
		return fmt.Sprintf("%.0fk €", value/1000)
	}
	return fmt.Sprintf("%.0f €", value)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ScheduleChart plots net income and taxes against gross income. Breakpoints
// with a missing value are left out of that series.
func ScheduleChart(records []domain.IncomeTaxRecord) *ASCIIChart {
	net := make([]float64, 0, len(records))
	taxes := make([]float64, 0, len(records))
	for _, r := range records {
		if r.NetAnnual.Valid {
			net = append(net, r.NetAnnual.Decimal.InexactFloat64())
		}
		if r.TaxesAnnual.Valid {
			taxes = append(taxes, r.TaxesAnnual.Decimal.InexactFloat64())
		}
	}

	chart := NewASCIIChart("Net income and taxes by gross income").
		AddSeries("Net income", net, ColorChartLine1).
		AddSeries("Taxes and payments", taxes, ColorChartLine2)
	if len(records) > 0 {
		chart.WithLabels([]string{
			FormatCurrency(records[0].GrossAnnual),
			FormatCurrency(records[len(records)-1].GrossAnnual),
		})
	}
	chart.XAxisLabel = "Gross annual income"
	return chart
}

// ShareBar renders a segment share as a fixed width bar
func ShareBar(segment domain.Segment, width int) string {
	share := segment.Share.InexactFloat64()
	filled := int(math.Round(share * float64(width)))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(ColorAccent).Render(bar)
}
