package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Curve is one learning curve, one value per run in chronological order.
type Curve struct {
	Name   string
	Values []float64
	Color  lipgloss.Color
}

const (
	curveHeight    = 5
	minPlotWidth   = 10
	axisLabelWidth = 5
	axisSeparator  = " │ "
)

var (
	wpmColor      = lipgloss.Color("#C89A3A")
	accuracyColor = lipgloss.Color("#5FAF87")
)

// PlotCurve draws c as a braille line chart height rows tall. The y axis
// runs from the smallest to the largest value of the curve.
func PlotCurve(w io.Writer, c Curve, width, height int) error {
	if len(c.Values) == 0 {
		return nil
	}
	if height <= 0 {
		height = curveHeight
	}
	width = max(width, minPlotWidth)

	values := resampleSeries(c.Values, width)
	lo, hi := valueRange(values)
	cells := makeCells(height, width)
	prevX, prevY := -1, -1
	for x, v := range values {
		px, py := x*2, valueToRow(v, lo, hi, height*4)
		if prevX >= 0 {
			drawLine(prevX, prevY, px, py, func(dx, dy int) {
				setBrailleDot(cells, dx, dy)
			})
		} else {
			setBrailleDot(cells, px, py)
		}
		prevX, prevY = px, py
	}

	header := fmt.Sprintf("%s  last %.1f  min %.1f  max %.1f", c.Name, c.Values[len(c.Values)-1], lo, hi)
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	style := lipgloss.NewStyle().Foreground(c.Color)
	labels := axisLabels(lo, hi, height)
	for y := range height {
		var row strings.Builder
		for x := range width {
			row.WriteRune(brailleFromMask(cells[y][x]))
		}
		line := fmt.Sprintf("%*s%s%s", axisLabelWidth, labels[y], axisSeparator, style.Render(row.String()))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// PlotWidthFor returns the number of chart columns that fit next to the
// axis in totalWidth terminal columns.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	return max(minPlotWidth, totalWidth-axisLabelWidth-utf8.RuneCountInString(axisSeparator))
}

func valueRange(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if hi-lo < 1e-9 {
		lo--
		hi++
	}
	return lo, hi
}

func axisLabels(lo, hi float64, height int) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = fmt.Sprintf("%.0f", hi)
	if height > 2 {
		labels[height/2] = fmt.Sprintf("%.0f", (lo+hi)/2)
	}
	if height > 1 {
		labels[height-1] = fmt.Sprintf("%.0f", lo)
	}
	return labels
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return cells
}

// resampleSeries fits values into width points: averaged buckets when
// there are more values than columns, linear interpolation otherwise.
func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	switch {
	case len(values) == width:
		copy(out, values)
	case len(values) > width:
		for i := range out {
			start := i * len(values) / width
			end := max((i+1)*len(values)/width, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case len(values) == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		step := float64(len(values)-1) / float64(width-1)
		for i := range out {
			pos := float64(i) * step
			idx := int(pos)
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func valueToRow(v, lo, hi float64, rows int) int {
	if rows <= 1 {
		return 0
	}
	pos := (v - lo) / (hi - lo)
	row := int(math.Round((1 - pos) * float64(rows-1)))
	return max(0, min(row, rows-1))
}

// drawLine walks the Bresenham line between two dot coordinates.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if x < 0 || y < 0 {
		return
	}
	cy, cx := y/4, x/2
	if cy >= len(cells) || cx >= len(cells[cy]) {
		return
	}
	cells[cy][cx] |= brailleDots[x%2][y%4]
}

// brailleDots maps a dot position inside a cell to its bit in U+2800.
var brailleDots = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
