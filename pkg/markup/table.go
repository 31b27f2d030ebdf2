package markup

import (
	"fmt"
	"strings"
)

// Cell is one table cell. It accumulates raw text lines that are only
// formatted when the table's markup is emitted, and may span several ruler
// columns.
type Cell struct {
	Spanning int // number of ruler columns covered, minimum 1
	Lines    []string
}

func (c *Cell) addLine(s string) {
	s = strings.TrimRight(s, " \t")
	if s == "" && len(c.Lines) == 0 {
		return
	}
	c.Lines = append(c.Lines, s)
}

// Table is the 2-D structure built from an embedded table block: a ruler
// line defines the column boundaries, the line above it is the header, and
// everything below is data rows. A table lives only for the duration of
// its block; after Markup it is discarded.
type Table struct {
	bounds  [][2]int // column start/end offsets from the ruler
	pending []string // lines seen before the ruler, last one is the header
	header  []*Cell
	rows    [][]*Cell
}

// NewTable creates an empty table awaiting its ruler line.
func NewTable() *Table {
	return &Table{}
}

// isRuler reports whether a line consists only of dash runs and spaces.
func isRuler(line string) bool {
	seen := false
	for _, c := range line {
		switch c {
		case '-':
			seen = true
		case ' ', '\t':
		default:
			return false
		}
	}
	return seen
}

// AddLine feeds the table the next raw line of its block.
func (t *Table) AddLine(line string) {
	if t.bounds == nil {
		if isRuler(line) {
			t.bounds = rulerBounds(line)
			if n := len(t.pending); n > 0 {
				t.header = t.splitRow(t.pending[n-1])
			}
			return
		}
		t.pending = append(t.pending, line)
		return
	}

	if strings.TrimSpace(line) == "" {
		return
	}

	// A continuation line (blank first column) extends the previous row's
	// cells rather than starting a new row.
	if len(t.rows) > 0 && t.isContinuation(line) {
		prev := t.rows[len(t.rows)-1]
		cont := t.splitRow(line)
		for i, cell := range cont {
			if i < len(prev) && len(cell.Lines) > 0 {
				prev[i].Lines = append(prev[i].Lines, cell.Lines...)
			}
		}
		return
	}

	t.rows = append(t.rows, t.splitRow(line))
}

// rulerBounds extracts the [start,end) column ranges of each dash run.
func rulerBounds(line string) [][2]int {
	var bounds [][2]int
	start := -1
	for i, c := range line {
		if c == '-' {
			if start < 0 {
				start = i
			}
		} else if start >= 0 {
			bounds = append(bounds, [2]int{start, i})
			start = -1
		}
	}
	if start >= 0 {
		bounds = append(bounds, [2]int{start, len(line)})
	}
	return bounds
}

// isContinuation reports whether the first ruler column is blank on this
// line.
func (t *Table) isContinuation(line string) bool {
	if len(t.bounds) == 0 {
		return false
	}
	first := sliceColumn(line, t.bounds[0][0], t.bounds[0][1])
	return strings.TrimSpace(first) == ""
}

// splitRow slices a line at the ruler boundaries. Text crossing a
// boundary merges the neighboring columns into one spanning cell.
func (t *Table) splitRow(line string) []*Cell {
	if len(t.bounds) == 0 {
		cell := &Cell{Spanning: 1}
		cell.addLine(strings.TrimSpace(line))
		return []*Cell{cell}
	}

	var cells []*Cell
	var current *Cell
	for i, b := range t.bounds {
		text := sliceColumn(line, b[0], boundEnd(t.bounds, i, line))
		crossed := i > 0 && boundaryCrossed(line, t.bounds[i-1][1], b[0])
		if crossed && current != nil {
			current.Spanning++
			if trimmed := strings.TrimSpace(text); trimmed != "" {
				if len(current.Lines) > 0 {
					current.Lines[len(current.Lines)-1] += " " + trimmed
				} else {
					current.addLine(trimmed)
				}
			}
			continue
		}
		current = &Cell{Spanning: 1}
		current.addLine(strings.TrimSpace(text))
		cells = append(cells, current)
	}
	return cells
}

// boundEnd extends the last column to the end of the line.
func boundEnd(bounds [][2]int, i int, line string) int {
	if i == len(bounds)-1 {
		return len(line)
	}
	return bounds[i+1][0]
}

// boundaryCrossed reports whether the gap between two ruler columns holds
// non-space text, the signature of a spanning cell.
func boundaryCrossed(line string, gapStart, gapEnd int) bool {
	return strings.TrimSpace(sliceColumn(line, gapStart, gapEnd)) != ""
}

func sliceColumn(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

// Markup emits the table as markup, late-formatting every cell's
// accumulated lines through the supplied formatter. The table must not be
// reused afterwards.
func (t *Table) Markup(format func(lines []string) string) string {
	var out strings.Builder
	out.WriteString("<table>")

	writeRow := func(cells []*Cell, tag string) {
		out.WriteString("<tr>")
		for _, cell := range cells {
			if cell.Spanning > 1 {
				fmt.Fprintf(&out, "<%s spans=\"%d\">", tag, cell.Spanning)
			} else {
				fmt.Fprintf(&out, "<%s>", tag)
			}
			out.WriteString(format(cell.Lines))
			fmt.Fprintf(&out, "</%s>", tag)
		}
		out.WriteString("</tr>")
	}

	if t.header != nil {
		writeRow(t.header, "th")
	}
	if t.bounds == nil {
		// no ruler ever arrived; degrade to one-column rows
		for _, line := range t.pending {
			if strings.TrimSpace(line) == "" {
				continue
			}
			cell := &Cell{Spanning: 1}
			cell.addLine(strings.TrimSpace(line))
			writeRow([]*Cell{cell}, "td")
		}
	}
	for _, row := range t.rows {
		writeRow(row, "td")
	}

	out.WriteString("</table>")
	return out.String()
}
