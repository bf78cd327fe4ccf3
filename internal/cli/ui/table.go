// Package ui renders the plain-text reports printed by the mongoose commands.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Status labels used in report tables
const (
	StatusOK   = "ok"
	StatusFail = "FAIL"
)

// Printer writes styled output, or plain text when color is disabled. The
// noColor flag decides on its own; callers fold in color.NoColor.
type Printer struct {
	w       io.Writer
	noColor bool
}

// NewPrinter creates a printer for w
func NewPrinter(w io.Writer, noColor bool) *Printer {
	return &Printer{w: w, noColor: noColor}
}

func (p *Printer) style(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.noColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c
}

// Header prints title underlined to its own width
func (p *Printer) Header(title string) {
	p.style(color.Bold, color.FgCyan).Fprintln(p.w, title)
	p.style(color.FgHiBlack).Fprintln(p.w, strings.Repeat("─", len(title)))
}

// Fields prints key/value pairs with the values aligned. A trailing key
// without a value is ignored.
func (p *Printer) Fields(pairs ...string) {
	width := 0
	for i := 0; i+1 < len(pairs); i += 2 {
		width = max(width, len(pairs[i])+1)
	}

	key := p.style(color.FgCyan)
	for i := 0; i+1 < len(pairs); i += 2 {
		key.Fprint(p.w, padRight(pairs[i]+":", width))
		fmt.Fprintf(p.w, " %s\n", pairs[i+1])
	}
}

// Table starts a table with the given column headers
func (p *Printer) Table(headers ...string) *Table {
	return &Table{p: p, headers: headers, status: -1}
}

// Table collects rows and prints them with aligned columns
type Table struct {
	p       *Printer
	headers []string
	rows    [][]string
	status  int
}

// StatusColumn marks column i as holding StatusLabel values, which render
// green or red
func (t *Table) StatusColumn(i int) *Table {
	t.status = i
	return t
}

// AddRow adds a row. Missing cells render empty, extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Render prints the header, a separator and every row
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	head := t.p.style(color.Bold, color.FgCyan)
	rule := t.p.style(color.FgHiBlack)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}

	t.line(widths, t.headers, func(int, string) *color.Color { return head })
	rule.Fprintln(t.p.w, strings.Join(sep, "  "))

	ok := t.p.style(color.FgGreen, color.Bold)
	fail := t.p.style(color.FgRed, color.Bold)
	for _, row := range t.rows {
		t.line(widths, row, func(i int, cell string) *color.Color {
			switch {
			case i != t.status:
				return nil
			case cell == StatusOK:
				return ok
			default:
				return fail
			}
		})
	}
}

// line pads every cell before styling it so escape codes do not count
// towards the column width. The last cell is not padded; a nil style prints
// the cell as is.
func (t *Table) line(widths []int, cells []string, styleFor func(i int, cell string) *color.Color) {
	for i, cell := range cells {
		text := cell
		if i < len(cells)-1 {
			text = padRight(cell, widths[i])
		}
		if c := styleFor(i, cell); c != nil {
			c.Fprint(t.p.w, text)
		} else {
			fmt.Fprint(t.p.w, text)
		}
		if i < len(cells)-1 {
			fmt.Fprint(t.p.w, "  ")
		}
	}
	fmt.Fprintln(t.p.w)
}

// StatusLabel returns StatusOK or StatusFail
func StatusLabel(ok bool) string {
	if ok {
		return StatusOK
	}
	return StatusFail
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
