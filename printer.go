package tinydb

import (
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/uax11"
	"golang.org/x/term"
)

// DefaultLineWidth is the line width assumed if the output is not a
// terminal.
const DefaultLineWidth = 80

var setupGraphemes sync.Once

// Printer outputs rows to a console.
//
// Ids, column headers and error messages are colored, if colors are enabled.
// Tabular output is aligned by display width, which respects wide East-Asian
// characters and multi-codepoint graphemes.
type Printer struct {
	w         io.Writer
	Context   *uax11.Context // context for display width; nil means uax11.LatinContext
	LineWidth int            // tabular output falls back to tuples if wider
	idColor   *color.Color
	headColor *color.Color
	errColor  *color.Color
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, colored bool) *Printer {
	setupGraphemes.Do(grapheme.SetupGraphemeClasses)
	p := &Printer{
		w:         w,
		LineWidth: DefaultLineWidth,
		idColor:   color.New(color.FgCyan),
		headColor: color.New(color.FgBlue, color.Bold),
		errColor:  color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.idColor, p.headColor, p.errColor} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Row outputs a single row as "(id, username, email)".
func (p *Printer) Row(row Row) {
	fmt.Fprintf(p.w, "(%s, %s, %s)\n", p.idColor.Sprint(row.ID), row.Username, row.Email)
}

// Rows outputs rows one per line, as Row does, and returns their number.
func (p *Printer) Rows(rows iter.Seq[Row]) int {
	n := 0
	for row := range rows {
		p.Row(row)
		n++
	}
	return n
}

// Error outputs an error message.
func (p *Printer) Error(msg string) {
	p.errColor.Fprintln(p.w, msg)
}

// Table outputs rows as aligned columns with a header line and returns the
// number of rows. If the table would exceed the line width, rows are output
// as with Rows.
func (p *Printer) Table(rows iter.Seq[Row]) int {
	var cells [][3]string
	for row := range rows {
		cells = append(cells, [3]string{strconv.FormatUint(uint64(row.ID), 10), row.Username, row.Email})
	}
	header := [3]string{"id", "username", "email"}
	widths := [3]int{}
	for _, line := range append([][3]string{header}, cells...) {
		for i, cell := range line {
			widths[i] = max(widths[i], p.displayWidth(cell))
		}
	}
	if widths[0]+widths[1]+widths[2]+6 > p.LineWidth {
		T().Debugf("printer: table exceeds line width %d, printing tuples", p.LineWidth)
		for _, line := range cells {
			fmt.Fprintf(p.w, "(%s, %s, %s)\n", p.idColor.Sprint(line[0]), line[1], line[2])
		}
		return len(cells)
	}
	p.line(header, widths, p.headColor, p.headColor)
	for _, line := range cells {
		p.line(line, widths, p.idColor, nil)
	}
	return len(cells)
}

func (p *Printer) line(cells [3]string, widths [3]int, first, rest *color.Color) {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(" | ")
		}
		padded := cell
		if i < len(cells)-1 {
			padded += strings.Repeat(" ", widths[i]-p.displayWidth(cell))
		}
		switch {
		case i == 0 && first != nil:
			b.WriteString(first.Sprint(padded))
		case i > 0 && rest != nil:
			b.WriteString(rest.Sprint(padded))
		default:
			b.WriteString(padded)
		}
	}
	b.WriteByte('\n')
	io.WriteString(p.w, b.String())
}

// displayWidth measures s in fixed-width positions ('en's).
//
// Printable ASCII characters count as one position each. uax11 is asked only
// for the remaining runs, as it measures some narrow ASCII characters (digits)
// as wide. An ASCII character directly followed by a non-ASCII one stays with
// the run, as it may start a multi-codepoint grapheme.
func (p *Printer) displayWidth(s string) int {
	ctx := p.Context
	if ctx == nil {
		ctx = uax11.LatinContext
	}
	width, start := 0, -1
	for i := 0; i < len(s); i++ {
		if isNarrowASCII(s[i]) && (i+1 == len(s) || s[i+1] < 0x80) {
			if start >= 0 {
				width += uax11.StringWidth(grapheme.StringFromString(s[start:i]), ctx)
				start = -1
			}
			width++
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		width += uax11.StringWidth(grapheme.StringFromString(s[start:]), ctx)
	}
	return width
}

func isNarrowASCII(b byte) bool {
	return b >= 0x20 && b < 0x7f
}

// --- Terminal --------------------------------------------------------------

// IsTerminal reports whether the file descriptor is an interactive terminal.
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// TerminalWidth returns the width of the terminal at fd, or DefaultLineWidth
// if fd is not a terminal.
func TerminalWidth(fd int) int {
	if !term.IsTerminal(fd) {
		return DefaultLineWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 10 {
		return DefaultLineWidth
	}
	return w
}
