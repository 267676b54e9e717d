package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	md "github.com/nao1215/markdown"
)

// report accumulates a markdown document
type report struct {
	buf bytes.Buffer
	doc *md.Markdown
}

func newReport() *report {
	r := &report{}
	r.doc = md.NewMarkdown(&r.buf)
	return r
}

func (r *report) h1(s string) { r.doc.H1(s) }
func (r *report) h2(s string) { r.doc.H2(s) }

func (r *report) line(format string, args ...any) {
	r.doc.PlainText(fmt.Sprintf(format, args...))
}

// table writes a pipe table, escaping pipes inside the cells
func (r *report) table(header []string, rows [][]string) {
	set := md.TableSet{
		Header: escapeCells(header),
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		set.Rows = append(set.Rows, escapeCells(row))
	}
	r.doc.Table(set)
}

func (r *report) String() string { return r.doc.String() }

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}

// printMarkdown writes text as is, or rendered for the terminal when render is set
func printMarkdown(w io.Writer, text string, render bool) error {
	if !render {
		_, err := io.WriteString(w, text)
		return err
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return err
	}
	out, err := tr.Render(text)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func percent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

func optionalPercent(rate *float64) string {
	if rate == nil {
		return "n/a"
	}
	return percent(*rate)
}
