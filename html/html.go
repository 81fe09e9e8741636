/*
Package html converts table rows to and from HTML tables.

RenderTable outputs rows as an HTML <table> element. ReadTable does the
reverse: it extracts rows from the table cells of an HTML fragment and stages
them in a table builder.
*/
package html

import (
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/npillmayer/tinydb"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var columns = [...]string{"id", "username", "email"}

// RenderTable writes rows as an HTML table with a header row.
func RenderTable(w io.Writer, rows iter.Seq[tinydb.Row]) error {
	table := element(atom.Table)
	thead := element(atom.Thead)
	tr := element(atom.Tr)
	for _, col := range columns {
		tr.AppendChild(cell(atom.Th, col))
	}
	thead.AppendChild(tr)
	table.AppendChild(thead)
	tbody := element(atom.Tbody)
	for row := range rows {
		tr := element(atom.Tr)
		tr.AppendChild(cell(atom.Td, strconv.FormatUint(uint64(row.ID), 10)))
		tr.AppendChild(cell(atom.Td, row.Username))
		tr.AppendChild(cell(atom.Td, row.Email))
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)
	if err := html.Render(w, table); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func cell(a atom.Atom, text string) *html.Node {
	td := element(a)
	td.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return td
}

// ReadTable stages a row for every table row of an HTML fragment which has
// exactly three data cells (id, username, email). Header rows are skipped.
// input may be a complete document or a fragment.
// It returns the number of rows staged.
func ReadTable(input io.Reader, b *tinydb.Builder) (int, error) {
	if b == nil {
		return 0, tinydb.ErrIllegalArguments
	}
	doc, err := html.Parse(input)
	if err != nil {
		return 0, err
	}
	var rows []tinydb.Row
	if err := collectRows(doc, &rows); err != nil {
		return 0, err
	}
	if err := b.Add(rows...); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func collectRows(n *html.Node, rows *[]tinydb.Row) error {
	if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
		var cells []string
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Td {
				cells = append(cells, strings.TrimSpace(InnerText(c)))
			}
		}
		if len(cells) != len(columns) {
			return nil
		}
		id, err := strconv.ParseInt(cells[0], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: row id %q", tinydb.ErrIllegalArguments, cells[0])
		}
		row, err := tinydb.NewRow(id, cells[1], cells[2])
		if err != nil {
			return err
		}
		*rows = append(*rows, row)
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := collectRows(c, rows); err != nil {
			return err
		}
	}
	return nil
}

// InnerText returns the textual content of an HTML element and all its
// descendents. It resembles the text produced by
//
//	document.getElementById("myNode").innerText
//
// in JavaScript (except that InnerText cannot respect CSS styling suppressing
// the visibility of the node's descendents).
func InnerText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	collectText(n, &b)
	return b.String()
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
