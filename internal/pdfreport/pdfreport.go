// Package pdfreport renders Markdown into a PDF document. It is the
// host layer's export path for a stored run result: cmd/leadscout's
// report subcommand builds the Markdown body, this package turns it
// into bytes suitable for writing to disk.
//
// Grounded on ternarybob-quaero/internal/services/pdf/service.go's
// goldmark-AST-walking fpdf renderer, trimmed to the subset of
// Markdown a generated lead report actually produces (headings,
// paragraphs, emphasis, lists, tables) and with the dead/deprecated
// wrapper functions that repo had accumulated removed.
package pdfreport

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Renderer converts Markdown to PDF bytes.
type Renderer struct {
	logger arbor.ILogger
}

func New(logger arbor.ILogger) *Renderer {
	return &Renderer{logger: logger}
}

// Render converts markdown into a complete PDF document. title is set
// as the PDF's document title metadata; it is not printed as a heading
// since the markdown itself is expected to open with one.
func (r *Renderer) Render(markdown, title string) ([]byte, error) {
	r.logger.Debug().Int("markdown_len", len(markdown)).Str("title", title).Msg("rendering PDF report")

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	walker := &pdfWalker{pdf: pdf, source: source, font: "Arial", size: 9}
	if err := ast.Walk(doc, walker.visit); err != nil {
		return nil, fmt.Errorf("pdfreport: walk document: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdfreport: write output: %w", err)
	}

	r.logger.Debug().Int("pdf_size", buf.Len()).Msg("PDF report rendered")
	return buf.Bytes(), nil
}

type pdfWalker struct {
	pdf       *fpdf.Fpdf
	source    []byte
	font      string
	size      float64
	bold      bool
	italic    bool
	inList    bool
	listLevel int
}

func (w *pdfWalker) applyFont() {
	style := ""
	if w.bold {
		style += "B"
	}
	if w.italic {
		style += "I"
	}
	w.pdf.SetFont(w.font, style, w.size)
}

func (w *pdfWalker) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		return w.heading(n.(*ast.Heading), entering)
	case ast.KindParagraph:
		return w.paragraph(entering)
	case ast.KindText:
		return w.text(n.(*ast.Text), entering)
	case ast.KindEmphasis:
		return w.emphasis(n.(*ast.Emphasis), entering)
	case ast.KindCodeSpan:
		return w.codeSpan(n.(*ast.CodeSpan), entering)
	case ast.KindList:
		return w.list(entering)
	case ast.KindListItem:
		return w.listItem(entering)
	case ast.KindThematicBreak:
		if entering {
			w.pdf.Ln(2)
			w.pdf.Line(15, w.pdf.GetY(), 195, w.pdf.GetY())
			w.pdf.Ln(2)
		}
	case extast.KindTable:
		return w.table(n.(*extast.Table), entering)
	}
	return ast.WalkContinue, nil
}

func (w *pdfWalker) heading(n *ast.Heading, entering bool) (ast.WalkStatus, error) {
	if entering {
		w.pdf.Ln(6)
		size := 10.0
		switch n.Level {
		case 1:
			size = 14
		case 2:
			size = 12
		case 3:
			size = 11
		}
		w.pdf.SetFont(w.font, "B", size)
	} else {
		w.pdf.Ln(6)
		w.applyFont()
	}
	return ast.WalkContinue, nil
}

func (w *pdfWalker) paragraph(entering bool) (ast.WalkStatus, error) {
	if !entering {
		w.pdf.Ln(7)
	}
	return ast.WalkContinue, nil
}

func (w *pdfWalker) text(n *ast.Text, entering bool) (ast.WalkStatus, error) {
	if entering {
		w.pdf.Write(5, string(n.Text(w.source)))
	}
	return ast.WalkContinue, nil
}

func (w *pdfWalker) emphasis(n *ast.Emphasis, entering bool) (ast.WalkStatus, error) {
	if n.Level == 2 {
		w.bold = entering
	} else {
		w.italic = entering
	}
	w.applyFont()
	return ast.WalkContinue, nil
}

func (w *pdfWalker) codeSpan(n *ast.CodeSpan, entering bool) (ast.WalkStatus, error) {
	if entering {
		w.pdf.SetFont("Courier", "", 9)
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				w.pdf.Write(5, string(t.Segment.Value(w.source)))
			}
		}
		return ast.WalkSkipChildren, nil
	}
	w.applyFont()
	return ast.WalkContinue, nil
}

func (w *pdfWalker) list(entering bool) (ast.WalkStatus, error) {
	if entering {
		w.inList = true
		w.listLevel++
	} else {
		w.listLevel--
		if w.listLevel == 0 {
			w.inList = false
			w.pdf.Ln(2)
		}
	}
	return ast.WalkContinue, nil
}

func (w *pdfWalker) listItem(entering bool) (ast.WalkStatus, error) {
	if entering {
		w.pdf.Ln(5)
		indent := float64(w.listLevel) * 5.0
		w.pdf.SetX(15 + indent)
		w.pdf.Write(5, "- ")
	}
	return ast.WalkContinue, nil
}

func (w *pdfWalker) table(n *extast.Table, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	var rows [][]string
	var collect func(node ast.Node)
	collect = func(node ast.Node) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *extast.TableRow:
				rows = append(rows, w.tableRow(c))
			case *extast.TableHeader:
				rows = append(rows, w.tableRow(c))
			}
		}
	}
	collect(n)

	w.renderTable(rows)
	return ast.WalkSkipChildren, nil
}

func (w *pdfWalker) tableRow(n ast.Node) []string {
	var row []string
	for cell := n.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			row = append(row, string(cell.Text(w.source)))
		}
	}
	return row
}

func (w *pdfWalker) renderTable(rows [][]string) {
	if len(rows) == 0 {
		return
	}
	numCols := len(rows[0])
	if numCols == 0 {
		return
	}

	w.pdf.Ln(2)
	const pageWidth = 180.0
	const fontSize = 8.0
	const lineHeight = 5.0

	w.pdf.SetFont(w.font, "B", fontSize)
	colWidths := make([]float64, numCols)
	for _, row := range rows {
		for i, cell := range row {
			if i >= numCols {
				continue
			}
			if width := w.pdf.GetStringWidth(cell) + 4; width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}
	minWidth, maxWidth := 14.0, pageWidth/3.0
	total := 0.0
	for i := range colWidths {
		if colWidths[i] < minWidth {
			colWidths[i] = minWidth
		}
		if colWidths[i] > maxWidth {
			colWidths[i] = maxWidth
		}
		total += colWidths[i]
	}
	if total > pageWidth {
		scale := pageWidth / total
		for i := range colWidths {
			colWidths[i] *= scale
		}
	}

	for i, row := range rows {
		if i == 0 {
			w.pdf.SetFont(w.font, "B", fontSize)
			w.pdf.SetFillColor(230, 230, 230)
		} else {
			w.pdf.SetFont(w.font, "", fontSize)
			w.pdf.SetFillColor(255, 255, 255)
		}

		startX, startY := w.pdf.GetX(), w.pdf.GetY()
		if startY+lineHeight+2 > 287 {
			w.pdf.AddPage()
			startY = w.pdf.GetY()
		}

		for j, cell := range row {
			if j >= numCols {
				continue
			}
			x := startX
			for k := 0; k < j; k++ {
				x += colWidths[k]
			}
			fillMode := "D"
			if i == 0 {
				fillMode = "FD"
			}
			w.pdf.Rect(x, startY, colWidths[j], lineHeight+2, fillMode)
			w.pdf.SetXY(x+1, startY+1)
			w.pdf.CellFormat(colWidths[j]-2, lineHeight, truncate(w.pdf, cell, colWidths[j]-2), "", 0, "L", false, 0, "")
		}
		w.pdf.SetXY(startX, startY+lineHeight+2)
	}
	w.pdf.Ln(3)
	w.applyFont()
}

func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 3 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
