package results

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/mbolis/ankietio/model"
	"github.com/mbolis/ankietio/theme"
	"github.com/pkg/errors"
)

// Page layout, in millimeters on A4.
const (
	pdfMargin     = 14.0
	pdfIndent     = 20.0
	pdfTop        = 20.0
	pdfBreakBlock = 250.0
	pdfBreakLine  = 270.0
	pdfLine       = 7.0
	pdfRow        = 8.0
	pdfListed     = 10
	pdfClip       = 80
	pdfTableWidth = 182.0
)

// PDF writes a report with one section per question: a choice table for
// choice based questions, otherwise the first responses.
func PDF(w io.Writer, s model.Survey, subs []model.Submission, palette theme.Palette) error {
	if len(subs) == 0 {
		return ErrNoData
	}
	stats := Collect(s, subs)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetMargins(pdfMargin, pdfTop, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	name := s.Name
	if name == "" {
		name = "Ankieta"
	}
	pdf.SetTitle("Wyniki: "+name, true)
	pdf.AddPage()

	text := func(size float64, style string, x, y float64, str string) {
		pdf.SetFont("Helvetica", style, size)
		pdf.Text(x, y, tr(str))
	}

	r, g, b := theme.RGB(palette.Text)
	pdf.SetTextColor(r, g, b)
	text(18, "B", pdfMargin, 20, "Wyniki: "+name)
	text(12, "", pdfMargin, 30, "Liczba odpowiedzi: "+strconv.Itoa(len(subs)))
	text(12, "", pdfMargin, 37, "Liczba pytań: "+strconv.Itoa(len(s.Questions)))

	y := 50.0
	newPage := func() {
		pdf.AddPage()
		y = pdfTop
	}

	for i, st := range stats {
		if y > pdfBreakBlock {
			newPage()
		}
		text(14, "B", pdfMargin, y, fmt.Sprintf("%d. %s", i+1, st.Question.Content))
		y += 10

		if st.HasChoiceTable() {
			y = choiceTable(pdf, tr, st, palette, y) + 15
			continue
		}

		shown := st.Responses
		if len(shown) > pdfListed {
			shown = shown[:pdfListed]
		}
		for _, resp := range shown {
			if y > pdfBreakLine {
				newPage()
			}
			line := "(brak)"
			if resp != "" {
				line = clip(resp, pdfClip)
			}
			text(10, "", pdfIndent, y, "- "+line)
			y += pdfLine
		}
		if more := st.Total() - pdfListed; more > 0 {
			text(10, "", pdfIndent, y, fmt.Sprintf("... i %d więcej", more))
		}
		y += 15
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "results.pdf")
	}
	return nil
}

// choiceTable draws the choice/count/percentage grid starting at y and
// returns where it ended.
func choiceTable(pdf *fpdf.Fpdf, tr func(string) string, st Stat, palette theme.Palette, y float64) float64 {
	widths := []float64{pdfTableWidth * 0.6, pdfTableWidth * 0.2, pdfTableWidth * 0.2}
	pr, pg, pb := theme.RGB(palette.Primary)
	tr0, tg0, tb0 := theme.RGB(palette.Text)

	pdf.SetXY(pdfMargin, y)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(pr, pg, pb)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(200, 200, 200)
	for i, h := range []string{"Odpowiedź", "Liczba", "%"} {
		pdf.CellFormat(widths[i], pdfRow, tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(tr0, tg0, tb0)
	for _, c := range st.Choices() {
		pdf.SetX(pdfMargin)
		cells := []string{
			c.Label,
			strconv.Itoa(c.Count),
			fmt.Sprintf("%.1f%%", Percentage(c.Count, st.Total())),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], pdfRow, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.GetY()
}

// clip keeps the first n characters.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
