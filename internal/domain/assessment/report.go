package assessment

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// RenderReport writes a one-page PDF summary of the assessment.
func RenderReport(w io.Writer, a *Assessment) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Performance Assessment")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", a.EmployeeID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s", a.Period))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Role: %s", a.Role))
	pdf.Ln(6)
	status := a.Status
	if a.FinalizedAt != nil {
		status = fmt.Sprintf("%s (%s)", a.Status, a.FinalizedAt.Format("2006-01-02"))
	}
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", status))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(20, 7, "Metric", "1", 0, "", false, 0, "")
	pdf.CellFormat(100, 7, "Name", "1", 0, "", false, 0, "")
	pdf.CellFormat(25, 7, "Weight", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, "Score", "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, score := range a.Scores {
		value := "-"
		if score.Scored() {
			value = fmt.Sprintf("%d", score.Score)
		}
		pdf.CellFormat(20, 6, score.MetricID, "1", 0, "", false, 0, "")
		pdf.CellFormat(100, 6, score.Name, "1", 0, "", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.0f", score.Weight), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, value, "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, "Pillars")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 10)
	for _, pillar := range a.PillarScores {
		value := "n/a"
		if pillar.Score != nil {
			value = fmt.Sprintf("%.2f", *pillar.Score)
		}
		pdf.Cell(0, 6, fmt.Sprintf("%s: %s", pillar.Title, value))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Final score: %.2f (%s)", a.FinalScore, a.Rating.Label))

	return pdf.Output(w)
}
