package report

import (
	"fmt"
	"io"
	"strconv"

	"Erosion/internal/calc/schema"

	"github.com/phpdave11/gofpdf"
)

// DefaultTitle heads reports whose request carries no description.
const DefaultTitle = "Sand Erosion Assessment"

var columns = []struct {
	title string
	width float64
}{
	{"Component", 32},
	{"Type", 30},
	{"Status", 16},
	{"Annual rate", 28},
	{"Risk", 22},
	{"Time to 1 mm", 30},
	{"Location", 32},
}

func num(q *schema.Quantity) string {
	if q == nil {
		return "-"
	}
	return strconv.FormatFloat(q.Value, 'g', 4, 64) + " " + q.Unit
}

// Render writes a PDF summary of a calculation.
func Render(w io.Writer, req schema.CalculationRequest, resp schema.Response) error {
	out := resp.CalculationResponse
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(DefaultTitle, true)
	pdf.AddPage()

	title := req.Metadata.Description
	if title == "" {
		title = DefaultTitle
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	line := func(format string, args ...any) {
		pdf.Cell(0, 5, tr(fmt.Sprintf(format, args...)))
		pdf.Ln(5)
	}
	line("Request: %s", out.Metadata.RequestID)
	line("Calculated: %s", out.Metadata.CalculationTimestamp)
	line("Method: DNV RP O501 (%s), engine %s", out.Metadata.DnvRpVersion, out.Metadata.CalculationEngineVersion)
	status := "completed"
	if !out.Status.Success {
		status = "failed"
	}
	line("Status: %s", status)
	pdf.Ln(4)

	section := func(name string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, tr(name))
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
	}

	if s := out.InputSummary; s != nil {
		section("Operating conditions")
		line("Mixture velocity: %s", num(&s.MixtureVelocity))
		line("Sand concentration: %s", num(&s.SandConcentration))
		line("Erosion class: %d (%s)", s.ErosionClass, s.ErosionClassDescription)
		if f := out.FluidCalculations; f != nil {
			line("Mixture density: %s", num(&f.MixtureProperties.Density))
			line("Reynolds number: %s", num(&f.MixtureProperties.ReynoldsNumber))
			line("Sand mass flow: %s", num(&f.SandMassFlow))
		}
		pdf.Ln(4)
	}

	if len(out.ComponentResults) > 0 {
		section("Component results")
		pdf.SetFont("Helvetica", "B", 9)
		for _, c := range columns {
			pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
		for _, cr := range out.ComponentResults {
			cells := []string{cr.ComponentID, cr.ComponentType, cr.Status, "-", "-", "-", "-"}
			if er := cr.ErosionResults; er != nil {
				cells[3] = num(&er.AnnualErosionRate)
				cells[6] = er.MaximumErosionLocation
			}
			if ra := cr.RiskAssessment; ra != nil {
				cells[4] = ra.RiskLevel
				cells[5] = num(ra.TimeTo1mmErosion)
			}
			for i, c := range columns {
				pdf.CellFormat(c.width, 6, tr(cells[i]), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	if s := out.SystemSummary; s != nil {
		section("System summary")
		if mc := s.MostCriticalComponent; mc != nil {
			line("Most critical: %s (%s), %s", mc.ID, mc.Type, num(&mc.MaxErosionRate))
		}
		line("Total sand: %s", num(&s.TotalSandConsumption))
		line("System risk: %s", s.OverallRiskAssessment.SystemRiskLevel)
		for _, rec := range s.OverallRiskAssessment.Recommendations {
			line("- %s", rec)
		}
		if len(s.NextInspectionRecommendations) > 0 {
			pdf.Ln(2)
			line("Next inspection:")
			for _, f := range s.NextInspectionRecommendations {
				text, _ := s.NextInspectionRecommendations.Text(f.Key)
				line("  %s: %s", f.Key, text)
			}
		}
		pdf.Ln(4)
	}

	if len(out.Status.Warnings) > 0 {
		section("Warnings")
		for _, msg := range out.Status.Warnings {
			pdf.MultiCell(0, 5, tr("- "+msg), "", "L", false)
		}
	}
	if len(out.Status.Errors) > 0 {
		section("Errors")
		for _, msg := range out.Status.Errors {
			pdf.MultiCell(0, 5, tr("- "+msg), "", "L", false)
		}
	}
	return pdf.Output(w)
}
