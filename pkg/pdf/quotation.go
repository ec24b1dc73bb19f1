package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/kmarube/eventquote-api/internal/domain/entity"
)

// Generator renders quotations as printable A4 PDF documents.
type Generator struct {
	companyName string
}

// NewGenerator creates a quotation PDF generator with the letterhead
// company name.
func NewGenerator(companyName string) *Generator {
	return &Generator{companyName: companyName}
}

// Generate renders one quotation.
func (g *Generator) Generate(q *entity.Quotation) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Quotation "+q.QuotationNumber, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, g.companyName)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "Quotation "+q.QuotationNumber)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Date issued: "+q.DateIssued)
	pdf.Ln(5)
	pdf.Cell(0, 6, "Valid until: "+q.ValidUntil.Format("January 2, 2006"))
	pdf.Ln(5)
	pdf.Cell(0, 6, "Status: "+q.Status.String())
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Prepared for")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{q.ClientName, q.CompanyName, q.Address, q.ContactNumber} {
		if line == "" {
			continue
		}
		pdf.Cell(0, 5, line)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(85, 7, "Requirement")
	pdf.Cell(20, 7, "Qty")
	pdf.Cell(25, 7, "Unit Price")
	pdf.Cell(35, 7, "Remark")
	pdf.Cell(25, 7, "Amount")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range q.Items {
		pdf.Cell(85, 6, trim(it.Requirement, 48))
		pdf.Cell(20, 6, fmt.Sprintf("%g", it.Qty))
		pdf.Cell(25, 6, fmt.Sprintf("%.2f", it.UnitPrice))
		pdf.Cell(35, 6, trim(it.Remark, 20))
		pdf.Cell(25, 6, fmt.Sprintf("%.2f", it.Amount))
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(140, 6, "")
	pdf.Cell(25, 6, "Subtotal")
	pdf.Cell(25, 6, fmt.Sprintf("%.2f", q.Subtotal))
	pdf.Ln(6)
	pdf.Cell(140, 6, "")
	pdf.Cell(25, 6, fmt.Sprintf("Tax (%.0f%%)", q.TaxRate))
	pdf.Cell(25, 6, fmt.Sprintf("%.2f", q.TaxAmount))
	pdf.Ln(6)
	pdf.Cell(140, 6, "")
	pdf.Cell(25, 6, "Discount")
	pdf.Cell(25, 6, fmt.Sprintf("-%.2f", q.Discount))
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(140, 7, "")
	pdf.Cell(25, 7, "Grand Total")
	pdf.Cell(25, 7, fmt.Sprintf("%.2f", q.GrandTotal))
	pdf.Ln(10)

	if q.Terms != "" {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 6, "Terms & Conditions")
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, q.Terms, "", "L", false)
		pdf.Ln(2)
	}
	if q.Notes != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, q.Notes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "..."
}
