package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"haulbook/internal/core"
	"haulbook/internal/ledger"
)

// WriteStatementPDF renders a party statement as a landscape A4 table
// with a running balance column.
func WriteStatementPDF(w io.Writer, party core.Party, st ledger.Statement) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Diesel Statement", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(120, 10, "Diesel Party Statement")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(120, 8, fmt.Sprintf("Party: %s", party.Name))
	pdf.Ln(-1)
	pdf.Cell(120, 8, fmt.Sprintf("Net owed to us: %s", core.Volume{Milli: st.NetMilli}.Liters()))
	pdf.Ln(-1)
	if st.CashPaise != 0 {
		pdf.Cell(120, 8, fmt.Sprintf("Cash settled: %s", pdfMoney(st.CashPaise)))
		pdf.Ln(-1)
	}
	if st.Skipped > 0 {
		pdf.Cell(120, 8, fmt.Sprintf("Skipped incomplete entries: %d", st.Skipped))
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	headers := []string{"Date", "Kind", "Debit", "Credit", "Cash", "Balance", "Note"}
	widths := []float64{28, 32, 35, 35, 35, 40, 70}

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, line := range st.Lines {
		var debit, credit string
		if line.Side == ledger.SideDebit {
			debit = core.Volume{Milli: line.LitersMilli}.Liters()
		} else {
			credit = core.Volume{Milli: line.LitersMilli}.Liters()
		}
		var cash string
		if line.CashPaise != 0 {
			cash = pdfMoney(line.CashPaise)
		}

		cells := []string{
			line.Entry.Date.Format("2006-01-02"),
			string(line.Entry.Kind),
			debit,
			credit,
			cash,
			core.Volume{Milli: line.BalanceMilli}.Liters(),
			line.Entry.Note,
		}
		for i, c := range cells {
			align := "R"
			if i == 0 || i == 1 || i == 6 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)

		if pdf.GetY() > 180 {
			pdf.AddPage()
			pdf.SetFont("Arial", "B", 11)
			for i, h := range headers {
				pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
			}
			pdf.Ln(-1)
			pdf.SetFont("Arial", "", 10)
		}
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(widths[0]+widths[1], 8, "Total", "1", 0, "L", true, 0, "")
	pdf.CellFormat(widths[2], 8, core.Volume{Milli: st.DebitMilli}.Liters(), "1", 0, "R", true, 0, "")
	pdf.CellFormat(widths[3], 8, core.Volume{Milli: st.CreditMilli}.Liters(), "1", 0, "R", true, 0, "")
	pdf.CellFormat(widths[4], 8, pdfMoney(st.CashPaise), "1", 0, "R", true, 0, "")
	pdf.CellFormat(widths[5], 8, core.Volume{Milli: st.NetMilli}.Liters(), "1", 0, "R", true, 0, "")
	pdf.CellFormat(widths[6], 8, "", "1", 0, "L", true, 0, "")
	pdf.Ln(-1)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render statement pdf: %w", err)
	}
	return nil
}

// pdfMoney formats paise without the rupee sign; the core PDF fonts
// are cp1252 and cannot render it.
func pdfMoney(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	return fmt.Sprintf("%sRs %d.%02d", sign, paise/100, paise%100)
}
