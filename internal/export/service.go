package export

import (
	"fmt"
	"time"
)

// Service renders admin reports.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// PaymentsReport builds the payments report PDF from the given rows.
// Totals and per-status counts are computed here so callers only ship rows.
func (s *Service) PaymentsReport(rows []ReportRow, generatedBy string) (*Result, error) {
	data := ReportData{
		Title:         "Payments Report",
		GeneratedAt:   time.Now(),
		GeneratedBy:   generatedBy,
		Rows:          rows,
		CountByStatus: map[string]int{},
	}
	for _, row := range rows {
		data.TotalAmount += row.Amount
		data.TotalFees += row.Fee
		data.TotalRefunded += row.RefundAmount
		data.CountByStatus[row.Status]++
	}

	html, err := RenderReportHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render report template: %w", err)
	}
	return exportPDF(html, data.Title)
}
