// Package export renders admin reports to PDF via headless Chrome.
package export

import (
	"errors"
	"time"
)

// Result contains the export output.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

// ReportRow is one payment line in the report.
type ReportRow struct {
	ID           string
	OrderRef     string
	CustomerName string
	SellerName   string
	Method       string
	Status       string
	Amount       float64
	Fee          float64
	RefundAmount float64
	CreatedAt    time.Time
}

// ReportData is everything the payments report template needs.
type ReportData struct {
	Title       string
	GeneratedAt time.Time
	GeneratedBy string
	Rows        []ReportRow

	TotalAmount   float64
	TotalFees     float64
	TotalRefunded float64
	CountByStatus map[string]int
}

// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
var ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
