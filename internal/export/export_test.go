package export

import (
	"strings"
	"testing"
	"time"
)

func TestRenderReportHTML(t *testing.T) {
	data := ReportData{
		Title:       "Payments Report",
		GeneratedAt: time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC),
		GeneratedBy: "Ana Admin",
		Rows: []ReportRow{
			{
				ID:           "pay_1",
				OrderRef:     "ORD-100",
				CustomerName: "Carla <script>",
				SellerName:   "Fresh Farms",
				Method:       "card",
				Status:       "completed",
				Amount:       120.5,
				Fee:          3.6,
				CreatedAt:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			},
			{
				ID:           "pay_2",
				OrderRef:     "ORD-101",
				CustomerName: "Dan",
				SellerName:   "Harbor Fish",
				Method:       "wallet",
				Status:       "refunded",
				Amount:       40,
				RefundAmount: 40,
				CreatedAt:    time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
			},
		},
		TotalAmount:   160.5,
		TotalFees:     3.6,
		TotalRefunded: 40,
		CountByStatus: map[string]int{"completed": 1, "refunded": 1},
	}

	html, err := RenderReportHTML(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"Payments Report",
		"Ana Admin",
		"ORD-100",
		"Fresh Farms",
		"120.50",
		"160.50",
		"2025-03-01",
		"refunded",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered report missing %q", want)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Error("customer name was not HTML-escaped")
	}
}

func TestRenderReportHTMLEmpty(t *testing.T) {
	html, err := RenderReportHTML(ReportData{Title: "Payments Report", GeneratedBy: "Ana"})
	if err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if !strings.Contains(html, "Payments Report") {
		t.Error("empty report missing title")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Payments Report", "Payments-Report"},
		{"weird/:*chars", "weirdchars"},
		{"", "report"},
		{strings.Repeat("a", 80), strings.Repeat("a", 50)},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.input); got != tt.expected {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"abc-_.~", "abc-_.~"},
		{"a b", "a%20b"},
		{"<p>", "%3Cp%3E"},
	}
	for _, tt := range tests {
		if got := percentEncodeForDataURL(tt.input); got != tt.expected {
			t.Errorf("percentEncodeForDataURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
