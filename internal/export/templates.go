package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"money": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"formatDate": func(t time.Time, layout string) string {
		return t.Format(layout)
	},
}).Parse(reportTemplateHTML))

// RenderReportHTML renders the payments report template with provided data.
func RenderReportHTML(data ReportData) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const reportTemplateHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.5; margin: 2rem; color: #222; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; font-size: 1.4rem; }
    .meta { color: #666; font-size: 0.85em; margin-bottom: 1.5rem; }
    table { border-collapse: collapse; width: 100%; font-size: 0.85em; }
    th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: left; }
    th { background: #f0f0f0; }
    td.num { text-align: right; }
    .summary { margin-top: 1.5rem; }
    .summary td { border: none; padding: 2px 8px; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="meta">Generated {{formatDate .GeneratedAt "Jan 2, 2006 15:04 MST"}} by {{.GeneratedBy}}</div>
  <table>
    <thead>
      <tr>
        <th>ID</th><th>Order</th><th>Customer</th><th>Seller</th>
        <th>Method</th><th>Status</th><th>Amount</th><th>Fee</th><th>Refunded</th><th>Date</th>
      </tr>
    </thead>
    <tbody>
      {{range .Rows}}
      <tr>
        <td>{{.ID}}</td>
        <td>{{.OrderRef}}</td>
        <td>{{.CustomerName}}</td>
        <td>{{.SellerName}}</td>
        <td>{{.Method}}</td>
        <td>{{.Status}}</td>
        <td class="num">{{money .Amount}}</td>
        <td class="num">{{money .Fee}}</td>
        <td class="num">{{money .RefundAmount}}</td>
        <td>{{formatDate .CreatedAt "2006-01-02"}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>
  <table class="summary">
    <tr><td>Payments</td><td class="num">{{len .Rows}}</td></tr>
    <tr><td>Total amount</td><td class="num">{{money .TotalAmount}}</td></tr>
    <tr><td>Total fees</td><td class="num">{{money .TotalFees}}</td></tr>
    <tr><td>Total refunded</td><td class="num">{{money .TotalRefunded}}</td></tr>
    {{range $status, $count := .CountByStatus}}
    <tr><td>{{$status}}</td><td class="num">{{$count}}</td></tr>
    {{end}}
  </table>
</body>
</html>`
