// Package export builds downloadable report artifacts from a filtered
// permit set. The CSV path is the real data export; the "PDF" mode produces
// a fixed-layout text report, matching the presentational contract of the
// dashboard's second export button.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"ptaregistry.org/internal/registry"
)

// Header is the canonical CSV column order.
var Header = []string{
	"Permit Number", "Operator Name", "Company ID", "Vehicle Reg",
	"Route", "Issue Date", "Expiry Date", "Status",
}

// FormatCSV and FormatPDF name the two export modes.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// CSV renders the permits as an RFC 4180 file with the canonical header.
// Fields containing quotes or commas come out double-quote escaped, so a
// standard CSV reader round-trips them.
func CSV(permits []registry.Permit) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for _, p := range permits {
		row := []string{
			p.PermitNumber, p.OperatorName, p.CompanyID, p.VehicleReg,
			p.Route, p.IssueDate, p.ExpiryDate, string(p.Status),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename builds the artifact name for the given day.
func Filename(format string, now time.Time) string {
	ext := "csv"
	if format == FormatPDF {
		ext = "txt"
	}
	return fmt.Sprintf("PTA_Report_%s.%s", now.UTC().Format(registry.DateLayout), ext)
}

// TextReport renders the fixed-layout report used by the PDF export mode.
func TextReport(permits []registry.Permit, now time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "PUBLIC TRANSPORT AUTHORITY - PERMIT REGISTRY REPORT\n")
	fmt.Fprintf(&b, "Generated: %s\n", now.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", 72))
	for _, p := range permits {
		fmt.Fprintf(&b, "%-14s %-24s %-12s %-10s %s\n",
			p.PermitNumber, truncate(p.OperatorName, 24), p.VehicleReg, p.Status, p.ExpiryDate)
	}
	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", 72))
	fmt.Fprintf(&b, "Total records: %d\n", len(permits))
	return []byte(b.String())
}

// Notification is the transient success message shown after an export.
func Notification(format string, count int) string {
	label := "CSV"
	if format == FormatPDF {
		label = "PDF"
	}
	return fmt.Sprintf("Successfully generated %s report for %d records.", label, count)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
