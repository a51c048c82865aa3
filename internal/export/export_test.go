package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"ptaregistry.org/internal/registry"
)

func TestCSVRoundTrip(t *testing.T) {
	permits := []registry.Permit{
		{
			PermitNumber: "PTA-2026-0001",
			OperatorName: `O'Brien, "Fast" Transit`,
			CompanyID:    "OB-01",
			VehicleReg:   "ABC 123 GP",
			Route:        "CBD - Soweto",
			IssueDate:    "2026-01-10",
			ExpiryDate:   "2027-01-10",
			Status:       registry.StatusActive,
		},
	}

	data, err := CSV(permits)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(records))
	}
	for i, col := range Header {
		if records[0][i] != col {
			t.Fatalf("header column %d: expected %q, got %q", i, col, records[0][i])
		}
	}
	row := records[1]
	if row[1] != `O'Brien, "Fast" Transit` {
		t.Fatalf("quoted field did not round-trip: %q", row[1])
	}
	if row[0] != "PTA-2026-0001" || row[7] != "ACTIVE" {
		t.Fatalf("unexpected row: %v", row)
	}
}

func TestCSVEmpty(t *testing.T) {
	data, err := CSV(nil)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("empty export must still carry the header, got %d lines", len(lines))
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 4, 1, 23, 59, 0, 0, time.UTC)
	if got := Filename(FormatCSV, now); got != "PTA_Report_2026-04-01.csv" {
		t.Fatalf("unexpected csv filename: %s", got)
	}
	if got := Filename(FormatPDF, now); got != "PTA_Report_2026-04-01.txt" {
		t.Fatalf("unexpected pdf filename: %s", got)
	}
}

func TestTextReport(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	permits := []registry.Permit{
		{PermitNumber: "PTA-2026-0001", OperatorName: "An Operator With A Rather Long Trading Name", VehicleReg: "ABC 123 GP", Status: registry.StatusActive, ExpiryDate: "2027-01-10"},
	}
	out := string(TextReport(permits, now))
	if !strings.Contains(out, "PERMIT REGISTRY REPORT") {
		t.Fatal("missing report title")
	}
	if !strings.Contains(out, "Total records: 1") {
		t.Fatal("missing record count")
	}
	if !strings.Contains(out, "PTA-2026-0001") {
		t.Fatal("missing permit row")
	}
	if strings.Contains(out, "Rather Long Trading Name") {
		t.Fatal("long operator name should be truncated")
	}
}

func TestNotification(t *testing.T) {
	if got := Notification(FormatCSV, 7); got != "Successfully generated CSV report for 7 records." {
		t.Fatalf("unexpected notification: %s", got)
	}
	if got := Notification(FormatPDF, 0); got != "Successfully generated PDF report for 0 records." {
		t.Fatalf("unexpected notification: %s", got)
	}
}
