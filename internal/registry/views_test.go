package registry

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestComputeStats(t *testing.T) {
	permits := []Permit{
		{Status: StatusActive}, {Status: StatusActive},
		{Status: StatusExpired}, {Status: StatusRevoked},
	}
	st := ComputeStats(permits)
	if st.Total != 4 || st.Active != 2 || st.Expired != 1 || st.Revoked != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if st.Active+st.Expired+st.Revoked != st.Total {
		t.Fatalf("counts do not sum to total: %+v", st)
	}
}

func TestNearingExpiry(t *testing.T) {
	now := day("2026-03-01")
	permits := []Permit{
		{ID: "past", Status: StatusActive, ExpiryDate: "2026-02-28"},
		{ID: "today", Status: StatusActive, ExpiryDate: "2026-03-01"},
		{ID: "soon", Status: StatusActive, ExpiryDate: "2026-03-10"},
		{ID: "edge", Status: StatusActive, ExpiryDate: "2026-03-31"},
		{ID: "beyond", Status: StatusActive, ExpiryDate: "2026-04-01"},
		{ID: "revoked", Status: StatusRevoked, ExpiryDate: "2026-03-10"},
		{ID: "garbage", Status: StatusActive, ExpiryDate: "next week"},
	}

	out := NearingExpiry(permits, now)
	if len(out) != 3 {
		t.Fatalf("expected 3 entries, got %d: %v", len(out), out)
	}
	if out[0].ID != "today" || out[1].ID != "soon" || out[2].ID != "edge" {
		t.Fatalf("not sorted most-urgent first: %v", out)
	}
	if out[0].DaysLeft != 0 || out[1].DaysLeft != 9 || out[2].DaysLeft != 30 {
		t.Fatalf("unexpected days left: %d %d %d", out[0].DaysLeft, out[1].DaysLeft, out[2].DaysLeft)
	}
}

func TestRecentCapsAndSorts(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var permits []Permit
	for i := 0; i < 7; i++ {
		permits = append(permits, Permit{
			ID:        string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	out := Recent(permits, RecentFeedSize)
	if len(out) != RecentFeedSize {
		t.Fatalf("expected %d entries, got %d", RecentFeedSize, len(out))
	}
	if out[0].ID != "g" || out[4].ID != "c" {
		t.Fatalf("not newest-first: %v", out)
	}
	// input must be untouched
	if permits[0].ID != "a" {
		t.Fatalf("input mutated: %v", permits[0])
	}
}

func TestSearchPrecedence(t *testing.T) {
	permits := []Permit{
		{ID: "1", PermitNumber: "PTA-2026-0001", VehicleReg: "ABC 123 GP", OperatorName: "City Link"},
		{ID: "2", PermitNumber: "PTA-2026-0002", VehicleReg: "PTA-2026-0001", OperatorName: "Rapid Transit"},
		{ID: "3", PermitNumber: "PTA-2026-0003", VehicleReg: "XYZ 789 GP", OperatorName: "ABC 123 GP Shuttles"},
	}

	// Exact permit number beats a vehicle reg carrying the same text.
	if p, ok := Search(permits, "pta-2026-0001"); !ok || p.ID != "1" {
		t.Fatalf("permit number match expected record 1, got %+v ok=%v", p, ok)
	}
	// Exact vehicle reg beats an operator-name substring.
	if p, ok := Search(permits, "ABC 123 GP"); !ok || p.ID != "1" {
		t.Fatalf("vehicle reg match expected record 1, got %+v ok=%v", p, ok)
	}
	// Operator substring is the fallback.
	if p, ok := Search(permits, "rapid"); !ok || p.ID != "2" {
		t.Fatalf("operator match expected record 2, got %+v ok=%v", p, ok)
	}
	if _, ok := Search(permits, "nothing here"); ok {
		t.Fatal("expected no match")
	}
	if _, ok := Search(permits, "   "); ok {
		t.Fatal("blank query must not match")
	}
}

func TestFilterReport(t *testing.T) {
	permits := []Permit{
		{ID: "1", Status: StatusActive, IssueDate: "2026-01-10", Route: "CBD - Soweto"},
		{ID: "2", Status: StatusExpired, IssueDate: "2026-02-01", Route: "CBD - Sandton"},
		{ID: "3", Status: StatusActive, IssueDate: "2026-02-15", Route: "Airport Shuttle"},
		{ID: "4", Status: StatusActive, IssueDate: "bad-date", Route: "CBD - Soweto"},
	}

	cases := []struct {
		name   string
		filter ReportFilter
		want   []string
	}{
		{"no filter", ReportFilter{}, []string{"1", "2", "3", "4"}},
		{"status ALL", ReportFilter{Status: "ALL"}, []string{"1", "2", "3", "4"}},
		{"status active", ReportFilter{Status: "ACTIVE"}, []string{"1", "3", "4"}},
		{"date range inclusive", ReportFilter{DateFrom: "2026-01-10", DateTo: "2026-02-01"}, []string{"1", "2"}},
		{"date filter excludes unparseable", ReportFilter{DateFrom: "2026-01-01"}, []string{"1", "2", "3"}},
		{"route substring", ReportFilter{Route: "cbd"}, []string{"1", "2", "4"}},
		{"conjunction", ReportFilter{Status: "ACTIVE", Route: "soweto", DateFrom: "2026-01-01"}, []string{"1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := FilterReport(permits, tc.filter)
			if len(out) != len(tc.want) {
				t.Fatalf("expected %d results, got %d: %v", len(tc.want), len(out), out)
			}
			for i, id := range tc.want {
				if out[i].ID != id {
					t.Fatalf("position %d: expected %s, got %s", i, id, out[i].ID)
				}
			}
		})
	}
}

func TestHasActiveDuplicate(t *testing.T) {
	permits := []Permit{
		{Status: StatusActive, VehicleReg: "ABC 123 GP"},
		{Status: StatusExpired, VehicleReg: "OLD 999 GP"},
	}
	if !HasActiveDuplicate(permits, "abc 123 gp") {
		t.Fatal("case-insensitive duplicate not detected")
	}
	if HasActiveDuplicate(permits, "OLD 999 GP") {
		t.Fatal("expired permit must not count as duplicate")
	}
	if HasActiveDuplicate(permits, "NEW 111 GP") {
		t.Fatal("unknown reg flagged as duplicate")
	}
}

func TestNextPermitNumber(t *testing.T) {
	if got := NextPermitNumber(2026, 0); got != "PTA-2026-0001" {
		t.Fatalf("unexpected number: %s", got)
	}
	if got := NextPermitNumber(2026, 41); got != "PTA-2026-0042" {
		t.Fatalf("unexpected number: %s", got)
	}
}

func TestChartSeries(t *testing.T) {
	series := ChartSeries(Stats{Active: 3, Expired: 2, Revoked: 1})
	if len(series) != 3 {
		t.Fatalf("expected 3 points, got %d", len(series))
	}
	if series[0].Name != "Active" || series[0].Value != 3 {
		t.Fatalf("unexpected first point: %+v", series[0])
	}
}
