package registry

import (
	"math"
	"sort"
	"strings"
	"time"
)

// View projections: pure derivations over a permit snapshot plus a reference
// "now". None of these mutate their input.

// ExpiryWindow is the forward horizon used to flag permits needing renewal.
const ExpiryWindow = 30

// RecentFeedSize caps the recency feed.
const RecentFeedSize = 5

// ComputeStats counts permits by status in a single pass.
func ComputeStats(permits []Permit) Stats {
	st := Stats{Total: len(permits)}
	for _, p := range permits {
		switch p.Status {
		case StatusActive:
			st.Active++
		case StatusExpired:
			st.Expired++
		case StatusRevoked:
			st.Revoked++
		}
	}
	return st
}

// ExpiringPermit is a watchlist entry: the permit plus the whole days
// remaining until its expiry date.
type ExpiringPermit struct {
	Permit
	DaysLeft int `json:"daysLeft"`
}

// NearingExpiry returns the ACTIVE permits whose expiry date falls within
// [today, today+30d], most urgent first. Permits with unparseable expiry
// dates are skipped.
func NearingExpiry(permits []Permit, now time.Time) []ExpiringPermit {
	today := dateOnly(now)
	horizon := today.AddDate(0, 0, ExpiryWindow)

	var out []ExpiringPermit
	for _, p := range permits {
		if p.Status != StatusActive {
			continue
		}
		expiry, err := time.Parse(DateLayout, p.ExpiryDate)
		if err != nil {
			continue
		}
		if expiry.Before(today) || expiry.After(horizon) {
			continue
		}
		days := int(math.Ceil(expiry.Sub(today).Hours() / 24))
		out = append(out, ExpiringPermit{Permit: p, DaysLeft: days})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpiryDate < out[j].ExpiryDate
	})
	return out
}

// Recent returns the newest permits by creation timestamp, capped at n.
func Recent(permits []Permit, n int) []Permit {
	out := make([]Permit, len(permits))
	copy(out, permits)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Search resolves a verification query against the snapshot. Exact matches
// on permit number or vehicle registration take precedence over operator-name
// substring matches, so searching for an exact reference always finds that
// record even when another operator's name contains the query.
func Search(permits []Permit, query string) (Permit, bool) {
	term := strings.ToUpper(strings.TrimSpace(query))
	if term == "" {
		return Permit{}, false
	}
	for _, p := range permits {
		if strings.ToUpper(p.PermitNumber) == term {
			return p, true
		}
	}
	for _, p := range permits {
		if strings.ToUpper(p.VehicleReg) == term {
			return p, true
		}
	}
	for _, p := range permits {
		if strings.Contains(strings.ToUpper(p.OperatorName), term) {
			return p, true
		}
	}
	return Permit{}, false
}

// ReportFilter is a conjunction of independent predicates; zero values skip
// the corresponding predicate. Status "ALL" (or empty) matches every status.
type ReportFilter struct {
	Status   string `json:"status"`
	DateFrom string `json:"dateFrom"` // DateLayout, inclusive
	DateTo   string `json:"dateTo"`   // DateLayout, inclusive
	Route    string `json:"route"`    // case-insensitive substring
}

// FilterReport applies f to the snapshot. Result order follows the input
// order (the cache is creation-descending); no independent sort is applied.
func FilterReport(permits []Permit, f ReportFilter) []Permit {
	status := strings.ToUpper(strings.TrimSpace(f.Status))
	route := strings.ToLower(strings.TrimSpace(f.Route))

	var from, to time.Time
	var fromSet, toSet bool
	if t, err := time.Parse(DateLayout, f.DateFrom); err == nil {
		from, fromSet = t, true
	}
	if t, err := time.Parse(DateLayout, f.DateTo); err == nil {
		to, toSet = t, true
	}

	out := make([]Permit, 0, len(permits))
	for _, p := range permits {
		if status != "" && status != "ALL" && string(p.Status) != status {
			continue
		}
		if fromSet || toSet {
			issued, err := time.Parse(DateLayout, p.IssueDate)
			if err != nil {
				continue
			}
			if fromSet && issued.Before(from) {
				continue
			}
			if toSet && issued.After(to) {
				continue
			}
		}
		if route != "" && !strings.Contains(strings.ToLower(p.Route), route) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// HasActiveDuplicate reports whether any permit in the snapshot holds the
// same vehicle registration (case-insensitive) in ACTIVE status. Used by the
// registration path to keep at most one active permit per vehicle.
func HasActiveDuplicate(permits []Permit, vehicleReg string) bool {
	reg := strings.ToUpper(strings.TrimSpace(vehicleReg))
	for _, p := range permits {
		if p.Status == StatusActive && strings.ToUpper(p.VehicleReg) == reg {
			return true
		}
	}
	return false
}

// ChartPoint is one bar of the dashboard status chart.
type ChartPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ChartSeries derives the dashboard bar-chart series from stats.
func ChartSeries(st Stats) []ChartPoint {
	return []ChartPoint{
		{Name: "Active", Value: st.Active},
		{Name: "Expired", Value: st.Expired},
		{Name: "Revoked", Value: st.Revoked},
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
