package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                              "/",
		"/metrics":                      "/metrics",
		"/v1/permits":                   "/v1/permits",
		"/v1/permits/abc":               "/v1/permits/:id",
		"/v1/permits/abc/disc":          "/v1/permits/:id/disc",
		"/v1/permits/abc/extra":         "/v1/permits/abc/extra",
		"/v1/users/u-17":                "/v1/users/:id",
		"/v1/views/dashboard":           "/v1/views/dashboard",
		"/v1/reports/export?format=csv": "/v1/reports/export",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
