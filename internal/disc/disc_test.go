package disc

import (
	"testing"

	"ptaregistry.org/internal/registry"
)

func TestFromPermit(t *testing.T) {
	p := registry.Permit{
		ID:           "p1",
		PermitNumber: "PTA-2026-0001",
		VehicleReg:   "ABC 123 GP",
		OperatorName: "City Link",
		ExpiryDate:   "2027-01-10",
	}
	d, err := FromPermit(p)
	if err != nil {
		t.Fatalf("FromPermit: %v", err)
	}
	if d.PermitID != "p1" || d.VehicleReg != "ABC 123 GP" || d.ExpiryDate != "2027-01-10" {
		t.Fatalf("disc fields wrong: %+v", d)
	}
	if d.Barcode.Value != p.PermitNumber || d.Barcode.Label != p.PermitNumber {
		t.Fatalf("barcode value/label wrong: %+v", d.Barcode)
	}
	if len(d.Barcode.Modules) == 0 {
		t.Fatal("barcode has no modules")
	}
}

func TestCode39Shape(t *testing.T) {
	modules, err := code39("A")
	if err != nil {
		t.Fatal(err)
	}
	// *A*: three 9-module symbols plus two narrow separators.
	if len(modules) != 3*9+2 {
		t.Fatalf("unexpected module count: %d", len(modules))
	}
	for i, m := range modules {
		if m != 1 && m != 2 {
			t.Fatalf("module %d has width %d", i, m)
		}
	}
	// Every Code 39 symbol has exactly three wide modules.
	wide := 0
	for _, m := range modules {
		if m == 2 {
			wide++
		}
	}
	if wide != 9 {
		t.Fatalf("expected 9 wide modules for three symbols, got %d", wide)
	}
}

func TestCode39LowercaseAndUnknown(t *testing.T) {
	lower, err := code39("pta-1")
	if err != nil {
		t.Fatalf("lowercase must be uppercased before encoding: %v", err)
	}
	upper, err := code39("PTA-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(lower) != len(upper) {
		t.Fatal("case must not affect the encoding")
	}

	if _, err := code39("PTA_1"); err == nil {
		t.Fatal("underscore is not encodable in Code 39")
	}
}
