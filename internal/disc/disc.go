// Package disc derives the printable security disc from a permit. The disc
// is a fixed layout: vehicle registration, operator, expiry date, and one
// linear barcode whose encoded value is the permit number with a
// human-readable label underneath. Rendering the bars to an image is the
// printer frontend's job; this package only computes the module sequence.
package disc

import (
	"fmt"
	"strings"

	"ptaregistry.org/internal/registry"
)

// Disc is the printable credential record, derived 1:1 from a permit.
type Disc struct {
	PermitID     string  `json:"permitId"`
	VehicleReg   string  `json:"vehicleReg"`
	OperatorName string  `json:"operatorName"`
	ExpiryDate   string  `json:"expiryDate"`
	Barcode      Barcode `json:"barcode"`
}

// Barcode is a Code 39 symbol. Modules alternate bar/space starting with a
// bar; each entry is the module width (1 narrow, 2 wide).
type Barcode struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Modules []int  `json:"modules"`
}

// FromPermit builds the disc for one permit.
func FromPermit(p registry.Permit) (Disc, error) {
	code, err := code39(p.PermitNumber)
	if err != nil {
		return Disc{}, err
	}
	return Disc{
		PermitID:     p.ID,
		VehicleReg:   p.VehicleReg,
		OperatorName: p.OperatorName,
		ExpiryDate:   p.ExpiryDate,
		Barcode: Barcode{
			Value:   p.PermitNumber,
			Label:   p.PermitNumber,
			Modules: code,
		},
	}, nil
}

// code39 patterns: 9 modules per symbol, "n" narrow / "w" wide, alternating
// bar and space starting with a bar.
var code39Patterns = map[rune]string{
	'0': "nnnwwnwnn", '1': "wnnwnnnnw", '2': "nnwwnnnnw", '3': "wnwwnnnnn",
	'4': "nnnwwnnnw", '5': "wnnwwnnnn", '6': "nnwwwnnnn", '7': "nnnwnnwnw",
	'8': "wnnwnnwnn", '9': "nnwwnnwnn",
	'A': "wnnnnwnnw", 'B': "nnwnnwnnw", 'C': "wnwnnwnnn", 'D': "nnnnwwnnw",
	'E': "wnnnwwnnn", 'F': "nnwnwwnnn", 'G': "nnnnnwwnw", 'H': "wnnnnwwnn",
	'I': "nnwnnwwnn", 'J': "nnnnwwwnn", 'K': "wnnnnnnww", 'L': "nnwnnnnww",
	'M': "wnwnnnnwn", 'N': "nnnnwnnww", 'O': "wnnnwnnwn", 'P': "nnwnwnnwn",
	'Q': "nnnnnnwww", 'R': "wnnnnnwwn", 'S': "nnwnnnwwn", 'T': "nnnnwnwwn",
	'U': "wwnnnnnnw", 'V': "nwwnnnnnw", 'W': "wwwnnnnnn", 'X': "nwnnwnnnw",
	'Y': "wwnnwnnnn", 'Z': "nwwnwnnnn",
	'-': "nwnnnnwnw", '.': "wwnnnnwnn", ' ': "nwwnnnwnn", '*': "nwnnwnwnn",
}

// code39 encodes value (implicitly wrapped in start/stop asterisks) into a
// width sequence. Symbols are separated by one narrow space.
func code39(value string) ([]int, error) {
	full := "*" + strings.ToUpper(value) + "*"
	var modules []int
	for i, r := range full {
		pattern, ok := code39Patterns[r]
		if !ok {
			return nil, fmt.Errorf("character %q not encodable in Code 39", r)
		}
		if i > 0 {
			modules = append(modules, 1) // inter-symbol narrow space
		}
		for _, m := range pattern {
			if m == 'w' {
				modules = append(modules, 2)
			} else {
				modules = append(modules, 1)
			}
		}
	}
	return modules, nil
}
