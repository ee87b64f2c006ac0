package role

import "strings"

const (
	Donor        = "donor"
	Manufacturer = "manufacturer"
	Admin        = "admin"
)

// Normalize maps a claimed role onto the known vocabulary. Anything
// unrecognised is treated as a plain donor.
func Normalize(r string) string {
	switch strings.ToLower(strings.TrimSpace(r)) {
	case Manufacturer:
		return Manufacturer
	case Admin:
		return Admin
	default:
		return Donor
	}
}
