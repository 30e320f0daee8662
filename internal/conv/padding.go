package conv

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedPadding is returned by ParsePadding for unknown mode names.
var ErrUnsupportedPadding = errors.New("conv: unsupported padding mode")

// Padding selects the boundary convention of the reconstruction and, with it,
// the size of the activation map.
type Padding int

const (
	// Full zero-pads the activation map by atom size minus one on every side
	// before correlating, so the map only holds placements where the atom
	// lies entirely inside the signal: S - A + 1 positions per dimension.
	Full Padding = iota

	// Valid correlates the activation map without padding. The map then holds
	// every placement that overlaps the signal by at least one element:
	// S + A - 1 positions per dimension.
	Valid
)

// String returns the mode name accepted by ParsePadding.
func (p Padding) String() string {
	switch p {
	case Full:
		return "full"
	case Valid:
		return "valid"
	default:
		return fmt.Sprintf("Padding(%d)", int(p))
	}
}

// ParsePadding parses "full" or "valid" (case-insensitive).
func ParsePadding(s string) (Padding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full":
		return Full, nil
	case "valid":
		return Valid, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedPadding, s)
	}
}
