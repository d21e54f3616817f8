package regions

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ReservedGroupName cannot be used as a group name because a mapping keyed
// by it would read back as a region.
const ReservedGroupName = KeyRegion

// RootLabel is the display label of the root group.
const RootLabel = "/"

// FormatBound formats a region bound with six decimals and trims trailing
// zeros and a trailing decimal point: 1.5 -> "1.5", 2 -> "2".
func FormatBound(v float64) string {
	s := strconv.FormatFloat(v, 'f', 6, 64)
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// RegionLabel returns the display label of a region: the first non-empty
// line of its text, otherwise "dim: lower-upper".
func RegionLabel(r *Region) string {
	if line, ok := firstLine(r.TextValue()); ok {
		return line
	}
	label := FormatBound(r.Bounds[0]) + "-" + FormatBound(r.Bounds[1])
	if dim := r.DimValue(); dim != "" {
		label = dim + ": " + label
	}
	return label
}

func firstLine(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, true
		}
	}
	return "", false
}

// replaceFirstLine swaps the first line of text for value and keeps the rest.
func replaceFirstLine(text, value string) string {
	lines := strings.Split(text, "\n")
	lines[0] = value
	return strings.Join(lines, "\n")
}

// NormalizeLabel keeps the first line of value, trims surrounding whitespace
// and applies NFC so that visually identical names compare equal.
func NormalizeLabel(value string) string {
	value, _, _ = strings.Cut(value, "\n")
	return norm.NFC.String(strings.TrimSpace(value))
}

// ValidateGroupName checks a new name for a named group.
func ValidateGroupName(name string) error {
	switch name {
	case "":
		return ErrInvalidName
	case ReservedGroupName:
		return fmt.Errorf("%q: %w", name, ErrReservedName)
	}
	return nil
}

// UniqueName returns base if it is free, otherwise the first free base_N.
func UniqueName(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if !taken(candidate) {
			return candidate
		}
	}
}
