package regions

import (
	"fmt"
	"math"
	"strings"
)

// RegionEdit is a set of attribute changes applied to one or more regions.
// Nil fields are left untouched.
type RegionEdit struct {
	Lower     *float64
	Upper     *float64
	Movable   *bool
	Color     *string
	LineColor *string
	LineWidth *float64
	Text      *string
}

// IsZero reports whether the edit changes nothing.
func (e RegionEdit) IsZero() bool {
	return e == RegionEdit{}
}

// Validate checks the edit against every target without changing anything.
func (e RegionEdit) Validate(regions ...*Region) error {
	for _, v := range []*float64{e.Lower, e.Upper} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("%w: bound must be a finite number", ErrInvalidEdit)
		}
	}
	if e.LineWidth != nil && (math.IsNaN(*e.LineWidth) || *e.LineWidth < 0 || math.IsInf(*e.LineWidth, 0)) {
		return fmt.Errorf("%w: line width must be a non-negative number", ErrInvalidEdit)
	}
	for name, v := range map[string]*string{KeyColor: e.Color, KeyLineColor: e.LineColor} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidEdit, name)
		}
	}
	for _, r := range regions {
		lower, upper := r.Bounds[0], r.Bounds[1]
		if e.Lower != nil {
			lower = *e.Lower
		}
		if e.Upper != nil {
			upper = *e.Upper
		}
		if lower > upper {
			return fmt.Errorf("%w: lower bound %s exceeds upper bound %s for %q",
				ErrInvalidEdit, FormatBound(lower), FormatBound(upper), RegionLabel(r))
		}
	}
	return nil
}

// Apply validates the edit against all regions and then writes it into each
// of them. On error no region is changed.
func (e RegionEdit) Apply(regions ...*Region) error {
	if err := e.Validate(regions...); err != nil {
		return err
	}
	for _, r := range regions {
		if e.Lower != nil {
			r.Bounds[0] = *e.Lower
		}
		if e.Upper != nil {
			r.Bounds[1] = *e.Upper
		}
		if e.Movable != nil {
			r.Movable = ptr(*e.Movable)
		}
		if e.Color != nil {
			r.Color = ptr(strings.TrimSpace(*e.Color))
		}
		if e.LineColor != nil {
			r.LineColor = ptr(strings.TrimSpace(*e.LineColor))
		}
		if e.LineWidth != nil {
			r.LineWidth = ptr(*e.LineWidth)
		}
		if e.Text != nil {
			r.Text = ptr(*e.Text)
		}
	}
	return nil
}

// Common returns the values shared by all regions, leaving a field nil where
// the regions disagree. It is what a multi-region editor starts from.
func Common(regions ...*Region) RegionEdit {
	if len(regions) == 0 {
		return RegionEdit{}
	}
	first := regions[0]
	e := RegionEdit{
		Lower:     ptr(first.Bounds[0]),
		Upper:     ptr(first.Bounds[1]),
		Movable:   ptr(first.IsMovable()),
		Color:     first.Color,
		LineColor: first.LineColor,
		LineWidth: ptr(first.LineWidthValue()),
		Text:      first.Text,
	}
	for _, r := range regions[1:] {
		if e.Lower != nil && *e.Lower != r.Bounds[0] {
			e.Lower = nil
		}
		if e.Upper != nil && *e.Upper != r.Bounds[1] {
			e.Upper = nil
		}
		if e.Movable != nil && *e.Movable != r.IsMovable() {
			e.Movable = nil
		}
		if e.LineWidth != nil && *e.LineWidth != r.LineWidthValue() {
			e.LineWidth = nil
		}
		e.Color = sameString(e.Color, r.Color)
		e.LineColor = sameString(e.LineColor, r.LineColor)
		e.Text = sameString(e.Text, r.Text)
	}
	e.Color, e.LineColor, e.Text = clonePtr(e.Color), clonePtr(e.LineColor), clonePtr(e.Text)
	return e
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	return ptr(*p)
}

func sameString(a, b *string) *string {
	if a == nil || b == nil || *a != *b {
		return nil
	}
	return a
}

func ptr[T any](v T) *T {
	return &v
}
