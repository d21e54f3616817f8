// Package overlay turns selected regions into markers for plots that share
// an x-axis dimension.
package overlay

import (
	"errors"
	"fmt"

	"github.com/mattsolo1/grove-axisregions/pkg/regions"
	"github.com/sirupsen/logrus"
)

// ErrImmovable is returned when a locked region is dragged.
var ErrImmovable = errors.New("region is locked")

// Marker is a region as drawn on one plot.
type Marker struct {
	Region    *regions.Region `json:"-"`
	Lower     float64         `json:"lower"`
	Upper     float64         `json:"upper"`
	Label     string          `json:"label"`
	Movable   bool            `json:"movable"`
	Color     string          `json:"color,omitempty"`
	LineColor string          `json:"linecolor,omitempty"`
	LineWidth float64         `json:"linewidth"`
}

// Plot is a plot whose x-axis shows dimension Dim. An empty Dim shows every
// region.
type Plot struct {
	Name string `json:"name" yaml:"name"`
	Dim  string `json:"dim,omitempty" yaml:"dim,omitempty"`
}

// Shows reports whether r belongs on p.
func (p Plot) Shows(r *regions.Region) bool {
	return p.Dim == "" || p.Dim == r.DimValue()
}

// Markers returns one marker per region that belongs on a plot of dimension
// dim, in the order given.
func Markers(dim string, rs []*regions.Region) []Marker {
	plot := Plot{Dim: dim}
	var out []Marker
	for _, r := range rs {
		if !plot.Shows(r) {
			continue
		}
		m := Marker{
			Region:    r,
			Lower:     r.Lower(),
			Upper:     r.Upper(),
			Label:     regions.RegionLabel(r),
			Movable:   r.IsMovable(),
			LineWidth: r.LineWidthValue(),
		}
		if r.Color != nil {
			m.Color = *r.Color
		}
		if r.LineColor != nil {
			m.LineColor = *r.LineColor
		}
		out = append(out, m)
	}
	return out
}

// UpdateRegion writes dragged marker bounds back into r. The bounds may come
// in either order.
func UpdateRegion(r *regions.Region, lower, upper float64) error {
	if !r.IsMovable() {
		return fmt.Errorf("%q: %w", regions.RegionLabel(r), ErrImmovable)
	}
	lower, upper = min(lower, upper), max(lower, upper)
	return regions.RegionEdit{Lower: &lower, Upper: &upper}.Apply(r)
}

// Sink receives the full marker set of a plot on every refresh.
type Sink func(p Plot, markers []Marker)

// Refresher redraws the markers of a set of plots.
type Refresher struct {
	// AllowUpdates gates Refresh. Bulk changes turn it off and refresh once
	// at the end, see Hold.
	AllowUpdates bool
	Plots        []Plot

	sink   Sink
	logger *logrus.Entry
}

// NewRefresher returns a refresher drawing into sink with updates enabled.
func NewRefresher(sink Sink, logger *logrus.Entry, plots ...Plot) *Refresher {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	return &Refresher{
		AllowUpdates: true,
		Plots:        plots,
		sink:         sink,
		logger:       logger.WithField("component", "overlay"),
	}
}

// SetSink replaces the marker sink.
func (r *Refresher) SetSink(sink Sink) {
	r.sink = sink
}

// Refresh sends the markers for rs to every plot. It reports whether
// anything was drawn.
func (r *Refresher) Refresh(rs []*regions.Region) bool {
	if !r.AllowUpdates || r.sink == nil {
		return false
	}
	for _, p := range r.Plots {
		markers := Markers(p.Dim, rs)
		r.sink(p, markers)
		r.logger.WithFields(logrus.Fields{
			"plot":    p.Name,
			"dim":     p.Dim,
			"markers": len(markers),
		}).Debug("Refreshed plot")
	}
	return true
}

// Hold runs fn with updates disabled, then refreshes once with the regions
// returned by current.
func (r *Refresher) Hold(fn func(), current func() []*regions.Region) {
	prev := r.AllowUpdates
	r.AllowUpdates = false
	func() {
		defer func() { r.AllowUpdates = prev }()
		fn()
	}()
	if current != nil {
		r.Refresh(current())
	}
}
