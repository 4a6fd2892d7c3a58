// Package breakpoint holds the ordered source-relative breakpoint list
// and the active cursor the continue/reverse-continue pump walks (§3,
// §4.2.6).
package breakpoint

import "github.com/arg-debug/argdap/pkg/argmodel"

// Registry is an ordered sequence of source locations plus an
// activeIndex cursor in [-1, len]. Negative means "no active breakpoint
// yet"; an index equal to len means "past last breakpoint".
type Registry struct {
	locations   []argmodel.Location
	activeIndex int
}

// New returns an empty registry with its cursor positioned before the
// first breakpoint.
func New() *Registry {
	return &Registry{activeIndex: -1}
}

// SetLocations replaces the breakpoint list for a single source file's
// worth of breakpoints, mirroring DAP's setBreakpoints semantics
// (clears and re-sets, per source). The caller relativizes paths first
// (§6).
func (r *Registry) SetLocations(path string, locs []argmodel.Location) {
	kept := r.locations[:0:0]
	for _, l := range r.locations {
		if l.File != path {
			kept = append(kept, l)
		}
	}
	kept = append(kept, locs...)
	r.locations = kept
	r.activeIndex = -1
}

// Locations returns the full breakpoint list.
func (r *Registry) Locations() []argmodel.Location {
	return r.locations
}

// Len returns the number of breakpoints.
func (r *Registry) Len() int { return len(r.locations) }

// ActiveIndex returns the current cursor position.
func (r *Registry) ActiveIndex() int { return r.activeIndex }

// ResetCursor repositions the cursor before the first breakpoint, the
// same reset SetLocations applies when breakpoints are mutated (§5:
// "mutation during an active run is permitted but may cause
// breakpoints to be skipped or revisited").
func (r *Registry) ResetCursor() { r.activeIndex = -1 }

// pumpSpan is the modulus the pump cursor moves within: at least 1, so
// a breakpoint-less program still produces exactly one synthetic
// "entry" stop (§4.2.6).
func (r *Registry) pumpSpan() int {
	if len(r.locations) == 0 {
		return 1
	}
	return len(r.locations)
}

// Advance moves the cursor by direction (+1 for continue, -1 for
// reverse-continue) and reports whether the new position is still
// in-bounds ([0, pumpSpan)). Returns false once the pump has run off
// either end, signalling the caller to emit `terminated`. The cursor
// never moves further than one step outside that range, so a later
// advance in the opposite direction lands back on the end breakpoint.
func (r *Registry) Advance(direction int) bool {
	r.activeIndex += direction
	if r.activeIndex < -1 {
		r.activeIndex = -1
	}
	if r.activeIndex > r.pumpSpan() {
		r.activeIndex = r.pumpSpan()
	}
	return r.activeIndex >= 0 && r.activeIndex < r.pumpSpan()
}

// Current returns the breakpoint location at the cursor, or false if
// there are no breakpoints at all (the synthetic "entry" case).
func (r *Registry) Current() (argmodel.Location, bool) {
	if len(r.locations) == 0 {
		return argmodel.Location{}, false
	}
	return r.locations[r.activeIndex], true
}
