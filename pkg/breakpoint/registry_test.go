package breakpoint_test

import (
	"testing"

	"github.com/arg-debug/argdap/pkg/argmodel"
	"github.com/arg-debug/argdap/pkg/breakpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroBreakpointsStillProducesOneSyntheticStop(t *testing.T) {
	r := breakpoint.New()
	assert.Equal(t, 0, r.Len())

	assert.True(t, r.Advance(1), "an empty registry still has a span of 1")
	_, ok := r.Current()
	assert.False(t, ok, "no breakpoints at all means the synthetic entry stop")

	assert.False(t, r.Advance(1), "advancing past the single synthetic slot runs off the end")
}

func TestAdvanceAndCurrent(t *testing.T) {
	r := breakpoint.New()
	r.SetLocations("main.go", []argmodel.Location{
		{File: "main.go", Line: 5},
		{File: "main.go", Line: 9},
	})

	require.True(t, r.Advance(1))
	loc, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, 5, loc.Line)

	require.True(t, r.Advance(1))
	loc, ok = r.Current()
	require.True(t, ok)
	assert.Equal(t, 9, loc.Line)

	assert.False(t, r.Advance(1), "third advance runs off the end")
}

func TestSetLocationsReplacesOnlyMatchingFile(t *testing.T) {
	r := breakpoint.New()
	r.SetLocations("a.go", []argmodel.Location{{File: "a.go", Line: 1}})
	r.SetLocations("b.go", []argmodel.Location{{File: "b.go", Line: 2}})
	r.SetLocations("a.go", []argmodel.Location{{File: "a.go", Line: 10}})

	locs := r.Locations()
	require.Len(t, locs, 2)
	for _, l := range locs {
		if l.File == "a.go" {
			assert.Equal(t, 10, l.Line)
		}
	}
}

func TestResetCursor(t *testing.T) {
	r := breakpoint.New()
	r.SetLocations("a.go", []argmodel.Location{{File: "a.go", Line: 1}})
	r.Advance(1)
	assert.Equal(t, 0, r.ActiveIndex())
	r.ResetCursor()
	assert.Equal(t, -1, r.ActiveIndex())
}
