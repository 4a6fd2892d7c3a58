package config_test

import (
	"testing"

	"github.com/arg-debug/argdap/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestMergeStringPrefersFlagWhenChanged(t *testing.T) {
	got := config.MergeString("explicit", true, "from-file")
	assert.Equal(t, "explicit", got)
}

func TestMergeStringFallsBackToFileValue(t *testing.T) {
	got := config.MergeString("default", false, "from-file")
	assert.Equal(t, "from-file", got)
}

func TestMergeStringFallsBackToFlagDefaultWhenFileEmpty(t *testing.T) {
	got := config.MergeString("default", false, "")
	assert.Equal(t, "default", got)
}

func TestMergeBoolPrefersFlagWhenChanged(t *testing.T) {
	fileValue := false
	got := config.MergeBool(true, true, &fileValue)
	assert.True(t, got)
}

func TestMergeBoolFallsBackToFileValue(t *testing.T) {
	fileValue := false
	got := config.MergeBool(true, false, &fileValue)
	assert.False(t, got)
}

func TestMergeBoolFallsBackToFlagDefaultWhenFileUnset(t *testing.T) {
	got := config.MergeBool(true, false, nil)
	assert.True(t, got)
}
