package layout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBreakpoints(t *testing.T) {
	tests := []struct {
		name      string
		w, h      float64
		direction Direction
		sidebar   int
		header    int
		scroll    bool
	}{
		{"wide", 1920, 1080, Row, 240, 48, false},
		{"exactly 1.5", 1500, 1000, Row, 200, 48, false},
		{"square", 1000, 1000, Row, 200, 48, false},
		{"exactly 0.8", 800, 1000, Row, 200, 48, false},
		{"narrow", 700, 1000, Row, 180, 48, false},
		{"exactly 0.6", 600, 1000, Row, 180, 48, false},
		{"ultra narrow", 400, 1000, Column, 180, 40, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Compute(tt.w, tt.h)
			assert.Equal(t, tt.direction, l.Direction)
			assert.Equal(t, tt.sidebar, l.SidebarPx)
			assert.Equal(t, tt.header, l.HeaderHeight)
			assert.Equal(t, tt.scroll, l.ScrollSections)
		})
	}
}

func TestComputeColumnSizes(t *testing.T) {
	l := Compute(400, 1000)
	assert.Equal(t, "100%", l.SidebarWidth)
	assert.Equal(t, "35%", l.SidebarHeight)
	assert.Equal(t, "100%", l.MainWidth)
	assert.Equal(t, "65%", l.MainHeight)
}

func TestComputeRowSizes(t *testing.T) {
	l := Compute(1920, 1080)
	assert.Equal(t, "240px", l.SidebarWidth)
	assert.Equal(t, "calc(100% - 240px)", l.MainWidth)
	assert.Equal(t, "100%", l.MainHeight)
}

func TestFontClamp(t *testing.T) {
	small := Compute(500, 1000)
	assert.Equal(t, 12.0, small.BaseFontSize)
	assert.Equal(t, 12.0, small.EditorFontSize)

	mid := Compute(1120, 700)
	assert.Equal(t, 14.0, mid.BaseFontSize)
	assert.Equal(t, 12.0, mid.EditorFontSize)

	large := Compute(3000, 1000)
	assert.Equal(t, 16.0, large.BaseFontSize)
	assert.Equal(t, 16.0, large.EditorFontSize)
}

func TestZeroHeightIsWide(t *testing.T) {
	l := Compute(800, 0)
	assert.Equal(t, 240, l.SidebarPx)

	_, err := json.Marshal(l)
	require.NoError(t, err)
}

func TestForTerminal(t *testing.T) {
	wide := ForTerminal(200, 50, 3)
	assert.False(t, wide.Stacked)
	assert.Equal(t, 30, wide.SidebarCols)
	assert.Equal(t, 170, wide.EditorCols)
	assert.Equal(t, 47, wide.EditorRows)

	tall := ForTerminal(40, 60, 4)
	assert.True(t, tall.Stacked)
	assert.Equal(t, 40, tall.SidebarCols)
	assert.Equal(t, 19, tall.SidebarRows)
	assert.Equal(t, 37, tall.EditorRows)

	short := ForTerminal(30, 8, 2)
	assert.False(t, short.Stacked)
	assert.Equal(t, 15, short.SidebarCols, "sidebar never takes more than half")
}
