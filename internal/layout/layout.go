// Package layout computes the responsive editor layout from the viewport
// aspect ratio. The web page applies the result as CSS; the terminal editor
// converts it to cell counts.
package layout

import (
	"fmt"
	"math"
)

// Direction is the flex direction of the main container.
type Direction string

const (
	Row    Direction = "row"
	Column Direction = "column"
)

// Aspect ratio breakpoints.
const (
	WideRatio        = 1.5
	SquareRatio      = 0.8
	UltraNarrowRatio = 0.6
)

// Layout is the computed arrangement for one viewport size.
type Layout struct {
	Ratio          float64   `json:"ratio"`
	Direction      Direction `json:"direction"`
	SidebarPx      int       `json:"sidebarPx"`
	SidebarWidth   string    `json:"sidebarWidth"`
	SidebarHeight  string    `json:"sidebarHeight"`
	MainWidth      string    `json:"mainWidth"`
	MainHeight     string    `json:"mainHeight"`
	HeaderHeight   int       `json:"headerHeight"`
	ScrollSections bool      `json:"scrollSections"`
	BaseFontSize   float64   `json:"baseFontSize"`
	EditorFontSize float64   `json:"editorFontSize"`
}

// Compute returns the layout for a viewport of width x height pixels. A
// non-positive height is treated as an unbounded wide viewport.
func Compute(width, height float64) Layout {
	ratio := math.Inf(1)
	if height > 0 {
		ratio = width / height
	}

	l := Layout{
		Ratio:          ratio,
		Direction:      Row,
		SidebarHeight:  "100%",
		MainHeight:     "100%",
		HeaderHeight:   48,
		BaseFontSize:   clamp(12, 16, width/80),
		EditorFontSize: clamp(12, 16, width/100),
	}
	if math.IsInf(ratio, 1) {
		l.Ratio = 0
	}

	switch {
	case ratio > WideRatio:
		l.SidebarPx = 240
	case ratio >= SquareRatio:
		l.SidebarPx = 200
	default:
		l.SidebarPx = 180
	}
	l.SidebarWidth = fmt.Sprintf("%dpx", l.SidebarPx)
	l.MainWidth = fmt.Sprintf("calc(100%% - %dpx)", l.SidebarPx)

	if ratio < UltraNarrowRatio {
		l.Direction = Column
		l.SidebarWidth = "100%"
		l.SidebarHeight = "35%"
		l.MainWidth = "100%"
		l.MainHeight = "65%"
		l.HeaderHeight = 40
		l.ScrollSections = true
	}

	return l
}

func clamp(lo, hi, v float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Terminal cells are roughly twice as tall as they are wide, and the sidebar
// pixel widths assume an 8px cell.
const (
	cellAspect = 2.0
	cellWidth  = 8
)

// Cells is a layout expressed in terminal cells.
type Cells struct {
	Stacked     bool
	SidebarCols int
	SidebarRows int
	EditorCols  int
	EditorRows  int
}

// ForTerminal maps Compute onto a cols x rows terminal, reserving chrome rows
// for the header and status bar.
func ForTerminal(cols, rows, chrome int) Cells {
	l := Compute(float64(cols), float64(rows)*cellAspect)
	body := max(rows-chrome, 1)

	if l.Direction == Column {
		sidebarRows := max(body*35/100, 1)
		return Cells{
			Stacked:     true,
			SidebarCols: cols,
			SidebarRows: sidebarRows,
			EditorCols:  cols,
			EditorRows:  max(body-sidebarRows, 1),
		}
	}

	sidebar := min(l.SidebarPx/cellWidth, cols/2)
	return Cells{
		SidebarCols: sidebar,
		SidebarRows: body,
		EditorCols:  max(cols-sidebar, 1),
		EditorRows:  body,
	}
}
