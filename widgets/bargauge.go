package widgets

import (
	"fmt"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// BarGauge is a horizontal progress gauge widget.
//
//	Blog ads     [████████░░░░░░░░░░░░]  42.5%  ¥29,750 / ¥70,000
type BarGauge struct {
	Label      string  // left column, padded to LabelWidth
	Value      float64 // 0.0–100.0
	Suffix     string  // text after %, e.g. "¥29,750 / ¥70,000"
	BarWidth   int     // character width of the [████░░░░] portion (excluding brackets)
	LabelWidth int     // character width of the label column; 0 means 12
}

const (
	barFilled = '█' // U+2588
	barEmpty  = '░' // U+2591
)

// barColor returns the color for the given completion percentage. High
// completion is good here, so the scale runs red to green.
func barColor(pct float64) vaxis.Color {
	switch {
	case pct >= 80:
		return vaxis.IndexColor(2) // green
	case pct >= 50:
		return vaxis.IndexColor(3) // yellow
	default:
		return vaxis.IndexColor(1) // red
	}
}

// Draw renders the bar gauge as a single row.
func (bg *BarGauge) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, 1, bg)

	col := uint16(0)

	labelWidth := bg.LabelWidth
	if labelWidth <= 0 {
		labelWidth = 12
	}
	label := bg.Label
	if len(label) > labelWidth {
		label = label[:labelWidth]
	}
	label = fmt.Sprintf("%-*s ", labelWidth, label)
	for _, ch := range ctx.Characters(label) {
		s.WriteCell(col, 0, vaxis.Cell{
			Character: ch,
			Style:     vaxis.Style{Attribute: vaxis.AttrBold},
		})
		col += uint16(ch.Width)
	}

	// Opening bracket
	for _, ch := range ctx.Characters("[") {
		s.WriteCell(col, 0, vaxis.Cell{Character: ch})
		col += uint16(ch.Width)
	}

	// Bar fill
	v := bg.Value
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	filled := int(v / 100 * float64(bg.BarWidth))
	color := barColor(v)

	for i := 0; i < bg.BarWidth; i++ {
		ch := barEmpty
		style := vaxis.Style{Foreground: vaxis.IndexColor(8)} // dim for empty
		if i < filled {
			ch = barFilled
			style = vaxis.Style{Foreground: color}
		}
		for _, c := range ctx.Characters(string(ch)) {
			s.WriteCell(col, 0, vaxis.Cell{Character: c, Style: style})
			col += uint16(c.Width)
		}
	}

	// Closing bracket + percentage
	pctStr := fmt.Sprintf("] %5.1f%%", bg.Value)
	for _, ch := range ctx.Characters(pctStr) {
		s.WriteCell(col, 0, vaxis.Cell{Character: ch})
		col += uint16(ch.Width)
	}

	// Suffix
	if bg.Suffix != "" {
		suffix := "  " + bg.Suffix
		dimStyle := vaxis.Style{Attribute: vaxis.AttrDim}
		for _, ch := range ctx.Characters(suffix) {
			s.WriteCell(col, 0, vaxis.Cell{Character: ch, Style: dimStyle})
			col += uint16(ch.Width)
		}
	}

	return s, nil
}
