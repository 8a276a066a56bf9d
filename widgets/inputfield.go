package widgets

import (
	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// InputField is a single-line text input rendered as "Label: value".
// Forms own focus: only the focused field consumes key events, and the
// form decides what Enter and Escape mean.
type InputField struct {
	Label       string // left column, padded to LabelWidth
	Placeholder string // dim hint shown while empty
	LabelWidth  int    // character width of the label column; 0 means 14
	Focused     bool

	value []rune
}

// Value returns the current text.
func (f *InputField) Value() string {
	return string(f.value)
}

// SetValue replaces the current text.
func (f *InputField) SetValue(s string) {
	f.value = []rune(s)
}

// Reset clears the field.
func (f *InputField) Reset() {
	f.value = f.value[:0]
}

// HandleKey applies a key to the field content and reports whether it was
// consumed. Enter and Escape are never consumed here.
func (f *InputField) HandleKey(key vaxis.Key) bool {
	if !f.Focused {
		return false
	}
	if key.Matches(vaxis.KeyBackspace) {
		if len(f.value) > 0 {
			f.value = f.value[:len(f.value)-1]
		}
		return true
	}
	if key.Text != "" {
		f.value = append(f.value, []rune(key.Text)...)
		return true
	}
	return false
}

// Draw renders the field as a single row.
func (f *InputField) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, 1, f)

	labelWidth := f.LabelWidth
	if labelWidth <= 0 {
		labelWidth = 14
	}

	col := uint16(0)
	labelStyle := vaxis.Style{Attribute: vaxis.AttrDim}
	if f.Focused {
		labelStyle = vaxis.Style{Attribute: vaxis.AttrBold}
	}
	writeText(&s, col, 0, labelWidth, f.Label, labelStyle, false)
	col += uint16(labelWidth)

	text := string(f.value)
	style := vaxis.Style{}
	if text == "" && f.Placeholder != "" {
		text = f.Placeholder
		style = vaxis.Style{Attribute: vaxis.AttrDim}
	}
	for _, ch := range ctx.Characters(text) {
		if col >= ctx.Max.Width {
			return s, nil
		}
		s.WriteCell(col, 0, vaxis.Cell{Character: ch, Style: style})
		col += uint16(ch.Width)
	}

	// Block cursor at the insertion point.
	if f.Focused && col < ctx.Max.Width {
		for _, ch := range ctx.Characters(" ") {
			s.WriteCell(col, 0, vaxis.Cell{
				Character: ch,
				Style:     vaxis.Style{Attribute: vaxis.AttrReverse},
			})
		}
	}

	return s, nil
}
