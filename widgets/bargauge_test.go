package widgets_test

import (
	"testing"

	"kasegi/widgets"
)

func TestBarGauge_Draw(t *testing.T) {
	bg := &widgets.BarGauge{
		Label:    "Blog ads",
		Value:    42.5,
		Suffix:   "¥29,750 / ¥70,000",
		BarWidth: 20,
	}

	ctx := testDrawContext(80, 1)
	s, err := bg.Draw(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Size.Height != 1 {
		t.Errorf("expected height=1, got %d", s.Size.Height)
	}
}

func TestBarGauge_Draw_Zero(t *testing.T) {
	bg := &widgets.BarGauge{
		Label:    "Tutoring",
		Value:    0,
		BarWidth: 20,
	}

	ctx := testDrawContext(80, 1)
	_, err := bg.Draw(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBarGauge_Draw_Full(t *testing.T) {
	bg := &widgets.BarGauge{
		Label:    "Freelance",
		Value:    100,
		BarWidth: 20,
	}

	ctx := testDrawContext(80, 1)
	_, err := bg.Draw(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBarGauge_Draw_ClampNegative(t *testing.T) {
	bg := &widgets.BarGauge{
		Label:    "Royalties",
		Value:    -10,
		BarWidth: 20,
	}

	ctx := testDrawContext(80, 1)
	_, err := bg.Draw(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBarGauge_Draw_ClampOver100(t *testing.T) {
	bg := &widgets.BarGauge{
		Label:    "Royalties",
		Value:    120,
		BarWidth: 20,
	}

	ctx := testDrawContext(80, 1)
	_, err := bg.Draw(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBarGauge_Draw_WithSuffix(t *testing.T) {
	bg := &widgets.BarGauge{
		Label:    "Tutoring",
		Value:    81.3,
		Suffix:   "¥56,910 / ¥70,000",
		BarWidth: 20,
	}

	ctx := testDrawContext(80, 1)
	_, err := bg.Draw(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBarGauge_Draw_NoSuffix(t *testing.T) {
	bg := &widgets.BarGauge{
		Label:    "Royalties",
		Value:    25.0,
		BarWidth: 20,
	}

	ctx := testDrawContext(80, 1)
	_, err := bg.Draw(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBarGauge_Draw_LongLabelTruncated(t *testing.T) {
	bg := &widgets.BarGauge{
		Label:      "A very long income source name",
		Value:      50,
		BarWidth:   20,
		LabelWidth: 10,
	}

	ctx := testDrawContext(80, 1)
	_, err := bg.Draw(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
