package widgets_test

import (
	"testing"

	"git.sr.ht/~rockorager/vaxis"
	"kasegi/widgets"
)

func cellText(s vaxis.Cell) string {
	return s.Character.Grapheme
}

func TestTable_Draw_AlignedColumns(t *testing.T) {
	tbl := &widgets.Table{
		Columns: []widgets.TableColumn{
			{Width: 10},
			{Width: 6, AlignRight: true},
			{Width: 8, AlignRight: true},
		},
		Header: []string{"SOURCE", "PROG", "DAYS"},
		Rows: [][]string{
			{"Blog ads", "64.2%", "4 days"},
			{"Tutoring", "12.8%", "2 days"},
		},
		Gap: 2,
	}

	ctx := testDrawContext(40, 10)
	surf, err := tbl.Draw(ctx)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}

	// Should have 3 rows: header + 2 data
	if surf.Size.Height != 3 {
		t.Fatalf("expected height=3, got %d", surf.Size.Height)
	}

	// Check header row: "SOURCE" starts at col 0
	if g := cellText(surf.Buffer[0]); g != "S" {
		t.Errorf("header col 0: expected 'S', got %q", g)
	}

	// "PROG" is right-aligned in width 6 starting at col 12 (10+2 gap).
	// "PROG" is 4 chars, right-aligned in 6 = 2 offset, so col 14.
	if g := cellText(surf.Buffer[14]); g != "P" {
		t.Errorf("header PROG col 14: expected 'P', got %q", g)
	}

	// Data row 1 starts at row 1 (offset = 1*40 = 40)
	// "Blog ads" at col 0
	if g := cellText(surf.Buffer[40]); g != "B" {
		t.Errorf("row1 col 0: expected 'B', got %q", g)
	}

	// "64.2%" is 5 chars, right-aligned in 6 = 1 offset, col 13
	if g := cellText(surf.Buffer[40+13]); g != "6" {
		t.Errorf("row1 prog col 13: expected '6', got %q", g)
	}

	// Row 2: "Tutoring" at col 0
	if g := cellText(surf.Buffer[80]); g != "T" {
		t.Errorf("row2 col 0: expected 'T', got %q", g)
	}

	// Both "64.2%" and "12.8%" should start at the same column (13)
	if g := cellText(surf.Buffer[80+13]); g != "1" {
		t.Errorf("row2 prog col 13: expected '1', got %q", g)
	}
}

func TestTable_Draw_RowStyleOverride(t *testing.T) {
	green := vaxis.Style{Foreground: vaxis.IndexColor(2)}
	tbl := &widgets.Table{
		Columns: []widgets.TableColumn{
			{Width: 10},
			{Width: 8, AlignRight: true, Style: vaxis.Style{Attribute: vaxis.AttrDim}},
		},
		Rows: [][]string{
			{"Blog ads", "32,000"},
			{"Tutoring", "8,000"},
		},
		RowStyles: map[int]vaxis.Style{0: green},
	}

	ctx := testDrawContext(30, 5)
	surf, err := tbl.Draw(ctx)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}

	// Row 0 takes the override in every column, including styled ones.
	if got := surf.Buffer[0].Style; got != green {
		t.Errorf("row0 col0 style: expected green override, got %+v", got)
	}
	// "32,000" is 6 chars right-aligned in 8 = 2 offset, col 11+2 = 13.
	if got := surf.Buffer[13].Style; got != green {
		t.Errorf("row0 amount style: expected green override, got %+v", got)
	}

	// Row 1 keeps the column style.
	if got := surf.Buffer[30].Style; got != (vaxis.Style{}) {
		t.Errorf("row1 col0 style: expected default, got %+v", got)
	}
	// "8,000" is 5 chars right-aligned in 8 = 3 offset, col 11+3 = 14.
	if got := surf.Buffer[30+14].Style; got != (vaxis.Style{Attribute: vaxis.AttrDim}) {
		t.Errorf("row1 amount style: expected dim column style, got %+v", got)
	}
}

func TestTable_Draw_NoHeader(t *testing.T) {
	tbl := &widgets.Table{
		Columns: []widgets.TableColumn{
			{Width: 8},
			{Width: 6},
		},
		Rows: [][]string{
			{"hello", "world"},
		},
	}

	ctx := testDrawContext(30, 5)
	surf, err := tbl.Draw(ctx)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}

	if surf.Size.Height != 1 {
		t.Errorf("expected height=1 (no header), got %d", surf.Size.Height)
	}
}

func TestTable_Draw_TruncatesLongText(t *testing.T) {
	tbl := &widgets.Table{
		Columns: []widgets.TableColumn{
			{Width: 4},
		},
		Rows: [][]string{
			{"toolongname"},
		},
	}

	ctx := testDrawContext(20, 5)
	surf, err := tbl.Draw(ctx)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}

	// Should only write 4 chars
	if g := cellText(surf.Buffer[0]); g != "t" {
		t.Errorf("col 0: expected 't', got %q", g)
	}
	if g := cellText(surf.Buffer[3]); g != "l" {
		t.Errorf("col 3: expected 'l', got %q", g)
	}
	// Col 4 should be empty (beyond column width)
	if g := cellText(surf.Buffer[4]); g != "" {
		t.Errorf("col 4: expected empty, got %q", g)
	}
}
