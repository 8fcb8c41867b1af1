package ui

import (
	"strings"
	"testing"
)

func TestSnapshotRendersHeaderAndRows(t *testing.T) {
	rendered := Snapshot(SnapshotConfig{
		Options:   Options{Config: testConfig(t), Records: testRecords(3), Width: 50, Height: 10, NoColor: true},
		StripANSI: true,
	})

	lines := strings.Split(rendered, "\n")
	if len(lines) != 10 {
		t.Fatalf("expected the snapshot padded to 10 lines, got %d:\n%s", len(lines), rendered)
	}
	if !strings.Contains(lines[0], "name") || !strings.Contains(lines[0], "size") {
		t.Fatalf("expected column labels in the header, got %q", lines[0])
	}
	for _, name := range []string{"alpha", "bravo", "charlie"} {
		if !strings.Contains(rendered, name) {
			t.Fatalf("expected %q in snapshot:\n%s", name, rendered)
		}
	}
	if strings.Contains(rendered, "\x1b[") {
		t.Fatal("expected escape sequences stripped")
	}
	if !strings.Contains(rendered, "1/3") {
		t.Fatalf("expected the status line position, got:\n%s", rendered)
	}
}

func TestSnapshotAppliesStartKeys(t *testing.T) {
	m := SnapshotModel(SnapshotConfig{
		Options:   Options{Config: testConfig(t), Records: testRecords(5), Width: 50, Height: 10, NoColor: true},
		StartKeys: []string{"jj", "k<CR>"},
	})
	row, _, ok := m.Grid().Focus().Indexes()
	if !ok || row != 1 {
		t.Fatalf("expected row 1 active, got %d (ok=%v)", row, ok)
	}
	if got := m.Layout().Mode.String(); got != "ACTION" {
		t.Fatalf("expected ACTION mode, got %s", got)
	}
}

func TestSnapshotSortIndicator(t *testing.T) {
	rendered := Snapshot(SnapshotConfig{
		Options:   Options{Config: testConfig(t), Records: testRecords(3), Width: 50, Height: 10, NoColor: true},
		StartKeys: []string{"k<CR>"},
		StripANSI: true,
	})
	header := strings.Split(rendered, "\n")[0]
	if !strings.Contains(header, "▲") {
		t.Fatalf("expected an ascending sort indicator, got %q", header)
	}
}

func TestSnapshotScrolledViewport(t *testing.T) {
	rendered := Snapshot(SnapshotConfig{
		Options:   Options{Config: testConfig(t), Records: testRecords(40), Width: 50, Height: 10, NoColor: true},
		StartKeys: []string{"G"},
		StripANSI: true,
	})
	if strings.Contains(rendered, "alpha ") {
		t.Fatalf("expected the first row scrolled out of view:\n%s", rendered)
	}
	if !strings.Contains(rendered, "40/40") {
		t.Fatalf("expected the last row active in the status line:\n%s", rendered)
	}
}

func TestSnapshotRTL(t *testing.T) {
	rendered := Snapshot(SnapshotConfig{
		Options:   Options{Config: testConfig(t), Records: testRecords(2), Width: 50, Height: 8, NoColor: true},
		StartKeys: []string{"R"},
		StripANSI: true,
	})
	header := strings.Split(rendered, "\n")[0]
	if strings.Index(header, "size") > strings.Index(header, "name") {
		t.Fatalf("expected columns reversed in RTL, got %q", header)
	}
}

func TestSnapshotHideHelp(t *testing.T) {
	opts := Options{Config: testConfig(t), Records: testRecords(2), Width: 60, Height: 0, NoColor: true}
	with := Snapshot(SnapshotConfig{Options: opts, StripANSI: true})
	without := Snapshot(SnapshotConfig{Options: opts, StripANSI: true, HideHelp: true})
	if !strings.Contains(with, "filter") {
		t.Fatalf("expected the help line, got:\n%s", with)
	}
	if strings.Contains(without, "/ filter") {
		t.Fatalf("expected help dropped, got:\n%s", without)
	}
}

func TestPadSnapshotHeight(t *testing.T) {
	got := padSnapshotHeight("a\nb", 4, 3)
	if want := "a\nb\n   \n   "; got != want {
		t.Fatalf("padSnapshotHeight() = %q, want %q", got, want)
	}
	if got := padSnapshotHeight("a\nb\nc", 2, 3); got != "a\nb\nc" {
		t.Fatalf("expected taller views untouched, got %q", got)
	}
}
