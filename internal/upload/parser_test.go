package upload

import (
	"testing"
)

func TestParse_CSV(t *testing.T) {
	data := []byte(`Date,Open,High,Low,Close,Volume
2025-01-02,100,105,99,103,120000
2025-01-03,103,108,102,107,98000
2025-01-06,107,110,105,109,110500
`)

	points, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[0].Close != 103 {
		t.Errorf("points[0].Close = %f, want 103", points[0].Close)
	}
	if points[2].Volume != 110500 {
		t.Errorf("points[2].Volume = %f, want 110500", points[2].Volume)
	}
	if points[1].Date.IsZero() {
		t.Error("expected parsed date on points[1]")
	}
}

func TestParse_TSV(t *testing.T) {
	data := []byte("date\topen\thigh\tlow\tclose\tvolume\n" +
		"2025-01-02\t100\t105\t99\t103\t120000\n")

	points, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
}

func TestParse_CloseOnly(t *testing.T) {
	data := []byte("close\n100\n102\n101\n")

	points, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[1].Close != 102 {
		t.Errorf("points[1].Close = %f, want 102", points[1].Close)
	}
}

func TestParse_SkipsBadRows(t *testing.T) {
	data := []byte(`Date,Open,High,Low,Close,Volume
2025-01-02,100,105,99,103,120000
2025-01-03,103,108,102,not-a-number,98000
2025-01-06,107,110,105,109,110500
2025-01-07,109,108,105,112,90000
`)
	// Row 2 has an unparseable close; row 4 breaks the OHLC invariant
	// (high 108 below close 112)

	points, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
}

func TestParse_NoCloseColumn(t *testing.T) {
	data := []byte("foo,bar\n1,2\n")

	if _, err := Parse(data); err == nil {
		t.Error("expected error for missing close column")
	}
}

func TestParse_EmptyFile(t *testing.T) {
	if _, err := Parse([]byte("")); err == nil {
		t.Error("expected error for empty file")
	}
	if _, err := Parse([]byte("close\n")); err == nil {
		t.Error("expected error for header-only file")
	}
}
