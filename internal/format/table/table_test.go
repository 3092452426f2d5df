package table

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatAlignsColumns(t *testing.T) {
	rows := [][]string{
		{"work:", "1", "window", ""},
		{"scratch:", "12", "windows", "(attached)"},
	}
	got := Format(rows, []Alignment{AlignLeft, AlignRight})
	want := []string{
		"work:     1 window",
		"scratch: 12 windows (attached)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatUsesDisplayWidth(t *testing.T) {
	got := Format([][]string{{"日本", "x"}, {"abc", "y"}}, nil)
	want := []string{"日本 x", "abc  y"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatEmpty(t *testing.T) {
	if got := Format(nil, nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
