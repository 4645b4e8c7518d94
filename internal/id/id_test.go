package id

import (
	"regexp"
	"testing"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		ids  []int64
		want int64
	}{
		{"empty", nil, 1},
		{"single", []int64{1}, 2},
		{"unordered", []int64{3, 9, 4}, 10},
		{"gap after delete", []int64{1, 2, 5}, 6},
		{"ignores non-positive", []int64{-4, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Next(tt.ids...); got != tt.want {
				t.Errorf("Next(%v) = %d, want %d", tt.ids, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Parse(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Format(123); got != "123" {
		t.Errorf("Format(123) = %q, want %q", got, "123")
	}
}

func TestRequestID_Format(t *testing.T) {
	uuidRegex := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	for i := 0; i < 50; i++ {
		id := RequestID()
		if !uuidRegex.MatchString(id) {
			t.Fatalf("RequestID() = %q, does not match UUID v4 format", id)
		}
	}
}
