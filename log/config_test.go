package log

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"TRACE", LevelTrace, false},
		{"debug", LevelDebug, false},
		{" Info ", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"debug+2", LevelDebug + 2, false},
		{"loud", DefaultLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLevel) {
					t.Errorf("expected ErrInvalidLevel, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_TextRoundTrip(t *testing.T) {
	for name := range Levels() {
		var l Level
		if err := l.UnmarshalText([]byte(name)); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", name, err)
		}

		text, _ := l.MarshalText()
		if string(text) != name {
			t.Errorf("MarshalText = %q, want %q", text, name)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if got, err := ParseFormat("JSON"); err != nil || got != FormatJSON {
		t.Errorf("ParseFormat(JSON) = %v, %v", got, err)
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}

	want := []string{"text", "json"}
	if diff := cmp.Diff(want, slices.Collect(Formats())); diff != "" {
		t.Errorf("Formats() mismatch (-want +got):\n%s", diff)
	}
}
