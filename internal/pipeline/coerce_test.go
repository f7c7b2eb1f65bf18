package pipeline

import (
	"testing"
	"time"
)

func TestParseEventTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "explicit UTC designator",
			input: "2024-01-01T10:00:00Z",
			want:  time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "numeric offset converted to UTC",
			input: "2024-01-01T10:00:00+05:30",
			want:  time.Date(2024, 1, 1, 4, 30, 0, 0, time.UTC),
		},
		{
			name:  "no designator assumed UTC",
			input: "2024-01-01T10:00:00",
			want:  time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "fractional seconds",
			input: "2024-01-01T10:00:00.250Z",
			want:  time.Date(2024, 1, 1, 10, 0, 0, 250000000, time.UTC),
		},
		{
			name:  "space separator",
			input: "2024-01-01 10:00:00",
			want:  time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "date only",
			input: "2024-01-01",
			want:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{name: "garbage", input: "not a time", wantErr: true},
		{name: "epoch seconds not accepted", input: "1704103200", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEventTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("result not normalized to UTC: %v", got.Location())
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name   string
		input  interface{}
		want   float64
		wantOK bool
	}{
		{"json number", float64(12.5), 12.5, true},
		{"integer", 3, 3, true},
		{"numeric string", "99.95", 99.95, true},
		{"padded numeric string", " 10 ", 10, true},
		{"non-numeric string", "free", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
