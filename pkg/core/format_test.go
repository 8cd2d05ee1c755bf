package core

import (
	"math"
	"testing"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name string
		val  float64
		want string
	}{
		{"integral", 35, "35.0"},
		{"negative integral", -1, "-1.0"},
		{"fraction", 0.02052976929405732, "0.02052976929405732"},
		{"zero", 0, "0.0"},
		{"small", 0.00001, "1e-05"},
		{"large", 1e16, "1e+16"},
		{"NaN", math.NaN(), "nan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatFloat(tt.val); got != tt.want {
				t.Errorf("FormatFloat(%v) = %q, want %q", tt.val, got, tt.want)
			}
		})
	}
}

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		name      string
		val       float64
		precision int
		want      float64
	}{
		{"round to 2 decimals", 3.14159, 2, 3.14},
		{"round to 4 decimals", 3.14159, 4, 3.1416},
		{"round to 0 decimals", 3.6, 0, 4.0},
		{"round negative", -3.14159, 2, -3.14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundFloat(tt.val, tt.precision)
			if got != tt.want {
				t.Errorf("RoundFloat() = %v, want %v", got, tt.want)
			}
		})
	}
}
