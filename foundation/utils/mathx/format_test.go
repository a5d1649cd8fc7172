package mathx

import (
	"strings"
	"testing"
)

func TestExactStringRoundTrip(t *testing.T) {
	literals := []string{
		"123.456",
		"0.0001",
		"1000000",
		"-42.125",
		"0.000000000000000000000000000001",
		"123456789012345678901234567890.123456789",
		"-0.5",
	}
	for _, lit := range literals {
		t.Run(lit, func(t *testing.T) {
			d := MustParse(lit)
			if got := d.ExactString(); got != lit {
				t.Errorf("ExactString() = %q, want %q", got, lit)
			}
			again := MustParse(d.ExactString())
			if !again.Equal(d) {
				t.Errorf("re-parse of %q changed the value", lit)
			}
		})
	}
}

func TestExactStringNeverUsesExponent(t *testing.T) {
	for _, s := range []string{"1e-40", "7.5e60"} {
		got := MustParse(s).ExactString()
		if strings.ContainsAny(got, "eE") {
			t.Errorf("ExactString(%s) = %q contains an exponent", s, got)
		}
	}
	if got := MustParse("7.5e60").ExactString(); got != "75"+strings.Repeat("0", 59) {
		t.Errorf("ExactString(7.5e60) = %q", got)
	}
}

func TestDisplayString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0"},
		{"NaN", "NaN"},
		{"Inf", "Inf"},
		{"-Inf", "-Inf"},
		{"1", "~1"},
		{"0.5", "~0.5"},
		{"123.456", "~123.456"},
		{"-0.0025", "~-0.0025"},
		{"1e14", "~100000000000000"},
		{"1e-14", "~0.00000000000001"},
		{"1e15", "~1e15"},
		{"1.5e-20", "~1.5e-20"},
		{"-2.5e20", "~-2.5e20"},
		{"1.23456789012345678", "~1.23456789012346"},
		{"9.9999999999999999", "~10"},
		{"9.9999999999999999e14", "~1e15"},
		{"2.533029591058444286e-6", "~0.00000253302959105844"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := MustParse(tt.input).DisplayString(); got != tt.want {
				t.Errorf("DisplayString(%s) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDisplayStringOfNegativeZero(t *testing.T) {
	if got := Zero().Neg().DisplayString(); got != "0" {
		t.Errorf("DisplayString(-0) = %q", got)
	}
}
