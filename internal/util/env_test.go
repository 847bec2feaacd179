package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"on", false, true},
		{"TRUE", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"off", true, false},
		{"", true, true},
		{"", false, false},
		{"maybe", true, true},
		{"maybe", false, false},
		{" true ", false, true},
	}
	for _, c := range cases {
		t.Setenv("TEST_BOOL", c.value)
		if got := ParseBoolEnv("TEST_BOOL", c.def); got != c.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", c.value, c.def, got, c.want)
		}
	}
}

func TestParseIntEnv(t *testing.T) {
	cases := []struct {
		value string
		def   int
		want  int
	}{
		{"40", 0, 40},
		{"-1", 0, -1},
		{"0", 40, 0},
		{" 12 ", 0, 12},
		{"", 40, 40},
		{"forty", 40, 40},
		{"1.5", 40, 40},
	}
	for _, c := range cases {
		t.Setenv("TEST_INT", c.value)
		if got := ParseIntEnv("TEST_INT", c.def); got != c.want {
			t.Errorf("ParseIntEnv(%q, %d) = %d, want %d", c.value, c.def, got, c.want)
		}
	}
}

func TestParseFloatEnv(t *testing.T) {
	cases := []struct {
		value string
		def   float64
		want  float64
	}{
		{"0.7", 0, 0.7},
		{"0", 0.7, 0},
		{" 1.0 ", 0, 1.0},
		{"", 0.7, 0.7},
		{"warm", 0.7, 0.7},
	}
	for _, c := range cases {
		t.Setenv("TEST_FLOAT", c.value)
		if got := ParseFloatEnv("TEST_FLOAT", c.def); got != c.want {
			t.Errorf("ParseFloatEnv(%q, %v) = %v, want %v", c.value, c.def, got, c.want)
		}
	}
}
