package num

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseValid(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.52", "0.52"},
		{"  0.52 ", "0.52"},
		{"-3.125", "-3.125"},
		{"1e4", "10000"},
		{"2.5e-3", "0.0025"},
		{"0", "0"},
	}
	for _, tt := range tests {
		d, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.in, err)
		}
		if d.String() != tt.want {
			t.Fatalf("Parse(%q) = %s, want %s", tt.in, d.String(), tt.want)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "  ", "$1.50", "1,000.50", "abc", "1.2.3", "NaN", "-Inf", "Infinity", "+inf"} {
		_, err := Parse(in)
		if err == nil {
			t.Fatalf("Parse(%q) succeeded, want NumericFormatError", in)
		}
		var nfe *NumericFormatError
		if !errors.As(err, &nfe) {
			t.Fatalf("Parse(%q) error type %T, want *NumericFormatError", in, err)
		}
		if nfe.Input != in {
			t.Fatalf("Parse(%q) error input %q", in, nfe.Input)
		}
	}
}

func TestExactArithmetic(t *testing.T) {
	a, err := Parse("0.96")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse("0.04")
	if err != nil {
		t.Fatal(err)
	}
	one, _ := Parse("1.00")
	if !a.Add(b).Equal(one) {
		t.Fatalf("0.96 + 0.04 = %s, want exactly 1.00", a.Add(b).String())
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, in := range []string{"0.52", "0.5800000001", "-12.000001", "1e4", "0.0000000001"} {
		d, err := Parse(in)
		if err != nil {
			t.Fatal(err)
		}
		back, err := Parse(d.String())
		if err != nil {
			t.Fatal(err)
		}
		if !back.Equal(d) {
			t.Fatalf("round trip of %q: %s != %s", in, back.String(), d.String())
		}
	}
}

func TestParseProbabilityRange(t *testing.T) {
	if _, err := ParseProbability("0.5"); err != nil {
		t.Fatalf("ParseProbability(0.5) error: %v", err)
	}
	if _, err := ParseProbability("0"); err != nil {
		t.Fatalf("ParseProbability(0) error: %v", err)
	}
	if _, err := ParseProbability("1"); err != nil {
		t.Fatalf("ParseProbability(1) error: %v", err)
	}
	for _, in := range []string{"1.5", "-0.01", "2"} {
		if _, err := ParseProbability(in); err == nil {
			t.Fatalf("ParseProbability(%q) succeeded, want range error", in)
		}
	}
}

func TestEdgeExact(t *testing.T) {
	prob, _ := Parse("0.62")
	price, _ := Parse("0.55")
	want, _ := Parse("0.07")
	if got := Edge(prob, price); !got.Equal(want) {
		t.Fatalf("Edge = %s, want 0.07 exactly", got.String())
	}
	// Negative edges are valid and must stay exact too.
	if got := Edge(price, prob); !got.Equal(want.Neg()) {
		t.Fatalf("Edge = %s, want -0.07 exactly", got.String())
	}
}

func TestNoBinaryFloatDrift(t *testing.T) {
	// The classic float trap: 0.1 + 0.2 != 0.3 in binary floating point.
	a, _ := Parse("0.1")
	b, _ := Parse("0.2")
	want := decimal.RequireFromString("0.3")
	if !a.Add(b).Equal(want) {
		t.Fatalf("0.1 + 0.2 = %s, want exactly 0.3", a.Add(b).String())
	}
}
