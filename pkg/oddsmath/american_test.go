package oddsmath_test

import (
	"math"
	"testing"

	"github.com/fairline/fairline/pkg/oddsmath"
)

func TestAmericanToProb(t *testing.T) {
	tests := []struct {
		name   string
		odds   float64
		want   float64
		wantOK bool
	}{
		{name: "Even money +100", odds: 100, want: 0.5, wantOK: true},
		{name: "Standard -110", odds: -110, want: 110.0 / 210.0, wantOK: true},
		{name: "Underdog +150", odds: 150, want: 0.4, wantOK: true},
		{name: "Favorite -200", odds: -200, want: 200.0 / 300.0, wantOK: true},
		{name: "Zero odds invalid", odds: 0, wantOK: false},
		{name: "NaN invalid", odds: math.NaN(), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := oddsmath.AmericanToProb(tt.odds)

			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}

			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("prob = %f, want %f", got, tt.want)
			}
			if got <= 0 || got >= 1 {
				t.Errorf("prob %f outside (0, 1)", got)
			}
		})
	}
}

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		name   string
		odds   float64
		want   float64
		wantOK bool
	}{
		{name: "Positive +150", odds: 150, want: 2.5, wantOK: true},
		{name: "Negative -150", odds: -150, want: 100.0/150.0 + 1.0, wantOK: true},
		{name: "Standard -110", odds: -110, want: 100.0/110.0 + 1.0, wantOK: true},
		{name: "Zero invalid", odds: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := oddsmath.AmericanToDecimal(tt.odds)

			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.wantOK && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("decimal = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestDecimalToAmerican(t *testing.T) {
	tests := []struct {
		name string
		dec  float64
		want float64
	}{
		{name: "Decimal 2.5 is +150", dec: 2.5, want: 150},
		{name: "Decimal 2.0 is +100", dec: 2.0, want: 100},
		{name: "Decimal 1.5 is -200", dec: 1.5, want: -200},
		{name: "Degenerate 1.0 returns 0", dec: 1.0, want: 0},
		{name: "Degenerate 0.5 returns 0", dec: 0.5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := oddsmath.DecimalToAmerican(tt.dec); got != tt.want {
				t.Errorf("american = %f, want %f", got, tt.want)
			}
		})
	}
}

// TestRoundTrip checks that converting integer American odds to decimal and
// back lands within rounding tolerance of 1.
func TestRoundTrip(t *testing.T) {
	for o := -2000; o <= 2000; o++ {
		// -100 and everything between the signs has no stable American
		// form; even money normalizes to +100.
		if o >= -100 && o < 100 {
			continue
		}

		dec, ok := oddsmath.AmericanToDecimal(float64(o))
		if !ok {
			t.Fatalf("AmericanToDecimal(%d) not ok", o)
		}

		back := oddsmath.DecimalToAmerican(dec)
		if math.Abs(back-float64(o)) > 1 {
			t.Errorf("round trip %d -> %f -> %f drifted more than 1", o, dec, back)
		}
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
		wantOK bool
	}{
		{name: "Odd count", values: []float64{3, 1, 2}, want: 2, wantOK: true},
		{name: "Even count averages middles", values: []float64{4, 1, 3, 2}, want: 2.5, wantOK: true},
		{name: "Single value", values: []float64{7}, want: 7, wantOK: true},
		{name: "Empty input", values: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := oddsmath.Median(tt.values)

			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.wantOK && got != tt.want {
				t.Errorf("median = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	if _, ok := oddsmath.Median(values); !ok {
		t.Fatal("median not ok")
	}

	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input mutated: %v", values)
	}
}

func TestExpectedValue(t *testing.T) {
	tests := []struct {
		name     string
		userOdds float64
		fairOdds float64
		want     float64
		wantOK   bool
	}{
		// dec(+110)=2.1, dec(+100)=2.0 -> (2.1/2.0 - 1) * 100 = 5%
		{name: "Positive edge", userOdds: 110, fairOdds: 100, want: 5.0, wantOK: true},
		// dec(-110)=1.9090..., dec(+100)=2.0 -> -4.5454...%
		{name: "Negative edge", userOdds: -110, fairOdds: 100, want: (1.0+100.0/110.0)/2.0*100.0 - 100.0, wantOK: true},
		{name: "Same price is zero EV", userOdds: -120, fairOdds: -120, want: 0, wantOK: true},
		{name: "Invalid user odds", userOdds: 0, fairOdds: 100, wantOK: false},
		{name: "Invalid fair odds", userOdds: 100, fairOdds: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := oddsmath.ExpectedValue(tt.userOdds, tt.fairOdds)

			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.wantOK && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ev = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestProbToAmerican(t *testing.T) {
	if got, ok := oddsmath.ProbToAmerican(0.5); !ok || got != 100 {
		t.Errorf("ProbToAmerican(0.5) = %f, %v; want 100, true", got, ok)
	}
	if got, ok := oddsmath.ProbToAmerican(0.6); !ok || got != -150 {
		t.Errorf("ProbToAmerican(0.6) = %f, %v; want -150, true", got, ok)
	}
	if _, ok := oddsmath.ProbToAmerican(0); ok {
		t.Error("ProbToAmerican(0) should not be ok")
	}
	if _, ok := oddsmath.ProbToAmerican(1); ok {
		t.Error("ProbToAmerican(1) should not be ok")
	}
}
