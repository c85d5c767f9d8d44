package numeric

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		want float64
	}{
		{name: "integer", in: "100", want: 100},
		{name: "decimal", in: "24.5", want: 24.5},
		{name: "comma decimal", in: "24,5", want: 24.5},
		{name: "thousands separator", in: "6,000.50", want: 6000.5},
		{name: "lone thousands separator", in: "1,200", want: 1200},
		{name: "lone thousands separator round", in: "6,000", want: 6000},
		{name: "comma with two decimals", in: "24,50", want: 24.5},
		{name: "several thousands separators", in: "1,200,000", want: 1200000},
		{name: "currency with thousands", in: "$ 1,500", want: 1500},
		{name: "currency prefix", in: "$85", want: 85},
		{name: "surrounding spaces", in: "  12 ", want: 12},
		{name: "empty", in: "", want: 0},
		{name: "garbage", in: "abc", want: 0},
		{name: "nan", in: "NaN", want: 0},
		{name: "infinity", in: "Inf", want: 0},
		{name: "negative kept", in: "-3", want: -3},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Parse(tc.in); got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	t.Parallel()

	if got := Coerce(nil); got != 0 {
		t.Errorf("expected nil to coerce to 0, got %v", got)
	}
	if got := Coerce(true); got != 0 {
		t.Errorf("expected bool to coerce to 0, got %v", got)
	}
	if got := Coerce("8.2"); got != 8.2 {
		t.Errorf("expected string to coerce to 8.2, got %v", got)
	}
	if got := Coerce(math.NaN()); got != 0 {
		t.Errorf("expected NaN to coerce to 0, got %v", got)
	}
	if got := Coerce(json.Number("17")); got != 17 {
		t.Errorf("expected json.Number to coerce to 17, got %v", got)
	}
}

func TestNonNegative(t *testing.T) {
	t.Parallel()

	if got := NonNegative(-5); got != 0 {
		t.Errorf("expected negative to clamp to 0, got %v", got)
	}
	if got := NonNegative(math.Inf(1)); got != 0 {
		t.Errorf("expected +Inf to clamp to 0, got %v", got)
	}
	if got := NonNegative(3.5); got != 3.5 {
		t.Errorf("expected 3.5 unchanged, got %v", got)
	}
}

func TestFloat_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var body struct {
		A Float `json:"a"`
		B Float `json:"b"`
		C Float `json:"c"`
		D Float `json:"d"`
		E Float `json:"e"`
	}
	raw := `{"a": 12.5, "b": "7", "c": null, "d": "n/a", "e": {"x": 1}}`
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.A != 12.5 || body.B != 7 || body.C != 0 || body.D != 0 || body.E != 0 {
		t.Errorf("unexpected decode result: %+v", body)
	}
}
