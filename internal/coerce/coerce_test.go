package coerce

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
	}{
		{"nil", nil, 0},
		{"empty", "", 0},
		{"blank", "   ", 0},
		{"garbage", "abc", 0},
		{"thousands", "1,234.50", 1234.5},
		{"currency", "$ 12,000", 12000},
		{"negative", "-15.25", -15.25},
		{"float", 42.5, 42.5},
		{"int", 7, 7},
		{"json number", json.Number("3.14"), 3.14},
		{"nan string", "NaN", 0},
		{"inf string", "Inf", 0},
		{"nan float", math.NaN(), 0},
		{"inf float", math.Inf(1), 0},
		{"decimal", decimal.RequireFromString("9.75"), 9.75},
		{"bool", true, 0},
		{"object", map[string]any{"a": 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Number(tt.input); got != tt.want {
				t.Errorf("Number(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNumberIdempotent(t *testing.T) {
	inputs := []any{nil, "", "abc", "1,234.50", 12.5, -3, json.Number("8"), "NaN", math.Inf(-1)}
	for _, in := range inputs {
		once := Number(in)
		if twice := Number(once); twice != once {
			t.Errorf("Number(Number(%v)) = %v, want %v", in, twice, once)
		}
		if math.IsNaN(once) || math.IsInf(once, 0) {
			t.Errorf("Number(%v) is not finite: %v", in, once)
		}
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{nil, "0"},
		{"", "0"},
		{"abc", "0"},
		{"1,234.50", "1234.5"},
		{"0.00000001", "0.00000001"},
		{125.75, "125.75"},
		{json.Number("10"), "10"},
		{math.NaN(), "0"},
	}
	for _, tt := range tests {
		got := Amount(tt.input)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("Amount(%v) = %s, want %s", tt.input, got, tt.want)
		}
		if again := Amount(got); !again.Equal(got) {
			t.Errorf("Amount not idempotent for %v: %s then %s", tt.input, got, again)
		}
	}
}

func TestInt(t *testing.T) {
	if got := Int("42"); got != 42 {
		t.Errorf("Int(\"42\") = %d", got)
	}
	if got := Int(json.Number("9007199254740993")); got != 9007199254740993 {
		t.Errorf("Int keeps precision for json.Number, got %d", got)
	}
	if got := Int(12.9); got != 12 {
		t.Errorf("Int(12.9) = %d, want 12", got)
	}
	if got := Int("x"); got != 0 {
		t.Errorf("Int(\"x\") = %d, want 0", got)
	}
	if got := Int(math.Pow(2, 63)); got != 0 {
		t.Errorf("Int(2^63) = %d, want 0", got)
	}
	if got := Int(float64(math.MinInt64)); got != math.MinInt64 {
		t.Errorf("Int(-2^63) = %d, want %d", got, int64(math.MinInt64))
	}
}

func TestLeverage(t *testing.T) {
	tests := []struct {
		input any
		want  int
	}{
		{"1:100", 100},
		{"500", 500},
		{200.0, 200},
		{nil, 0},
		{"1:abc", 0},
	}
	for _, tt := range tests {
		if got := Leverage(tt.input); got != tt.want {
			t.Errorf("Leverage(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestBool(t *testing.T) {
	for _, v := range []any{true, "true", "TRUE", "1", 1.0, json.Number("1")} {
		if !Bool(v) {
			t.Errorf("Bool(%v) = false, want true", v)
		}
	}
	for _, v := range []any{false, "false", "", nil, 0.0, "no"} {
		if Bool(v) {
			t.Errorf("Bool(%v) = true, want false", v)
		}
	}
}

func TestTime(t *testing.T) {
	want := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	tests := []struct {
		name  string
		input any
	}{
		{"rfc3339", "2023-11-14T22:13:20Z"},
		{"millis rfc3339", "2023-11-14T22:13:20.000Z"},
		{"seconds", 1700000000.0},
		{"millis", json.Number("1700000000000")},
		{"numeric string", "1700000000"},
	}
	for _, tt := range tests {
		got, ok := Time(tt.input)
		if !ok || !got.Equal(want) {
			t.Errorf("%s: Time(%v) = %v, %v; want %v", tt.name, tt.input, got, ok, want)
		}
	}

	for _, bad := range []any{nil, "", "yesterday", 0, -5} {
		if _, ok := Time(bad); ok {
			t.Errorf("Time(%v) reported ok", bad)
		}
	}

	fallback := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := TimeOr(nil, fallback); !got.Equal(fallback) {
		t.Errorf("TimeOr fallback = %v", got)
	}
	if TimePtr("nope") != nil {
		t.Error("TimePtr should be nil for unparseable input")
	}
}

func TestStringPtr(t *testing.T) {
	if StringPtr("  ") != nil {
		t.Error("blank string should map to nil")
	}
	if p := StringPtr(" reason "); p == nil || *p != "reason" {
		t.Errorf("StringPtr trimmed value = %v", p)
	}
}
