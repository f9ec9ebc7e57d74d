package datagen

import (
	"strings"
	"testing"

	"github.com/docload/docload/internal/workload"
)

func TestConvertOutputString(t *testing.T) {
	g := New(WithSeed(1))
	spec := workload.ParameterSpec{Name: "n", Type: "random_int", Start: 100, End: 999, As: "string"}
	v := g.Generate(spec, nil)
	s, ok := v.(string)
	if !ok {
		t.Fatalf("random_int as string = %T, want string", v)
	}
	if len(s) != 3 {
		t.Errorf("coerced value = %q, want a three-digit decimal string", s)
	}
}

func TestConvertOutputGUIDAsHex(t *testing.T) {
	g := New(WithSeed(1))
	spec := workload.ParameterSpec{Name: "id", Type: "guid", As: "hex"}
	v := g.Generate(spec, nil).(string)
	if len(v) != 32 {
		t.Fatalf("guid as hex = %q (len %d), want 32 chars", v, len(v))
	}
	if strings.Contains(v, "-") {
		t.Errorf("guid as hex = %q, want dashes stripped", v)
	}
	if !isHex(v) {
		t.Errorf("guid as hex = %q, want lowercase hex digits only", v)
	}
}

func TestConvertOutputFailureReturnsValueUnchanged(t *testing.T) {
	g := New()
	spec := workload.ParameterSpec{Name: "l", Type: "random_list", List: []any{[]any{"x"}}, As: "int"}
	v := g.Generate(spec, nil)
	if _, ok := v.([]any); !ok {
		t.Errorf("failed conversion = %v (%T), want the unconverted value", v, v)
	}
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		in   any
		want int64
		ok   bool
	}{
		{42, 42, true},
		{int64(-8), -8, true},
		{3.9, 3, true},
		{true, 1, true},
		{false, 0, true},
		{"123", 123, true},
		{"id-456", 456, true},
		{"-77abc", -77, true},
		{"", 0, true},
		{"no digits", 0, true},
		{[]any{1}, 0, false},
	}
	for _, tt := range tests {
		got, ok := coerceInt(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("coerceInt(%v) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{1.5, 1.5, true},
		{int64(2), 2, true},
		{"3.25", 3.25, true},
		{"$9.99", 9.99, true},
		{".", 0, true},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := coerceFloat(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("coerceFloat(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCoerceBool(t *testing.T) {
	truthy := []any{true, 1, int64(7), 0.5, "true", "TRUE", " yes ", "y", "1"}
	for _, v := range truthy {
		if !coerceBool(v) {
			t.Errorf("coerceBool(%v) = false, want true", v)
		}
	}
	falsy := []any{false, 0, "false", "no", "", "2", nil}
	for _, v := range falsy {
		if coerceBool(v) {
			t.Errorf("coerceBool(%v) = true, want false", v)
		}
	}
}

func TestCoerceHexStrings(t *testing.T) {
	g := New()
	tests := []struct {
		in   any
		want string
	}{
		{"ABCD-EF01", "abcdef01"},
		{int64(255), "ff"},
		{[]byte{0xde, 0xad}, "dead"},
		{"hi", "6869"}, // not hex-shaped, so byte-encoded
	}
	for _, tt := range tests {
		got, ok := g.coerceHex(tt.in)
		if !ok || got != tt.want {
			t.Errorf("coerceHex(%v) = (%q, %v), want (%q, true)", tt.in, got, ok, tt.want)
		}
	}
}
