package semverrange

import (
	"testing"

	"github.com/Masterminds/semver/v3"
)

func TestRangeSubset(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"^2.1.0", "^2.0.0", true},
		{"^2.0.0", "^2.1.0", false},
		{"1.2.3", "^1.0.0", true},
		{"^1.0.0", "*", true},
		{"*", "^1.0.0", false},
		{"~1.2.3", "^1.2.0", true},
		{"^1.2.0", "~1.2.3", false},
		{"1.2.x", "~1.2.0", true},
		{"~1.2.0", "1.2.x", true},
		{">1.2", ">=1.3.0", true},
		{">=1.3.0", ">1.2", true},
		{"<=1.2", "<1.3.0", true},
		{"1.0.0 - 2.0.0", ">=1.0.0 <=2.0.0", true},
		{"1.0.0 - 2", "^1.0.0 || ^2.0.0", true},
		{"^1.0.0 || ^2.0.0", ">=1.0.0 <3.0.0", true},
		{">=1.0.0 <3.0.0", "^1.0.0 || ^2.0.0", true},
		{"^17.0.0 || ^18.0.0", "^18.0.0", false},
		{"^18.0.0", "^17.0.0 || ^18.0.0", true},
		{"^0.2.3", "0.2.x", true},
		{"^0.0.3", "<0.0.4", true},
		{"^0.0.3", "0.0.3", false},
		{"^1.0.0 ^2.0.0", "1.0.0", true},
		{">= 1.2.0", ">=1.0.0", true},
		{"v1.2.3", "=1.2.3", true},
		{"1.2.3-beta.1", "^1.2.0", true},
		{"<1.0.0 || >=2.0.0", ">=0.5.0", false},
		{"~1", "^1.0.0", true},
		{"^0", "<1.0.0", true},
		{"*", ">=0.0.0", true},
		{">=0.0.0", "*", true},
		{"x", ">=0", true},
		{"", ">=0.0.0", true},
		{"<1.0.0", ">=0.0.0 <1.0.0", true},
		{"<=1.2", "0.0.0 - 1.2", true},
	}

	for _, tt := range tests {
		t.Run(tt.a+" in "+tt.b, func(t *testing.T) {
			got := MustParse(tt.a).Subset(MustParse(tt.b))
			if got != tt.want {
				t.Errorf("Subset(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRangeContains(t *testing.T) {
	tests := []struct {
		r    string
		v    string
		want bool
	}{
		{"^1.2.3", "1.5.0", true},
		{"^1.2.3", "2.0.0", false},
		{"^1.2.3", "1.2.2", false},
		{"~0.4", "0.4.9", true},
		{"~0.4", "0.5.0", false},
		{">1.0.0 <1.0.0", "1.0.0", false},
		{"1.x || 3.x", "3.1.4", true},
		{"1.x || 3.x", "2.0.0", false},
		{"", "42.0.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.r+" "+tt.v, func(t *testing.T) {
			got := MustParse(tt.r).Contains(semver.MustParse(tt.v))
			if got != tt.want {
				t.Errorf("Contains(%q, %q) = %v, want %v", tt.r, tt.v, got, tt.want)
			}
		})
	}
}

func TestRangeEmpty(t *testing.T) {
	if !MustParse("^1.0.0 ^2.0.0").Empty() {
		t.Error("^1.0.0 ^2.0.0 should be empty")
	}
	if !MustParse("<*").Empty() {
		t.Error("<* should be empty")
	}
	if !MustParse("<0.0.0").Empty() {
		t.Error("<0.0.0 should be empty")
	}
	if MustParse(">=1.0.0 <=1.0.0").Empty() {
		t.Error(">=1.0.0 <=1.0.0 should contain 1.0.0")
	}
}

func TestParseErrors(t *testing.T) {
	for _, raw := range []string{"1.2.3.4", "abc", "^1.a", "1.2.3-beta$"} {
		t.Run(raw, func(t *testing.T) {
			if _, err := Parse(raw); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", raw)
			}
		})
	}
}

func TestRangeString(t *testing.T) {
	r := MustParse("^1.0.0 || ~2.1")
	if got := r.String(); got != "^1.0.0 || ~2.1" {
		t.Errorf("String() = %q, want %q", got, "^1.0.0 || ~2.1")
	}
}
