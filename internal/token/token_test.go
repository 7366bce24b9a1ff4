package token

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Fix the DB!!", "fix the db"},
		{"  multi-tenant   auth_flow  ", "multi-tenant auth_flow"},
		{"", ""},
		{"?!.,;", ""},
		{"pytest async mock failures", "pytest async mock failures"},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestContentWords(t *testing.T) {
	t.Parallel()

	got := ContentWords("How to test the test suite, please?")
	want := []string{"test", "suite"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ContentWords mismatch (-want +got):\n%s", diff)
	}

	if got := ContentWords(""); got != nil {
		t.Errorf("empty query should yield nil, got %v", got)
	}
}

func TestOverlap(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b []string
		want float64
	}{
		{"identical", []string{"a", "b"}, []string{"a", "b"}, 1.0},
		{"disjoint", []string{"a"}, []string{"b"}, 0.0},
		{"half", []string{"a", "b"}, []string{"b", "c"}, 1.0 / 3.0},
		{"empty", nil, []string{"a"}, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlap(tc.a, tc.b); got != tc.want {
				t.Errorf("Overlap = %v, want %v", got, tc.want)
			}
		})
	}
}
