package symbolic

import (
	"errors"
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
)

func TestParseAndFormat(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"x", "x"},
		{"x + y", "x + y"},
		{"x - y", "x - y"},
		{"2*x", "2*x"},
		{"x**2", "x**2"},
		{"x^2", "x**2"},
		{"-x", "-x"},
		{"x/2", "x/2"},
		{"3/2*x", "3*x/2"},
		{"sin(x)", "sin(x)"},
		{"ln(x)", "log(x)"},
		{"abs(x)", "Abs(x)"},
		{"sqrt(x)", "sqrt(x)"},
		{"2*(x + 1)", "2*(x + 1)"},
		{"sin(x)**2", "sin(x)**2"},
		{"Derivative(x**2, x)", "Derivative(x**2, x)"},
		{"Derivative(sin(x), (x, 2))", "Derivative(sin(x), (x, 2))"},
		{"1/x", "1/x"},
		{"x**(-2)", "1/x**2"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			e, err := Parse(tc.in)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tc.in, err)
			}
			if got := Format(Simplify(e)); got != tc.want {
				t.Errorf("Format(Simplify(Parse(%q))) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"x +",
		"(x + 1",
		"x + 1)",
		"2 ** ",
		"unknownfn(",
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			if _, err := Parse(in); err == nil {
				t.Fatalf("Parse(%q) should have failed", in)
			} else if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("Parse(%q) error %v is not ErrInvalidInput", in, err)
			}
		})
	}
}

func TestSimplifyCanonicalForms(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2*x + 3*x", "5*x"},
		{"x + x", "2*x"},
		{"x - x", "0"},
		{"x*x", "x**2"},
		{"x**2*x**3", "x**5"},
		{"0*x", "0"},
		{"1*x", "x"},
		{"x + 0", "x"},
		{"x**1", "x"},
		{"x**0", "1"},
		{"2**10", "1024"},
		{"1/2 + 1/3", "5/6"},
		{"sqrt(4)", "2"},
		{"sin(0)", "0"},
		{"cos(0)", "1"},
		{"exp(0)", "1"},
		{"log(1)", "0"},
		{"log(E)", "1"},
		{"x**2 + 2*x + 1", "x**2 + 2*x + 1"},
		{"1 + 2*x + x**2", "x**2 + 2*x + 1"},
		{"2*x*3*y", "6*x*y"},
		{"(2*x + 1) + (3*x + 2)", "5*x + 3"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			e, err := Parse(tc.in)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tc.in, err)
			}
			if got := Format(Simplify(e)); got != tc.want {
				t.Errorf("Simplify(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// Identical input trees must print identically no matter how many times they
// are simplified; the engine's fixpoint detection depends on it.
func TestSimplifyDeterministic(t *testing.T) {
	inputs := []string{
		"3*x**2 + 2*x*y + y**2 - x*y",
		"sin(x)*cos(x)*2*x",
		"(x + 1)*(x - 1)*(x + 2)",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			var last string
			for i := 0; i < 5; i++ {
				e, err := Parse(in)
				if err != nil {
					t.Fatalf("Parse(%q) failed: %v", in, err)
				}
				got := Format(Simplify(e))
				if i > 0 && got != last {
					t.Fatalf("pass %d produced %q, previous pass produced %q", i, got, last)
				}
				last = got
			}
			// Simplify must be idempotent once canonical.
			e, _ := Parse(last)
			if again := Format(Simplify(e)); again != last {
				t.Errorf("re-simplifying %q changed it to %q", last, again)
			}
		})
	}
}

func TestFreeSymbols(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"x + y*z", []string{"x", "y", "z"}},
		{"sin(a) + 2", []string{"a"}},
		{"pi*E", nil},
		{"7", nil},
	}
	for _, tc := range cases {
		e, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tc.in, err)
		}
		got := FreeSymbols(e)
		if len(got) != len(tc.want) {
			t.Fatalf("FreeSymbols(%q) = %v, want %v", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("FreeSymbols(%q) = %v, want %v", tc.in, got, tc.want)
			}
		}
	}
}

func TestPendingDerivativeHelpers(t *testing.T) {
	inner, err := Parse("x**2")
	if err != nil {
		t.Fatal(err)
	}
	d := DerivOf(inner, "x", 1)
	wrapped := AddOf(N(1), d)

	if !HasPending(wrapped) {
		t.Fatal("expected pending derivative inside sum")
	}
	if got := FirstPending(wrapped); got == nil || got.Variable != "x" || got.Order != 1 {
		t.Fatalf("FirstPending = %+v", got)
	}

	replaced, ok := ReplaceFirstPending(wrapped, N(5))
	if !ok {
		t.Fatal("ReplaceFirstPending reported no substitution")
	}
	if HasPending(replaced) {
		t.Error("pending marker survived substitution")
	}
	if got := Format(Simplify(replaced)); got != "6" {
		t.Errorf("substituted tree simplifies to %q, want 6", got)
	}

	// Original tree is untouched.
	if !HasPending(wrapped) {
		t.Error("substitution mutated the source tree")
	}
}
