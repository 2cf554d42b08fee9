package symbolic

import "testing"

func TestExpandExpr(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"(x + 1)**2", "x**2 + 2*x + 1"},
		{"(x + 1)*(x - 1)", "x**2 - 1"},
		{"2*(x + 3)", "2*x + 6"},
		{"(x + y)**2", "x**2 + 2*x*y + y**2"},
		{"x*(x + 1) + 1", "x**2 + x + 1"},
		{"(x + 1)**3", "x**3 + 3*x**2 + 3*x + 1"},
		{"x + 1", "x + 1"},
		{"sin((x + 1)*(x - 1))", "sin(x**2 - 1)"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := Format(ExpandExpr(mustParse(t, tc.in)))
			if got != tc.want {
				t.Errorf("expand(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFactorExpr(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"x**2 + 2*x + 1", "(x + 1)**2"},
		{"x**2 - 1", "(x + 1)*(x - 1)"},
		{"x**2 + 3*x + 2", "(x + 1)*(x + 2)"},
		{"2*x + 2", "2*(x + 1)"},
		{"x**2 + x", "x*(x + 1)"},
		{"2*x**2 + 5*x + 2", "(2*x + 1)*(x + 2)"},
		{"x**2 + 1", "x**2 + 1"},
		{"x + 5", "x + 5"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := Format(FactorExpr(mustParse(t, tc.in)))
			if got != tc.want {
				t.Errorf("factor(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFactorEvenPowerBinomials(t *testing.T) {
	// A lone even-degree term must be read as a quadratic in the half-degree
	// power, not as linear in u = x**deg.
	inputs := []string{"x**2 - 1", "x**4 - 16", "x**4 - 1"}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			factored := FactorExpr(mustParse(t, in))
			if Equal(factored, Simplify(mustParse(t, in))) {
				t.Fatalf("factor(%q) = %q, expression was not factored", in, Format(factored))
			}
			want := Format(ExpandExpr(mustParse(t, in)))
			if back := Format(ExpandExpr(factored)); back != want {
				t.Errorf("expand(factor(%q)) = %q, want %q", in, back, want)
			}
		})
	}
}

func TestFactorRoundTripsExpand(t *testing.T) {
	// Factoring then expanding must recover the expanded form.
	inputs := []string{
		"x**2 + 2*x + 1",
		"x**2 - 4",
		"3*x**2 + 6*x",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			expanded := Format(ExpandExpr(mustParse(t, in)))
			factored := FactorExpr(mustParse(t, in))
			back := Format(ExpandExpr(factored))
			if back != expanded {
				t.Errorf("expand(factor(%q)) = %q, want %q", in, back, expanded)
			}
		})
	}
}

func TestTrigSimplify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"sin(x)**2 + cos(x)**2", "1"},
		{"2*sin(x)**2 + 2*cos(x)**2", "2"},
		{"sin(x)**2 + cos(x)**2 + 5", "6"},
		{"cosh(x)**2 - sinh(x)**2", "1"},
		{"1 + tan(x)**2", "sec(x)**2"},
		{"1 + cot(x)**2", "csc(x)**2"},
		{"sin(y)**2 + cos(x)**2", "cos(x)**2 + sin(y)**2"},
		{"sin(x)**2 + 2*cos(x)**2", "2*cos(x)**2 + sin(x)**2"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := Format(TrigSimplify(mustParse(t, tc.in)))
			if got != tc.want {
				t.Errorf("trigsimp(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
