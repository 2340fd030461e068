package sexpr

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) Value {
	t.Helper()
	v, err := New().Run(src)
	require.NoError(t, err)
	return v
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want Value
	}{
		{"(+ 1 2 3)", Int(6)},
		{"(- 10 3 2)", Int(5)},
		{"(- 5)", Int(-5)},
		{"(* 2 3 4)", Int(24)},
		{"(/ 10 2)", Int(5)},
		{"(/ 1 2)", Float(0.5)},
		{"(+ 1 2.5)", Float(3.5)},
		{"(* 1.5 2)", Float(3)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			require.Equal(t, tt.want, run(t, tt.src))
		})
	}
}

func TestEvalComparisons(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"(= 1 1)", true},
		{"(= 1 2)", false},
		{"(= 1 1.0)", true},
		{"(< 1 2)", true},
		{"(< 2 1)", false},
		{"(> 3 2)", true},
		{"(> 2 3)", false},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			require.Equal(t, Bool(tt.want), run(t, tt.src))
		})
	}
}

func TestEvalSpecialForms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Value
	}{
		{"if true branch", "(if #t 1 2)", Int(1)},
		{"if false branch", "(if #f 1 2)", Int(2)},
		{"if without else", "(if #f 1)", Undefined()},
		{"define returns value", "(define x 5)", Int(5)},
		{"define then reference", "(define x 5) x", Int(5)},
		{"quote symbol", "(quote x)", Symbol("x")},
		{"quote list", "(quote (1 2))", ListOf(Int(1), Int(2))},
		{"begin returns last", "(begin 1 2 3)", Int(3)},
		{"set! mutates", "(define x 1) (set! x 7) x", Int(7)},
		{"string literal", `"hello"`, Str("hello")},
		{"empty form", "()", EmptyList()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, run(t, tt.src))
		})
	}
}

func TestEvalOnlyTakenBranchEvaluates(t *testing.T) {
	// The untaken branch references an unbound symbol; it must not run.
	v, err := New().Run("(if #t 1 nope)")
	require.NoError(t, err)
	require.Equal(t, Int(1), v)
}

func TestEvalListPrimitives(t *testing.T) {
	tests := []struct {
		src  string
		want Value
	}{
		{"(car (list 1 2 3))", Int(1)},
		{"(cdr (list 1 2 3))", ListOf(Int(2), Int(3))},
		{"(cons 0 (list 1 2))", ListOf(Int(0), Int(1), Int(2))},
		{"(null? (list))", Bool(true)},
		{"(null? (list 1))", Bool(false)},
		{"(car (list))", Undefined()},
		{"(cdr (list))", EmptyList()},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			require.Equal(t, tt.want, run(t, tt.src))
		})
	}
}

func TestEvalLambda(t *testing.T) {
	t.Run("application", func(t *testing.T) {
		require.Equal(t, Int(9), run(t, "((lambda (x) (* x x)) 3)"))
	})

	t.Run("closure captures defining environment", func(t *testing.T) {
		src := `
			(define make-adder (lambda (n) (lambda (x) (+ x n))))
			(define add5 (make-adder 5))
			(add5 2)`
		require.Equal(t, Int(7), run(t, src))
	})

	t.Run("missing arguments bind undefined", func(t *testing.T) {
		require.Equal(t, Undefined(), run(t, "((lambda (a b) b) 1)"))
	})

	t.Run("extra arguments are ignored", func(t *testing.T) {
		require.Equal(t, Int(1), run(t, "((lambda (a) a) 1 2 3)"))
	})

	t.Run("set! through closure mutates owning frame", func(t *testing.T) {
		src := `
			(define counter 0)
			(define bump (lambda () (set! counter (+ counter 1))))
			(bump)
			(bump)
			counter`
		require.Equal(t, Int(2), run(t, src))
	})
}

func TestEvalHigherOrder(t *testing.T) {
	tests := []struct {
		src  string
		want Value
	}{
		{"(map (lambda (x) (* x 2)) (list 1 2 3))", ListOf(Int(2), Int(4), Int(6))},
		{"(filter (lambda (x) (> x 1)) (list 1 2 3))", ListOf(Int(2), Int(3))},
		{`(assoc 2 (list (list 1 "a") (list 2 "b")))`, ListOf(Int(2), Str("b"))},
		{`(assoc 9 (list (list 1 "a")))`, Bool(false)},
		{"(eval (quote (+ 1 2)))", Int(3)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			require.Equal(t, tt.want, run(t, tt.src))
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantCode string
	}{
		{"unbound symbol", "nope", ErrUnknownSymbol},
		{"unterminated list", "(+ 1 2", ErrSyntax},
		{"stray closing delimiter", ")", ErrSyntax},
		{"unterminated string", `"abc`, ErrSyntax},
		{"applying a number", "(1 2 3)", ErrNotAFunction},
		{"set! of unbound symbol", "(set! nope 1)", ErrUndefinedVariable},
		{"division by zero", "(/ 1 0)", ErrBadArgument},
		{"adding a string", `(+ 1 "x")`, ErrBadArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Run(tt.src)
			require.Error(t, err)
			require.Equal(t, tt.wantCode, CodeOf(err))
		})
	}
}

func TestGlobalEnvironmentPersistsAcrossRuns(t *testing.T) {
	in := New()

	_, err := in.Run("(define greeting \"hi\")")
	require.NoError(t, err)

	v, err := in.Run("greeting")
	require.NoError(t, err)
	require.Equal(t, Str("hi"), v)
}

func TestDisplayOutput(t *testing.T) {
	var buf bytes.Buffer
	in := New(WithOutput(&buf))

	_, err := in.Run(`(display "reading" 42)`)
	require.NoError(t, err)
	require.Equal(t, "reading 42\n", buf.String())
}

func TestStepBudget(t *testing.T) {
	// An unbounded recursion must hit the budget instead of hanging.
	in := New(WithStepLimit(10_000))
	_, err := in.Run("(define loop (lambda () (loop))) (loop)")
	require.Error(t, err)
	require.Equal(t, ErrBudgetExceeded, CodeOf(err))

	// The budget resets per run; a subsequent well-behaved program works.
	v, err := in.Run("(+ 1 1)")
	require.NoError(t, err)
	require.Equal(t, Int(2), v)
}

func TestDefineTargetsCurrentFrame(t *testing.T) {
	// A define inside a lambda must not leak into the global frame.
	src := `
		(define x 1)
		((lambda () (define x 99)))
		x`
	require.Equal(t, Int(1), run(t, src))
}
