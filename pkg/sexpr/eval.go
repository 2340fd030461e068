package sexpr

import (
	"io"
)

// DefaultStepLimit bounds evaluation steps per Run. Update payloads are
// attacker-supplied even after the signature check, so evaluation without a
// resource bound is a denial-of-service surface.
const DefaultStepLimit uint64 = 1_000_000

// Interp evaluates extension-language programs against a persistent global
// environment. Not safe for concurrent use; callers serialize access.
type Interp struct {
	global *Env
	output io.Writer
	limit  uint64
	steps  uint64
}

// Option configures an Interp.
type Option func(*Interp)

// WithOutput directs display output to w.
func WithOutput(w io.Writer) Option {
	return func(in *Interp) { in.output = w }
}

// WithStepLimit overrides the evaluation step budget. Zero disables the
// budget entirely.
func WithStepLimit(limit uint64) Option {
	return func(in *Interp) { in.limit = limit }
}

// New creates an interpreter with the primitive set seeded into a fresh
// global environment.
func New(opts ...Option) *Interp {
	in := &Interp{
		global: NewEnv(nil),
		output: io.Discard,
		limit:  DefaultStepLimit,
	}
	for _, opt := range opts {
		opt(in)
	}
	seedPrimitives(in.global)
	return in
}

// Global returns the top-level environment. Mutations made by evaluated
// code against this environment persist across runs; this is the mechanism
// by which accepted updates extend controller behavior.
func (in *Interp) Global() *Env {
	return in.global
}

// Run parses and evaluates every top-level form in src against the global
// environment, returning the value of the last form. The step budget resets
// at the start of each run.
func (in *Interp) Run(src string) (Value, error) {
	forms, err := ReadAll(src)
	if err != nil {
		return Value{}, err
	}
	in.steps = 0
	result := Undefined()
	for _, form := range forms {
		result, err = in.Eval(form, in.global)
		if err != nil {
			return Value{}, err
		}
	}
	return result, nil
}

// Eval evaluates a single form in env.
func (in *Interp) Eval(form Value, env *Env) (Value, error) {
	in.steps++
	if in.limit > 0 && in.steps > in.limit {
		return Value{}, errf(ErrBudgetExceeded, "evaluation step budget of %d exceeded", in.limit)
	}

	switch form.Kind {
	case KindInt, KindFloat, KindBool, KindStr, KindUndefined, KindPrimitive, KindLambda:
		return form, nil

	case KindSymbol:
		v, ok := env.Lookup(form.Str)
		if !ok {
			return Value{}, errf(ErrUnknownSymbol, "unknown symbol: %s", form.Str)
		}
		return v, nil

	case KindList:
		if len(form.List) == 0 {
			return EmptyList(), nil
		}
		if head := form.List[0]; head.Kind == KindSymbol {
			if result, handled, err := in.evalSpecialForm(head.Str, form.List[1:], env); handled {
				return result, err
			}
		}
		return in.evalApplication(form.List, env)

	default:
		return Value{}, errf(ErrSyntax, "cannot evaluate value of kind %s", form.Kind)
	}
}

// evalSpecialForm handles the forms that bypass normal application. The
// second return reports whether the symbol named a special form at all.
func (in *Interp) evalSpecialForm(name string, operands []Value, env *Env) (Value, bool, error) {
	switch name {
	case "quote":
		if len(operands) != 1 {
			return Value{}, true, errf(ErrSyntax, "quote expects one operand")
		}
		return operands[0], true, nil

	case "if":
		if len(operands) < 2 || len(operands) > 3 {
			return Value{}, true, errf(ErrSyntax, "if expects a condition and one or two branches")
		}
		cond, err := in.Eval(operands[0], env)
		if err != nil {
			return Value{}, true, err
		}
		if cond.Truthy() {
			v, err := in.Eval(operands[1], env)
			return v, true, err
		}
		if len(operands) == 3 {
			v, err := in.Eval(operands[2], env)
			return v, true, err
		}
		return Undefined(), true, nil

	case "define":
		if len(operands) != 2 || operands[0].Kind != KindSymbol {
			return Value{}, true, errf(ErrSyntax, "define expects a symbol and a value")
		}
		v, err := in.Eval(operands[1], env)
		if err != nil {
			return Value{}, true, err
		}
		env.Define(operands[0].Str, v)
		return v, true, nil

	case "set!":
		if len(operands) != 2 || operands[0].Kind != KindSymbol {
			return Value{}, true, errf(ErrSyntax, "set! expects a symbol and a value")
		}
		v, err := in.Eval(operands[1], env)
		if err != nil {
			return Value{}, true, err
		}
		if !env.Set(operands[0].Str, v) {
			return Value{}, true, errf(ErrUndefinedVariable, "set! of undefined variable: %s", operands[0].Str)
		}
		return v, true, nil

	case "lambda":
		if len(operands) != 2 || operands[0].Kind != KindList {
			return Value{}, true, errf(ErrSyntax, "lambda expects a parameter list and a body")
		}
		params := make([]string, len(operands[0].List))
		for i, p := range operands[0].List {
			if p.Kind != KindSymbol {
				return Value{}, true, errf(ErrSyntax, "lambda parameters must be symbols")
			}
			params[i] = p.Str
		}
		return Value{Kind: KindLambda, Lambda: &Lambda{
			Params: params,
			Body:   operands[1],
			Env:    env,
		}}, true, nil

	case "begin":
		result := Undefined()
		for _, op := range operands {
			var err error
			result, err = in.Eval(op, env)
			if err != nil {
				return Value{}, true, err
			}
		}
		return result, true, nil

	default:
		return Value{}, false, nil
	}
}

// evalApplication evaluates operator and operands left to right, then
// invokes the operator.
func (in *Interp) evalApplication(forms []Value, env *Env) (Value, error) {
	fn, err := in.Eval(forms[0], env)
	if err != nil {
		return Value{}, err
	}
	args := make([]Value, len(forms)-1)
	for i, operand := range forms[1:] {
		args[i], err = in.Eval(operand, env)
		if err != nil {
			return Value{}, err
		}
	}
	return in.Apply(fn, args)
}

// Apply invokes a primitive or lambda with already-evaluated arguments.
func (in *Interp) Apply(fn Value, args []Value) (Value, error) {
	switch fn.Kind {
	case KindPrimitive:
		return fn.Prim.Fn(in, args)

	case KindLambda:
		// No arity check: missing positions bind undefined, extras are
		// ignored.
		frame := NewEnv(fn.Lambda.Env)
		for i, param := range fn.Lambda.Params {
			if i < len(args) {
				frame.Define(param, args[i])
			} else {
				frame.Define(param, Undefined())
			}
		}
		return in.Eval(fn.Lambda.Body, frame)

	default:
		return Value{}, errf(ErrNotAFunction, "cannot apply non-function value %s", fn)
	}
}
