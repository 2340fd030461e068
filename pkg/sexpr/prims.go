package sexpr

import "fmt"

// seedPrimitives installs the built-in capability surface into a global
// frame. This set is deliberately closed: no filesystem, network, or host
// state primitive is exposed, which makes the interpreter a least-privilege
// sandbox for update payloads.
func seedPrimitives(global *Env) {
	def := func(name string, fn func(in *Interp, args []Value) (Value, error)) {
		global.Define(name, Value{Kind: KindPrimitive, Prim: &Primitive{Name: name, Fn: fn}})
	}

	def("+", primAdd)
	def("-", primSub)
	def("*", primMul)
	def("/", primDiv)
	def("=", primNumEq)
	def("<", primLess)
	def(">", primGreater)
	def("list", primList)
	def("car", primCar)
	def("cdr", primCdr)
	def("cons", primCons)
	def("null?", primNull)
	def("filter", primFilter)
	def("map", primMap)
	def("assoc", primAssoc)
	def("display", primDisplay)
	def("eval", primEval)
}

func requireNumbers(name string, args []Value) error {
	for _, a := range args {
		if !a.IsNumber() {
			return errf(ErrBadArgument, "%s expects numbers, got %s", name, a.Kind)
		}
	}
	return nil
}

// allInts reports whether every argument is an integer, letting arithmetic
// stay in the integer domain when possible.
func allInts(args []Value) bool {
	for _, a := range args {
		if a.Kind != KindInt {
			return false
		}
	}
	return true
}

func primAdd(_ *Interp, args []Value) (Value, error) {
	if err := requireNumbers("+", args); err != nil {
		return Value{}, err
	}
	if allInts(args) {
		var sum int64
		for _, a := range args {
			sum += a.Int
		}
		return Int(sum), nil
	}
	var sum float64
	for _, a := range args {
		sum += a.AsFloat()
	}
	return Float(sum), nil
}

func primSub(_ *Interp, args []Value) (Value, error) {
	if err := requireNumbers("-", args); err != nil {
		return Value{}, err
	}
	if len(args) == 0 {
		return Value{}, errf(ErrBadArgument, "- expects at least one argument")
	}
	// Unary minus is negation.
	if len(args) == 1 {
		if args[0].Kind == KindInt {
			return Int(-args[0].Int), nil
		}
		return Float(-args[0].Float), nil
	}
	if allInts(args) {
		acc := args[0].Int
		for _, a := range args[1:] {
			acc -= a.Int
		}
		return Int(acc), nil
	}
	acc := args[0].AsFloat()
	for _, a := range args[1:] {
		acc -= a.AsFloat()
	}
	return Float(acc), nil
}

func primMul(_ *Interp, args []Value) (Value, error) {
	if err := requireNumbers("*", args); err != nil {
		return Value{}, err
	}
	if allInts(args) {
		var prod int64 = 1
		for _, a := range args {
			prod *= a.Int
		}
		return Int(prod), nil
	}
	var prod float64 = 1
	for _, a := range args {
		prod *= a.AsFloat()
	}
	return Float(prod), nil
}

func primDiv(_ *Interp, args []Value) (Value, error) {
	if err := requireNumbers("/", args); err != nil {
		return Value{}, err
	}
	if len(args) == 0 {
		return Value{}, errf(ErrBadArgument, "/ expects at least one argument")
	}
	for _, a := range args[1:] {
		if a.AsFloat() == 0 {
			return Value{}, errf(ErrBadArgument, "division by zero")
		}
	}
	if len(args) == 1 {
		return Float(1 / args[0].AsFloat()), nil
	}
	// Integer division stays integral only when it divides evenly.
	if allInts(args) {
		acc := args[0].Int
		exact := true
		for _, a := range args[1:] {
			if acc%a.Int != 0 {
				exact = false
				break
			}
			acc /= a.Int
		}
		if exact {
			return Int(acc), nil
		}
	}
	facc := args[0].AsFloat()
	for _, a := range args[1:] {
		facc /= a.AsFloat()
	}
	return Float(facc), nil
}

func requireBinary(name string, args []Value) error {
	if len(args) != 2 {
		return errf(ErrBadArgument, "%s expects exactly two arguments", name)
	}
	return nil
}

func primNumEq(_ *Interp, args []Value) (Value, error) {
	if err := requireBinary("=", args); err != nil {
		return Value{}, err
	}
	return Bool(args[0].Equal(args[1])), nil
}

func primLess(_ *Interp, args []Value) (Value, error) {
	if err := requireBinary("<", args); err != nil {
		return Value{}, err
	}
	if err := requireNumbers("<", args); err != nil {
		return Value{}, err
	}
	return Bool(args[0].AsFloat() < args[1].AsFloat()), nil
}

func primGreater(_ *Interp, args []Value) (Value, error) {
	if err := requireBinary(">", args); err != nil {
		return Value{}, err
	}
	if err := requireNumbers(">", args); err != nil {
		return Value{}, err
	}
	return Bool(args[0].AsFloat() > args[1].AsFloat()), nil
}

func primList(_ *Interp, args []Value) (Value, error) {
	return ListOf(args...), nil
}

func requireList(name string, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, errf(ErrBadArgument, "%s expects exactly one argument", name)
	}
	if args[0].Kind != KindList {
		return Value{}, errf(ErrBadArgument, "%s expects a list, got %s", name, args[0].Kind)
	}
	return args[0], nil
}

func primCar(_ *Interp, args []Value) (Value, error) {
	l, err := requireList("car", args)
	if err != nil {
		return Value{}, err
	}
	if len(l.List) == 0 {
		return Undefined(), nil
	}
	return l.List[0], nil
}

func primCdr(_ *Interp, args []Value) (Value, error) {
	l, err := requireList("cdr", args)
	if err != nil {
		return Value{}, err
	}
	if len(l.List) == 0 {
		return EmptyList(), nil
	}
	rest := make([]Value, len(l.List)-1)
	copy(rest, l.List[1:])
	return ListOf(rest...), nil
}

func primCons(_ *Interp, args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, errf(ErrBadArgument, "cons expects exactly two arguments")
	}
	if args[1].Kind != KindList {
		return Value{}, errf(ErrBadArgument, "cons expects a list as second argument, got %s", args[1].Kind)
	}
	out := make([]Value, 0, len(args[1].List)+1)
	out = append(out, args[0])
	out = append(out, args[1].List...)
	return ListOf(out...), nil
}

func primNull(_ *Interp, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, errf(ErrBadArgument, "null? expects exactly one argument")
	}
	return Bool(args[0].Kind == KindList && len(args[0].List) == 0), nil
}

func primFilter(in *Interp, args []Value) (Value, error) {
	if len(args) != 2 || args[1].Kind != KindList {
		return Value{}, errf(ErrBadArgument, "filter expects a function and a list")
	}
	var out []Value
	for _, elem := range args[1].List {
		keep, err := in.Apply(args[0], []Value{elem})
		if err != nil {
			return Value{}, err
		}
		if keep.Truthy() {
			out = append(out, elem)
		}
	}
	return ListOf(out...), nil
}

func primMap(in *Interp, args []Value) (Value, error) {
	if len(args) != 2 || args[1].Kind != KindList {
		return Value{}, errf(ErrBadArgument, "map expects a function and a list")
	}
	out := make([]Value, len(args[1].List))
	for i, elem := range args[1].List {
		mapped, err := in.Apply(args[0], []Value{elem})
		if err != nil {
			return Value{}, err
		}
		out[i] = mapped
	}
	return ListOf(out...), nil
}

// primAssoc performs a first-match linear lookup keyed by the first element
// of each pairing. Returns #f when no pairing matches.
func primAssoc(_ *Interp, args []Value) (Value, error) {
	if len(args) != 2 || args[1].Kind != KindList {
		return Value{}, errf(ErrBadArgument, "assoc expects a key and a list of pairings")
	}
	for _, pairing := range args[1].List {
		if pairing.Kind != KindList || len(pairing.List) == 0 {
			continue
		}
		if pairing.List[0].Equal(args[0]) {
			return pairing, nil
		}
	}
	return Bool(false), nil
}

func primDisplay(in *Interp, args []Value) (Value, error) {
	for i, a := range args {
		if i > 0 {
			fmt.Fprint(in.output, " ")
		}
		if a.Kind == KindStr {
			fmt.Fprint(in.output, a.Str)
		} else {
			fmt.Fprint(in.output, a.String())
		}
	}
	fmt.Fprintln(in.output)
	return Undefined(), nil
}

// primEval evaluates an already-parsed form in the global environment.
func primEval(in *Interp, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, errf(ErrBadArgument, "eval expects exactly one argument")
	}
	return in.Eval(args[0], in.global)
}
