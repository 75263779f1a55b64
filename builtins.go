// builtins.go — built-in functions recognized in expression position
// (spec.md §4.5 "Built-ins"). Unlike user-defined functions, built-ins are
// pure: they never push an activation frame and are evaluated directly by
// the expression evaluator.
package vyra

import (
	"strconv"
	"strings"
)

// builtinNames is consulted by the expression evaluator (eval in exec.go)
// to tell a built-in call apart from a user-defined one: a `Call`
// expression node must name a built-in, and any other name is a NameError;
// user functions can only be invoked through the dedicated Call statement
// forms.
var builtinNames = map[string]bool{
	"length": true, "len": true, "abs": true, "round": true,
	"uppercase": true, "lowercase": true, "split": true, "join": true,
	"type_of": true, "to_number": true, "to_text": true, "to_integer": true,
}

// callBuiltin evaluates a built-in call given its already-evaluated
// arguments. pos is used for TypeError/ArityError reporting.
func callBuiltin(name string, args []Value, pos Pos) (Value, error) {
	switch name {
	case "length", "len":
		if err := arity(name, args, 1, pos); err != nil {
			return Value{}, err
		}
		switch args[0].Kind {
		case KindString:
			return IntVal(int64(len([]rune(args[0].S)))), nil
		case KindList:
			return IntVal(int64(len(args[0].List))), nil
		default:
			return Value{}, typeErr(pos, name+" expects text or a list, got "+args[0].TypeName())
		}

	case "abs":
		if err := arity(name, args, 1, pos); err != nil {
			return Value{}, err
		}
		switch args[0].Kind {
		case KindInt:
			n := args[0].I
			if n < 0 {
				n = -n
			}
			return IntVal(n), nil
		case KindFloat:
			f := args[0].F
			if f < 0 {
				f = -f
			}
			return FloatVal(f), nil
		default:
			return Value{}, typeErr(pos, "abs expects a number, got "+args[0].TypeName())
		}

	case "round":
		if err := arity(name, args, 1, pos); err != nil {
			return Value{}, err
		}
		if !args[0].IsNumeric() {
			return Value{}, typeErr(pos, "round expects a number, got "+args[0].TypeName())
		}
		f := args[0].AsFloat()
		r := int64(f)
		diff := f - float64(r)
		if diff >= 0.5 {
			r++
		} else if diff <= -0.5 {
			r--
		}
		return IntVal(r), nil

	case "uppercase":
		if err := arity(name, args, 1, pos); err != nil {
			return Value{}, err
		}
		if args[0].Kind != KindString {
			return Value{}, typeErr(pos, "uppercase expects text, got "+args[0].TypeName())
		}
		return StringVal(strings.ToUpper(args[0].S)), nil

	case "lowercase":
		if err := arity(name, args, 1, pos); err != nil {
			return Value{}, err
		}
		if args[0].Kind != KindString {
			return Value{}, typeErr(pos, "lowercase expects text, got "+args[0].TypeName())
		}
		return StringVal(strings.ToLower(args[0].S)), nil

	case "split":
		if err := arity(name, args, 2, pos); err != nil {
			return Value{}, err
		}
		if args[0].Kind != KindString || args[1].Kind != KindString {
			return Value{}, typeErr(pos, "split expects two text arguments")
		}
		parts := strings.Split(args[0].S, args[1].S)
		out := make([]Value, len(parts))
		for i, p := range parts {
			out[i] = StringVal(p)
		}
		return ListVal(out), nil

	case "join":
		if err := arity(name, args, 2, pos); err != nil {
			return Value{}, err
		}
		if args[0].Kind != KindList || args[1].Kind != KindString {
			return Value{}, typeErr(pos, "join expects a list and a text separator")
		}
		parts := make([]string, len(args[0].List))
		for i, e := range args[0].List {
			parts[i] = Stringify(e)
		}
		return StringVal(strings.Join(parts, args[1].S)), nil

	case "type_of":
		if err := arity(name, args, 1, pos); err != nil {
			return Value{}, err
		}
		return StringVal(args[0].TypeName()), nil

	case "to_number":
		if err := arity(name, args, 1, pos); err != nil {
			return Value{}, err
		}
		return toNumber(args[0], pos)

	case "to_integer":
		if err := arity(name, args, 1, pos); err != nil {
			return Value{}, err
		}
		v, err := toNumber(args[0], pos)
		if err != nil {
			return Value{}, err
		}
		if v.Kind == KindFloat {
			return IntVal(int64(v.F)), nil
		}
		return v, nil

	case "to_text":
		if err := arity(name, args, 1, pos); err != nil {
			return Value{}, err
		}
		return StringVal(Stringify(args[0])), nil

	default:
		return Value{}, &RuntimeError{ErrKind: KindNameError, Line: pos.Line, Col: pos.Col, Msg: "unknown function '" + name + "'"}
	}
}

func toNumber(v Value, pos Pos) (Value, error) {
	switch v.Kind {
	case KindInt, KindFloat:
		return v, nil
	case KindString:
		s := strings.TrimSpace(v.S)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return IntVal(n), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return FloatVal(f), nil
		}
		return Value{}, typeErr(pos, "cannot convert \""+v.S+"\" to a number")
	case KindBool:
		if v.B {
			return IntVal(1), nil
		}
		return IntVal(0), nil
	default:
		return Value{}, typeErr(pos, "cannot convert "+v.TypeName()+" to a number")
	}
}

func arity(name string, args []Value, n int, pos Pos) error {
	if len(args) != n {
		return &RuntimeError{ErrKind: KindArityError, Line: pos.Line, Col: pos.Col, Msg: name + " expects " + strconv.Itoa(n) + " argument(s), got " + strconv.Itoa(len(args))}
	}
	return nil
}

func typeErr(pos Pos, msg string) error {
	return &RuntimeError{ErrKind: KindTypeError, Line: pos.Line, Col: pos.Col, Msg: msg}
}
