// exec.go — per-opcode dispatch (spec.md §4.5) and the shared expression
// evaluator. Private to the package; interpreter.go is the public surface.
package vyra

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// exec runs node n and returns the index of the next node to visit, or
// halted=true if execution is complete.
func (in *Interpreter) exec(n *Node, ceiling *int) (next int, halted bool, err error) {
	switch n.Op {
	case OpEntry:
		return n.Next, false, nil

	case OpAssign:
		v, err := in.eval(n.Expr, in.curEnv())
		if err != nil {
			return 0, false, err
		}
		in.curEnv().AssignOrDefine(n.Target, v)
		return n.Next, false, nil

	case OpDisplay:
		parts := make([]string, len(n.Exprs))
		for i, e := range n.Exprs {
			v, err := in.eval(e, in.curEnv())
			if err != nil {
				return 0, false, err
			}
			parts[i] = Stringify(v)
		}
		fmt.Fprintln(in.Stdout, strings.Join(parts, " "))
		return n.Next, false, nil

	case OpInput:
		return n.Next, false, in.execInput(n)

	case OpAddToList:
		v, err := in.eval(n.Expr, in.curEnv())
		if err != nil {
			return 0, false, err
		}
		cur, ok := in.curEnv().Lookup(n.Target)
		if !ok || cur.Kind != KindList {
			return 0, false, &RuntimeError{ErrKind: KindNameError, Line: n.Pos.Line, Col: n.Pos.Col, Msg: "'" + n.Target + "' is not a list"}
		}
		cur.List = append(cur.List, v)
		in.curEnv().AssignOrDefine(n.Target, cur)
		return n.Next, false, nil

	case OpBranch:
		v, err := in.eval(n.Expr, in.curEnv())
		if err != nil {
			return 0, false, err
		}
		if v.Truthy() {
			return n.Then, false, nil
		}
		return n.Else, false, nil

	case OpLoopHead:
		v, err := in.eval(n.Expr, in.curEnv())
		if err != nil {
			return 0, false, err
		}
		if !v.Truthy() {
			return n.ExitTo, false, nil
		}
		*ceiling--
		if *ceiling < 0 {
			return 0, false, &RuntimeError{ErrKind: KindIterationLimitExceeded, Line: n.Pos.Line, Col: n.Pos.Col, Msg: "loop exceeded the iteration ceiling"}
		}
		return n.Body, false, nil

	case OpForStep:
		return in.execForStep(n, ceiling)

	case OpBreakTarget, OpContinueTarget:
		return n.Next, false, nil

	case OpCall:
		return in.execCall(n)

	case OpReturn:
		return in.execReturn(n)

	case OpFuncEntry:
		return n.Next, false, nil

	case OpFuncExit:
		// Implicit fallthrough return: behaves exactly like `Return()`.
		return in.doReturn(nil, n.Pos)

	case OpReadFile:
		return n.Next, false, in.execReadFile(n)

	case OpWriteFile:
		return n.Next, false, in.execWriteFile(n)

	case OpHalt:
		return 0, true, nil

	default:
		return 0, false, &RuntimeError{ErrKind: KindNameError, Line: n.Pos.Line, Col: n.Pos.Col, Msg: "unreachable opcode " + n.Op.String()}
	}
}

func (in *Interpreter) execInput(n *Node) error {
	if n.Prompt != nil {
		v, err := in.eval(n.Prompt, in.curEnv())
		if err != nil {
			return err
		}
		fmt.Fprint(in.Stdout, Stringify(v))
	}
	line, err := in.Stdin.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil && line == "" {
		line = ""
	}
	if n.InputKind == "number" {
		if iv, perr := strconv.ParseInt(strings.TrimSpace(line), 10, 64); perr == nil {
			in.curEnv().AssignOrDefine(n.Target, IntVal(iv))
			return nil
		}
		fv, perr := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if perr != nil {
			return &RuntimeError{ErrKind: KindTypeError, Line: n.Pos.Line, Col: n.Pos.Col, Msg: "expected a number, got \"" + line + "\""}
		}
		in.curEnv().AssignOrDefine(n.Target, FloatVal(fv))
		return nil
	}
	in.curEnv().AssignOrDefine(n.Target, StringVal(line))
	return nil
}

// execForStep realizes n.Expr once (the first time this node is reached
// within the current activation), stashing the element list and cursor in
// two hidden variables in the current frame's own Env, keyed by this
// node's id. Graph nodes are shared/immutable across recursive calls, so
// the cursor cannot live on the node; it must live in the activation that
// is actually iterating.
func (in *Interpreter) execForStep(n *Node, ceiling *int) (int, bool, error) {
	env := in.curEnv()
	listVar := forListVar(n.ID)
	idxVar := forIdxVar(n.ID)

	if !env.HasLocal(listVar) {
		v, err := in.eval(n.Expr, env)
		if err != nil {
			return 0, false, err
		}
		elems, err := realizeSequence(v, n.Pos)
		if err != nil {
			return 0, false, err
		}
		env.Define(listVar, ListVal(elems))
		env.Define(idxVar, IntVal(0))
	}

	listV, _ := env.Lookup(listVar)
	idxV, _ := env.Lookup(idxVar)
	idx := int(idxV.I)

	if idx >= len(listV.List) {
		env.Undefine(listVar)
		env.Undefine(idxVar)
		return n.ExitTo, false, nil
	}

	*ceiling--
	if *ceiling < 0 {
		return 0, false, &RuntimeError{ErrKind: KindIterationLimitExceeded, Line: n.Pos.Line, Col: n.Pos.Col, Msg: "loop exceeded the iteration ceiling"}
	}

	env.AssignOrDefine(n.ForVar, listV.List[idx])
	env.Define(idxVar, IntVal(int64(idx+1)))
	return n.Body, false, nil
}

func forListVar(id int) string { return "__for_list_" + strconv.Itoa(id) }
func forIdxVar(id int) string  { return "__for_idx_" + strconv.Itoa(id) }

// realizeSequence implements the Open Question decision pinned in
// SPEC_FULL.md §13: iterating a string yields its Unicode characters (each
// a 1-rune string); iterating a list yields its elements.
func realizeSequence(v Value, pos Pos) ([]Value, error) {
	switch v.Kind {
	case KindList:
		out := make([]Value, len(v.List))
		copy(out, v.List)
		return out, nil
	case KindString:
		runes := []rune(v.S)
		out := make([]Value, len(runes))
		for i, r := range runes {
			out[i] = StringVal(string(r))
		}
		return out, nil
	default:
		return nil, typeErr(pos, "cannot iterate over "+v.TypeName())
	}
}

func (in *Interpreter) execCall(n *Node) (int, bool, error) {
	fi, ok := in.graph.Funcs[n.FuncName]
	if !ok {
		return 0, false, &RuntimeError{ErrKind: KindNameError, Line: n.Pos.Line, Col: n.Pos.Col, Msg: "undefined function '" + n.FuncName + "'"}
	}
	if len(n.Args) != len(fi.Params) {
		return 0, false, &RuntimeError{ErrKind: KindArityError, Line: n.Pos.Line, Col: n.Pos.Col, Msg: "'" + n.FuncName + "' expects " + strconv.Itoa(len(fi.Params)) + " argument(s), got " + strconv.Itoa(len(n.Args))}
	}
	argVals := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := in.eval(a, in.curEnv())
		if err != nil {
			return 0, false, err
		}
		argVals[i] = v
	}

	callEnv := NewEnv(in.global)
	for i, p := range fi.Params {
		callEnv.Define(p, argVals[i])
	}
	in.frames = append(in.frames, frame{env: callEnv, returnTarget: n.Next, resultName: n.ResultName, resultSet: n.ResultName != ""})
	return fi.EntryNode, false, nil
}

func (in *Interpreter) execReturn(n *Node) (int, bool, error) {
	return in.doReturn(n.Expr, n.Pos)
}

// doReturn implements the shared tail of RETURN and FUNC_EXIT (implicit
// return): evaluate the optional value, pop the current frame, store the
// result in the caller's result target if any, and resume at the caller's
// return target. Returning from the outermost frame halts (spec.md §4.5).
func (in *Interpreter) doReturn(expr Expr, pos Pos) (int, bool, error) {
	var v Value = Absent
	if expr != nil {
		val, err := in.eval(expr, in.curEnv())
		if err != nil {
			return 0, false, err
		}
		v = val
	}

	f := in.curFrame()
	returnTarget := f.returnTarget
	resultName := f.resultName
	in.frames = in.frames[:len(in.frames)-1]

	if len(in.frames) == 0 {
		return 0, true, nil // returning from the outermost frame halts
	}
	if resultName != "" {
		in.curEnv().AssignOrDefine(resultName, v)
	}
	return returnTarget, false, nil
}

func (in *Interpreter) execReadFile(n *Node) error {
	pathV, err := in.eval(n.PathExpr, in.curEnv())
	if err != nil {
		return err
	}
	if pathV.Kind != KindString {
		return typeErr(n.Pos, "file path must be text, got "+pathV.TypeName())
	}
	content, err := ReadFile(pathV.S)
	if err != nil {
		return err
	}
	in.curEnv().AssignOrDefine(n.Target, StringVal(content))
	return nil
}

func (in *Interpreter) execWriteFile(n *Node) error {
	pathV, err := in.eval(n.PathExpr, in.curEnv())
	if err != nil {
		return err
	}
	if pathV.Kind != KindString {
		return typeErr(n.Pos, "file path must be text, got "+pathV.TypeName())
	}
	contentV, err := in.eval(n.Expr, in.curEnv())
	if err != nil {
		return err
	}
	return WriteFile(pathV.S, Stringify(contentV), n.Append)
}

// --- expression evaluation ------------------------------------------------

func (in *Interpreter) eval(e Expr, env *Env) (Value, error) {
	switch x := e.(type) {
	case *Lit:
		return x.Value, nil

	case *Ident:
		v, ok := env.Lookup(x.Name)
		if !ok {
			return Value{}, &RuntimeError{ErrKind: KindNameError, Line: x.Pos.Line, Col: x.Pos.Col, Msg: "'" + x.Name + "' is not defined"}
		}
		return v, nil

	case *ListLit:
		elems := make([]Value, len(x.Elements))
		for i, el := range x.Elements {
			v, err := in.eval(el, env)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return ListVal(elems), nil

	case *Unary:
		return in.evalUnary(x, env)

	case *Binary:
		return in.evalBinary(x, env)

	case *Index:
		return in.evalIndex(x, env)

	case *Call:
		if !builtinNames[x.Name] {
			return Value{}, &RuntimeError{ErrKind: KindNameError, Line: x.Pos.Line, Col: x.Pos.Col, Msg: "'" + x.Name + "' cannot be called in expression position (use a Call statement)"}
		}
		args := make([]Value, len(x.Args))
		for i, a := range x.Args {
			v, err := in.eval(a, env)
			if err != nil {
				return Value{}, err
			}
			args[i] = v
		}
		return callBuiltin(x.Name, args, x.Pos)

	default:
		return Value{}, &RuntimeError{ErrKind: KindTypeError, Msg: "unhandled expression kind"}
	}
}

func (in *Interpreter) evalUnary(x *Unary, env *Env) (Value, error) {
	v, err := in.eval(x.X, env)
	if err != nil {
		return Value{}, err
	}
	switch x.Op {
	case "not":
		return BoolVal(!v.Truthy()), nil
	case "-":
		switch v.Kind {
		case KindInt:
			return IntVal(-v.I), nil
		case KindFloat:
			return FloatVal(-v.F), nil
		default:
			return Value{}, typeErr(x.Pos, "unary - expects a number, got "+v.TypeName())
		}
	default:
		return Value{}, typeErr(x.Pos, "unknown unary operator "+x.Op)
	}
}

func (in *Interpreter) evalBinary(x *Binary, env *Env) (Value, error) {
	// Short-circuit logical operators evaluate Y lazily.
	if x.Op == "and" {
		a, err := in.eval(x.X, env)
		if err != nil {
			return Value{}, err
		}
		if !a.Truthy() {
			return BoolVal(false), nil
		}
		b, err := in.eval(x.Y, env)
		if err != nil {
			return Value{}, err
		}
		return BoolVal(b.Truthy()), nil
	}
	if x.Op == "or" {
		a, err := in.eval(x.X, env)
		if err != nil {
			return Value{}, err
		}
		if a.Truthy() {
			return BoolVal(true), nil
		}
		b, err := in.eval(x.Y, env)
		if err != nil {
			return Value{}, err
		}
		return BoolVal(b.Truthy()), nil
	}

	a, err := in.eval(x.X, env)
	if err != nil {
		return Value{}, err
	}
	b, err := in.eval(x.Y, env)
	if err != nil {
		return Value{}, err
	}

	switch x.Op {
	case "followed_by":
		return StringVal(Stringify(a) + Stringify(b)), nil
	case "==":
		return BoolVal(Equal(a, b)), nil
	case "!=":
		return BoolVal(!Equal(a, b)), nil
	case "<", "<=", ">", ">=":
		return compareOp(x.Op, a, b, x.Pos)
	case "+", "-", "*", "/", "%", "**":
		return arithOp(x.Op, a, b, x.Pos)
	default:
		return Value{}, typeErr(x.Pos, "unknown binary operator "+x.Op)
	}
}

func compareOp(op string, a, b Value, pos Pos) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		if a.Kind == KindString && b.Kind == KindString {
			switch op {
			case "<":
				return BoolVal(a.S < b.S), nil
			case "<=":
				return BoolVal(a.S <= b.S), nil
			case ">":
				return BoolVal(a.S > b.S), nil
			case ">=":
				return BoolVal(a.S >= b.S), nil
			}
		}
		return Value{}, typeErr(pos, "cannot compare "+a.TypeName()+" and "+b.TypeName())
	}
	fa, fb := a.AsFloat(), b.AsFloat()
	switch op {
	case "<":
		return BoolVal(fa < fb), nil
	case "<=":
		return BoolVal(fa <= fb), nil
	case ">":
		return BoolVal(fa > fb), nil
	case ">=":
		return BoolVal(fa >= fb), nil
	default:
		return Value{}, typeErr(pos, "unknown comparison "+op)
	}
}

func arithOp(op string, a, b Value, pos Pos) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Value{}, typeErr(pos, "arithmetic operator '"+op+"' expects numbers, got "+a.TypeName()+" and "+b.TypeName())
	}
	bothInt := a.Kind == KindInt && b.Kind == KindInt

	switch op {
	case "+":
		if bothInt {
			return IntVal(a.I + b.I), nil
		}
		return FloatVal(a.AsFloat() + b.AsFloat()), nil
	case "-":
		if bothInt {
			return IntVal(a.I - b.I), nil
		}
		return FloatVal(a.AsFloat() - b.AsFloat()), nil
	case "*":
		if bothInt {
			return IntVal(a.I * b.I), nil
		}
		return FloatVal(a.AsFloat() * b.AsFloat()), nil
	case "/":
		if bothInt {
			if b.I == 0 {
				return Value{}, &RuntimeError{ErrKind: KindDivisionByZero, Line: pos.Line, Col: pos.Col, Msg: "division by zero"}
			}
			if a.I%b.I == 0 {
				return IntVal(a.I / b.I), nil
			}
			return FloatVal(float64(a.I) / float64(b.I)), nil
		}
		fb := b.AsFloat()
		if fb == 0 {
			return Value{}, &RuntimeError{ErrKind: KindDivisionByZero, Line: pos.Line, Col: pos.Col, Msg: "division by zero"}
		}
		return FloatVal(a.AsFloat() / fb), nil
	case "%":
		if bothInt {
			if b.I == 0 {
				return Value{}, &RuntimeError{ErrKind: KindDivisionByZero, Line: pos.Line, Col: pos.Col, Msg: "modulo by zero"}
			}
			return IntVal(a.I % b.I), nil
		}
		fb := b.AsFloat()
		if fb == 0 {
			return Value{}, &RuntimeError{ErrKind: KindDivisionByZero, Line: pos.Line, Col: pos.Col, Msg: "modulo by zero"}
		}
		return FloatVal(math.Mod(a.AsFloat(), fb)), nil
	case "**":
		if bothInt && b.I >= 0 {
			return IntVal(ipow(a.I, b.I)), nil
		}
		return FloatVal(math.Pow(a.AsFloat(), b.AsFloat())), nil
	default:
		return Value{}, typeErr(pos, "unknown arithmetic operator "+op)
	}
}

func ipow(base, exp int64) int64 {
	var result int64 = 1
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func (in *Interpreter) evalIndex(x *Index, env *Env) (Value, error) {
	seq, err := in.eval(x.Seq, env)
	if err != nil {
		return Value{}, err
	}
	idxV, err := in.eval(x.Idx, env)
	if err != nil {
		return Value{}, err
	}
	if idxV.Kind != KindInt {
		return Value{}, typeErr(x.Pos, "index must be an integer, got "+idxV.TypeName())
	}
	i := int(idxV.I) - 1 // spec's "item N of Seq" is 1-based
	switch seq.Kind {
	case KindList:
		if i < 0 || i >= len(seq.List) {
			return Value{}, &RuntimeError{ErrKind: KindIndexError, Line: x.Pos.Line, Col: x.Pos.Col, Msg: "index out of range"}
		}
		return seq.List[i], nil
	case KindString:
		runes := []rune(seq.S)
		if i < 0 || i >= len(runes) {
			return Value{}, &RuntimeError{ErrKind: KindIndexError, Line: x.Pos.Line, Col: x.Pos.Col, Msg: "index out of range"}
		}
		return StringVal(string(runes[i])), nil
	default:
		return Value{}, typeErr(x.Pos, "cannot index "+seq.TypeName())
	}
}
