// builder.go — graph builder: lowers the statement AST into the logic-graph
// IR (spec.md §4.4) using continuation-passing lowering: lowerStmts takes
// the index of the node execution should continue at once the statement
// list finishes, and returns the index of the list's own entry node.
package vyra

// loopCtx tracks the innermost loop's Break/Continue targets while lowering
// its body, mirroring the teacher's nested-scope stacks for control-flow
// constructs.
type loopCtx struct {
	breakTarget    int // BREAK_TARGET node index
	continueTarget int // CONTINUE_TARGET node index
}

// Builder lowers a parsed program into a Graph.
type Builder struct {
	g        *Graph
	loops    []loopCtx
	counterN int // fresh-name counter for Repeat's hidden counter variables
}

// NewBuilder creates a Builder over a fresh Graph.
func NewBuilder() *Builder {
	return &Builder{g: NewGraph()}
}

// Build lowers prog into a complete, validated Graph whose Entry node is
// reachable from program start and whose last top-level statement's `next`
// reaches a HALT node.
func (b *Builder) Build(prog []Stmt) (*Graph, error) {
	halt := b.g.add(OpHalt, Pos{})
	entry := b.lowerStmts(prog, halt.ID)
	b.g.Entry = entry
	if err := b.g.Validate(); err != nil {
		return nil, err
	}
	return b.g, nil
}

// lowerStmts lowers a statement list whose control, after the last
// statement executes, continues at node succ. Returns the entry node index
// of the list (succ itself if the list is empty).
func (b *Builder) lowerStmts(stmts []Stmt, succ int) int {
	next := succ
	for i := len(stmts) - 1; i >= 0; i-- {
		next = b.lowerStmt(stmts[i], next)
	}
	return next
}

func (b *Builder) lowerStmt(s Stmt, succ int) int {
	switch st := s.(type) {
	case *Assign:
		n := b.g.add(OpAssign, st.Position())
		n.Target, n.Expr = st.Name, st.Value
		n.Next = succ
		return n.ID

	case *Display:
		n := b.g.add(OpDisplay, st.Position())
		n.Exprs = st.Values
		n.Next = succ
		return n.ID

	case *Input:
		n := b.g.add(OpInput, st.Position())
		n.Target, n.Prompt, n.InputKind = st.Name, st.Prompt, st.Kind
		n.Next = succ
		return n.ID

	case *AddToList:
		n := b.g.add(OpAddToList, st.Position())
		n.Target, n.Expr = st.Name, st.Value
		n.Next = succ
		return n.ID

	case *If:
		return b.lowerIf(st, succ)

	case *While:
		return b.lowerWhile(st, succ)

	case *Repeat:
		return b.lowerRepeat(st, succ)

	case *ForEach:
		return b.lowerForEach(st, succ)

	case *Break:
		if len(b.loops) == 0 {
			return succ // unreachable if parser/validator is correct; degrade to fallthrough
		}
		return b.loops[len(b.loops)-1].breakTarget

	case *Continue:
		if len(b.loops) == 0 {
			return succ
		}
		return b.loops[len(b.loops)-1].continueTarget

	case *FuncDef:
		b.lowerFuncDef(st)
		return succ // definitions don't occupy the enclosing control flow

	case *Return:
		n := b.g.add(OpReturn, st.Position())
		n.Expr = st.Value
		return n.ID

	case *CallStmt:
		n := b.g.add(OpCall, st.Position())
		n.FuncName, n.Args = st.Call.Name, st.Call.Args
		n.Next = succ
		return n.ID

	case *CallAssign:
		n := b.g.add(OpCall, st.Position())
		n.FuncName, n.Args, n.ResultName = st.Call.Name, st.Call.Args, st.Target
		n.Next = succ
		return n.ID

	case *ReadFileStmt:
		n := b.g.add(OpReadFile, st.Position())
		n.PathExpr, n.Target = st.Path, st.Name
		n.Next = succ
		return n.ID

	case *WriteFileStmt:
		n := b.g.add(OpWriteFile, st.Position())
		n.PathExpr, n.Expr, n.Append = st.Path, st.Content, st.Append
		n.Next = succ
		return n.ID

	default:
		panic("vyra: unhandled statement kind in lowering")
	}
}

func (b *Builder) lowerIf(st *If, succ int) int {
	elseEntry := succ
	if st.Else != nil {
		elseEntry = b.lowerStmts(st.Else, succ)
	}
	for i := len(st.Elifs) - 1; i >= 0; i-- {
		clause := st.Elifs[i]
		thenEntry := b.lowerStmts(clause.Body, succ)
		n := b.g.add(OpBranch, st.Position())
		n.Expr = clause.Cond
		n.Then, n.Else = thenEntry, elseEntry
		elseEntry = n.ID
	}
	thenEntry := b.lowerStmts(st.Then, succ)
	n := b.g.add(OpBranch, st.Position())
	n.Expr = st.Cond
	n.Then, n.Else = thenEntry, elseEntry
	return n.ID
}

func (b *Builder) lowerWhile(st *While, succ int) int {
	breakMarker := b.g.add(OpBreakTarget, st.Position())
	breakMarker.Next = succ

	head := b.g.add(OpLoopHead, st.Position())
	head.Expr = st.Cond
	head.ExitTo = breakMarker.ID

	contMarker := b.g.add(OpContinueTarget, st.Position())
	contMarker.Next = head.ID

	b.loops = append(b.loops, loopCtx{breakTarget: breakMarker.ID, continueTarget: contMarker.ID})
	bodyEntry := b.lowerStmts(st.Body, head.ID)
	b.loops = b.loops[:len(b.loops)-1]

	head.Body = bodyEntry
	return head.ID
}

// lowerRepeat desugars `Repeat(N, body)` into a While loop guarded by a
// fresh hidden counter (spec.md §4.4), matching §9's mandated desugaring.
func (b *Builder) lowerRepeat(st *Repeat, succ int) int {
	counter := b.freshCounterName()
	pos := st.Position()

	init := b.g.add(OpAssign, pos)
	init.Target = counter
	init.Expr = &Lit{base: base{pos}, Value: IntVal(0)}

	cond := &Binary{base: base{pos}, Op: "<", X: &Ident{base: base{pos}, Name: counter}, Y: st.Count}

	breakMarker := b.g.add(OpBreakTarget, pos)
	breakMarker.Next = succ

	head := b.g.add(OpLoopHead, pos)
	head.Expr = cond
	head.ExitTo = breakMarker.ID

	contMarker := b.g.add(OpContinueTarget, pos)
	contMarker.Next = head.ID

	incr := b.g.add(OpAssign, pos)
	incr.Target = counter
	incr.Expr = &Binary{base: base{pos}, Op: "+", X: &Ident{base: base{pos}, Name: counter}, Y: &Lit{base: base{pos}, Value: IntVal(1)}}
	incr.Next = head.ID

	b.loops = append(b.loops, loopCtx{breakTarget: breakMarker.ID, continueTarget: contMarker.ID})
	bodyEntry := b.lowerStmts(st.Body, incr.ID)
	b.loops = b.loops[:len(b.loops)-1]

	head.Body = bodyEntry
	init.Next = head.ID
	return init.ID
}

func (b *Builder) freshCounterName() string {
	b.counterN++
	return counterNamePrefix(b.counterN)
}

func counterNamePrefix(n int) string {
	digits := []byte{}
	if n == 0 {
		digits = []byte{'0'}
	}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return "__repeat_counter_" + string(digits)
}

// lowerForEach lowers ForEach into a FOR_STEP node. The iterated sequence is
// evaluated once at entry and stashed in a hidden per-call-frame variable
// keyed by this node's id (see exec.go), since graph nodes are shared and
// immutable across recursive calls and cannot hold per-activation cursor
// state themselves.
func (b *Builder) lowerForEach(st *ForEach, succ int) int {
	pos := st.Position()
	breakMarker := b.g.add(OpBreakTarget, pos)
	breakMarker.Next = succ

	step := b.g.add(OpForStep, pos)
	step.Expr = st.Seq
	step.ForVar = st.Var
	step.ExitTo = breakMarker.ID

	contMarker := b.g.add(OpContinueTarget, pos)
	contMarker.Next = step.ID

	b.loops = append(b.loops, loopCtx{breakTarget: breakMarker.ID, continueTarget: contMarker.ID})
	bodyEntry := b.lowerStmts(st.Body, step.ID)
	b.loops = b.loops[:len(b.loops)-1]

	step.Body = bodyEntry
	return step.ID
}

// lowerFuncDef emits FUNC_ENTRY -> body -> FUNC_EXIT and records the
// function in the graph's function table. Reaching FUNC_EXIT behaves like
// an implicit `Return()` (see exec.go); it carries no `next` of its own.
func (b *Builder) lowerFuncDef(st *FuncDef) {
	exit := b.g.add(OpFuncExit, st.Position())
	exit.FuncName = st.Name

	savedLoops := b.loops
	b.loops = nil
	bodyEntry := b.lowerStmts(st.Body, exit.ID)
	b.loops = savedLoops

	entry := b.g.add(OpFuncEntry, st.Position())
	entry.FuncName = st.Name
	entry.Params = st.Params
	entry.Next = bodyEntry

	b.g.Funcs[st.Name] = &FuncInfo{Name: st.Name, Params: st.Params, EntryNode: entry.ID, ExitNode: exit.ID}
}
