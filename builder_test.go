// builder_test.go — graph builder lowering and well-formedness tests
// (spec.md §4.4, §8 Invariant 3 "Graph well-formedness").
package vyra

import "testing"

func buildFrom(t *testing.T, src string) *Graph {
	t.Helper()
	sents, err := SplitSentences(src)
	if err != nil {
		t.Fatalf("SplitSentences: %v", err)
	}
	blocks, err := GroupBlocks(sents)
	if err != nil {
		t.Fatalf("GroupBlocks: %v", err)
	}
	stmts, err := NewParser().ParseProgram(blocks)
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	g, err := NewBuilder().Build(stmts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func Test_Builder_ProgramEndsInHalt(t *testing.T) {
	g := buildFrom(t, `Display 1.`)
	found := false
	for _, n := range g.Nodes {
		if n.Op == OpHalt {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a HALT node in the built graph")
	}
}

func Test_Builder_Branch_HasBothSuccessors(t *testing.T) {
	g := buildFrom(t, "If x is greater than 0:\n    Display 1.\nOtherwise:\n    Display 2.")
	var branches int
	for _, n := range g.Nodes {
		if n.Op == OpBranch {
			branches++
			if n.Then == noSucc || n.Else == noSucc {
				t.Errorf("BRANCH node %d missing a successor: then=%d else=%d", n.ID, n.Then, n.Else)
			}
		}
	}
	if branches == 0 {
		t.Fatal("expected at least one BRANCH node")
	}
}

func Test_Builder_LoopHead_HasBodyAndExit(t *testing.T) {
	g := buildFrom(t, "While x is greater than 0:\n    Display x.")
	for _, n := range g.Nodes {
		if n.Op == OpLoopHead {
			if n.Body == noSucc || n.ExitTo == noSucc {
				t.Errorf("LOOP_HEAD node %d missing body/exit: body=%d exit=%d", n.ID, n.Body, n.ExitTo)
			}
			return
		}
	}
	t.Fatal("expected a LOOP_HEAD node")
}

func Test_Builder_Repeat_DesugarsToLoopHeadWithHiddenCounter(t *testing.T) {
	g := buildFrom(t, "Repeat 3 times:\n    Display 1.")
	var head *Node
	for _, n := range g.Nodes {
		if n.Op == OpLoopHead {
			head = n
		}
	}
	if head == nil {
		t.Fatal("expected Repeat to desugar into a LOOP_HEAD (spec.md §4.4/§9)")
	}
	bin, ok := head.Expr.(*Binary)
	if !ok || bin.Op != "<" {
		t.Fatalf("expected the loop condition to be a '<' comparison against the hidden counter, got %#v", head.Expr)
	}
}

func Test_Builder_FuncDef_RegistersInFunctionTable(t *testing.T) {
	g := buildFrom(t, "Create function add that takes a and b:\n    Return a.\nDisplay 1.")
	fi, ok := g.Funcs["add"]
	if !ok {
		t.Fatal("expected 'add' registered in the function table")
	}
	if len(fi.Params) != 2 || fi.Params[0] != "a" || fi.Params[1] != "b" {
		t.Errorf("expected params [a b], got %v", fi.Params)
	}
	if g.Nodes[fi.EntryNode].Op != OpFuncEntry {
		t.Errorf("expected EntryNode to point at a FUNC_ENTRY node")
	}
	if g.Nodes[fi.ExitNode].Op != OpFuncExit {
		t.Errorf("expected ExitNode to point at a FUNC_EXIT node")
	}
}

func Test_Builder_FuncDef_DoesNotOccupyEnclosingControlFlow(t *testing.T) {
	// A FunctionDef must not appear in the linear control flow of its
	// enclosing block: control skips straight from before the def to the
	// following statement (spec.md §4.4).
	g := buildFrom(t, "Create function f that takes a:\n    Return a.\nDisplay 1.")
	var display *Node
	for _, n := range g.Nodes {
		if n.Op == OpDisplay {
			display = n
		}
	}
	if display == nil {
		t.Fatal("expected a DISPLAY node")
	}
	if g.Entry == display.ID {
		return // fine: nothing else to lower before it
	}
	entryNode := g.Nodes[g.Entry]
	if entryNode.Op == OpFuncEntry || entryNode.Op == OpFuncExit {
		t.Fatalf("program entry should not be the function body itself, got %s", entryNode.Op)
	}
}

func Test_Builder_BreakContinue_BindToInnermostLoop(t *testing.T) {
	src := "While a is greater than 0:\n" +
		"    While b is greater than 0:\n" +
		"        Stop the loop.\n" +
		"    Display b."
	g := buildFrom(t, src)
	var heads []*Node
	for _, n := range g.Nodes {
		if n.Op == OpLoopHead {
			heads = append(heads, n)
		}
	}
	if len(heads) != 2 {
		t.Fatalf("expected 2 LOOP_HEAD nodes, got %d", len(heads))
	}
	// The inner loop's exit target must NOT be the outer loop's exit
	// target; Stop the loop binds to the innermost enclosing loop only.
	if heads[0].ExitTo == heads[1].ExitTo {
		t.Errorf("expected distinct break targets per loop nesting level")
	}
}

func Test_Builder_Validate_RejectsMalformedBranch(t *testing.T) {
	g := NewGraph()
	n := g.add(OpBranch, Pos{1, 1})
	n.Then = 0 // self-loop but Else left unset (noSucc)
	g.Entry = n.ID
	if err := g.Validate(); err == nil {
		t.Fatal("expected Validate to reject a BRANCH with a missing Else successor")
	}
}
