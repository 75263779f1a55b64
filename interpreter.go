// interpreter.go — SINGLE PUBLIC API SURFACE for the Vyra runtime.
//
// OVERVIEW
// ========
// This file exposes the entire public surface of the Vyra interpreter: the
// Interpreter type, its construction, and its one entry point, Run. All
// per-opcode execution semantics (spec.md §4.5) live in exec.go and are not
// part of the public surface.
//
// An Interpreter executes one Graph at a time, from a current-node pointer,
// over a program scope plus a stack of activation frames (one per live
// function call). Stdin/stdout are configurable so both the CLI and the
// REPL (and tests) can redirect them.
package vyra

import (
	"bufio"
	"io"
)

// DefaultIterationCeiling is the watchdog ceiling spec.md §4.5 mandates
// ("a configurable ceiling (default 1,000,000)").
const DefaultIterationCeiling = 1_000_000

// frame is one activation record (spec.md GLOSSARY: "Activation frame").
type frame struct {
	env          *Env
	returnTarget int // node index execution resumes at after RETURN
	resultName   string
	resultSet    bool // whether returnTarget expects a stored result (resultName != "")
}

// Interpreter runs a single Graph to completion.
type Interpreter struct {
	graph  *Graph
	global *Env
	frames []frame

	Stdout io.Writer
	Stdin  *bufio.Reader
	Stderr io.Writer

	// Debug, when true, writes one line per executed node to Stderr.
	Debug bool

	// IterationCeiling bounds LOOP_HEAD/FOR_STEP visits per run before
	// raising IterationLimitExceeded. Zero means DefaultIterationCeiling.
	IterationCeiling int

	iterCount int
}

// NewInterpreter creates an Interpreter over g with program scope env (use
// NewEnv(nil) for a fresh program scope, or an existing one to continue a
// REPL session).
func NewInterpreter(g *Graph, env *Env, stdin io.Reader, stdout, stderr io.Writer) *Interpreter {
	return &Interpreter{
		graph:  g,
		global: env,
		Stdout: stdout,
		Stdin:  bufio.NewReader(stdin),
		Stderr: stderr,
	}
}

// GlobalEnv returns the interpreter's program scope, so a REPL can reuse it
// across successive Run calls against freshly-built graphs.
func (in *Interpreter) GlobalEnv() *Env { return in.global }

// Run executes the graph from its Entry node until a HALT or an outermost
// RETURN is reached, or an error occurs.
func (in *Interpreter) Run() error {
	ceiling := in.IterationCeiling
	if ceiling == 0 {
		ceiling = DefaultIterationCeiling
	}

	// The outermost call is modeled as a synthetic frame whose return
	// target is the HALT node id wired by the builder as the program's
	// final successor. An outermost "Return" pops this frame, and doReturn
	// halts as soon as no frame is left.
	haltNode := in.findOrSyntheticHalt()
	in.frames = []frame{{env: in.global, returnTarget: haltNode}}

	cur := in.graph.Entry
	for {
		if cur < 0 || cur >= len(in.graph.Nodes) {
			return &RuntimeError{ErrKind: KindNameError, Msg: "control fell off the graph"}
		}
		n := in.graph.Nodes[cur]
		if in.Debug {
			in.traceNode(n)
		}
		next, halted, err := in.exec(n, &ceiling)
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
		cur = next
	}
}

// findOrSyntheticHalt returns the index of some HALT node in the graph. The
// builder always emits exactly one, created before lowering the top-level
// program, so it is always present.
func (in *Interpreter) findOrSyntheticHalt() int {
	for _, n := range in.graph.Nodes {
		if n.Op == OpHalt {
			return n.ID
		}
	}
	h := in.graph.add(OpHalt, Pos{})
	return h.ID
}

func (in *Interpreter) traceNode(n *Node) {
	writeDebugLine(in.Stderr, n)
}

func (in *Interpreter) curFrame() *frame        { return &in.frames[len(in.frames)-1] }
func (in *Interpreter) curEnv() *Env             { return in.curFrame().env }
