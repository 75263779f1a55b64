// viz.go — `--viz` graph visualization output (spec.md §6): a
// newline-delimited sequence of node descriptors, emitted in ascending id
// order for a stable, diffable artifact.
//
// Grounded on the teacher's introspectable-IR habit (vm.go's chunk
// disassembly), adapted to this graph's node shape and serialized with
// encoding/json rather than a bespoke text format.
package vyra

import (
	"encoding/json"
	"io"
)

// vizNode is the wire shape of one graph node in `--viz` output.
type vizNode struct {
	ID          int            `json:"id"`
	Opcode      string         `json:"opcode"`
	Payload     map[string]any `json:"payload,omitempty"`
	Successors  map[string]int `json:"successors,omitempty"`
}

// WriteViz writes g's nodes to w as newline-delimited JSON, one object per
// line, in ascending id order.
func WriteViz(w io.Writer, g *Graph) error {
	enc := json.NewEncoder(w)
	for _, n := range g.Nodes {
		vn := vizNode{ID: n.ID, Opcode: n.Op.String(), Payload: vizPayload(n), Successors: vizSuccessors(n)}
		if err := enc.Encode(vn); err != nil {
			return err
		}
	}
	return nil
}

func vizPayload(n *Node) map[string]any {
	p := map[string]any{}
	if n.Target != "" {
		p["target"] = n.Target
	}
	if n.Expr != nil {
		p["expr"] = printExpr(n.Expr)
	}
	if len(n.Exprs) > 0 {
		vs := make([]string, len(n.Exprs))
		for i, e := range n.Exprs {
			vs[i] = printExpr(e)
		}
		p["exprs"] = vs
	}
	if n.ForVar != "" {
		p["var"] = n.ForVar
	}
	if n.FuncName != "" {
		p["func"] = n.FuncName
	}
	if len(n.Params) > 0 {
		p["params"] = n.Params
	}
	if n.ResultName != "" {
		p["result"] = n.ResultName
	}
	if len(p) == 0 {
		return nil
	}
	return p
}

func vizSuccessors(n *Node) map[string]int {
	s := map[string]int{}
	if n.Next != noSucc {
		s["next"] = n.Next
	}
	if n.Then != noSucc {
		s["then"] = n.Then
	}
	if n.Else != noSucc {
		s["else"] = n.Else
	}
	if n.Body != noSucc {
		s["body"] = n.Body
	}
	if n.ExitTo != noSucc {
		s["exit"] = n.ExitTo
	}
	if len(s) == 0 {
		return nil
	}
	return s
}
