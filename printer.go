// printer.go — CLI-facing diagnostic rendering: the `--debug` per-node
// trace and an AST pretty-printer for the `parse` subcommand.
//
// Grounded on the teacher's cmd/msg/main.go ANSI-tagged diagnostic style and
// printer.go's general appetite for introspectable structure, scaled down
// to this graph's node granularity.
package vyra

import (
	"fmt"
	"io"
	"strings"
)

// writeDebugLine writes one `--debug` trace line for node n to w.
func writeDebugLine(w io.Writer, n *Node) {
	fmt.Fprintf(w, "[debug] node %d %s\n", n.ID, n.Op.String())
}

// PrintAST renders a parsed statement list as an indented tree, used by
// `parse <file>`.
func PrintAST(w io.Writer, stmts []Stmt) {
	for _, s := range stmts {
		printStmt(w, s, 0)
	}
}

func printStmt(w io.Writer, s Stmt, depth int) {
	ind := strings.Repeat("  ", depth)
	switch st := s.(type) {
	case *Assign:
		fmt.Fprintf(w, "%sAssign %s = %s\n", ind, st.Name, printExpr(st.Value))
	case *Display:
		vs := make([]string, len(st.Values))
		for i, v := range st.Values {
			vs[i] = printExpr(v)
		}
		fmt.Fprintf(w, "%sDisplay %s\n", ind, strings.Join(vs, ", "))
	case *Input:
		fmt.Fprintf(w, "%sInput %s (%s)\n", ind, st.Name, st.Kind)
	case *If:
		fmt.Fprintf(w, "%sIf %s\n", ind, printExpr(st.Cond))
		for _, b := range st.Then {
			printStmt(w, b, depth+1)
		}
		for _, el := range st.Elifs {
			fmt.Fprintf(w, "%sOtherwise if %s\n", ind, printExpr(el.Cond))
			for _, b := range el.Body {
				printStmt(w, b, depth+1)
			}
		}
		if st.Else != nil {
			fmt.Fprintf(w, "%sOtherwise\n", ind)
			for _, b := range st.Else {
				printStmt(w, b, depth+1)
			}
		}
	case *While:
		fmt.Fprintf(w, "%sWhile %s\n", ind, printExpr(st.Cond))
		for _, b := range st.Body {
			printStmt(w, b, depth+1)
		}
	case *Repeat:
		fmt.Fprintf(w, "%sRepeat %s times\n", ind, printExpr(st.Count))
		for _, b := range st.Body {
			printStmt(w, b, depth+1)
		}
	case *ForEach:
		fmt.Fprintf(w, "%sForEach %s in %s\n", ind, st.Var, printExpr(st.Seq))
		for _, b := range st.Body {
			printStmt(w, b, depth+1)
		}
	case *Break:
		fmt.Fprintf(w, "%sBreak\n", ind)
	case *Continue:
		fmt.Fprintf(w, "%sContinue\n", ind)
	case *FuncDef:
		fmt.Fprintf(w, "%sFunctionDef %s(%s)\n", ind, st.Name, strings.Join(st.Params, ", "))
		for _, b := range st.Body {
			printStmt(w, b, depth+1)
		}
	case *Return:
		if st.Value != nil {
			fmt.Fprintf(w, "%sReturn %s\n", ind, printExpr(st.Value))
		} else {
			fmt.Fprintf(w, "%sReturn\n", ind)
		}
	case *CallStmt:
		fmt.Fprintf(w, "%sCall %s\n", ind, printExpr(st.Call))
	case *CallAssign:
		fmt.Fprintf(w, "%sCall %s -> %s\n", ind, printExpr(st.Call), st.Target)
	case *ReadFileStmt:
		fmt.Fprintf(w, "%sReadFile %s into %s\n", ind, printExpr(st.Path), st.Name)
	case *WriteFileStmt:
		verb := "WriteFile"
		if st.Append {
			verb = "AppendFile"
		}
		fmt.Fprintf(w, "%s%s %s to %s\n", ind, verb, printExpr(st.Content), printExpr(st.Path))
	case *AddToList:
		fmt.Fprintf(w, "%sAddToList %s <- %s\n", ind, st.Name, printExpr(st.Value))
	}
}

func printExpr(e Expr) string {
	switch x := e.(type) {
	case *Lit:
		return Stringify(x.Value)
	case *Ident:
		return x.Name
	case *ListLit:
		parts := make([]string, len(x.Elements))
		for i, el := range x.Elements {
			parts[i] = printExpr(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Unary:
		return x.Op + " " + printExpr(x.X)
	case *Binary:
		return printExpr(x.X) + " " + x.Op + " " + printExpr(x.Y)
	case *Call:
		parts := make([]string, len(x.Args))
		for i, a := range x.Args {
			parts[i] = printExpr(a)
		}
		return x.Name + "(" + strings.Join(parts, ", ") + ")"
	case *Index:
		return "item " + printExpr(x.Idx) + " of " + printExpr(x.Seq)
	default:
		return "?"
	}
}
