// scenarios_test.go — end-to-end pipeline tests: source text in, stdout and
// exit behavior out, exercising the splitter, parser, builder, and
// interpreter together. Mirrors spec.md §8's concrete scenarios (S1-S7).
package vyra

import (
	"bytes"
	"strings"
	"testing"
)

// runProgram runs src end to end (split, group, parse, build, interpret)
// and returns stdout, stderr, and any error returned by Interpreter.Run.
func runProgram(t *testing.T, src, stdin string) (string, string, error) {
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
	var stdout, stderr bytes.Buffer
	interp := NewInterpreter(g, NewEnv(nil), strings.NewReader(stdin), &stdout, &stderr)
	runErr := interp.Run()
	return stdout.String(), stderr.String(), runErr
}

func Test_S1_Hello(t *testing.T) {
	out, _, err := runProgram(t, `Display "Hello, World!".`, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Hello, World!\n" {
		t.Errorf("stdout = %q, want %q", out, "Hello, World!\n")
	}
}

func Test_S2_ArithmeticWithAssign(t *testing.T) {
	out, _, err := runProgram(t, `Set x to 5. Add 3 to x. Display x.`, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "8\n" {
		t.Errorf("stdout = %q, want %q", out, "8\n")
	}
}

func Test_S3_IfElseInline(t *testing.T) {
	src := `Set x to 7. If x is greater than 10, display "big". Otherwise display "small".`
	out, _, err := runProgram(t, src, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "small\n" {
		t.Errorf("stdout = %q, want %q", out, "small\n")
	}
}

func Test_S4_WhileCountdown(t *testing.T) {
	src := "Set i to 3. While i is greater than 0:\n    Display i.\n    Decrement i."
	out, _, err := runProgram(t, src, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "3\n2\n1\n" {
		t.Errorf("stdout = %q, want %q", out, "3\n2\n1\n")
	}
}

func Test_S5_FunctionCallWithReturn(t *testing.T) {
	src := "Create function add that takes a and b:\n" +
		"    Add a and b and store the result in s.\n" +
		"    Return s.\n" +
		"Call add with 4 and 5 and store in r.\n" +
		"Display r."
	out, _, err := runProgram(t, src, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "9\n" {
		t.Errorf("stdout = %q, want %q", out, "9\n")
	}
}

func Test_S6_ListAppendVsArithmeticDisambiguation(t *testing.T) {
	src := `Create a list called xs with values [1,2]. Add 3 to xs. Set n to 10. Add 5 to n. Display xs. Display n.`
	out, _, err := runProgram(t, src, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "[1, 2, 3]\n15\n" {
		t.Errorf("stdout = %q, want %q", out, "[1, 2, 3]\n15\n")
	}
}

func Test_S7_DivisionByZero(t *testing.T) {
	src := `Set x to 1. Divide x by 0 and store in y.`
	_, _, err := runProgram(t, src, "")
	if err == nil {
		t.Fatal("expected an error")
	}
	re, ok := err.(*RuntimeError)
	if !ok || re.ErrKind != KindDivisionByZero {
		t.Fatalf("expected DivisionByZero, got %#v", err)
	}
	if re.Kind().ExitCode() != 1 {
		t.Errorf("expected exit code 1, got %d", re.Kind().ExitCode())
	}
}

func Test_ForEach_OverString_IteratesCharacters(t *testing.T) {
	src := "For each c in \"ab\":\n    Display c."
	out, _, err := runProgram(t, src, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "a\nb\n" {
		t.Errorf("stdout = %q, want %q", out, "a\nb\n")
	}
}

func Test_ForEach_OverList_IteratesElements(t *testing.T) {
	src := "Create a list called xs with values [10, 20].\nFor each x in xs:\n    Display x."
	out, _, err := runProgram(t, src, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "10\n20\n" {
		t.Errorf("stdout = %q, want %q", out, "10\n20\n")
	}
}

func Test_Repeat_Desugars_IntoBoundedLoop(t *testing.T) {
	src := "Set n to 0.\nRepeat 3 times:\n    Increment n.\nDisplay n."
	out, _, err := runProgram(t, src, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "3\n" {
		t.Errorf("stdout = %q, want %q", out, "3\n")
	}
}

func Test_BreakAndContinue_BindToInnermostLoop(t *testing.T) {
	src := "Set total to 0.\nSet i to 0.\nWhile i is less than 5:\n    Increment i.\n    If i is equal to 2, continue to next iteration.\n    If i is equal to 4, stop the loop.\n    Add i to total.\nDisplay total."
	out, _, err := runProgram(t, src, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// i visits 1, 2(skip), 3, 4(stop before adding) -> total = 1 + 3 = 4
	if out != "4\n" {
		t.Errorf("stdout = %q, want %q", out, "4\n")
	}
}

func Test_FunctionLocals_DoNotLeakToCallerScope(t *testing.T) {
	src := "Create function f that takes a:\n" +
		"    Set scratch to 99.\n" +
		"    Return scratch.\n" +
		"Call f with 5 and store in r.\n" +
		"Display r.\n" +
		"Display type_of(scratch)."
	out, _, err := runProgram(t, src, "")
	if err == nil {
		t.Fatalf("expected a NameError for 'scratch' outside the function, got output %q", out)
	}
	if out != "99\n" {
		t.Errorf("expected the function's return value displayed first, got stdout %q", out)
	}
	re, ok := err.(*RuntimeError)
	if !ok || re.ErrKind != KindNameError {
		t.Fatalf("expected NameError for the function-local 'scratch' leaking, got %#v", err)
	}
}

func Test_NameError_UndefinedIdentifier(t *testing.T) {
	_, _, err := runProgram(t, `Display undefined_name.`, "")
	if err == nil {
		t.Fatal("expected an error")
	}
	re, ok := err.(*RuntimeError)
	if !ok || re.ErrKind != KindNameError {
		t.Fatalf("expected NameError, got %#v", err)
	}
}

func Test_IterationLimitExceeded(t *testing.T) {
	sents, err := SplitSentences("Set i to 0.\nWhile i is less than 10:\n    Display i.")
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
	var stdout, stderr bytes.Buffer
	interp := NewInterpreter(g, NewEnv(nil), strings.NewReader(""), &stdout, &stderr)
	interp.IterationCeiling = 5
	err = interp.Run()
	if err == nil {
		t.Fatal("expected IterationLimitExceeded")
	}
	re, ok := err.(*RuntimeError)
	if !ok || re.ErrKind != KindIterationLimitExceeded {
		t.Fatalf("expected IterationLimitExceeded, got %#v", err)
	}
}

func Test_Index_ItemNOfSeq(t *testing.T) {
	src := "Create a list called xs with values [10, 20, 30].\nDisplay item 2 of xs."
	out, _, err := runProgram(t, src, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "20\n" {
		t.Errorf("stdout = %q, want %q", out, "20\n")
	}
}
