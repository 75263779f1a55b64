// Command vyra is the Vyra CLI: `run`, `parse`, and `repl` subcommands
// (spec.md §6). Ported from the teacher's cmd/msg/main.go: subcommand
// dispatch hand-parsed from os.Args, ANSI-colored diagnostics, and a liner-backed REPL
// with persistent history and signal-driven exit 130.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/poojapathak0/vyra"
)

const (
	appName     = "vyra"
	historyFile = ".vyra_history"
	promptMain  = "vyra> "
)

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "parse":
		os.Exit(cmdParse(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Usage:
  %s run <file> [--debug] [--viz <out>] [--ai]   Execute a program.
  %s parse <file> [--ai]                          Parse and print the AST.
  %s repl [--ai]                                   Interactive sentence-by-sentence execution.
`, appName, appName, appName)
}

// loadAndMaybeRewrite loads path (resolving Include and stripping
// comments), and if ai is set, runs the optional rewrite front end over
// the result before returning it.
func loadAndMaybeRewrite(path string, ai bool) (string, error) {
	src, err := vyra.LoadSource(path)
	if err != nil {
		return "", err
	}
	if !ai {
		return src, nil
	}
	cfg, err := vyra.LoadAIRewriteConfig()
	if err != nil {
		return "", err
	}
	return vyra.Rewrite(cfg, src)
}

// buildGraph runs the full parse+build pipeline over already-loaded source
// text (comments stripped, includes resolved, optionally AI-rewritten).
func buildGraph(src string) (*vyra.Graph, []vyra.Stmt, error) {
	sents, err := vyra.SplitSentences(src)
	if err != nil {
		return nil, nil, err
	}
	blocks, err := vyra.GroupBlocks(sents)
	if err != nil {
		return nil, nil, err
	}
	stmts, err := vyra.NewParser().ParseProgram(blocks)
	if err != nil {
		return nil, nil, err
	}
	g, err := vyra.NewBuilder().Build(stmts)
	if err != nil {
		return nil, nil, err
	}
	return g, stmts, nil
}

func reportErr(err error, name, src string) int {
	wrapped := vyra.WrapErrorWithSource(err, name, src)
	fmt.Fprintln(os.Stderr, red(wrapped.Error()))
	if k, ok := err.(vyra.Kinded); ok {
		return k.Kind().ExitCode()
	}
	return 1
}

func cmdRun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file> [--debug] [--viz <out>] [--ai]\n", appName)
		return 2
	}
	file := args[0]
	var debug, ai bool
	var vizOut string
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--debug":
			debug = true
		case "--ai":
			ai = true
		case "--viz":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--viz requires an output path")
				return 2
			}
			i++
			vizOut = args[i]
		}
	}

	src, err := loadAndMaybeRewrite(file, ai)
	if err != nil {
		return reportErr(err, file, src)
	}
	g, _, err := buildGraph(src)
	if err != nil {
		return reportErr(err, file, src)
	}

	if vizOut != "" {
		f, ferr := os.Create(vizOut)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot write %s: %v\n", appName, vizOut, ferr)
			return 3
		}
		werr := vyra.WriteViz(f, g)
		f.Close()
		if werr != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot write %s: %v\n", appName, vizOut, werr)
			return 3
		}
	}

	interp := vyra.NewInterpreter(g, vyra.NewEnv(nil), os.Stdin, os.Stdout, os.Stderr)
	interp.Debug = debug
	if err := interp.Run(); err != nil {
		return reportErr(err, file, src)
	}
	return 0
}

func cmdParse(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s parse <file> [--ai]\n", appName)
		return 2
	}
	file := args[0]
	ai := len(args) > 1 && args[1] == "--ai"

	src, err := loadAndMaybeRewrite(file, ai)
	if err != nil {
		return reportErr(err, file, src)
	}
	_, stmts, err := buildGraph(src)
	if err != nil {
		return reportErr(err, file, src)
	}
	vyra.PrintAST(os.Stdout, stmts)
	return 0
}

func cmdRepl(args []string) int {
	ai := len(args) > 0 && args[0] == "--ai"

	fmt.Println("Vyra REPL. Ctrl+C cancels input, Ctrl+D exits. Type :quit to exit.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	global := vyra.NewEnv(nil)
	var cfg vyra.AIRewriteConfig
	if ai {
		var err error
		cfg, err = vyra.LoadAIRewriteConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 4
		}
	}

	for {
		line, err := ln.Prompt(promptMain)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue // Ctrl+C cancels the current input line
		}
		if err != nil {
			return 0
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == ":quit" {
			return 0
		}
		ln.AppendHistory(line)

		src := line
		if ai {
			rewritten, err := vyra.Rewrite(cfg, src)
			if err != nil {
				fmt.Fprintln(os.Stderr, red(err.Error()))
				continue
			}
			src = rewritten
		}

		g, _, err := buildGraph(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(vyra.WrapErrorWithSource(err, "<repl>", src).Error()))
			continue
		}

		interp := vyra.NewInterpreter(g, global, os.Stdin, os.Stdout, os.Stderr)
		if err := interp.Run(); err != nil {
			fmt.Fprintln(os.Stderr, red(vyra.WrapErrorWithSource(err, "<repl>", src).Error()))
			continue
		}
		fmt.Println(green("ok"))
	}
}
