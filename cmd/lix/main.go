// Command lix is the reference host for the language implemented under
// internal/: a plain os.Args-dispatched CLI offering three drivers —
// parse, compile, eval — over the lexer/parser/macro/compiler/vm pipeline,
// grounded in cmd/funxy/main.go's own handleXxx()-bool-dispatch style and
// top-level panic recovery (that package implements an unrelated
// statically-typed language and was not itself adapted; see DESIGN.md).
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/funvibe/lix/internal/ast"
	"github.com/funvibe/lix/internal/boxed"
	"github.com/funvibe/lix/internal/code"
	"github.com/funvibe/lix/internal/compiler"
	"github.com/funvibe/lix/internal/config"
	"github.com/funvibe/lix/internal/kernel"
	"github.com/funvibe/lix/internal/macro"
	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/parser"
	"github.com/funvibe/lix/internal/stdlib"
	"github.com/funvibe/lix/internal/value"
	"github.com/funvibe/lix/internal/vm"
)

// initLogging sets the default slog level from LIX_DEBUG, the same
// environment-variable-gated diagnostics convention main()'s own
// DEBUG=1 panic-repanic check uses: diagnostics (module registration,
// bootstrap steps, driver stage timings) stay silent unless asked for.
func initLogging() {
	level := slog.LevelInfo
	if os.Getenv("LIX_DEBUG") == "1" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// stage logs how long a CLI driver phase (parse/expand/compile/execute)
// took at debug level, timed the same way a host would want to see per
// request timings inside compile_module's own logging path.
func stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	slog.Debug("stage complete", "stage", name, "elapsed", time.Since(start), "ok", err == nil)
	return err
}

func usage() {
	fmt.Fprintln(os.Stderr, "lix is the command-line driver for the lix language.")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lix parse   [--no-color] [FILE]           parse FILE (or stdin) and print its AST")
	fmt.Fprintln(os.Stderr, "  lix compile [--no-color] [--config PATH] [FILE]  compile FILE and print disassembled bytecode")
	fmt.Fprintln(os.Stderr, "  lix eval    [--no-color] [--config PATH] FILE...  evaluate one or more FILEs and print their results")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "lix.yaml (or --config) selects optional stdlib modules: modules: [io, file, path, regex, string, uuid, db, grpc, bitstring]")
}

func main() {
	initLogging()
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	rest := os.Args[2:]

	switch cmd {
	case "-help", "--help", "help":
		usage()
	case "parse":
		os.Exit(runParse(rest))
	case "compile":
		os.Exit(runCompile(rest))
	case "eval":
		os.Exit(runEval(rest))
	default:
		usage()
		os.Exit(1)
	}
}

// parsedArgs pulls the host-only flags (--no-color, --config PATH) out of
// args, the same flag-stripping loop cmd/funxy/main.go's main() uses to
// separate host flags from script args, leaving the positional FILE
// arguments in original order.
func parsedArgs(args []string) (files []string, noColor bool, configPath string) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--no-color":
			noColor = true
		case "--config":
			if i+1 < len(args) {
				i++
				configPath = args[i]
			}
		default:
			files = append(files, args[i])
		}
	}
	return files, noColor, configPath
}

// colorize wraps s in ANSI SGR code unless noColor is set or stdout is not
// a terminal, the same isatty.IsTerminal/IsCygwinTerminal pair
// internal/evaluator/builtins_term.go uses to decide whether to color.
func colorize(sgr, s string, noColor bool) string {
	if noColor {
		return s
	}
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return s
	}
	return "\x1b[" + sgr + "m" + s + "\x1b[0m"
}

func readSource(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func runParse(args []string) int {
	files, noColor, _ := parsedArgs(args)
	path := ""
	if len(files) > 0 {
		path = files[0]
	}
	src, err := readSource(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	n, err := parser.Parse(src)
	if err != nil {
		printParseError(err, noColor)
		return 1
	}
	fmt.Println(n.String())
	return 0
}

func printParseError(err error, noColor bool) {
	var synErr *parser.SyntaxError
	if errors.As(err, &synErr) {
		fmt.Fprintln(os.Stderr, colorize("31", synErr.Error(), noColor))
		return
	}
	fmt.Fprintln(os.Stderr, colorize("31", err.Error(), noColor))
}

// loadConfig resolves the module list to register: an explicit --config
// path, else lix.yaml/lix.yml in the current directory, else no optional
// modules (only __lix and Kernel, per spec.md §6).
func loadConfig(configPath string) ([]string, error) {
	if configPath == "" {
		found, err := config.FindLixConfig(".")
		if err != nil {
			return nil, err
		}
		configPath = found
	}
	if configPath == "" {
		return nil, nil
	}
	cfg, err := config.LoadLixConfig(configPath)
	if err != nil {
		return nil, err
	}
	return cfg.Modules, nil
}

// buildContext assembles a fresh module.Context the way finalizeModule's
// callers do: a bootstrap context (__lix + Kernel) plus whatever optional
// stdlib modules lix.yaml names, sharing one boxed.Registry so Boxed
// host values (Db connections, Grpc handles, Bitstrings) resolve `dot`
// lookups against the same getter set the stdlib modules registered. The
// registry is returned too: the top-level Executor must be built against
// this exact registry, not a fresh one, or those `dot` lookups would miss.
func buildContext(configPath string) (*module.Context, *boxed.Registry, error) {
	names, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	registry := boxed.NewRegistry()
	ctx := kernel.BuildKernelContext(registry)
	stdlib.Register(ctx, registry, names)
	return ctx, registry, nil
}

func compileSource(ctx *module.Context, src string) (code.Code, error) {
	n, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	expanded, err := macro.Expand(ctx, n)
	if err != nil {
		return nil, err
	}
	return compiler.CompileRoot(expanded)
}

func runCompile(args []string) int {
	files, noColor, configPath := parsedArgs(args)
	path := ""
	if len(files) > 0 {
		path = files[0]
	}
	src, err := readSource(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	ctx, _, err := buildContext(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	c, err := compileSource(ctx, src)
	if err != nil {
		printCompileError(err, noColor)
		return 1
	}
	text := code.Disassemble(c)
	fmt.Print(text)
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		fmt.Printf("; %d instructions\n", len(c))
	}
	return 0
}

func printCompileError(err error, noColor bool) {
	var synErr *parser.SyntaxError
	var compErr *compiler.CompileError
	switch {
	case errors.As(err, &synErr):
		fmt.Fprintln(os.Stderr, colorize("31", synErr.Error(), noColor))
	case errors.As(err, &compErr):
		fmt.Fprintln(os.Stderr, colorize("31", compErr.Error(), noColor))
	default:
		fmt.Fprintln(os.Stderr, colorize("31", err.Error(), noColor))
	}
}

// runEval evaluates one or more files. A single file runs inline; two or
// more run as an independent concurrent batch via errgroup.Group, each
// file getting its own Context+Executor so none share mutable state,
// following spec.md §6's "independent concurrent batch" requirement.
func runEval(args []string) int {
	files, noColor, configPath := parsedArgs(args)
	if len(files) == 0 {
		files = []string{""}
	}
	if len(files) == 1 {
		return evalOne(files[0], configPath, noColor, false)
	}

	codes := make([]int, len(files))
	var g errgroup.Group
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			codes[i] = evalOne(f, configPath, noColor, true)
			return nil
		})
	}
	_ = g.Wait()

	for _, c := range codes {
		if c != 0 {
			return c
		}
	}
	return 0
}

func evalOne(path string, configPath string, noColor bool, multi bool) int {
	src, err := readSource(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	ctx, registry, err := buildContext(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	var n, expanded ast.Node
	var c code.Code
	var result value.Value

	if err := stage("parse", func() error {
		var perr error
		n, perr = parser.Parse(src)
		return perr
	}); err != nil {
		printParseError(err, noColor)
		return 1
	}
	if err := stage("expand", func() error {
		var eerr error
		expanded, eerr = macro.Expand(ctx, n)
		return eerr
	}); err != nil {
		fmt.Fprintln(os.Stderr, colorize("31", err.Error(), noColor))
		return 1
	}
	if err := stage("compile", func() error {
		var cerr error
		c, cerr = compiler.CompileRoot(expanded)
		return cerr
	}); err != nil {
		printCompileError(err, noColor)
		return 1
	}
	if err := stage("execute", func() error {
		var rerr error
		result, rerr = runGuarded(ctx, registry, c)
		return rerr
	}); err != nil {
		printRuntimeError(err, noColor)
		return 1
	}
	if multi {
		label := path
		if label == "" {
			label = "(stdin)"
		}
		fmt.Printf("%s: %s\n", label, value.Inspect(result))
	} else {
		fmt.Println(value.Inspect(result))
	}
	return 0
}

// runGuarded recovers a *vm.RuntimeError panic into a plain error, the
// same unwinding internal/kernel.raise relies on the VM's frame machinery
// to perform for natives; at the host boundary there is no frame left to
// catch it, so the CLI converts it back into a returned error.
func runGuarded(ctx *module.Context, registry *boxed.Registry, c code.Code) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(*vm.RuntimeError); ok {
				err = rerr
				return
			}
			panic(r)
		}
	}()
	return vm.NewExecutor(ctx, registry).ExecuteAll(c, 0, nil)
}

func printRuntimeError(err error, noColor bool) {
	fmt.Fprintln(os.Stderr, colorize("31", "** "+strings.TrimSpace(err.Error()), noColor))
}
