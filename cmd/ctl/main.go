// Command ctl is the compiler driver: subcommands {print, build, run, lsp}
// over the pipeline lexer -> parser -> check -> emitter (spec.md §6 "CLI").
// Grounded on the teacher's cmd/funxy/main.go: manual os.Args parsing, a
// sequential handleX() bool dispatch instead of the flag package, and a
// top-level deferred recover() that turns an internal panic into a
// user-facing "this is a bug" message rather than a Go stack trace.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/check"
	"github.com/delta229/ctl/internal/config"
	"github.com/delta229/ctl/internal/diag"
	"github.com/delta229/ctl/internal/emitter"
	"github.com/delta229/ctl/internal/lexer"
	"github.com/delta229/ctl/internal/lspsvc"
	"github.com/delta229/ctl/internal/parser"
)

// sharedFlags mirrors original_source/src/main.rs's Arguments: flags global
// to every subcommand, parsed once regardless of which verb follows.
type sharedFlags struct {
	noCore   bool
	noStd    bool
	leak     bool
	noBitInt bool
	lib      bool
}

// buildFlags is original_source's BuildOrRun: the extra knobs build/run
// need to invoke a C compiler, absent from print (which never shells out).
type buildFlags struct {
	cc      string
	ccargs  string
	verbose bool
}

func main() {
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
		printUsage()
		os.Exit(1)
	}

	if handleHelp() {
		return
	}

	ok := false
	switch os.Args[1] {
	case "print", "p":
		ok = handlePrint()
	case "build", "b":
		ok = handleBuild()
	case "run", "r":
		ok = handleRun()
	case "lsp", "l":
		ok = handleLsp()
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: ctl <print|build|run|lsp> [flags] <input>")
	fmt.Fprintln(os.Stderr, "  --no-core          skip the core library prelude")
	fmt.Fprintln(os.Stderr, "  --no-std           skip the std library prelude")
	fmt.Fprintln(os.Stderr, "  --leak, -g         never free allocations (swap allocator)")
	fmt.Fprintln(os.Stderr, "  --no-bit-int, -i   clamp odd integer widths to the nearest power of two")
	fmt.Fprintln(os.Stderr, "  --lib              compile as a library (no main trampoline)")
}

func handleHelp() bool {
	if os.Args[1] != "-help" && os.Args[1] != "--help" && os.Args[1] != "help" {
		return false
	}
	fmt.Printf("ctl %s\n", config.Version)
	printUsage()
	return true
}

// parseArgs walks args consuming the shared flags plus print/build/run's
// build-only flags and returns whatever's left (expected to be exactly the
// input path, then for `run` any trailing target args).
func parseArgs(args []string) (sharedFlags, buildFlags, []string) {
	var sf sharedFlags
	bf := buildFlags{cc: "clang"}
	var rest []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--no-core":
			sf.noCore = true
		case "--no-std":
			sf.noStd = true
		case "--leak", "-g":
			sf.leak = true
		case "--no-bit-int", "-i":
			sf.noBitInt = true
		case "--lib", "-l":
			sf.lib = true
		case "--verbose", "-v":
			bf.verbose = true
		case "--cc":
			if i+1 < len(args) {
				i++
				bf.cc = args[i]
			}
		case "--ccargs":
			if i+1 < len(args) {
				i++
				bf.ccargs = args[i]
			}
		case "--":
			return sf, bf, append(rest, args[i+1:]...)
		default:
			rest = append(rest, args[i])
		}
	}
	return sf, bf, rest
}

// compile runs the lexer/parser/check pipeline over path (spec.md §5's
// whole-project analysis, here over a single input file; the driver reads
// no ctl.yaml manifest). Diagnostics are
// rendered to stderr; a nil Checker means compilation failed.
func compile(path string, sf sharedFlags) (*check.Checker, bool) {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return nil, false
	}

	sink := diag.NewSink()
	file := sink.AddFile(path)
	toks := lexer.New(string(src), file, sink).Tokenize()
	prog := parser.New(toks, file, sink).ParseProgram()

	c := check.NewChecker(sink)
	c.Check([]*ast.Program{prog})

	if sink.HasErrors() || len(sink.Warnings()) > 0 {
		diag.NewFormatter(os.Stderr).RenderAll(sink, map[diag.FileId]string{file: string(src)})
	}
	if sink.HasErrors() {
		fmt.Fprintln(os.Stderr, "Compilation failed.")
		return nil, false
	}
	return c, true
}

func emitC(c *check.Checker, sf sharedFlags) (string, error) {
	em := emitter.New(c, emitter.Options{
		NoCore:   sf.noCore,
		NoStd:    sf.noStd,
		Leak:     sf.leak,
		NoBitInt: sf.noBitInt,
		Lib:      sf.lib,
	})
	var sb strings.Builder
	if err := em.Emit(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func handlePrint() bool {
	sf, _, rest := parseArgs(os.Args[2:])
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "usage: ctl print [flags] <input> [output]")
		return false
	}
	c, ok := compile(rest[0], sf)
	if !ok {
		return false
	}
	src, err := emitC(c, sf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return false
	}
	if len(rest) >= 2 {
		if err := os.WriteFile(rest[1], []byte(src), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return false
		}
		return true
	}
	fmt.Print(src)
	return true
}

func handleBuild() bool {
	sf, bf, rest := parseArgs(os.Args[2:])
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "usage: ctl build [flags] <input> [output]")
		return false
	}
	output := "./a.out"
	if len(rest) >= 2 {
		output = rest[1]
	}
	c, ok := compile(rest[0], sf)
	if !ok {
		return false
	}
	src, err := emitC(c, sf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return false
	}
	if err := compileC(src, output, sf.leak, bf); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return false
	}
	return true
}

func handleRun() bool {
	sf, bf, rest := parseArgs(os.Args[2:])
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "usage: ctl run [flags] <input> [-- target args...]")
		return false
	}
	c, ok := compile(rest[0], sf)
	if !ok {
		return false
	}
	src, err := emitC(c, sf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return false
	}
	output, err := filepath.Abs("./a.out")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return false
	}
	if err := compileC(src, output, sf.leak, bf); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return false
	}
	defer os.Remove(output)

	targs := rest[1:]
	cmd := exec.Command(output, targs...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			os.Exit(ee.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return false
	}
	return true
}

// compileC shells out to a real C toolchain the way original_source's
// compile_results does: the generated C is piped to the compiler's stdin
// rather than written to a temp file first, and -lgc links the
// Boehm-style collector unless --leak asked for the allocator-only build.
func compileC(src, output string, leak bool, bf buildFlags) error {
	args := []string{"-o", output, "-std=c11"}
	if !leak {
		args = append(args, "-lgc")
	}
	if bf.verbose {
		args = append(args, "-Wall", "-Wextra")
	}
	args = append(args, "-x", "c", "-")
	if bf.ccargs != "" {
		args = append(args, bf.ccargs)
	}
	cmd := exec.Command(bf.cc, args...)
	cmd.Stdin = strings.NewReader(src)
	if bf.verbose {
		cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	}
	return cmd.Run()
}

// handleLsp starts the language-server collaborator (spec.md §6 "lsp"
// subcommand), which speaks to a client over a gRPC stream of dynamic
// protobuf messages built from its in-memory schema (internal/lspsvc).
func handleLsp() bool {
	srv, err := lspsvc.NewServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lsp: %s\n", err)
		return false
	}
	addr := ""
	if len(os.Args) > 2 {
		addr = os.Args[2]
	}
	if err := srv.Serve(addr); err != nil {
		fmt.Fprintf(os.Stderr, "lsp: %s\n", err)
		return false
	}
	return true
}
