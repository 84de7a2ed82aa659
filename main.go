// Command slox is a bytecode compiler and VM for Lox: a REPL, a script
// runner, a line-oriented and full-screen bytecode debugger, and an
// HTTP/WebSocket API server, all dispatched from one binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/sirupsen/logrus"

	"github.com/lookbusy1344/slox/api"
	"github.com/lookbusy1344/slox/compiler"
	"github.com/lookbusy1344/slox/config"
	"github.com/lookbusy1344/slox/debugger"
	"github.com/lookbusy1344/slox/loader"
	"github.com/lookbusy1344/slox/vm"
)

// Exit codes match rustlox's run_file convention, adopted per SPEC_FULL.md
// since spec.md §6 names only 64 (bad CLI arity).
const (
	exitOK           = 0
	exitBadArity     = 64
	exitCompileError = 65
	exitRuntimeError = 70
)

const shutdownTimeout = 5 * time.Second

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in line-oriented debugger mode")
		tuiMode     = flag.Bool("tui", false, "Use TUI (Text User Interface) debugger")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode")
		apiPort     = flag.Int("port", 8080, "API server port (used with -api-server)")
		enableTrace = flag.Bool("trace", false, "Enable execution tracing")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
	)

	flag.Parse()

	if *showVersion {
		fmt.Println("slox 0.1.0")
		return
	}

	if *showHelp {
		printHelp()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
	}
	if *enableTrace {
		cfg.Execution.EnableTrace = true
	}

	log := logrus.New()
	if *verboseMode {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	if *apiServer {
		runAPIServer(*apiPort, log)
		return
	}

	switch flag.NArg() {
	case 0:
		runREPL(cfg, log)
	case 1:
		os.Exit(runFile(flag.Arg(0), cfg, log, *debugMode, *tuiMode))
	default:
		fmt.Fprintln(os.Stderr, "usage: slox [options] [script]")
		os.Exit(exitBadArity)
	}
}

// runREPL reads one line at a time from an interactive prompt, compiling and
// running each line as its own program. A compile or runtime error is
// reported and the REPL continues, matching rustlox's main.rs loop.
func runREPL(cfg *config.Config, log *logrus.Logger) {
	rl, err := readline.New("slox> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start line editor: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF (Ctrl-D) or readline.ErrInterrupt (Ctrl-C)
			break
		}
		if line == "" {
			continue
		}

		res, err := compiler.CompileWithLogger(line, log)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Compile error!")
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		machine := vm.New(res.Chunk, res.Pool, os.Stdout, os.Stderr)
		machine.Log = log
		machine.Trace = cfg.Execution.EnableTrace

		if err := machine.Run(); err != nil {
			fmt.Fprintln(os.Stderr, "Runtime error!")
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// runFile compiles and runs a single script, or drops into a debugger over
// it when debugMode/tuiMode is set. Returns the process exit code.
func runFile(path string, cfg *config.Config, log *logrus.Logger, debugMode, tuiMode bool) int {
	source, err := loader.ReadScript(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitBadArity
	}

	if debugMode || tuiMode {
		return runDebugger(source, cfg, log, tuiMode)
	}

	res, err := compiler.CompileWithLogger(source, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Compile error!")
		fmt.Fprintln(os.Stderr, err)
		return exitCompileError
	}

	machine := vm.New(res.Chunk, res.Pool, os.Stdout, os.Stderr)
	machine.Log = log
	machine.Trace = cfg.Execution.EnableTrace

	if err := machine.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Runtime error!")
		fmt.Fprintln(os.Stderr, err)
		return exitRuntimeError
	}

	return exitOK
}

// runDebugger compiles source and hands the resulting VM to the
// line-oriented CLI debugger or the full-screen TUI.
func runDebugger(source string, cfg *config.Config, log *logrus.Logger, tui bool) int {
	res, err := compiler.CompileWithLogger(source, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Compile error!")
		fmt.Fprintln(os.Stderr, err)
		return exitCompileError
	}

	machine := vm.New(res.Chunk, res.Pool, os.Stdout, os.Stderr)
	machine.Log = log
	machine.Trace = cfg.Execution.EnableTrace

	dbg := debugger.NewDebugger(machine, source)

	if tui {
		if err := debugger.RunTUI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "debugger error: %v\n", err)
			return exitRuntimeError
		}
		return exitOK
	}

	if err := debugger.RunCLI(dbg); err != nil {
		fmt.Fprintf(os.Stderr, "debugger error: %v\n", err)
		return exitRuntimeError
	}
	return exitOK
}

// runAPIServer starts the HTTP/WebSocket API server and blocks until an
// interrupt or termination signal, then shuts it down gracefully.
func runAPIServer(port int, log *logrus.Logger) {
	server := api.NewServer(port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != io.EOF && err != http.ErrServerClosed {
			log.Errorf("API server stopped: %v", err)
		}
	case <-sigCh:
		log.Info("shutting down API server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Errorf("error during shutdown: %v", err)
		}
	}
}

func printHelp() {
	fmt.Print(`slox - a bytecode compiler and VM for Lox

Usage:
  slox                          Start an interactive REPL
  slox [options] <script.lox>   Compile and run a script
  slox -api-server [-port N]    Start the HTTP/WebSocket API server

Options:
  -debug              Run the script under the line-oriented bytecode debugger
  -tui                Run the script under the full-screen TUI debugger
  -trace              Enable execution tracing
  -verbose            Verbose internal logging
  -api-server         Start HTTP API server mode
  -port N             API server port (default 8080)
  -version            Show version information
  -help               Show this help message

Examples:
  slox
  slox examples/fib.lox
  slox -debug examples/fib.lox
  slox -tui examples/fib.lox
  slox -api-server -port 3000
`)
}
