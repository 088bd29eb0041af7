// Command doubles counts adjacent equal characters and benchmarks the
// counting strategies.
//
// Usage:
//
//	doubles count [-variant name] [-config file] <string>
//	doubles invoke [-config file] <export> <json>
//	doubles describe [-config file]
//	doubles bench [-n 1000000] [-seed s] [-rounds r]
//	doubles verify [-iterations n] [-workers w] [-seed s]
//	doubles guest [-config file] <module.wasm> <export> [json]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

type command struct {
	run   func(ctx context.Context, args []string, stdout, stderr io.Writer) int
	name  string
	usage string
}

var commands = []command{
	{name: "count", usage: "count [-variant name] [-config file] <string>", run: runCount},
	{name: "invoke", usage: "invoke [-config file] <export> <json>", run: runInvoke},
	{name: "describe", usage: "describe [-config file]", run: runDescribe},
	{name: "bench", usage: "bench [-n 1000000] [-seed s] [-rounds r]", run: runBench},
	{name: "verify", usage: "verify [-iterations n] [-workers w] [-seed s]", run: runVerify},
	{name: "guest", usage: "guest [-config file] <module.wasm> <export> [json]", run: runGuest},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(ctx, args[1:], stdout, stderr)
		}
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stdout)
		return exitOK
	}
	fmt.Fprintf(stderr, "doubles: unknown command %q\n", args[0])
	usage(stderr)
	return exitUsage
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	for _, c := range commands {
		fmt.Fprintf(w, "  doubles %s\n", c.usage)
	}
}
