package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/reglet-dev/doublecount/host"
)

func runGuest(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("guest", stderr)
	configPath := fs.String("config", "", "configuration file")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() < 2 || fs.NArg() > 3 {
		fmt.Fprintln(stderr, "usage: doubles guest [-config file] <module.wasm> <export> [json]")
		return exitUsage
	}

	wasmBytes, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		reportError(stderr, err)
		return exitFail
	}

	a, err := newApp(*configPath, stderr)
	if err != nil {
		reportError(stderr, err)
		return exitFail
	}
	defer a.close(ctx, stderr)

	reg, err := a.registry()
	if err != nil {
		reportError(stderr, err)
		return exitFail
	}

	exec, err := host.NewExecutor(ctx,
		host.WithModule(a.module),
		host.WithHostFunctions(reg),
		host.WithLogger(a.logger),
	)
	if err != nil {
		reportError(stderr, err)
		return exitFail
	}
	defer exec.Close(ctx)

	plugin, err := exec.LoadPlugin(ctx, wasmBytes)
	if err != nil {
		reportError(stderr, err)
		return exitFail
	}
	defer plugin.Close(ctx)

	var payload []byte
	if fs.NArg() == 3 {
		payload = []byte(fs.Arg(2))
	}
	resp, err := plugin.Call(ctx, fs.Arg(1), payload)
	if err != nil {
		reportError(stderr, err)
		return exitFail
	}
	fmt.Fprintln(stdout, string(resp))
	return exitOK
}
