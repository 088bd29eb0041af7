package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	domainErrors "github.com/reglet-dev/doublecount/domain/errors"
	"github.com/reglet-dev/doublecount/doubles"
	"github.com/reglet-dev/doublecount/hostfuncs"
)

func runCount(_ context.Context, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("count", stderr)
	variant := fs.String("variant", "", "traversal to use: "+strings.Join(doubles.Names(), ", "))
	configPath := fs.String("config", "", "configuration file")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: doubles count [-variant name] [-config file] <string>")
		return exitUsage
	}

	a, err := newApp(*configPath, stderr)
	if err != nil {
		reportError(stderr, err)
		return exitFail
	}

	count := doubles.Count
	if *variant != "" {
		v, ok := doubles.Lookup(*variant)
		if !ok {
			reportError(stderr, &domainErrors.ExportError{Export: *variant, Err: domainErrors.ErrUnknownExport})
			return exitUsage
		}
		count = v.Count
	}

	total := count(fs.Arg(0))
	a.logger.Debug("counted", "variant", *variant, "total", total)
	fmt.Fprintln(stdout, total)
	return exitOK
}

func runInvoke(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("invoke", stderr)
	configPath := fs.String("config", "", "configuration file")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(stderr, "usage: doubles invoke [-config file] <export> <json>")
		return exitUsage
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

	resp, err := reg.Invoke(ctx, fs.Arg(0), []byte(fs.Arg(1)))
	if err != nil {
		reportError(stderr, err)
		return exitFail
	}
	fmt.Fprintln(stdout, string(resp))

	if _, isErr := hostfuncs.ParseErrorResponse(resp); isErr {
		return exitFail
	}
	return exitOK
}

func runDescribe(_ context.Context, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("describe", stderr)
	configPath := fs.String("config", "", "configuration file")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	a, err := newApp(*configPath, stderr)
	if err != nil {
		reportError(stderr, err)
		return exitFail
	}

	data, err := json.MarshalIndent(a.module.Manifest(), "", "  ")
	if err != nil {
		reportError(stderr, err)
		return exitFail
	}
	fmt.Fprintln(stdout, string(data))
	return exitOK
}
