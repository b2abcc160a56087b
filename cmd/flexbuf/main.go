// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command flexbuf converts documents to and from FlexBuffers buffers.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/flexbuf/lib/cli"
	"github.com/bureau-foundation/flexbuf/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := &cli.Command{
		Name:    "flexbuf",
		Summary: "FlexBuffers encoding toolkit",
		Description: "flexbuf converts dynamically-typed documents (JSON, YAML, CBOR)\n" +
			"to FlexBuffers buffers and prints buffers back as JSON or CBOR.",
		Subcommands: []*cli.Command{
			encodeCommand(),
			dumpCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Println("flexbuf", version.Full())
					return nil
				},
			},
		},
	}
	return root.Execute(os.Args[1:])
}

// readInput returns the contents of path, or stdin when path is "-"
// or empty.
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to path, or stdout when path is "-" or
// empty.
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("writing stdout: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
