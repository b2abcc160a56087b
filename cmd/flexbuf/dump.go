// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/flexbuf/lib/cli"
	"github.com/bureau-foundation/flexbuf/lib/transcode"
)

// Frame magic numbers, as they appear at the start of the file.
var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

func dumpCommand() *cli.Command {
	var asCBOR bool
	var output string

	return &cli.Command{
		Name:    "dump",
		Summary: "Print a FlexBuffers buffer as JSON (or CBOR)",
		Description: "Reads a FlexBuffers buffer (optionally zstd- or lz4-compressed;\n" +
			"the framing is detected by magic number) and prints it as indented\n" +
			"JSON. With --cbor, emits deterministic CBOR instead.",
		Usage: "flexbuf dump [flags] [input]",
		Examples: []cli.Example{
			{
				Description: "Inspect a compressed buffer",
				Command:     "flexbuf dump config.flexbuf",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("dump", pflag.ContinueOnError)
			flags.BoolVar(&asCBOR, "cbor", false, "emit CBOR instead of JSON")
			flags.StringVarP(&output, "output", "o", "", "output file (default: stdout)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("at most one input file, got %d", len(args))
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return runDump(input, asCBOR, output)
		},
	}
}

func runDump(input string, asCBOR bool, output string) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}
	data, err = decompressInput(data)
	if err != nil {
		return err
	}

	if asCBOR {
		out, err := transcode.ToCBOR(data)
		if err != nil {
			return fmt.Errorf("transcoding to CBOR: %w", err)
		}
		return writeOutput(output, out)
	}

	out, err := transcode.ToJSON(data)
	if err != nil {
		return fmt.Errorf("rendering JSON: %w", err)
	}
	return writeOutput(output, append(out, '\n'))
}

// decompressInput undoes zstd or lz4 framing when the input starts
// with the corresponding magic number. Raw buffers pass through.
// Detection is a prefix heuristic: a raw buffer whose first interned
// string happens to start with a frame magic would be misread, but
// such inputs decompress-fail loudly rather than silently misparse.
func decompressInput(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("initializing zstd: %w", err)
		}
		defer decoder.Close()
		decoded, err := decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompressing zstd: %w", err)
		}
		return decoded, nil
	case bytes.HasPrefix(data, lz4Magic):
		decoded, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("decompressing lz4: %w", err)
		}
		return decoded, nil
	default:
		return data, nil
	}
}
