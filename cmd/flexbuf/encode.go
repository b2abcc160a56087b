// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/flexbuf/lib/cli"
	"github.com/bureau-foundation/flexbuf/lib/transcode"
)

func encodeCommand() *cli.Command {
	var format string
	var compress string
	var output string

	return &cli.Command{
		Name:    "encode",
		Summary: "Convert a JSON, YAML or CBOR document to FlexBuffers",
		Description: "Reads a document from a file (or stdin with \"-\") and writes the\n" +
			"equivalent FlexBuffers buffer. The input format is inferred from the\n" +
			"file extension unless --format is given; stdin defaults to JSON.\n" +
			"JSON input may contain comments and trailing commas.",
		Usage: "flexbuf encode [flags] [input]",
		Examples: []cli.Example{
			{
				Description: "Convert a JSON config to a compressed buffer",
				Command:     "flexbuf encode --compress zstd -o config.flexbuf config.json",
			},
			{
				Description: "Pipe YAML through the encoder",
				Command:     "cat config.yaml | flexbuf encode --format yaml - > config.flexbuf",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("encode", pflag.ContinueOnError)
			flags.StringVar(&format, "format", "", "input format: json, yaml or cbor (default: by extension)")
			flags.StringVar(&compress, "compress", "none", "output compression: none, zstd or lz4")
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
			return runEncode(input, format, compress, output)
		},
	}
}

func runEncode(input, format, compress, output string) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}

	if format == "" {
		inferred, known := formatFromExtension(input)
		if !known {
			cli.NewLogger().Warn("no input format given and none inferable, assuming JSON",
				"input", displayName(input))
		}
		format = inferred
	}

	var buffer []byte
	switch format {
	case "json":
		buffer, err = transcode.FromJSON(data)
	case "yaml":
		buffer, err = transcode.FromYAML(data)
	case "cbor":
		buffer, err = transcode.FromCBOR(data)
	default:
		return fmt.Errorf("unknown input format %q (want json, yaml or cbor)", format)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", format, err)
	}

	compressed, err := compressOutput(buffer, compress)
	if err != nil {
		return err
	}
	return writeOutput(output, compressed)
}

// formatFromExtension infers the input format from the file name and
// reports whether the extension was conclusive. Unknown extensions
// and stdin fall back to JSON, the most common case and the one whose
// decode errors are easiest to interpret.
func formatFromExtension(path string) (format string, known bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml", true
	case ".cbor":
		return "cbor", true
	case ".json", ".jsonc":
		return "json", true
	default:
		return "json", false
	}
}

// displayName names an input for log output; stdin has no path.
func displayName(path string) string {
	if path == "" || path == "-" {
		return "(stdin)"
	}
	return path
}

func compressOutput(data []byte, algorithm string) ([]byte, error) {
	switch algorithm {
	case "none", "":
		return data, nil
	case "zstd":
		encoder, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("initializing zstd: %w", err)
		}
		defer encoder.Close()
		return encoder.EncodeAll(data, nil), nil
	case "lz4":
		var out bytes.Buffer
		writer := lz4.NewWriter(&out)
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("compressing with lz4: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("finishing lz4 frame: %w", err)
		}
		return out.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown compression %q (want none, zstd or lz4)", algorithm)
	}
}
