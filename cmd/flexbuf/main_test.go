// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatFromExtension(t *testing.T) {
	cases := []struct {
		path, want string
		known      bool
	}{
		{"config.json", "json", true},
		{"config.jsonc", "json", true},
		{"config.yaml", "yaml", true},
		{"config.YML", "yaml", true},
		{"payload.cbor", "cbor", true},
		{"", "json", false},
		{"-", "json", false},
		{"noext", "json", false},
	}
	for _, c := range cases {
		got, known := formatFromExtension(c.path)
		if got != c.want || known != c.known {
			t.Errorf("formatFromExtension(%q) = (%q, %v), want (%q, %v)",
				c.path, got, known, c.want, c.known)
		}
	}
}

func TestCompressionRoundtrip(t *testing.T) {
	payload := bytes.Repeat([]byte("flexbuffers "), 100)
	for _, algorithm := range []string{"none", "zstd", "lz4"} {
		compressed, err := compressOutput(payload, algorithm)
		if err != nil {
			t.Fatalf("compressOutput(%s): %v", algorithm, err)
		}
		decoded, err := decompressInput(compressed)
		if err != nil {
			t.Fatalf("decompressInput(%s): %v", algorithm, err)
		}
		if !bytes.Equal(decoded, payload) {
			t.Errorf("%s roundtrip mismatch: %d bytes in, %d bytes out",
				algorithm, len(payload), len(decoded))
		}
	}
}

func TestCompressionUnknownAlgorithm(t *testing.T) {
	if _, err := compressOutput([]byte("x"), "gzip"); err == nil {
		t.Error("compressOutput should reject unknown algorithms")
	}
}

func TestEncodeDumpEndToEnd(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "doc.json")
	bufferPath := filepath.Join(dir, "doc.flexbuf")
	dumpPath := filepath.Join(dir, "doc.out.json")

	document := `{
		// a comment, to prove JSONC survives the pipeline
		"name": "fixture",
		"values": [1, 2, 3],
	}`
	if err := os.WriteFile(inputPath, []byte(document), 0o644); err != nil {
		t.Fatalf("writing input: %v", err)
	}

	if err := runEncode(inputPath, "", "zstd", bufferPath); err != nil {
		t.Fatalf("runEncode: %v", err)
	}
	if err := runDump(bufferPath, false, dumpPath); err != nil {
		t.Fatalf("runDump: %v", err)
	}

	out, err := os.ReadFile(dumpPath)
	if err != nil {
		t.Fatalf("reading dump output: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, `"name": "fixture"`) {
		t.Errorf("dump output missing name entry:\n%s", text)
	}
	if !strings.Contains(text, "1") || !strings.Contains(text, "3") {
		t.Errorf("dump output missing vector values:\n%s", text)
	}
}

func TestDumpCBOR(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "doc.json")
	bufferPath := filepath.Join(dir, "doc.flexbuf")
	cborPath := filepath.Join(dir, "doc.cbor")

	if err := os.WriteFile(inputPath, []byte(`{"a": 1}`), 0o644); err != nil {
		t.Fatalf("writing input: %v", err)
	}
	if err := runEncode(inputPath, "json", "none", bufferPath); err != nil {
		t.Fatalf("runEncode: %v", err)
	}
	if err := runDump(bufferPath, true, cborPath); err != nil {
		t.Fatalf("runDump: %v", err)
	}

	out, err := os.ReadFile(cborPath)
	if err != nil {
		t.Fatalf("reading CBOR output: %v", err)
	}
	// {"a": 1} in deterministic CBOR: one-entry map, text key "a",
	// unsigned 1.
	want := []byte{0xA1, 0x61, 'a', 0x01}
	if !bytes.Equal(out, want) {
		t.Errorf("CBOR output = %x, want %x", out, want)
	}
}
