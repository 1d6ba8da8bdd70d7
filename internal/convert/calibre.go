// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package convert wraps the Calibre ebook-convert CLI that assembles
// chapter HTML into an EPUB (spec.md §6), grounded on the original
// source's calibre.rs.
package convert

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	conversionTimeout = 2 * time.Minute
	tempNameLength    = 30
	alphanumeric      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Request is everything the original source's generate_epub needed to
// invoke ebook-convert (spec.md §4.D).
type Request struct {
	InputExtension string
	ChapterBody    []byte
	CoverTitle     string
	BookTitle      string
	Author         string
}

// Converter shells out to the system's ebook-convert binary.
type Converter struct {
	tmpDir string
}

// NewConverter constructs a [Converter]. tmpDir defaults to os.TempDir()
// when empty.
func NewConverter(tmpDir string) *Converter {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &Converter{tmpDir: tmpDir}
}

// GenerateEPUB converts req.ChapterBody into EPUB bytes via ebook-convert,
// bounding the subprocess with a fixed timeout (SPEC_FULL.md §14) and
// unconditionally removing both temp files — on failure as well as
// success, fixing the original source's leak on the failure path
// (SPEC_FULL.md §15).
func (c *Converter) GenerateEPUB(ctx context.Context, req Request) ([]byte, error) {
	name, err := randomAlphanumeric(tempNameLength)
	if err != nil {
		return nil, fmt.Errorf("convert: generate temp file name: %w", err)
	}

	inPath := filepath.Join(c.tmpDir, fmt.Sprintf("%s.%s", name, req.InputExtension))
	outPath := filepath.Join(c.tmpDir, fmt.Sprintf("%s.epub", name))
	defer os.Remove(inPath)
	defer os.Remove(outPath)

	if err := os.WriteFile(inPath, req.ChapterBody, 0o600); err != nil {
		return nil, fmt.Errorf("convert: write input file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, conversionTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ebook-convert",
		inPath, outPath,
		"--filter-css", "font-family,color,background",
		"--authors", req.Author,
		"--title", req.CoverTitle,
		"--series", req.BookTitle,
		"--output-profile", "kindle_oasis",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("convert: ebook-convert failed: %w (stderr: %s)", err, stderr.String())
	}

	epub, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("convert: read output file: %w", err)
	}
	return epub, nil
}

func randomAlphanumeric(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphanumeric)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphanumeric[idx.Int64()]
	}
	return string(out), nil
}
