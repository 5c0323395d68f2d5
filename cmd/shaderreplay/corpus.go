package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/shadercache"
)

// program is a manifest program with its stage bytecode loaded.
type program struct {
	name   string
	copies int
	code   [shadercache.NumStages][]byte
}

// loadCorpus reads and verifies the bytecode of every stage referenced by m.
// Relative file paths are resolved against dir.
func loadCorpus(ctx context.Context, m *Manifest, dir string, workers int) ([]*program, error) {
	progs := make([]*program, len(m.Programs))
	for i := range m.Programs {
		progs[i] = &program{name: m.Programs[i].Name, copies: m.Programs[i].Copies}
	}

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i := range m.Programs {
		ps := &m.Programs[i]
		for _, name := range ps.stageNames() {
			stage, _ := shadercache.ParseStage(name)
			sf := ps.Stages[name]
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				code, err := readStageFile(resolvePath(dir, sf.File))
				if err != nil {
					return fmt.Errorf("program %q stage %s: %w", ps.Name, name, err)
				}
				if len(code) == 0 {
					return fmt.Errorf("program %q stage %s: empty bytecode", ps.Name, name)
				}
				if sf.Digest != "" {
					if err := verify(sf.Digest, code); err != nil {
						return fmt.Errorf("program %q stage %s: %w", ps.Name, name, err)
					}
				}
				// Each goroutine writes a distinct slot.
				progs[i].code[stage] = code
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return progs, nil
}

func resolvePath(dir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}

// readStageFile returns the decompressed contents of path.
func readStageFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		return io.ReadAll(dec)
	case strings.HasSuffix(path, ".lz4"):
		return io.ReadAll(lz4.NewReader(f))
	default:
		return io.ReadAll(f)
	}
}

func verify(want digest.Digest, data []byte) error {
	v := want.Verifier()
	if _, err := io.Copy(v, bytes.NewReader(data)); err != nil {
		return err
	}
	if !v.Verified() {
		return fmt.Errorf("digest mismatch: want %s, got %s", want, want.Algorithm().FromBytes(data))
	}
	return nil
}
