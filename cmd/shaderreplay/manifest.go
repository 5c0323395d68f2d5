package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/opencontainers/go-digest"
	"github.com/tailscale/hujson"

	"github.com/hupe1980/shadercache"
)

// Manifest describes a captured draw trace.
type Manifest struct {
	// Hash selects the stage table digest ("crc32c" or "xxhash").
	Hash string `json:"hash,omitempty"`

	Programs []ProgramSpec `json:"programs"`

	// Draws lists program names in submission order.
	Draws []string `json:"draws"`
}

// ProgramSpec is one shader program of the trace.
type ProgramSpec struct {
	Name string `json:"name"`

	// Copies is the number of places the program's bytecode is loaded into
	// guest memory. Draws cycle through the copies. Defaults to 1.
	Copies int `json:"copies,omitempty"`

	Stages map[string]StageFile `json:"stages"`
}

// StageFile points at the bytecode of one stage. Files ending in .zst or
// .lz4 are decompressed.
type StageFile struct {
	File   string        `json:"file"`
	Digest digest.Digest `json:"digest,omitempty"`
}

// loadManifest reads a JSON manifest that may contain comments and trailing
// commas.
func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(standardized, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if len(m.Programs) == 0 {
		return errors.New("no programs")
	}

	names := make(map[string]struct{}, len(m.Programs))
	for i := range m.Programs {
		p := &m.Programs[i]
		if p.Name == "" {
			return fmt.Errorf("program %d: missing name", i)
		}
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("program %q: duplicate name", p.Name)
		}
		names[p.Name] = struct{}{}

		if p.Copies < 0 {
			return fmt.Errorf("program %q: negative copies", p.Name)
		}
		if p.Copies == 0 {
			p.Copies = 1
		}
		if len(p.Stages) == 0 {
			return fmt.Errorf("program %q: no stages", p.Name)
		}
		for stage, sf := range p.Stages {
			if _, err := shadercache.ParseStage(stage); err != nil {
				return fmt.Errorf("program %q: %w", p.Name, err)
			}
			if sf.File == "" {
				return fmt.Errorf("program %q stage %s: missing file", p.Name, stage)
			}
			if sf.Digest != "" {
				if err := sf.Digest.Validate(); err != nil {
					return fmt.Errorf("program %q stage %s: %w", p.Name, stage, err)
				}
			}
		}
	}

	for i, d := range m.Draws {
		if _, ok := names[d]; !ok {
			return fmt.Errorf("draw %d: unknown program %q", i, d)
		}
	}
	return nil
}

// stageNames returns the stage names of p in pipeline order.
func (p *ProgramSpec) stageNames() []string {
	out := make([]string, 0, len(p.Stages))
	for name := range p.Stages {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := shadercache.ParseStage(out[i])
		b, _ := shadercache.ParseStage(out[j])
		return a < b
	})
	return out
}
