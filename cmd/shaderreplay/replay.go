package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	natomic "github.com/natefinch/atomic"
	"github.com/opencontainers/go-digest"

	"github.com/hupe1980/shadercache"
	"github.com/hupe1980/shadercache/datasource"
)

// Report summarizes a replay.
type Report struct {
	Draws        int                               `json:"draws"`
	Programs     int                               `json:"programs"`
	Compiles     int64                             `json:"compiles"`
	Hits         int64                             `json:"hits"`
	HitRate      float64                           `json:"hit_rate"`
	Bundles      int                               `json:"bundles"`
	Duplicates   uint64                            `json:"duplicates"`
	ImageBytes   int                               `json:"image_bytes"`
	Stages       map[string]shadercache.StageStats `json:"stages"`
	Fingerprints map[string]digest.Digest          `json:"fingerprints"`
	Elapsed      time.Duration                     `json:"elapsed_ns"`
}

// replay loads the corpus described by cfg, replays its draws against a
// fresh cache and returns the resulting report.
func replay(ctx context.Context, cfg config, logger *shadercache.Logger) (*Report, error) {
	start := time.Now()

	m, err := loadManifest(cfg.manifest)
	if err != nil {
		return nil, err
	}

	hashName := m.Hash
	if cfg.hash != "" {
		hashName = cfg.hash
	}
	kind, err := shadercache.ParseHashKind(hashName)
	if err != nil {
		return nil, err
	}

	progs, err := loadCorpus(ctx, m, filepath.Dir(cfg.manifest), cfg.loadWorkers)
	if err != nil {
		return nil, err
	}
	logger.Info("corpus loaded", "programs", len(progs), "draws", len(m.Draws))

	img, l := buildImage(progs)
	imagePath := cfg.image
	if imagePath == "" {
		imagePath = filepath.Join(filepath.Dir(cfg.manifest), "memory.img")
	}
	mem, err := writeImage(imagePath, img)
	if err != nil {
		return nil, err
	}
	defer mem.Close()

	compiler := shadercache.CompilerFunc[digest.Digest](func(_ context.Context, code [shadercache.NumStages][]byte) (digest.Digest, error) {
		return fingerprint(code), nil
	})
	fetcher := shadercache.CodeFetcherFunc(func(_ context.Context, src datasource.Memory, _ shadercache.Stage, addr uint64) ([]byte, error) {
		n, ok := l.lengths[addr]
		if !ok {
			return nil, fmt.Errorf("no blob at %#x", addr)
		}
		return datasource.Copy(src, addr, n)
	})

	cache := shadercache.New[digest.Digest](
		shadercache.WithLogger(logger),
		shadercache.WithHashKind(kind),
	)
	r, err := shadercache.NewResolver[digest.Digest](cache, compiler, fetcher,
		shadercache.WithMaxConcurrentCompiles(cfg.compileConcurrency),
		shadercache.WithCompileRateLimit(cfg.compileRate, int(cfg.compileConcurrency)),
	)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(progs))
	for i, p := range progs {
		index[p.name] = i
	}

	rep := &Report{
		Draws:        len(m.Draws),
		Programs:     len(progs),
		ImageBytes:   len(img),
		Stages:       make(map[string]shadercache.StageStats),
		Fingerprints: make(map[string]digest.Digest),
	}

	// Draws of the same program rotate through its copies so that identical
	// bytecode is found at different addresses.
	drawn := make([]int, len(progs))
	for i, name := range m.Draws {
		p := index[name]
		addrs := l.addrs[p][drawn[p]%progs[p].copies]
		drawn[p]++

		b, err := r.Resolve(ctx, mem, addrs)
		if err != nil {
			return nil, fmt.Errorf("draw %d (%s): %w", i, name, err)
		}
		rep.Fingerprints[name] = b.Program
	}

	stats := r.Stats()
	rep.Compiles = r.Compiles()
	rep.Hits = int64(rep.Draws) - rep.Compiles
	if rep.Draws > 0 {
		rep.HitRate = float64(rep.Hits) / float64(rep.Draws)
	}
	rep.Bundles = stats.Bundles
	rep.Duplicates = stats.Duplicates
	for s, st := range stats.Stages {
		if st.IDs > 0 {
			rep.Stages[shadercache.Stage(s).String()] = st
		}
	}
	rep.Elapsed = time.Since(start)

	return rep, nil
}

// fingerprint identifies a program by the digest of its stage bytecode.
func fingerprint(code [shadercache.NumStages][]byte) digest.Digest {
	d := digest.Canonical.Digester()
	h := d.Hash()
	for s, c := range code {
		if c == nil {
			continue
		}
		fmt.Fprintf(h, "%s:%d:", shadercache.Stage(s), len(c))
		h.Write(c)
	}
	return d.Digest()
}

func writeReport(path string, rep *Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := natomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func printSummary(w io.Writer, rep *Report) {
	fmt.Fprintf(w, "draws:     %d\n", rep.Draws)
	fmt.Fprintf(w, "programs:  %d\n", rep.Programs)
	fmt.Fprintf(w, "compiles:  %d\n", rep.Compiles)
	fmt.Fprintf(w, "hit rate:  %.1f%%\n", rep.HitRate*100)
	fmt.Fprintf(w, "bundles:   %d\n", rep.Bundles)
	for s := shadercache.StageVertexA; s < shadercache.NumStages; s++ {
		st, ok := rep.Stages[s.String()]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %-16s ids=%d sizes=%d partial=%d probes=%d\n",
			s, st.IDs, st.Sizes, st.PartialEntries, st.Probes)
	}
	fmt.Fprintf(w, "elapsed:   %s\n", rep.Elapsed.Round(time.Microsecond))
}
