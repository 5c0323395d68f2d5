package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/shadercache/testutil"
)

func writeZstd(t *testing.T, path string, data []byte) {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	require.NoError(t, os.WriteFile(path, enc.EncodeAll(data, nil), 0o600))
}

func writeLZ4(t *testing.T, path string, data []byte) {
	t.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

// setupTrace writes a corpus of two programs that share a vertex stage.
func setupTrace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	rng := testutil.NewRNG(4711)

	vs := rng.Bytecode(300)
	fsA := rng.Bytecode(120)
	fsB := rng.Bytecode(180)

	writeZstd(t, filepath.Join(dir, "shared.vs.zst"), vs)
	writeLZ4(t, filepath.Join(dir, "a.fs.lz4"), fsA)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.fs"), fsB, 0o600))

	manifest := `{
  // Two programs sharing a vertex shader.
  "hash": "crc32c",
  "programs": [
    {
      "name": "a",
      "copies": 2,
      "stages": {
        "vertex": {"file": "shared.vs.zst", "digest": "` + digest.FromBytes(vs).String() + `"},
        "fragment": {"file": "a.fs.lz4"},
      },
    },
    {
      "name": "b",
      "stages": {
        "vertex": {"file": "shared.vs.zst"},
        "fragment": {"file": "b.fs", "digest": "` + digest.FromBytes(fsB).String() + `"},
      },
    },
  ],
  "draws": ["a", "b", "a", "a", "b"],
}`
	path := filepath.Join(dir, "trace.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o600))
	return path
}

func TestRun_WritesReport(t *testing.T) {
	manifest := setupTrace(t)
	reportPath := filepath.Join(filepath.Dir(manifest), "report.json")

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--manifest", manifest, "--report", reportPath, "--hash", "xxhash"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "compiles:  2")

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)

	var rep Report
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, 5, rep.Draws)
	assert.Equal(t, 2, rep.Programs)
	assert.Equal(t, int64(2), rep.Compiles)
	assert.Equal(t, int64(3), rep.Hits)
	assert.InDelta(t, 0.6, rep.HitRate, 1e-9)
	assert.Equal(t, 2, rep.Bundles)
	assert.Zero(t, rep.Duplicates)

	require.Contains(t, rep.Stages, "vertex")
	assert.Equal(t, 1, rep.Stages["vertex"].IDs)
	assert.Equal(t, 2, rep.Stages["fragment"].IDs)
	assert.NotContains(t, rep.Stages, "geometry")

	require.Len(t, rep.Fingerprints, 2)
	assert.NotEqual(t, rep.Fingerprints["a"], rep.Fingerprints["b"])
	assert.NoError(t, rep.Fingerprints["a"].Validate())
}

func TestRun_DigestMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v.bin"), []byte("vertex"), 0o600))
	manifest := filepath.Join(dir, "trace.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`{
		"programs": [{"name": "p", "stages": {"vertex": {"file": "v.bin", "digest": "`+
		digest.FromString("other").String()+`"}}}],
		"draws": ["p"]
	}`), 0o600))

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{manifest}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "digest mismatch")
}

func TestLoadManifest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no programs", `{"draws": []}`, "no programs"},
		{"unknown stage", `{"programs": [{"name": "p", "stages": {"compute": {"file": "x"}}}]}`, "unknown stage"},
		{"unknown draw", `{"programs": [{"name": "p", "stages": {"vertex": {"file": "x"}}}], "draws": ["q"]}`, "unknown program"},
		{"duplicate", `{"programs": [{"name": "p", "stages": {"vertex": {"file": "x"}}}, {"name": "p", "stages": {"vertex": {"file": "y"}}}]}`, "duplicate name"},
		{"bad digest", `{"programs": [{"name": "p", "stages": {"vertex": {"file": "x", "digest": "sha256:zz"}}}]}`, "program \"p\""},
		{"not json", `{programs`, "invalid manifest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "m.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			_, err := loadManifest(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildImage(t *testing.T) {
	progs := []*program{{name: "p", copies: 2}}
	progs[0].code[1] = []byte("vertex")
	progs[0].code[5] = []byte("fragment")

	img, l := buildImage(progs)
	require.Len(t, l.addrs[0], 2)
	assert.Zero(t, len(img)%imageAlign)

	for _, addrs := range l.addrs[0] {
		assert.Zero(t, addrs[0], "absent stage has no address")
		for _, s := range []int{1, 5} {
			addr := addrs[s]
			assert.NotZero(t, addr)
			assert.Zero(t, addr%imageAlign)
			assert.Equal(t, progs[0].code[s], img[addr:addr+uint64(l.lengths[addr])])
		}
	}
	assert.NotEqual(t, l.addrs[0][0], l.addrs[0][1])
}

func TestParseFlags(t *testing.T) {
	_, err := parseFlags(nil)
	assert.ErrorContains(t, err, "--manifest is required")

	_, err = parseFlags([]string{"-m", "x", "--compile-concurrency", "0"})
	assert.Error(t, err)

	cfg, err := parseFlags([]string{"trace.json", "--compile-rate", "10"})
	require.NoError(t, err)
	assert.Equal(t, "trace.json", cfg.manifest)
	assert.InDelta(t, 10.0, cfg.compileRate, 1e-9)

	var out, errOut bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), []string{"-m", "x", "--log-format", "xml"}, &out, &errOut))
}
