package main

import (
	"bytes"
	"fmt"

	"github.com/natefinch/atomic"

	"github.com/hupe1980/shadercache"
	"github.com/hupe1980/shadercache/internal/mmap"
)

const (
	// imageAlign is the alignment of every blob in the memory image.
	imageAlign = 256

	// fillByte pads the gaps between blobs.
	fillByte = 0xCD
)

// layout records where each copy of each program lives in the image.
type layout struct {
	// addrs[p][c] are the stage addresses of copy c of program p.
	addrs [][]shadercache.Addresses

	// lengths maps a blob address to its length.
	lengths map[uint64]int
}

// buildImage lays out every copy of every program in a flat memory image.
// The first block is left empty so that no blob lives at address 0.
func buildImage(progs []*program) ([]byte, *layout) {
	var img bytes.Buffer
	l := &layout{
		addrs:   make([][]shadercache.Addresses, len(progs)),
		lengths: make(map[uint64]int),
	}

	pad := func() {
		n := imageAlign - img.Len()%imageAlign
		img.Write(bytes.Repeat([]byte{fillByte}, n))
	}
	pad()

	for p, prog := range progs {
		l.addrs[p] = make([]shadercache.Addresses, prog.copies)
		for c := range prog.copies {
			for s, code := range prog.code {
				if code == nil {
					continue
				}
				addr := uint64(img.Len())
				img.Write(code)
				pad()
				l.addrs[p][c][s] = addr
				l.lengths[addr] = len(code)
			}
		}
	}
	return img.Bytes(), l
}

// writeImage atomically replaces path with img and maps it.
func writeImage(path string, img []byte) (*mmap.Mapping, error) {
	if err := atomic.WriteFile(path, bytes.NewReader(img)); err != nil {
		return nil, fmt.Errorf("writing image: %w", err)
	}

	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mapping image: %w", err)
	}
	if err := m.Advise(mmap.AccessRandom); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("advise image: %w", err)
	}
	return m, nil
}
