// Package arena is a growable, flat-byte, block-based bump allocator
// backed by memory-mapped pages. It is grounded on the block-growth
// contract implied by go-interpreter-wagon's
// exec/internal/compile.MMapAllocator (whose own source file did not
// survive into the retrieval pack; only its test did), adapted from
// "map pages of *executable* memory for a JIT" to "map pages of plain
// memory for an append-only byte trace".
//
// Only flat, pointer-free data may ever be written here: Go's garbage
// collector does not scan memory obtained via mmap, so a []byte arena
// is sound while a slice of pointer-containing structs would not be.
package arena

import (
	"fmt"

	mmap "github.com/edsrzf/mmap-go"
)

// blockSize is the size of each mapped page group. 32KiB matches the
// growth step implied by the allocator_test.go fixture's "massive
// slice... new block" case.
const blockSize = 32 * 1024

type block struct {
	mem       mmap.MMap
	consumed  uint32
	remaining uint32
}

// Arena is a sequentially-written, never-freed byte store. It is not
// safe for concurrent use, matching the rest of this module's
// single-threaded cooperative model (SPEC_FULL §1/spec.md §5).
type Arena struct {
	blocks []*block
	last   *block
}

// New returns an empty Arena.
func New() *Arena {
	return &Arena{}
}

func newBlock(size int) (*block, error) {
	if size < blockSize {
		size = blockSize
	}
	m, err := mmap.MapRegion(nil, size, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, fmt.Errorf("arena: mmap %d bytes: %w", size, err)
	}
	return &block{mem: m, remaining: uint32(size)}, nil
}

// Write appends p to the arena and returns the (blockIndex, offset,
// length) triple needed to read it back with At. It never returns a
// short write: either all of p is copied, or an error is returned and
// nothing is.
func (a *Arena) Write(p []byte) (blockIdx int, offset int, err error) {
	if a.last == nil || uint32(len(p)) > a.last.remaining {
		b, err := newBlock(len(p))
		if err != nil {
			return 0, 0, err
		}
		a.blocks = append(a.blocks, b)
		a.last = b
	}
	b := a.last
	off := int(b.consumed)
	n := copy(b.mem[off:], p)
	b.consumed += uint32(n)
	b.remaining -= uint32(n)
	return len(a.blocks) - 1, off, nil
}

// At returns the n bytes written at (blockIdx, offset) by a prior
// Write. The returned slice aliases the arena's backing memory and must
// not be retained past a call that could unmap it (Close).
func (a *Arena) At(blockIdx, offset, n int) ([]byte, error) {
	if blockIdx < 0 || blockIdx >= len(a.blocks) {
		return nil, fmt.Errorf("arena: block index %d out of range [0,%d)", blockIdx, len(a.blocks))
	}
	b := a.blocks[blockIdx]
	if offset < 0 || offset+n > len(b.mem) {
		return nil, fmt.Errorf("arena: range [%d,%d) out of bounds for block of size %d", offset, offset+n, len(b.mem))
	}
	return b.mem[offset : offset+n], nil
}

// Len reports the total number of bytes written across all blocks.
func (a *Arena) Len() int {
	total := 0
	for _, b := range a.blocks {
		total += int(b.consumed)
	}
	return total
}

// Close unmaps every block. The Arena must not be used afterwards.
func (a *Arena) Close() error {
	var first error
	for _, b := range a.blocks {
		if err := b.mem.Unmap(); err != nil && first == nil {
			first = err
		}
	}
	a.blocks = nil
	a.last = nil
	return first
}
