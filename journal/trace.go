package journal

import (
	"bytes"
	"encoding/binary"

	"github.com/clauseforge/wam/internal/arena"
)

// trace mirrors every pushed record as a compact binary entry in an
// internal/arena.Arena, purely for offline introspection
// (cmd/clausedump -journal). It never participates in Replay: a bug in
// this encoder can corrupt only a debug report, never rollback
// semantics, which always replay from the typed records slice.
type trace struct {
	a   *arena.Arena
	seq uint64
}

func newTrace() *trace {
	return &trace{a: arena.New()}
}

func (t *trace) record(kind string) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, t.seq)
	binary.Write(&buf, binary.LittleEndian, uint32(len(kind)))
	buf.WriteString(kind)
	t.a.Write(buf.Bytes())
	t.seq++
}

// Len reports how many trace entries have been written.
func (t *trace) Len() uint64 { return t.seq }

func (t *trace) close() error { return t.a.Close() }
