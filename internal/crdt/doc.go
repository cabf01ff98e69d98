// Package crdt implements the shared layout document: a last-writer-wins
// replicated map from grid cell index to cell attributes. Every replica
// applying the same set of updates converges to the same state, regardless
// of delivery order or duplication. Concurrent writes to the same register
// are resolved by Lamport clock, with the lexicographically greater replica
// ID winning ties.
package crdt

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// CellState is the merged view of one grid cell.
type CellState struct {
	Idx      int
	StreamID string
	Width    int
	Height   int
}

// UpdateFunc receives every update applied to the document, encoded for the
// wire, together with the origin tag it was applied under. Local edits carry
// an empty origin.
type UpdateFunc func(update []byte, origin string)

type register struct {
	clock   uint64
	replica string
	strVal  string
	intVal  uint32
}

// wins reports whether an incoming write supersedes the current register.
func (r *register) wins(clock uint64, replica string) bool {
	if clock != r.clock {
		return clock > r.clock
	}
	return replica > r.replica
}

type cell struct {
	streamID register
	width    register
	height   register
}

// Doc is the process-wide layout document. All methods are safe for
// concurrent use.
type Doc struct {
	mu      sync.Mutex
	replica string
	clock   uint64
	cells   []cell
	subs    []UpdateFunc
}

// NewDoc creates a document with cellCount cells, each unassigned with
// width and height 1.
func NewDoc(cellCount int) *Doc {
	d := &Doc{
		replica: uuid.NewString(),
		cells:   make([]cell, cellCount),
	}
	for i := range d.cells {
		d.cells[i].width.intVal = 1
		d.cells[i].height.intVal = 1
	}
	return d
}

// OnUpdate registers a subscriber. Subscribers are invoked after the update
// has been merged, outside the document lock.
func (d *Doc) OnUpdate(fn UpdateFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, fn)
}

// CellCount returns the number of cells in the document.
func (d *Doc) CellCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.cells)
}

// Cell returns the merged state of one cell.
func (d *Doc) Cell(idx int) (CellState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if idx < 0 || idx >= len(d.cells) {
		return CellState{}, fmt.Errorf("cell index %d out of range", idx)
	}
	return d.cellState(idx), nil
}

// Cells returns the merged state of every cell in index order.
func (d *Doc) Cells() []CellState {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]CellState, len(d.cells))
	for i := range d.cells {
		out[i] = d.cellState(i)
	}
	return out
}

func (d *Doc) cellState(idx int) CellState {
	c := &d.cells[idx]
	return CellState{
		Idx:      idx,
		StreamID: c.streamID.strVal,
		Width:    int(c.width.intVal),
		Height:   int(c.height.intVal),
	}
}

// SetStreamID assigns a stream to a cell as a local edit and broadcasts the
// resulting update to subscribers.
func (d *Doc) SetStreamID(idx int, streamID string) error {
	return d.localEdit(idx, func(clock uint64) entry {
		return entry{idx: uint32(idx), field: fieldStreamID, clock: clock, replica: d.replica, strVal: streamID}
	})
}

// SetDimensions sets a cell's width and height as a local edit.
func (d *Doc) SetDimensions(idx, width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("dimensions must be non-negative")
	}
	err := d.localEdit(idx, func(clock uint64) entry {
		return entry{idx: uint32(idx), field: fieldWidth, clock: clock, replica: d.replica, intVal: uint32(width)}
	})
	if err != nil {
		return err
	}
	return d.localEdit(idx, func(clock uint64) entry {
		return entry{idx: uint32(idx), field: fieldHeight, clock: clock, replica: d.replica, intVal: uint32(height)}
	})
}

func (d *Doc) localEdit(idx int, build func(clock uint64) entry) error {
	d.mu.Lock()
	if idx < 0 || idx >= len(d.cells) {
		d.mu.Unlock()
		return fmt.Errorf("cell index %d out of range", idx)
	}
	d.clock++
	e := build(d.clock)
	d.merge(e)
	update := encodeEntries([]entry{e})
	subs := append([]UpdateFunc(nil), d.subs...)
	d.mu.Unlock()

	for _, fn := range subs {
		fn(update, "")
	}
	return nil
}

// ApplyUpdate merges an update received from the network under the given
// origin tag and re-broadcasts it to subscribers. Applying the same update
// twice is a no-op for the document state. Entries addressing cells outside
// the document's range are ignored.
func (d *Doc) ApplyUpdate(data []byte, origin string) error {
	entries, err := decodeEntries(data)
	if err != nil {
		return err
	}

	d.mu.Lock()
	for _, e := range entries {
		if int(e.idx) >= len(d.cells) {
			continue
		}
		if e.clock > d.clock {
			d.clock = e.clock
		}
		d.merge(e)
	}
	subs := append([]UpdateFunc(nil), d.subs...)
	d.mu.Unlock()

	for _, fn := range subs {
		fn(data, origin)
	}
	return nil
}

// EncodeState encodes the full document as a single update. Applying it to
// an empty replica reproduces the current state; the first binary frame sent
// to every new connection is produced here.
func (d *Doc) EncodeState() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := make([]entry, 0, len(d.cells)*3)
	for i := range d.cells {
		c := &d.cells[i]
		entries = append(entries,
			entry{idx: uint32(i), field: fieldStreamID, clock: c.streamID.clock, replica: c.streamID.replica, strVal: c.streamID.strVal},
			entry{idx: uint32(i), field: fieldWidth, clock: c.width.clock, replica: c.width.replica, intVal: c.width.intVal},
			entry{idx: uint32(i), field: fieldHeight, clock: c.height.clock, replica: c.height.replica, intVal: c.height.intVal},
		)
	}
	return encodeEntries(entries)
}

// merge applies one entry under the LWW rule. Caller holds d.mu.
func (d *Doc) merge(e entry) {
	c := &d.cells[e.idx]
	var reg *register
	switch e.field {
	case fieldStreamID:
		reg = &c.streamID
	case fieldWidth:
		reg = &c.width
	case fieldHeight:
		reg = &c.height
	default:
		return
	}
	if !reg.wins(e.clock, e.replica) {
		return
	}
	reg.clock = e.clock
	reg.replica = e.replica
	reg.strVal = e.strVal
	reg.intVal = e.intVal
}
