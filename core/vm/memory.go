package vm

import "github.com/holiman/uint256"

// Memory is the EVM's byte-addressable, word-granular scratch space. It
// grows only in 32-byte increments and is always read/written within bounds
// established by a prior Resize call driven by the interpreter's gas
// accounting -- Memory itself never charges gas or expands implicitly.
type Memory struct {
	store []byte
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Len returns the current size of memory in bytes.
func (m *Memory) Len() int { return len(m.store) }

// Data returns the raw backing buffer.
func (m *Memory) Data() []byte { return m.store }

// Resize grows memory to size bytes, zero-filling the new region. size must
// already be word-aligned; the interpreter rounds it up to a multiple of 32
// before calling Resize.
func (m *Memory) Resize(size uint64) {
	if uint64(len(m.store)) < size {
		m.store = append(m.store, make([]byte, size-uint64(len(m.store)))...)
	}
}

// Set writes value into memory starting at offset. The destination range
// [offset, offset+size) must already be within the resized buffer.
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	if offset+size > uint64(len(m.store)) {
		return
	}
	copy(m.store[offset:offset+size], value)
}

// Set32 writes a 256-bit word at offset, big-endian, zero-padded.
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	if offset+32 > uint64(len(m.store)) {
		return
	}
	b := val.Bytes32()
	copy(m.store[offset:offset+32], b[:])
}

// Get returns a copy of the size bytes at offset. Reads past the end of the
// resized buffer return zero-filled bytes rather than panicking, matching
// the Yellow Paper's implicit zero-extension of memory.
func (m *Memory) Get(offset, size int64) []byte {
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	if offset >= int64(len(m.store)) {
		return out
	}
	end := offset + size
	if end > int64(len(m.store)) {
		end = int64(len(m.store))
	}
	copy(out, m.store[offset:end])
	return out
}

// GetPtr returns a slice view (no copy) of the size bytes at offset. The
// range must already be in bounds; callers that need a stable copy (e.g. to
// retain across a nested call) must use Get instead.
func (m *Memory) GetPtr(offset, size int64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}
