package vm

import (
	"bytes"
	"testing"

	"github.com/holiman/uint256"
)

func TestMemoryResizeIsWordAligned(t *testing.T) {
	m := NewMemory()
	m.Resize(toWordSize(10) * 32)
	if m.Len()%32 != 0 {
		t.Fatalf("memory length must be a multiple of 32, got %d", m.Len())
	}
	if m.Len() != 32 {
		t.Fatalf("expected 32 bytes for a 10-byte access, got %d", m.Len())
	}
}

func TestMemoryReadPastEndIsZeroFilled(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	got := m.Get(16, 32) // reads 16 bytes past the resized end
	want := make([]byte, 32)
	if !bytes.Equal(got, want) {
		t.Fatalf("expected zero-filled tail, got %x", got)
	}
}

func TestMemorySet32RoundTrip(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	val := uint256.NewInt(0xdeadbeef)
	m.Set32(0, val)
	got := m.Get(0, 32)
	want := val.Bytes32()
	if !bytes.Equal(got, want[:]) {
		t.Fatalf("expected %x, got %x", want, got)
	}
}

func TestMemoryZeroLengthAccessDoesNotGrow(t *testing.T) {
	m := NewMemory()
	got := m.Get(0, 0)
	if got != nil {
		t.Fatalf("expected nil for zero-length read, got %x", got)
	}
	if m.Len() != 0 {
		t.Fatalf("expected memory to remain empty, got len %d", m.Len())
	}
}
