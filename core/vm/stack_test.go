package vm

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestStackPushPopOrder(t *testing.T) {
	s := newStack()
	defer returnStack(s)

	s.Push(uint256.NewInt(1))
	s.Push(uint256.NewInt(2))
	s.Push(uint256.NewInt(3))

	if got := s.Pop(); got.Uint64() != 3 {
		t.Fatalf("expected 3, got %d", got.Uint64())
	}
	if got := s.Pop(); got.Uint64() != 2 {
		t.Fatalf("expected 2, got %d", got.Uint64())
	}
	if got := s.Pop(); got.Uint64() != 1 {
		t.Fatalf("expected 1, got %d", got.Uint64())
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty stack, len=%d", s.Len())
	}
}

func TestStackDup(t *testing.T) {
	s := newStack()
	defer returnStack(s)

	s.Push(uint256.NewInt(10))
	s.Push(uint256.NewInt(20))
	s.Push(uint256.NewInt(30))

	s.Dup(3) // DUP3: duplicate the 3rd word from the top (value 10)
	if got := s.Peek(); got.Uint64() != 10 {
		t.Fatalf("expected top 10 after dup, got %d", got.Uint64())
	}
	if s.Len() != 4 {
		t.Fatalf("expected len 4, got %d", s.Len())
	}
}

func TestStackSwap(t *testing.T) {
	s := newStack()
	defer returnStack(s)

	s.Push(uint256.NewInt(10))
	s.Push(uint256.NewInt(20))
	s.Push(uint256.NewInt(30))

	s.Swap(2) // SWAP2: exchange the top (30) with the 3rd word from top (10)
	if got := s.Peek(); got.Uint64() != 10 {
		t.Fatalf("expected top 10 after swap, got %d", got.Uint64())
	}
	if got := s.Back(2); got.Uint64() != 30 {
		t.Fatalf("expected bottom 30 after swap, got %d", got.Uint64())
	}
}

func TestStackBackIsZeroIndexedFromTop(t *testing.T) {
	s := newStack()
	defer returnStack(s)

	s.Push(uint256.NewInt(100))
	s.Push(uint256.NewInt(200))
	s.Push(uint256.NewInt(300))

	if got := s.Back(0); got.Uint64() != 300 {
		t.Fatalf("Back(0) should be the top, got %d", got.Uint64())
	}
	if got := s.Back(2); got.Uint64() != 100 {
		t.Fatalf("Back(2) should be the bottom, got %d", got.Uint64())
	}
}
