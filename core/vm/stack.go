package vm

import (
	"sync"

	"github.com/holiman/uint256"
)

// maxStackDepth is the maximum number of 256-bit words the stack may hold at
// once, fixed by the Yellow Paper at 1024.
const maxStackDepth = 1024

// Stack is the EVM's 256-bit-word operand stack. Words are represented with
// uint256.Int rather than math/big.Int: fixed-width arithmetic avoids the
// heap allocation big.Int incurs on every operation, which matters on the
// hot path of the fetch-decode-execute loop.
type Stack struct {
	data []uint256.Int
}

var stackPool = sync.Pool{
	New: func() any {
		return &Stack{data: make([]uint256.Int, 0, 16)}
	},
}

// newStack returns a Stack from the shared pool; callers must return it via
// returnStack when done.
func newStack() *Stack {
	return stackPool.Get().(*Stack)
}

func returnStack(s *Stack) {
	s.data = s.data[:0]
	stackPool.Put(s)
}

// Push places a word on top of the stack.
func (s *Stack) Push(v *uint256.Int) {
	s.data = append(s.data, *v)
}

// Pop removes and returns the top word.
func (s *Stack) Pop() uint256.Int {
	n := len(s.data) - 1
	v := s.data[n]
	s.data = s.data[:n]
	return v
}

// Peek returns a pointer to the top word without removing it, allowing
// in-place mutation (the common case for binary operators, which overwrite
// the second operand with the result).
func (s *Stack) Peek() *uint256.Int {
	return &s.data[len(s.data)-1]
}

// Back returns a pointer to the n-th word from the top (0-indexed).
func (s *Stack) Back(n int) *uint256.Int {
	return &s.data[len(s.data)-1-n]
}

// Len returns the number of words currently on the stack.
func (s *Stack) Len() int { return len(s.data) }

// Dup pushes a copy of the n-th word from the top (1-indexed, DUP1..DUP16).
func (s *Stack) Dup(n int) {
	s.data = append(s.data, s.data[len(s.data)-n])
}

// Swap exchanges the top word with the word n positions below it (SWAPn,
// SWAP1..SWAP16).
func (s *Stack) Swap(n int) {
	top := len(s.data) - 1
	s.data[top], s.data[top-n] = s.data[top-n], s.data[top]
}
