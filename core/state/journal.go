package state

import (
	"github.com/holiman/uint256"

	"github.com/ethcore/evmcore/core/types"
)

// journalEntry is a single revertible mutation recorded against a StateDB.
type journalEntry interface {
	revert(s *StateDB)
}

// journal is an append-only log of state mutations, indexed by snapshot so
// RevertToSnapshot can undo everything recorded since a given point, in
// reverse order, without touching anything older.
type journal struct {
	entries   []journalEntry
	snapshots map[int]int // snapshot id -> entry index at the time of the snapshot
	nextID    int
}

func newJournal() *journal {
	return &journal{snapshots: make(map[int]int)}
}

func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
}

func (j *journal) snapshot() int {
	id := j.nextID
	j.nextID++
	j.snapshots[id] = len(j.entries)
	return id
}

func (j *journal) revertToSnapshot(id int, s *StateDB) {
	idx, ok := j.snapshots[id]
	if !ok {
		return
	}
	for i := len(j.entries) - 1; i >= idx; i-- {
		j.entries[i].revert(s)
	}
	j.entries = j.entries[:idx]
	for sid := range j.snapshots {
		if sid >= id {
			delete(j.snapshots, sid)
		}
	}
}

// --- Concrete journal entries ---

type createAccountChange struct {
	addr types.Address
	prev *stateObject // nil if the account did not exist before
}

func (ch createAccountChange) revert(s *StateDB) {
	if ch.prev == nil {
		delete(s.objects, ch.addr)
	} else {
		s.objects[ch.addr] = ch.prev
	}
}

type balanceChange struct {
	addr types.Address
	prev *uint256.Int
}

func (ch balanceChange) revert(s *StateDB) {
	if obj := s.objects[ch.addr]; obj != nil {
		obj.balance = ch.prev
	}
}

type nonceChange struct {
	addr types.Address
	prev uint64
}

func (ch nonceChange) revert(s *StateDB) {
	if obj := s.objects[ch.addr]; obj != nil {
		obj.nonce = ch.prev
	}
}

type codeChange struct {
	addr     types.Address
	prevCode []byte
	prevHash types.Hash
}

func (ch codeChange) revert(s *StateDB) {
	if obj := s.objects[ch.addr]; obj != nil {
		obj.code = ch.prevCode
		obj.codeHash = ch.prevHash
	}
}

type storageChange struct {
	addr       types.Address
	key        types.Hash
	prev       types.Hash
	prevExists bool // whether key was present in dirtyStorage before the write
}

func (ch storageChange) revert(s *StateDB) {
	obj := s.objects[ch.addr]
	if obj == nil {
		return
	}
	if ch.prevExists {
		obj.dirtyStorage[ch.key] = ch.prev
	} else {
		delete(obj.dirtyStorage, ch.key)
	}
}

type selfDestructChange struct {
	addr           types.Address
	prevDestructed bool
	prevBalance    *uint256.Int
}

func (ch selfDestructChange) revert(s *StateDB) {
	if obj := s.objects[ch.addr]; obj != nil {
		obj.selfDestructed = ch.prevDestructed
		obj.balance = ch.prevBalance
	}
}

type logChange struct {
	prevLen int
}

func (ch logChange) revert(s *StateDB) {
	s.logs = s.logs[:ch.prevLen]
}

type refundChange struct {
	prev uint64
}

func (ch refundChange) revert(s *StateDB) {
	s.refund = ch.prev
}
