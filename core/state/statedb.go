package state

import (
	"github.com/holiman/uint256"

	"github.com/ethcore/evmcore/core/types"
	"github.com/ethcore/evmcore/core/vm"
	"github.com/ethcore/evmcore/crypto"
)

// StateDB is the in-memory, journaled world-state overlay the interpreter
// transacts against. It implements vm.StateDB. Every mutating method records
// enough information in the journal to undo itself, so a nested CALL/CREATE
// that reverts can unwind exactly the changes it made without disturbing its
// caller's state -- the transactional overlay described by the interpreter's
// snapshot/revert/commit contract.
type StateDB struct {
	objects    map[types.Address]*stateObject
	journal    *journal
	logs       []*types.Log
	refund     uint64
	accessList *vm.AccessListTracker

	// alSnapshots maps a journal snapshot id to the access-list tracker's own
	// snapshot id taken at the same instant, so a single Snapshot/RevertToSnapshot
	// pair unwinds both the account/storage journal and the EIP-2929 warm set.
	alSnapshots map[int]int
}

// New returns an empty StateDB with no pre-warmed addresses.
func New() *StateDB {
	return &StateDB{
		objects:     make(map[types.Address]*stateObject),
		journal:     newJournal(),
		accessList:  vm.NewAccessListTracker(),
		alSnapshots: make(map[int]int),
	}
}

// PrePopulateAccessList warms the sender, recipient, precompiles and the
// transaction's declared EIP-2930 access list before execution begins.
func (s *StateDB) PrePopulateAccessList(sender types.Address, to *types.Address, accessList types.AccessList) {
	s.accessList.PrePopulate(sender, to, accessList)
}

func (s *StateDB) getObject(addr types.Address) *stateObject {
	return s.objects[addr]
}

func (s *StateDB) getOrCreateObject(addr types.Address) *stateObject {
	if obj := s.objects[addr]; obj != nil {
		return obj
	}
	obj := newStateObject()
	s.objects[addr] = obj
	return obj
}

// --- Account operations ---

func (s *StateDB) CreateAccount(addr types.Address) {
	prev := s.objects[addr] // nil if the account is new
	s.journal.append(createAccountChange{addr: addr, prev: prev})
	s.objects[addr] = newStateObject()
}

func (s *StateDB) GetBalance(addr types.Address) *uint256.Int {
	if obj := s.getObject(addr); obj != nil {
		return obj.balance.Clone()
	}
	return new(uint256.Int)
}

func (s *StateDB) AddBalance(addr types.Address, amount *uint256.Int) {
	obj := s.getOrCreateObject(addr)
	s.journal.append(balanceChange{addr: addr, prev: obj.balance.Clone()})
	obj.balance = new(uint256.Int).Add(obj.balance, amount)
}

func (s *StateDB) SubBalance(addr types.Address, amount *uint256.Int) {
	obj := s.getOrCreateObject(addr)
	s.journal.append(balanceChange{addr: addr, prev: obj.balance.Clone()})
	obj.balance = new(uint256.Int).Sub(obj.balance, amount)
}

func (s *StateDB) GetNonce(addr types.Address) uint64 {
	if obj := s.getObject(addr); obj != nil {
		return obj.nonce
	}
	return 0
}

func (s *StateDB) SetNonce(addr types.Address, nonce uint64) {
	obj := s.getOrCreateObject(addr)
	s.journal.append(nonceChange{addr: addr, prev: obj.nonce})
	obj.nonce = nonce
}

func (s *StateDB) GetCode(addr types.Address) []byte {
	if obj := s.getObject(addr); obj != nil {
		return obj.code
	}
	return nil
}

func (s *StateDB) SetCode(addr types.Address, code []byte) {
	obj := s.getOrCreateObject(addr)
	s.journal.append(codeChange{addr: addr, prevCode: obj.code, prevHash: obj.codeHash})
	obj.code = code
	if len(code) == 0 {
		obj.codeHash = types.EmptyCodeHash
		return
	}
	obj.codeHash = crypto.Keccak256Hash(code)
}

func (s *StateDB) GetCodeHash(addr types.Address) types.Hash {
	if obj := s.getObject(addr); obj != nil {
		return obj.codeHash
	}
	return types.Hash{}
}

func (s *StateDB) GetCodeSize(addr types.Address) int {
	if obj := s.getObject(addr); obj != nil {
		return len(obj.code)
	}
	return 0
}

// --- Self-destruct ---

func (s *StateDB) SelfDestruct(addr types.Address) {
	obj := s.getObject(addr)
	if obj == nil {
		return
	}
	s.journal.append(selfDestructChange{
		addr:           addr,
		prevDestructed: obj.selfDestructed,
		prevBalance:    obj.balance.Clone(),
	})
	obj.selfDestructed = true
	obj.balance = new(uint256.Int)
}

func (s *StateDB) HasSelfDestructed(addr types.Address) bool {
	if obj := s.getObject(addr); obj != nil {
		return obj.selfDestructed
	}
	return false
}

// --- Storage ---

func (s *StateDB) GetState(addr types.Address, key types.Hash) types.Hash {
	obj := s.getObject(addr)
	if obj == nil {
		return types.Hash{}
	}
	if val, ok := obj.dirtyStorage[key]; ok {
		return val
	}
	return obj.committedStorage[key]
}

func (s *StateDB) SetState(addr types.Address, key, value types.Hash) {
	obj := s.getOrCreateObject(addr)
	prev, exists := obj.dirtyStorage[key]
	if !exists {
		prev = obj.committedStorage[key]
	}
	s.journal.append(storageChange{addr: addr, key: key, prev: prev, prevExists: exists})
	obj.dirtyStorage[key] = value
}

func (s *StateDB) GetCommittedState(addr types.Address, key types.Hash) types.Hash {
	if obj := s.getObject(addr); obj != nil {
		return obj.committedStorage[key]
	}
	return types.Hash{}
}

// --- Existence ---

func (s *StateDB) Exist(addr types.Address) bool {
	return s.objects[addr] != nil
}

func (s *StateDB) Empty(addr types.Address) bool {
	obj := s.getObject(addr)
	return obj == nil || obj.empty()
}

// --- Snapshot / revert ---

func (s *StateDB) Snapshot() int {
	id := s.journal.snapshot()
	s.alSnapshots[id] = s.accessList.Snapshot()
	return id
}

func (s *StateDB) RevertToSnapshot(id int) {
	if alID, ok := s.alSnapshots[id]; ok {
		s.accessList.RevertToSnapshot(alID)
	}
	s.journal.revertToSnapshot(id, s)
	for sid := range s.alSnapshots {
		if sid >= id {
			delete(s.alSnapshots, sid)
		}
	}
}

// --- Logs ---

func (s *StateDB) AddLog(log *types.Log) {
	s.journal.append(logChange{prevLen: len(s.logs)})
	s.logs = append(s.logs, log)
}

// Logs returns every log emitted so far in this transaction.
func (s *StateDB) Logs() []*types.Log {
	return s.logs
}

// --- Refund counter ---

func (s *StateDB) AddRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	s.refund += gas
}

func (s *StateDB) SubRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	if gas > s.refund {
		panic("state: negative refund")
	}
	s.refund -= gas
}

func (s *StateDB) GetRefund() uint64 {
	return s.refund
}

// --- Access list (EIP-2929) ---

func (s *StateDB) AddAddressToAccessList(addr types.Address) {
	s.accessList.TouchAddress(addr)
}

func (s *StateDB) AddSlotToAccessList(addr types.Address, slot types.Hash) {
	s.accessList.TouchSlot(addr, slot)
}

func (s *StateDB) AddressInAccessList(addr types.Address) bool {
	return s.accessList.ContainsAddress(addr)
}

func (s *StateDB) SlotInAccessList(addr types.Address, slot types.Hash) (addressOk, slotOk bool) {
	return s.accessList.ContainsSlot(addr, slot)
}

// --- Finalisation ---

// Finalise flushes dirty storage into committed storage and clears the
// per-transaction journal, access list and logs, preparing the StateDB for
// the next transaction. Self-destructed accounts are dropped entirely.
func (s *StateDB) Finalise() {
	for addr, obj := range s.objects {
		if obj.selfDestructed {
			delete(s.objects, addr)
			continue
		}
		for key, val := range obj.dirtyStorage {
			if val == (types.Hash{}) {
				delete(obj.committedStorage, key)
			} else {
				obj.committedStorage[key] = val
			}
		}
		obj.dirtyStorage = make(map[types.Hash]types.Hash)
	}
	s.journal = newJournal()
	s.accessList = vm.NewAccessListTracker()
	s.alSnapshots = make(map[int]int)
	s.logs = nil
}

// Copy returns a deep copy of the StateDB sharing no mutable state with the
// original, safe to hand to a parallel execution or a dry-run probe.
func (s *StateDB) Copy() *StateDB {
	cp := &StateDB{
		objects:     make(map[types.Address]*stateObject, len(s.objects)),
		journal:     newJournal(),
		refund:      s.refund,
		accessList:  s.accessList.Copy(),
		alSnapshots: make(map[int]int),
	}
	for addr, obj := range s.objects {
		cp.objects[addr] = obj.clone()
	}
	if len(s.logs) > 0 {
		cp.logs = append([]*types.Log(nil), s.logs...)
	}
	return cp
}

var _ vm.StateDB = (*StateDB)(nil)
