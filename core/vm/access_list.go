package vm

// access_list.go implements EIP-2929 warm/cold access tracking with
// journaling for transactional revert. A single tracker lives for the
// duration of a top-level message call; every nested CALL/CREATE shares it,
// and Snapshot/RevertToSnapshot are driven by the same call-stack unwinding
// that reverts balance and storage changes in the HostContext.

import (
	"github.com/ethcore/evmcore/core/types"
)

// AccessListTracker tracks which addresses and storage slots have been
// accessed during the current transaction, for EIP-2929 cold/warm gas
// pricing.
type AccessListTracker struct {
	addresses   map[types.Address]int                // address -> journal index (-1 if pre-populated)
	slots       map[types.Address]map[types.Hash]int // address -> slot -> journal index
	journal     []accessListChange
	snapshotIDs []int
}

type accessListChangeKind uint8

const (
	changeAddAddress accessListChangeKind = iota
	changeAddSlot
)

type accessListChange struct {
	kind    accessListChangeKind
	address types.Address
	slot    types.Hash
}

// NewAccessListTracker returns an empty tracker.
func NewAccessListTracker() *AccessListTracker {
	return &AccessListTracker{
		addresses: make(map[types.Address]int),
		slots:     make(map[types.Address]map[types.Hash]int),
	}
}

// PrePopulate warms the sender, the recipient (if any), the precompile
// addresses 0x01-0x09, and every entry of the transaction's declared access
// list, per EIP-2929/EIP-2930. These entries use journal index -1 so that no
// revert, however deep, ever re-colds them.
func (alt *AccessListTracker) PrePopulate(sender types.Address, to *types.Address, accessList types.AccessList) {
	alt.addAddressNoJournal(sender)
	if to != nil {
		alt.addAddressNoJournal(*to)
	}
	for i := 1; i <= 9; i++ {
		alt.addAddressNoJournal(types.BytesToAddress([]byte{byte(i)}))
	}
	for _, tuple := range accessList {
		alt.addAddressNoJournal(tuple.Address)
		for _, key := range tuple.StorageKeys {
			alt.addSlotNoJournal(tuple.Address, key)
		}
	}
}

func (alt *AccessListTracker) addAddressNoJournal(addr types.Address) {
	if _, ok := alt.addresses[addr]; !ok {
		alt.addresses[addr] = -1
	}
}

func (alt *AccessListTracker) addSlotNoJournal(addr types.Address, slot types.Hash) {
	if _, ok := alt.addresses[addr]; !ok {
		alt.addresses[addr] = -1
	}
	slots, ok := alt.slots[addr]
	if !ok {
		slots = make(map[types.Hash]int)
		alt.slots[addr] = slots
	}
	if _, ok := slots[slot]; !ok {
		slots[slot] = -1
	}
}

// ContainsAddress reports whether addr is in the warm set.
func (alt *AccessListTracker) ContainsAddress(addr types.Address) bool {
	_, ok := alt.addresses[addr]
	return ok
}

// ContainsSlot reports (addressWarm, slotWarm) for addr/slot.
func (alt *AccessListTracker) ContainsSlot(addr types.Address, slot types.Hash) (bool, bool) {
	_, addrOk := alt.addresses[addr]
	if !addrOk {
		return false, false
	}
	slots, ok := alt.slots[addr]
	if !ok {
		return true, false
	}
	_, slotOk := slots[slot]
	return true, slotOk
}

// TouchAddress warms addr if cold, journaling the change. It returns whether
// addr was already warm.
func (alt *AccessListTracker) TouchAddress(addr types.Address) bool {
	if _, ok := alt.addresses[addr]; ok {
		return true
	}
	idx := len(alt.journal)
	alt.addresses[addr] = idx
	alt.journal = append(alt.journal, accessListChange{kind: changeAddAddress, address: addr})
	return false
}

// TouchSlot warms addr and slot if cold, journaling the change. It returns
// (addressWasWarm, slotWasWarm) reflecting state before the call.
func (alt *AccessListTracker) TouchSlot(addr types.Address, slot types.Hash) (bool, bool) {
	addrWarm := alt.TouchAddress(addr)

	slots, ok := alt.slots[addr]
	if !ok {
		slots = make(map[types.Hash]int)
		alt.slots[addr] = slots
	}
	if _, slotOk := slots[slot]; slotOk {
		return addrWarm, true
	}
	idx := len(alt.journal)
	slots[slot] = idx
	alt.journal = append(alt.journal, accessListChange{kind: changeAddSlot, address: addr, slot: slot})
	return addrWarm, false
}

// Snapshot records the current journal length, returning an id usable with
// RevertToSnapshot.
func (alt *AccessListTracker) Snapshot() int {
	id := len(alt.snapshotIDs)
	alt.snapshotIDs = append(alt.snapshotIDs, len(alt.journal))
	return id
}

// RevertToSnapshot undoes every warm-set change made since snapshot id.
// Pre-populated entries (journal index -1) are never undone.
func (alt *AccessListTracker) RevertToSnapshot(id int) {
	if id < 0 || id >= len(alt.snapshotIDs) {
		return
	}
	journalLen := alt.snapshotIDs[id]
	for i := len(alt.journal) - 1; i >= journalLen; i-- {
		change := alt.journal[i]
		switch change.kind {
		case changeAddSlot:
			if slots := alt.slots[change.address]; slots != nil {
				if idx, ok := slots[change.slot]; ok && idx >= journalLen {
					delete(slots, change.slot)
				}
			}
		case changeAddAddress:
			if idx, ok := alt.addresses[change.address]; ok && idx >= journalLen {
				delete(alt.addresses, change.address)
			}
		}
	}
	alt.journal = alt.journal[:journalLen]
	alt.snapshotIDs = alt.snapshotIDs[:id]
}

// Copy returns a deep copy sharing no mutable state with alt.
func (alt *AccessListTracker) Copy() *AccessListTracker {
	cpy := &AccessListTracker{
		addresses: make(map[types.Address]int, len(alt.addresses)),
		slots:     make(map[types.Address]map[types.Hash]int, len(alt.slots)),
	}
	for addr, idx := range alt.addresses {
		cpy.addresses[addr] = idx
	}
	for addr, slots := range alt.slots {
		slotCopy := make(map[types.Hash]int, len(slots))
		for slot, idx := range slots {
			slotCopy[slot] = idx
		}
		cpy.slots[addr] = slotCopy
	}
	if len(alt.journal) > 0 {
		cpy.journal = make([]accessListChange, len(alt.journal))
		copy(cpy.journal, alt.journal)
	}
	if len(alt.snapshotIDs) > 0 {
		cpy.snapshotIDs = make([]int, len(alt.snapshotIDs))
		copy(cpy.snapshotIDs, alt.snapshotIDs)
	}
	return cpy
}
