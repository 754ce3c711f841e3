package vm

import (
	"testing"

	"github.com/ethcore/evmcore/core/types"
)

func TestTouchAddressWarmsOnFirstAccessOnly(t *testing.T) {
	alt := NewAccessListTracker()
	addr := types.BytesToAddress([]byte{0x42})

	if alt.ContainsAddress(addr) {
		t.Fatal("address should start cold")
	}
	if wasWarm := alt.TouchAddress(addr); wasWarm {
		t.Fatal("first touch should report cold")
	}
	if wasWarm := alt.TouchAddress(addr); !wasWarm {
		t.Fatal("second touch should report warm")
	}
}

func TestTouchSlotWarmsAddressImplicitly(t *testing.T) {
	alt := NewAccessListTracker()
	addr := types.BytesToAddress([]byte{0x01})
	slot := types.Hash{0x01}

	addrWarm, slotWarm := alt.TouchSlot(addr, slot)
	if addrWarm || slotWarm {
		t.Fatal("first touch of a fresh address+slot should report both cold")
	}
	if !alt.ContainsAddress(addr) {
		t.Fatal("touching a slot must also warm its address")
	}
	addrWarm2, slotWarm2 := alt.TouchSlot(addr, slot)
	if !addrWarm2 || !slotWarm2 {
		t.Fatal("second touch should report both warm")
	}
}

func TestPrePopulateEntriesSurviveRevert(t *testing.T) {
	alt := NewAccessListTracker()
	sender := types.BytesToAddress([]byte{0xaa})
	to := types.BytesToAddress([]byte{0xbb})
	alt.PrePopulate(sender, &to, nil)

	id := alt.Snapshot()
	alt.TouchAddress(types.BytesToAddress([]byte{0xcc}))
	alt.RevertToSnapshot(id)

	if !alt.ContainsAddress(sender) || !alt.ContainsAddress(to) {
		t.Fatal("pre-populated addresses must never be cooled by a revert")
	}
	if alt.ContainsAddress(types.BytesToAddress([]byte{0xcc})) {
		t.Fatal("address touched after the snapshot must be cooled on revert")
	}
	// Precompile addresses 0x01-0x09 are always pre-populated.
	if !alt.ContainsAddress(types.BytesToAddress([]byte{5})) {
		t.Fatal("precompile addresses must be pre-populated warm")
	}
}

func TestNestedAccessListSnapshotRevert(t *testing.T) {
	alt := NewAccessListTracker()
	a := types.BytesToAddress([]byte{0x01})
	b := types.BytesToAddress([]byte{0x02})

	alt.TouchAddress(a)
	outer := alt.Snapshot()
	alt.TouchAddress(b)
	inner := alt.Snapshot()
	alt.TouchAddress(types.BytesToAddress([]byte{0x03}))

	alt.RevertToSnapshot(inner)
	if !alt.ContainsAddress(b) {
		t.Fatal("b was touched before the inner snapshot and must survive its revert")
	}
	if alt.ContainsAddress(types.BytesToAddress([]byte{0x03})) {
		t.Fatal("address touched after the inner snapshot must be cooled")
	}

	alt.RevertToSnapshot(outer)
	if alt.ContainsAddress(b) {
		t.Fatal("b must be cooled when reverting to the outer snapshot")
	}
	if !alt.ContainsAddress(a) {
		t.Fatal("a was touched before any snapshot and must survive every revert")
	}
}

func TestAccessListCopyIsIndependent(t *testing.T) {
	alt := NewAccessListTracker()
	addr := types.BytesToAddress([]byte{0x01})
	alt.TouchAddress(addr)

	cpy := alt.Copy()
	cpy.TouchAddress(types.BytesToAddress([]byte{0x02}))

	if alt.ContainsAddress(types.BytesToAddress([]byte{0x02})) {
		t.Fatal("mutating the copy must not affect the original")
	}
}
