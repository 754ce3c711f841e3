package state

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/ethcore/evmcore/core/types"
)

func u64(v uint64) *uint256.Int { return uint256.NewInt(v) }

// TestNestedSnapshotRevertOutOfOrder reverts to an inner snapshot, then
// directly to an outer one, skipping the middle entirely. The journal must
// unwind every entry back to the requested level regardless of order.
func TestNestedSnapshotRevertOutOfOrder(t *testing.T) {
	db := New()
	addr := types.HexToAddress("0xaa01")

	db.CreateAccount(addr)
	db.AddBalance(addr, u64(100))

	snap1 := db.Snapshot()
	db.AddBalance(addr, u64(10)) // 110

	_ = db.Snapshot() // snap2, never reverted directly
	db.AddBalance(addr, u64(20)) // 130

	snap3 := db.Snapshot()
	db.AddBalance(addr, u64(40)) // 170

	if db.GetBalance(addr).Cmp(u64(170)) != 0 {
		t.Fatalf("expected 170, got %s", db.GetBalance(addr))
	}

	db.RevertToSnapshot(snap3)
	if db.GetBalance(addr).Cmp(u64(130)) != 0 {
		t.Fatalf("expected 130 after snap3 revert, got %s", db.GetBalance(addr))
	}

	db.RevertToSnapshot(snap1)
	if db.GetBalance(addr).Cmp(u64(100)) != 0 {
		t.Fatalf("expected 100 after snap1 revert, got %s", db.GetBalance(addr))
	}
}

// TestRevertRestoresStorageAndNonce exercises the SSTORE-shaped path: a
// revert must restore both the dirty-storage overlay and the nonce exactly.
func TestRevertRestoresStorageAndNonce(t *testing.T) {
	db := New()
	addr := types.HexToAddress("0xaa02")
	slot := types.HexToHash("0x01")

	db.CreateAccount(addr)
	db.SetNonce(addr, 1)
	db.SetState(addr, slot, types.HexToHash("0xaa"))

	snap := db.Snapshot()
	db.SetNonce(addr, 2)
	db.SetState(addr, slot, types.HexToHash("0xbb"))

	if got := db.GetState(addr, slot); got != types.HexToHash("0xbb") {
		t.Fatalf("expected 0xbb before revert, got %s", got)
	}

	db.RevertToSnapshot(snap)

	if got := db.GetNonce(addr); got != 1 {
		t.Fatalf("expected nonce 1 after revert, got %d", got)
	}
	if got := db.GetState(addr, slot); got != types.HexToHash("0xaa") {
		t.Fatalf("expected 0xaa after revert, got %s", got)
	}
}

// TestSelfDestructRevert verifies that reverting past a SELFDESTRUCT restores
// both the destructed flag and the balance that was zeroed out.
func TestSelfDestructRevert(t *testing.T) {
	db := New()
	addr := types.HexToAddress("0xaa03")

	db.CreateAccount(addr)
	db.AddBalance(addr, u64(500))

	snap := db.Snapshot()
	db.SelfDestruct(addr)

	if !db.HasSelfDestructed(addr) {
		t.Fatal("expected account to be marked self-destructed")
	}
	if !db.GetBalance(addr).IsZero() {
		t.Fatal("expected balance to be zeroed by self-destruct")
	}

	db.RevertToSnapshot(snap)

	if db.HasSelfDestructed(addr) {
		t.Fatal("expected self-destruct to be undone after revert")
	}
	if db.GetBalance(addr).Cmp(u64(500)) != 0 {
		t.Fatalf("expected balance 500 after revert, got %s", db.GetBalance(addr))
	}
}

// TestAccessListRevertsWithStateSnapshot checks that a single Snapshot/
// RevertToSnapshot pair unwinds the EIP-2929 warm set alongside ordinary
// account state, since both share the same snapshot id space.
func TestAccessListRevertsWithStateSnapshot(t *testing.T) {
	db := New()
	addr := types.HexToAddress("0xaa04")
	slot := types.HexToHash("0x02")

	snap := db.Snapshot()
	db.AddAddressToAccessList(addr)
	db.AddSlotToAccessList(addr, slot)

	if ok := db.AddressInAccessList(addr); !ok {
		t.Fatal("expected address to be warm")
	}

	db.RevertToSnapshot(snap)

	if db.AddressInAccessList(addr) {
		t.Fatal("expected address to be cold again after revert")
	}
	addrOk, slotOk := db.SlotInAccessList(addr, slot)
	if addrOk || slotOk {
		t.Fatal("expected both address and slot to be cold after revert")
	}
}

// TestLogRevert checks that logs emitted after a snapshot disappear on
// revert but earlier logs survive.
func TestLogRevert(t *testing.T) {
	db := New()
	addr := types.HexToAddress("0xaa05")

	db.AddLog(&types.Log{Address: addr, Data: []byte{1}})
	snap := db.Snapshot()
	db.AddLog(&types.Log{Address: addr, Data: []byte{2}})

	if len(db.Logs()) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(db.Logs()))
	}

	db.RevertToSnapshot(snap)

	if len(db.Logs()) != 1 {
		t.Fatalf("expected 1 log after revert, got %d", len(db.Logs()))
	}
	if db.Logs()[0].Data[0] != 1 {
		t.Fatal("expected surviving log to be the first one")
	}
}

// TestRefundRevert checks the gas refund counter participates in the journal
// the same way balances and storage do.
func TestRefundRevert(t *testing.T) {
	db := New()

	db.AddRefund(15000)
	snap := db.Snapshot()
	db.AddRefund(4200)
	db.SubRefund(1000)

	if got := db.GetRefund(); got != 18200 {
		t.Fatalf("expected refund 18200, got %d", got)
	}

	db.RevertToSnapshot(snap)

	if got := db.GetRefund(); got != 15000 {
		t.Fatalf("expected refund 15000 after revert, got %d", got)
	}
}

// TestEmptyAccountEIP161 exercises the EIP-161 emptiness test that backs
// empty-account pruning after calls and self-destructs.
func TestEmptyAccountEIP161(t *testing.T) {
	db := New()
	addr := types.HexToAddress("0xaa06")

	if !db.Empty(addr) {
		t.Fatal("expected a never-touched account to be empty")
	}

	db.CreateAccount(addr)
	if !db.Empty(addr) {
		t.Fatal("expected a freshly created account to be empty")
	}

	db.AddBalance(addr, u64(1))
	if db.Empty(addr) {
		t.Fatal("expected a funded account to be non-empty")
	}
}

// TestFinaliseDropsSelfDestructedAccounts verifies that Finalise removes
// self-destructed accounts and promotes dirty storage into committed storage
// for everything else.
func TestFinaliseDropsSelfDestructedAccounts(t *testing.T) {
	db := New()
	gone := types.HexToAddress("0xaa07")
	stays := types.HexToAddress("0xaa08")
	slot := types.HexToHash("0x03")

	db.CreateAccount(gone)
	db.SelfDestruct(gone)

	db.CreateAccount(stays)
	db.SetState(stays, slot, types.HexToHash("0xcc"))

	db.Finalise()

	if db.Exist(gone) {
		t.Fatal("expected self-destructed account to be dropped by Finalise")
	}
	if got := db.GetCommittedState(stays, slot); got != types.HexToHash("0xcc") {
		t.Fatalf("expected committed storage 0xcc, got %s", got)
	}
}
