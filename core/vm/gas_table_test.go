package vm

import "testing"

// TestMemoryGasCostFormula checks C(x) = 3*(x/32) + (x/32)^2/512 for a few
// word counts, per spec.md's memory-expansion cost formula.
func TestMemoryGasCostFormula(t *testing.T) {
	cases := []struct {
		size uint64
		want uint64
	}{
		{0, 0},
		{32, 3},                  // 1 word: 3*1 + 1/512 = 3
		{64, 6},                  // 2 words: 3*2 + 4/512 = 6
		{1024, 3*32 + 32*32/512}, // 32 words
	}
	for _, c := range cases {
		if got := MemoryGasCost(c.size); got != c.want {
			t.Fatalf("MemoryGasCost(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}

// TestMemoryExpansionGasIsIncremental checks that growing memory twice
// charges only the delta the second time.
func TestMemoryExpansionGasIsIncremental(t *testing.T) {
	first := MemoryExpansionGas(0, 64)
	full := MemoryGasCost(64)
	if first != full {
		t.Fatalf("expanding from 0 should cost the full amount, got %d want %d", first, full)
	}
	second := MemoryExpansionGas(64, 96)
	want := MemoryGasCost(96) - MemoryGasCost(64)
	if second != want {
		t.Fatalf("incremental expansion cost = %d, want %d", second, want)
	}
}

// TestMemoryExpansionShrinkIsFree verifies shrinking (newSize <= oldSize)
// never charges gas -- memory growth is monotonic and shrink never occurs
// in practice, but the helper must still be defensive.
func TestMemoryExpansionShrinkIsFree(t *testing.T) {
	if got := MemoryExpansionGas(128, 64); got != 0 {
		t.Fatalf("expected 0 for a non-growing resize, got %d", got)
	}
}

// TestCallGasForwarding63of64 checks the EIP-150 forwarding cap: at most
// available - available/64 may be forwarded to a callee.
func TestCallGasForwarding63of64(t *testing.T) {
	available := uint64(6400)
	want := available - available/64
	if got := CallGas(available, available); got != want {
		t.Fatalf("CallGas(%d, %d) = %d, want %d", available, available, got, want)
	}
}

// TestCallGasRequestedLessThanCap checks that requesting less than the cap
// forwards exactly the requested amount.
func TestCallGasRequestedLessThanCap(t *testing.T) {
	available := uint64(6400)
	requested := uint64(100)
	if got := CallGas(available, requested); got != requested {
		t.Fatalf("CallGas(%d, %d) = %d, want %d", available, requested, got, requested)
	}
}

// TestCallGasAndStipendAddsStipendOnlyForValueTransfer checks that the
// 2300-gas value-transfer stipend is added to the child's gas but never
// to the amount deducted from the caller.
func TestCallGasAndStipendAddsStipendOnlyForValueTransfer(t *testing.T) {
	available := uint64(6400)
	requested := uint64(100)

	childGas, callerDeduction := CallGasAndStipend(available, requested, false)
	if childGas != requested || callerDeduction != requested {
		t.Fatalf("no value transfer: childGas=%d callerDeduction=%d, want both %d", childGas, callerDeduction, requested)
	}

	childGas, callerDeduction = CallGasAndStipend(available, requested, true)
	if callerDeduction != requested {
		t.Fatalf("value transfer: callerDeduction = %d, want %d (stipend must never be deducted from the caller)", callerDeduction, requested)
	}
	if childGas != requested+CallStipend {
		t.Fatalf("value transfer: childGas = %d, want %d", childGas, requested+CallStipend)
	}
}

// TestReturnGasFromCallUndoesStipend checks that crediting gas back to the
// caller after a value-transferring call subtracts the stipend that was
// never charged to it, clamping at zero rather than underflowing.
func TestReturnGasFromCallUndoesStipend(t *testing.T) {
	if got := ReturnGasFromCall(5000, false); got != 5000 {
		t.Fatalf("no value transfer should pass returnGas through unchanged, got %d", got)
	}
	if got := ReturnGasFromCall(CallStipend+100, true); got != 100 {
		t.Fatalf("ReturnGasFromCall(%d, true) = %d, want 100", CallStipend+100, got)
	}
	if got := ReturnGasFromCall(CallStipend-1, true); got != 0 {
		t.Fatalf("ReturnGasFromCall(%d, true) = %d, want 0 (child spent into its stipend)", CallStipend-1, got)
	}
}
