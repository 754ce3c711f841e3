package vm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/ethcore/evmcore/core/state"
	"github.com/ethcore/evmcore/core/types"
)

func newTestEVM(fork Fork) *EVM {
	db := state.New()
	return NewEVM(BlockContext{}, TxContext{GasPrice: new(uint256.Int)}, db, 1, Config{Fork: fork})
}

func runCode(t *testing.T, evm *EVM, code []byte, gas uint64) ([]byte, uint64, error) {
	t.Helper()
	contract := NewContract(types.Address{}, types.Address{1}, new(uint256.Int), gas)
	contract.Code = code
	ret, err := evm.Run(contract, nil)
	return ret, contract.Gas, err
}

// Scenario 1: PUSH1 1; PUSH1 2; ADD. gasUsed must be exactly 9.
func TestScenarioSimpleAdd(t *testing.T) {
	evm := newTestEVM(Berlin)
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01}
	_, gasLeft, err := runCode(t, evm, code, 100000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gasUsed := 100000 - gasLeft; gasUsed != 9 {
		t.Fatalf("expected gasUsed 9, got %d", gasUsed)
	}
}

// Scenario 2: PUSH1 with only 2 gas available must fail with out-of-gas.
func TestScenarioOutOfGasOnPush(t *testing.T) {
	evm := newTestEVM(Berlin)
	code := []byte{0x60, 0x01}
	_, _, err := runCode(t, evm, code, 2)
	if !errors.Is(err, ErrOutOfGas) {
		t.Fatalf("expected ErrOutOfGas, got %v", err)
	}
	if StatusCodeForError(err) != StatusOutOfGas {
		t.Fatalf("expected StatusOutOfGas, got %v", StatusCodeForError(err))
	}
}

// Scenario 3: bare POP on an empty stack must underflow.
func TestScenarioStackUnderflowOnPop(t *testing.T) {
	evm := newTestEVM(Berlin)
	code := []byte{0x50}
	_, _, err := runCode(t, evm, code, 100000)
	if !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("expected ErrStackUnderflow, got %v", err)
	}
}

// Scenario 4: the 0xfe INVALID opcode halts with InvalidInstruction.
func TestScenarioInvalidOpcode(t *testing.T) {
	evm := newTestEVM(Berlin)
	code := []byte{0xfe}
	_, _, err := runCode(t, evm, code, 100000)
	if !errors.Is(err, ErrInvalidOpCode) {
		t.Fatalf("expected ErrInvalidOpCode, got %v", err)
	}
}

// Scenario 5: PUSH1 0x03; JUMP; STOP -- the jump target byte at offset 3 is
// 0x00 (STOP), not a JUMPDEST, so the jump must be rejected.
func TestScenarioJumpIntoNonJumpdest(t *testing.T) {
	evm := newTestEVM(Berlin)
	code := []byte{0x60, 0x03, 0x56, 0x00}
	_, _, err := runCode(t, evm, code, 100000)
	if !errors.Is(err, ErrInvalidJump) {
		t.Fatalf("expected ErrInvalidJump, got %v", err)
	}
}

// Scenario 6: PUSH1 0xff; PUSH1 0; MSTORE; PUSH1 0x20; PUSH1 0; RETURN.
// Expect a 32-byte right-aligned 0xff word and one word of memory expansion.
func TestScenarioMemoryExpansionAndReturn(t *testing.T) {
	evm := newTestEVM(Berlin)
	code := []byte{0x60, 0xff, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	ret, _, err := runCode(t, evm, code, 100000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := make([]byte, 32)
	want[31] = 0xff
	if !bytes.Equal(ret, want) {
		t.Fatalf("expected %x, got %x", want, ret)
	}
}

// Scenario 7: PUSH1 1; PUSH1 0; SSTORE; PUSH1 0x20; PUSH1 0; REVERT -- the
// SSTORE must be invisible after the revert, and RETURNDATA must be 32
// zero bytes (REVERT's memory slice, never written to).
func TestScenarioRevertRollsBackStorage(t *testing.T) {
	db := state.New()
	evm := NewEVM(BlockContext{}, TxContext{GasPrice: new(uint256.Int)}, db, 1, Config{Fork: Berlin})
	addr := types.Address{1}

	db.CreateAccount(addr)
	snapshot := db.Snapshot()

	code := []byte{0x60, 0x01, 0x60, 0x00, 0x55, 0x60, 0x20, 0x60, 0x00, 0xfd}
	contract := NewContract(types.Address{}, addr, new(uint256.Int), 100000)
	contract.Code = code

	ret, err := evm.Run(contract, nil)
	if !errors.Is(err, ErrExecutionReverted) {
		t.Fatalf("expected ErrExecutionReverted, got %v", err)
	}
	if !bytes.Equal(ret, make([]byte, 32)) {
		t.Fatalf("expected 32 zero bytes, got %x", ret)
	}

	// The SSTORE was never reverted by the caller (REVERT only guarantees
	// gas accounting, not that the caller calls RevertToSnapshot -- that is
	// the caller's responsibility, exercised here explicitly).
	db.RevertToSnapshot(snapshot)
	if got := db.GetState(addr, types.Hash{}); got != (types.Hash{}) {
		t.Fatalf("expected storage slot 0 to remain zero, got %s", got)
	}
}

// Empty code halts immediately with SUCCESS and an unchanged gas balance.
func TestEmptyCodeIsImmediateSuccess(t *testing.T) {
	evm := newTestEVM(Berlin)
	ret, gasLeft, err := runCode(t, evm, nil, 100000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ret) != 0 {
		t.Fatalf("expected empty output, got %x", ret)
	}
	if gasLeft != 100000 {
		t.Fatalf("expected gas unchanged at 100000, got %d", gasLeft)
	}
}

// PUSH1 x; STOP consumes exactly 3 gas (PUSH1 base) + 0 (STOP).
func TestPushThenStopGasCost(t *testing.T) {
	evm := newTestEVM(Berlin)
	code := []byte{0x60, 0x2a, 0x00}
	_, gasLeft, err := runCode(t, evm, code, 100000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gasUsed := 100000 - gasLeft; gasUsed != 3 {
		t.Fatalf("expected gasUsed 3, got %d", gasUsed)
	}
}

// Call-depth cap: a call issued at the configured maximum depth must return
// zero (not execute the child) rather than propagate an error to the parent.
func TestCallDepthCapRejectsChild(t *testing.T) {
	evm := newTestEVM(Berlin)
	evm.depth = evm.Config.MaxCallDepth + 1
	_, gasLeft, err := evm.Call(types.Address{}, types.Address{2}, nil, 1000, new(uint256.Int))
	if !errors.Is(err, ErrCallDepthExceeded) {
		t.Fatalf("expected ErrCallDepthExceeded, got %v", err)
	}
	if gasLeft != 1000 {
		t.Fatalf("expected gas left unchanged at 1000, got %d", gasLeft)
	}
}

// StepListener aborts the frame with StatusHalted when it returns true.
func TestStepListenerAbortsFrame(t *testing.T) {
	evm := newTestEVM(Berlin)
	steps := 0
	evm.StepListener = func(pc uint64, op OpCode, gasLeft uint64, depth int) bool {
		steps++
		return steps == 1
	}
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01}
	_, _, err := runCode(t, evm, code, 100000)
	if !errors.Is(err, ErrExecutionAborted) {
		t.Fatalf("expected ErrExecutionAborted, got %v", err)
	}
	if StatusCodeForError(err) != StatusHalted {
		t.Fatalf("expected StatusHalted, got %v", StatusCodeForError(err))
	}
	if steps != 1 {
		t.Fatalf("expected exactly 1 step before abort, got %d", steps)
	}
}

// Regression test for a reviewed bug: opCall forwarded gas uncapped,
// skipping EIP-150's 63/64ths rule. The callee reports the gas it actually
// received (via GAS; PUSH1 0; MSTORE; PUSH1 32; PUSH1 0; RETURN); under the
// bug it would see nearly everything the caller had left, so this asserts
// it saw no more than a generous 63/64ths bound.
func TestCallForwardsAtMostSixtyThreeSixtyFourths(t *testing.T) {
	db := state.New()
	evm := NewEVM(BlockContext{}, TxContext{GasPrice: new(uint256.Int)}, db, 1, Config{Fork: Berlin})

	callee := types.Address{0x14}
	db.CreateAccount(callee)
	db.SetCode(callee, []byte{0x5a, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3})

	// PUSH retSize, retOffset, inSize, inOffset, value, addr; GAS; CALL;
	// RETURN the callee's reported gas.
	code := []byte{
		0x60, 0x20, // PUSH1 32 (retSize)
		0x60, 0x00, // PUSH1 0  (retOffset)
		0x60, 0x00, // PUSH1 0  (inSize)
		0x60, 0x00, // PUSH1 0  (inOffset)
		0x60, 0x00, // PUSH1 0  (value)
		0x60, 0x14, // PUSH1 0x14 (addr)
		0x5a,       // GAS
		0xf1,       // CALL
		0x60, 0x20, // PUSH1 32
		0x60, 0x00, // PUSH1 0
		0xf3, // RETURN
	}

	const totalGas = 1_000_000
	contract := NewContract(types.Address{}, types.Address{1}, new(uint256.Int), totalGas)
	contract.Code = code

	ret, err := evm.Run(contract, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ret) != 32 {
		t.Fatalf("expected a 32-byte return value, got %d bytes", len(ret))
	}
	observedByCallee := new(uint256.Int).SetBytes(ret).Uint64()

	// Gas left in the caller right after GAS executes (6 pushes + GAS's own
	// base cost, each charged before its execute runs).
	gasBeforeCall := uint64(totalGas) - 6*GasVerylow - GasBase
	bound := gasBeforeCall - gasBeforeCall/64
	if observedByCallee > bound {
		t.Fatalf("callee observed %d gas, exceeding the 63/64ths bound of %d -- the forwarding cap was not applied", observedByCallee, bound)
	}
}

// Regression test for a reviewed bug: the 2300-gas value-transfer stipend
// was never added to the child's gas nor subtracted back out of the
// returned gas. A value-transferring CALL to a fresh, code-less account
// runs no child code, so the stipend must round-trip exactly: the caller's
// gas after the CALL should equal what it had before the CALL minus the
// CALL's own constant and dynamic costs, with nothing leaked in or out.
func TestCallStipendRoundTripsWithoutLeakingGas(t *testing.T) {
	db := state.New()
	evm := NewEVM(BlockContext{}, TxContext{GasPrice: new(uint256.Int)}, db, 1, Config{Fork: Berlin})

	sender := types.Address{1}
	db.CreateAccount(sender)
	db.AddBalance(sender, uint256.NewInt(100))

	code := []byte{
		0x60, 0x20, // PUSH1 32   (retSize)
		0x60, 0x00, // PUSH1 0    (retOffset)
		0x60, 0x00, // PUSH1 0    (inSize)
		0x60, 0x00, // PUSH1 0    (inOffset)
		0x60, 0x01, // PUSH1 1    (value)
		0x60, 0x99, // PUSH1 0x99 (addr, fresh account)
		0x5a,       // GAS
		0xf1,       // CALL
		0x00,       // STOP
	}

	const totalGas = 1_000_000
	contract := NewContract(types.Address{}, sender, new(uint256.Int), totalGas)
	contract.Code = code

	_, err := evm.Run(contract, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gasBeforeCall := uint64(totalGas) - 6*GasVerylow - GasBase
	coldSurcharge := ColdAccountAccessCost - WarmStorageReadCost
	valueCost := CallValueTransferGas + CallNewAccountGas
	wantGasLeft := gasBeforeCall - WarmStorageReadCost - coldSurcharge - valueCost - MemoryGasCost(32)
	if contract.Gas != wantGasLeft {
		t.Fatalf("gas left = %d, want %d (the value-transfer stipend must round-trip without leaking gas)", contract.Gas, wantGasLeft)
	}
}

// Stack bounds: after every successful instruction, 0 <= stack depth <= 1024.
// Pushing 1025 words must overflow on the 1025th push rather than silently
// growing past the limit.
func TestStackOverflowAtMaxDepth(t *testing.T) {
	evm := newTestEVM(Berlin)
	code := make([]byte, 0, (maxStackDepth+1)*2)
	for i := 0; i < maxStackDepth+1; i++ {
		code = append(code, 0x60, 0x01) // PUSH1 1
	}
	_, _, err := runCode(t, evm, code, 10_000_000)
	if !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("expected ErrStackOverflow, got %v", err)
	}
}
