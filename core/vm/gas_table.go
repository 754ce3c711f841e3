package vm

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/ethcore/evmcore/core/types"
)

// MemoryGasCost returns the gas cost of having memory sized memSize bytes,
// following the Yellow Paper's quadratic formula: 3*words + words^2/512.
func MemoryGasCost(memSize uint64) uint64 {
	if memSize == 0 {
		return 0
	}
	words := toWordSize(memSize)
	if words > 181_000 {
		// Beyond this, the cost already exceeds any plausible gas limit;
		// returning MaxUint64 forces an out-of-gas rather than overflowing.
		return math.MaxUint64
	}
	linear := words * GasMemory
	quadratic := words * words / 512
	return linear + quadratic
}

// MemoryExpansionGas returns the incremental cost of growing memory from
// oldSize to newSize bytes. Shrinking memory is free (and never happens).
func MemoryExpansionGas(oldSize, newSize uint64) uint64 {
	if newSize <= oldSize {
		return 0
	}
	return MemoryGasCost(newSize) - MemoryGasCost(oldSize)
}

// toWordSize rounds size up to the next 32-byte word.
func toWordSize(size uint64) uint64 {
	if size == 0 {
		return 0
	}
	if size > math.MaxUint64-31 {
		return math.MaxUint64/32 + 1
	}
	return (size + 31) / 32
}

// CallGas applies the 63/64ths rule (EIP-150): a CALL-family opcode may
// forward at most availableGas - availableGas/64 to the callee.
func CallGas(availableGas, requestedGas uint64) uint64 {
	maxGas := availableGas - availableGas/CallGasCapDivisor
	if requestedGas > maxGas || requestedGas == 0 {
		return maxGas
	}
	return requestedGas
}

// CallGasAndStipend computes how much gas a CALL-family opcode deducts from
// its caller (the 63/64ths-capped amount) and how much the callee actually
// receives. When transfersValue is set, the callee also receives the
// EIP-150 2300-gas stipend on top, free of charge to the caller.
func CallGasAndStipend(available, requested uint64, transfersValue bool) (childGas, callerDeduction uint64) {
	callerDeduction = CallGas(available, requested)
	childGas = callerDeduction
	if transfersValue {
		childGas = safeAdd(childGas, CallStipend)
	}
	return childGas, callerDeduction
}

// ReturnGasFromCall credits a CALL-family callee's unused gas back to the
// caller, undoing the stipend added by CallGasAndStipend -- it was never
// deducted from the caller, so it must never be credited back either.
func ReturnGasFromCall(returnGas uint64, transfersValue bool) uint64 {
	if transfersValue {
		if returnGas >= CallStipend {
			return returnGas - CallStipend
		}
		return 0
	}
	return returnGas
}

// SstoreGas computes the EIP-2200 net gas cost and refund for an SSTORE,
// given the slot's original (transaction-start), current, and new values.
// It applies no EIP-2929 cold/warm pricing; gasSstoreEIP2929 adds the cold
// surcharge itself.
//
// Refund values follow the original EIP-2200 schedule -- the Berlin fork
// predates EIP-3529 (London), which cut SSTORE_CLEARS_SCHEDULE_REFUND from
// 15000 to 4800 and tightened the overall refund cap from gasUsed/2 to
// gasUsed/5. Berlin-era execution must use the larger, pre-London values.
func SstoreGas(original, current, newVal types.Hash) (gas uint64, refund int64) {
	if current == newVal {
		return SstoreNoopGasEIP2200, 0
	}
	if original == current {
		if original.IsZero() {
			return SstoreInitGasEIP2200, 0
		}
		if newVal.IsZero() {
			return SstoreCleanGasEIP2200, int64(SstoreClearRefundEIP2200)
		}
		return SstoreCleanGasEIP2200, 0
	}
	// Dirty slot: this transaction already changed it away from original.
	gas = SstoreDirtyGasEIP2200
	if !original.IsZero() {
		if current.IsZero() {
			refund -= int64(SstoreClearRefundEIP2200)
		} else if newVal.IsZero() {
			refund += int64(SstoreClearRefundEIP2200)
		}
	}
	if original == newVal {
		if original.IsZero() {
			refund += int64(SstoreInitRefundEIP2200)
		} else {
			refund += int64(SstoreCleanRefundEIP2200)
		}
	}
	return gas, refund
}

// LogGas computes the dynamic gas of a LOG operation beyond its per-opcode
// constant cost: GasLogTopic per topic plus GasLogData per data byte.
func LogGas(numTopics, dataSize uint64) uint64 {
	gas := safeAdd(safeMul(numTopics, GasLogTopic), safeMul(dataSize, GasLogData))
	return gas
}

// Sha3Gas computes the dynamic gas of KECCAK256 beyond its constant cost:
// GasKeccak256Word per word hashed.
func Sha3Gas(dataSize uint64) uint64 {
	return safeMul(toWordSize(dataSize), GasKeccak256Word)
}

// ExpGas computes the dynamic gas of EXP: 50 per byte of the exponent's
// big-endian representation (0 if the exponent is 0).
func ExpGas(exponent *uint256.Int) uint64 {
	if exponent.IsZero() {
		return 0
	}
	byteLen := uint64((exponent.BitLen() + 7) / 8)
	return safeMul(50, byteLen)
}

// CopyGas computes the dynamic gas of a copy opcode: GasCopy per word.
func CopyGas(size uint64) uint64 {
	return safeMul(GasCopy, toWordSize(size))
}

func safeAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func safeMul(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxUint64/b {
		return math.MaxUint64
	}
	return a * b
}

func u256ToHash(v *uint256.Int) types.Hash {
	b := v.Bytes32()
	return types.BytesToHash(b[:])
}

func u256ToAddress(v *uint256.Int) types.Address {
	b := v.Bytes20()
	return types.BytesToAddress(b[:])
}

// --- dynamic gas functions, keyed into the jump table per fork ---

func gasSha3(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	size := stack.Back(1).Uint64()
	gas := Sha3Gas(size)
	return safeAdd(gas, gasMemExpansion(evm, contract, stack, mem, memorySize))
}

func gasExp(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	return ExpGas(stack.Back(1))
}

func gasCopy(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	size := stack.Back(2).Uint64()
	gas := CopyGas(size)
	return safeAdd(gas, gasMemExpansion(evm, contract, stack, mem, memorySize))
}

func gasExtCodeCopy(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	size := stack.Back(3).Uint64()
	gas := CopyGas(size)
	return safeAdd(gas, gasMemExpansion(evm, contract, stack, mem, memorySize))
}

func makeGasLog(n uint64) dynamicGasFunc {
	return func(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
		dataSize := stack.Back(1).Uint64()
		gas := LogGas(n, dataSize)
		return safeAdd(gas, gasMemExpansion(evm, contract, stack, mem, memorySize))
	}
}

func gasCreateFrontier(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	return gasMemExpansion(evm, contract, stack, mem, memorySize)
}

func gasCreate2(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	size := stack.Back(2).Uint64()
	gas := safeMul(GasKeccak256Word, toWordSize(size))
	return safeAdd(gas, gasMemExpansion(evm, contract, stack, mem, memorySize))
}

// gasSstoreEIP2200 applies Istanbul's net-gas SSTORE metering (no EIP-2929
// cold surcharge -- that is layered separately by gasSstoreEIP2929 under
// Berlin). EIP-2200 also introduces the call-stipend sentry check: SSTORE
// fails outright if no more than SstoreSentryGasEIP2200 gas remains.
func gasSstoreEIP2200(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	if contract.Gas <= SstoreSentryGasEIP2200 {
		return math.MaxUint64 // forces out-of-gas: insufficient sentry gas
	}
	slot := u256ToHash(stack.Back(0))
	current := evm.StateDB.GetState(contract.Address, slot)
	original := evm.StateDB.GetCommittedState(contract.Address, slot)
	newVal := u256ToHash(stack.Back(1))
	gas, refund := SstoreGas(original, current, newVal)
	if refund > 0 {
		evm.StateDB.AddRefund(uint64(refund))
	} else if refund < 0 {
		evm.StateDB.SubRefund(uint64(-refund))
	}
	return gas
}

// gasSstoreEIP2929 layers the Berlin (EIP-2929) cold-slot surcharge on top
// of EIP-2200 net-gas metering: SSTORE has zero constant gas, so a cold slot
// pays the full ColdSloadCost rather than just the warm/cold delta.
func gasSstoreEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	if contract.Gas <= SstoreSentryGasEIP2200 {
		return math.MaxUint64
	}
	slot := u256ToHash(stack.Back(0))
	var coldGas uint64
	if addrWarm, slotWarm := evm.StateDB.SlotInAccessList(contract.Address, slot); !slotWarm {
		_ = addrWarm
		evm.StateDB.AddSlotToAccessList(contract.Address, slot)
		coldGas = ColdSloadCost
	}
	current := evm.StateDB.GetState(contract.Address, slot)
	original := evm.StateDB.GetCommittedState(contract.Address, slot)
	newVal := u256ToHash(stack.Back(1))
	if current == newVal {
		return WarmStorageReadCost + coldGas
	}
	gas, refund := SstoreGas(original, current, newVal)
	if refund > 0 {
		evm.StateDB.AddRefund(uint64(refund))
	} else if refund < 0 {
		evm.StateDB.SubRefund(uint64(-refund))
	}
	// The EIP-2200 schedule already folds in the warm-read baseline for
	// dirty/no-op cases; only the cold surcharge needs layering on top.
	return gas + coldGas
}

func gasEIP2929AccountCheck(evm *EVM, addr types.Address) uint64 {
	if evm.StateDB.AddressInAccessList(addr) {
		return 0
	}
	evm.StateDB.AddAddressToAccessList(addr)
	return ColdAccountAccessCost - WarmStorageReadCost
}

func gasEIP2929SlotCheck(evm *EVM, addr types.Address, slot types.Hash) uint64 {
	_, slotWarm := evm.StateDB.SlotInAccessList(addr, slot)
	if slotWarm {
		return 0
	}
	evm.StateDB.AddSlotToAccessList(addr, slot)
	return ColdSloadCost - WarmStorageReadCost
}

func gasSloadEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	slot := u256ToHash(stack.Back(0))
	return gasEIP2929SlotCheck(evm, contract.Address, slot)
}

func gasBalanceEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	return gasEIP2929AccountCheck(evm, u256ToAddress(stack.Back(0)))
}

func gasExtCodeSizeEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	return gasEIP2929AccountCheck(evm, u256ToAddress(stack.Back(0)))
}

func gasExtCodeCopyEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	gas := gasEIP2929AccountCheck(evm, u256ToAddress(stack.Back(0)))
	size := stack.Back(3).Uint64()
	gas = safeAdd(gas, CopyGas(size))
	return safeAdd(gas, gasMemExpansion(evm, contract, stack, mem, memorySize))
}

func gasExtCodeHashEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	return gasEIP2929AccountCheck(evm, u256ToAddress(stack.Back(0)))
}

// gasCallFrontier prices CALL before Berlin: value-transfer and
// new-account surcharges plus memory expansion, with no cold/warm concept.
func gasCallFrontier(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	var gas uint64
	addr := u256ToAddress(stack.Back(1))
	transfersValue := !stack.Back(2).IsZero()
	if transfersValue {
		gas = safeAdd(gas, CallValueTransferGas)
		if !evm.StateDB.Exist(addr) {
			gas = safeAdd(gas, CallNewAccountGas)
		}
	}
	return safeAdd(gas, gasMemExpansion(evm, contract, stack, mem, memorySize))
}

func gasCallCodeFrontier(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	var gas uint64
	if !stack.Back(2).IsZero() {
		gas = safeAdd(gas, CallValueTransferGas)
	}
	return safeAdd(gas, gasMemExpansion(evm, contract, stack, mem, memorySize))
}

func gasSelfdestructFrontier(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	addr := u256ToAddress(stack.Back(0))
	if !evm.StateDB.Exist(addr) && !evm.StateDB.GetBalance(contract.Address).IsZero() {
		return CreateBySelfdestructGas
	}
	return 0
}

// gasCallEIP2929 prices CALL under Berlin: cold/warm address surcharge,
// value-transfer and new-account surcharges, plus memory expansion.
func gasCallEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	addr := u256ToAddress(stack.Back(1))
	gas := gasEIP2929AccountCheck(evm, addr)
	if !stack.Back(2).IsZero() {
		gas = safeAdd(gas, CallValueTransferGas)
		if !evm.StateDB.Exist(addr) {
			gas = safeAdd(gas, CallNewAccountGas)
		}
	}
	return safeAdd(gas, gasMemExpansion(evm, contract, stack, mem, memorySize))
}

func gasCallCodeEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	addr := u256ToAddress(stack.Back(1))
	gas := gasEIP2929AccountCheck(evm, addr)
	if !stack.Back(2).IsZero() {
		gas = safeAdd(gas, CallValueTransferGas)
	}
	return safeAdd(gas, gasMemExpansion(evm, contract, stack, mem, memorySize))
}

func gasDelegateCallEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	gas := gasEIP2929AccountCheck(evm, u256ToAddress(stack.Back(1)))
	return safeAdd(gas, gasMemExpansion(evm, contract, stack, mem, memorySize))
}

func gasStaticCallEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	gas := gasEIP2929AccountCheck(evm, u256ToAddress(stack.Back(1)))
	return safeAdd(gas, gasMemExpansion(evm, contract, stack, mem, memorySize))
}

func gasDelegateCallFrontier(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	return gasMemExpansion(evm, contract, stack, mem, memorySize)
}

func gasStaticCallFrontier(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	return gasMemExpansion(evm, contract, stack, mem, memorySize)
}

// gasSelfdestructEIP2929 prices SELFDESTRUCT under Berlin: a cold-address
// surcharge for the beneficiary plus the Frontier-era new-account surcharge.
func gasSelfdestructEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	addr := u256ToAddress(stack.Back(0))
	gas := gasEIP2929AccountCheck(evm, addr)
	if !evm.StateDB.Exist(addr) && !evm.StateDB.GetBalance(contract.Address).IsZero() {
		gas = safeAdd(gas, CreateBySelfdestructGas)
	}
	return gas
}
