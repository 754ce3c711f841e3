package vm

import (
	"math"

	"github.com/holiman/uint256"
)

// dynamicGasFunc computes the gas an operation costs beyond its constant
// component: memory expansion, per-word/per-byte charges, and EIP-2929
// cold/warm surcharges.
type dynamicGasFunc func(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64

// memorySizeFunc returns the number of bytes memory must grow to before an
// operation executes, derived from its stack arguments.
type memorySizeFunc func(stack *Stack) uint64

// operation describes everything the interpreter loop needs to run a single
// opcode: its implementation, its stack-depth requirements, and its gas cost.
type operation struct {
	execute     executionFunc
	constantGas uint64
	dynamicGas  dynamicGasFunc
	minStack    int
	maxStack    int
	memorySize  memorySizeFunc
	halts       bool // halts execution (STOP, RETURN, SELFDESTRUCT; REVERT ends the frame through its error)
	jumps       bool // manipulates pc itself (JUMP, JUMPI)
	writes      bool // forbidden in STATICCALL's read-only context
}

// JumpTable maps each possible opcode byte to its operation, nil for unused
// slots in the fork in question.
type JumpTable [256]*operation

func minStack(pops, _ int) int         { return pops }
func maxStack(pops, push int) int      { return maxStackDepth + pops - push }
func minSwapStack(n int) int           { return minStack(n+1, n+1) }
func maxSwapStack(n int) int           { return maxStack(n+1, n+1) }
func minDupStack(n int) int            { return minStack(n, n+1) }
func maxDupStack(n int) int            { return maxStack(n, n+1) }

// calcMemSize returns the number of bytes memory must be sized to in order to
// satisfy an offset/size pair taken from the stack. A zero size never
// requires memory growth, regardless of offset, matching the Yellow Paper's
// treatment of zero-length reads/writes as free. Overflow saturates to a
// value large enough to guarantee an out-of-gas in MemoryGasCost.
func calcMemSize(offset, size *uint256.Int) uint64 {
	if size.IsZero() {
		return 0
	}
	if !offset.IsUint64() || !size.IsUint64() {
		return math.MaxUint64 / 2
	}
	off, sz := offset.Uint64(), size.Uint64()
	if off > math.MaxUint64-sz {
		return math.MaxUint64 / 2
	}
	return off + sz
}

func calcMemSizeWord(offset *uint256.Int, width uint64) uint64 {
	if !offset.IsUint64() {
		return math.MaxUint64 / 2
	}
	off := offset.Uint64()
	if off > math.MaxUint64-width {
		return math.MaxUint64 / 2
	}
	return off + width
}

func memoryKeccak256(stack *Stack) uint64 {
	return calcMemSize(stack.Back(0), stack.Back(1))
}

func memoryCalldataCopy(stack *Stack) uint64 {
	return calcMemSize(stack.Back(0), stack.Back(2))
}

func memoryCodeCopy(stack *Stack) uint64 {
	return calcMemSize(stack.Back(0), stack.Back(2))
}

func memoryExtCodeCopy(stack *Stack) uint64 {
	return calcMemSize(stack.Back(1), stack.Back(3))
}

func memoryReturndataCopy(stack *Stack) uint64 {
	return calcMemSize(stack.Back(0), stack.Back(2))
}

func memoryMload(stack *Stack) uint64 {
	return calcMemSizeWord(stack.Back(0), 32)
}

func memoryMstore(stack *Stack) uint64 {
	return calcMemSizeWord(stack.Back(0), 32)
}

func memoryMstore8(stack *Stack) uint64 {
	return calcMemSizeWord(stack.Back(0), 1)
}

func memoryReturn(stack *Stack) uint64 {
	return calcMemSize(stack.Back(0), stack.Back(1))
}

func memoryLog(stack *Stack) uint64 {
	return calcMemSize(stack.Back(0), stack.Back(1))
}

func memoryCall(stack *Stack) uint64 {
	in := calcMemSize(stack.Back(3), stack.Back(4))
	out := calcMemSize(stack.Back(5), stack.Back(6))
	if in > out {
		return in
	}
	return out
}

func memoryCallCode(stack *Stack) uint64 {
	return memoryCall(stack)
}

func memoryDelegateStaticCall(stack *Stack) uint64 {
	in := calcMemSize(stack.Back(2), stack.Back(3))
	out := calcMemSize(stack.Back(4), stack.Back(5))
	if in > out {
		return in
	}
	return out
}

func memoryCreate(stack *Stack) uint64 {
	return calcMemSize(stack.Back(1), stack.Back(2))
}

func memoryCreate2(stack *Stack) uint64 {
	return calcMemSize(stack.Back(1), stack.Back(2))
}

// gasMemExpansion is the dynamicGasFunc shared by every operation whose only
// dynamic cost is memory growth; it is also composed into richer dynamic gas
// functions (KECCAK256, the CALL family, LOG, CREATE) in gas_table.go.
func gasMemExpansion(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
	if memorySize == 0 {
		return 0
	}
	return MemoryExpansionGas(uint64(mem.Len()), memorySize)
}

// newBaseOperationSet builds the Frontier-era operations common to every
// fork: arithmetic, comparison, bitwise, environment, memory, stack, and
// control-flow opcodes that never change cost or behavior again. Later forks
// start from a copy of the preceding fork's table and patch only what
// changed.
func newBaseOperationSet() JumpTable {
	var tbl JumpTable

	// Flat SSTORE schedule: GasSstoreSet for a zero slot made non-zero,
	// GasSstoreReset for any other write, plus a 15000 refund on a clear.
	gasSstoreFlat := func(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) uint64 {
		current := evm.StateDB.GetState(contract.Address, u256ToHash(stack.Back(0)))
		newVal := u256ToHash(stack.Back(1))
		if current.IsZero() && !newVal.IsZero() {
			return GasSstoreSet
		}
		if !current.IsZero() && newVal.IsZero() {
			evm.StateDB.AddRefund(SstoreClearRefundEIP2200)
		}
		return GasSstoreReset
	}

	tbl[STOP] = &operation{execute: opStop, constantGas: 0, minStack: minStack(0, 0), maxStack: maxStack(0, 0), halts: true}
	tbl[ADD] = &operation{execute: opAdd, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[MUL] = &operation{execute: opMul, constantGas: GasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[SUB] = &operation{execute: opSub, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[DIV] = &operation{execute: opDiv, constantGas: GasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[SDIV] = &operation{execute: opSdiv, constantGas: GasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[MOD] = &operation{execute: opMod, constantGas: GasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[SMOD] = &operation{execute: opSmod, constantGas: GasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[ADDMOD] = &operation{execute: opAddmod, constantGas: GasMid, minStack: minStack(3, 1), maxStack: maxStack(3, 1)}
	tbl[MULMOD] = &operation{execute: opMulmod, constantGas: GasMid, minStack: minStack(3, 1), maxStack: maxStack(3, 1)}
	tbl[EXP] = &operation{execute: opExp, constantGas: GasExt, dynamicGas: gasExp, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[SIGNEXTEND] = &operation{execute: opSignExtend, constantGas: GasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}

	tbl[LT] = &operation{execute: opLt, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[GT] = &operation{execute: opGt, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[SLT] = &operation{execute: opSlt, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[SGT] = &operation{execute: opSgt, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[EQ] = &operation{execute: opEq, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[ISZERO] = &operation{execute: opIsZero, constantGas: GasVerylow, minStack: minStack(1, 1), maxStack: maxStack(1, 1)}
	tbl[AND] = &operation{execute: opAnd, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[OR] = &operation{execute: opOr, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[XOR] = &operation{execute: opXor, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[NOT] = &operation{execute: opNot, constantGas: GasVerylow, minStack: minStack(1, 1), maxStack: maxStack(1, 1)}
	tbl[BYTE] = &operation{execute: opByte, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}

	tbl[KECCAK256] = &operation{execute: opKeccak256, constantGas: GasKeccak256, dynamicGas: gasSha3, minStack: minStack(2, 1), maxStack: maxStack(2, 1), memorySize: memoryKeccak256}

	tbl[ADDRESS] = &operation{execute: opAddress, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[BALANCE] = &operation{execute: opBalance, constantGas: GasExt, minStack: minStack(1, 1), maxStack: maxStack(1, 1)}
	tbl[ORIGIN] = &operation{execute: opOrigin, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[CALLER] = &operation{execute: opCaller, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[CALLVALUE] = &operation{execute: opCallValue, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[CALLDATALOAD] = &operation{execute: opCalldataLoad, constantGas: GasVerylow, minStack: minStack(1, 1), maxStack: maxStack(1, 1)}
	tbl[CALLDATASIZE] = &operation{execute: opCalldataSize, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[CALLDATACOPY] = &operation{execute: opCalldataCopy, constantGas: GasVerylow, dynamicGas: gasCopy, minStack: minStack(3, 0), maxStack: maxStack(3, 0), memorySize: memoryCalldataCopy}
	tbl[CODESIZE] = &operation{execute: opCodeSize, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[CODECOPY] = &operation{execute: opCodeCopy, constantGas: GasVerylow, dynamicGas: gasCopy, minStack: minStack(3, 0), maxStack: maxStack(3, 0), memorySize: memoryCodeCopy}
	tbl[GASPRICE] = &operation{execute: opGasPrice, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[EXTCODESIZE] = &operation{execute: opExtcodesize, constantGas: GasExt, minStack: minStack(1, 1), maxStack: maxStack(1, 1)}
	tbl[EXTCODECOPY] = &operation{execute: opExtcodecopy, constantGas: GasExt, dynamicGas: gasExtCodeCopy, minStack: minStack(4, 0), maxStack: maxStack(4, 0), memorySize: memoryExtCodeCopy}

	tbl[BLOCKHASH] = &operation{execute: opBlockhash, constantGas: GasExt, minStack: minStack(1, 1), maxStack: maxStack(1, 1)}
	tbl[COINBASE] = &operation{execute: opCoinbase, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[TIMESTAMP] = &operation{execute: opTimestamp, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[NUMBER] = &operation{execute: opNumber, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[DIFFICULTY] = &operation{execute: opDifficulty, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[GASLIMIT] = &operation{execute: opGasLimit, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}

	tbl[POP] = &operation{execute: opPop, constantGas: GasPop, minStack: minStack(1, 0), maxStack: maxStack(1, 0)}
	tbl[MLOAD] = &operation{execute: opMload, constantGas: GasMload, dynamicGas: gasMemExpansion, minStack: minStack(1, 1), maxStack: maxStack(1, 1), memorySize: memoryMload}
	tbl[MSTORE] = &operation{execute: opMstore, constantGas: GasMstore, dynamicGas: gasMemExpansion, minStack: minStack(2, 0), maxStack: maxStack(2, 0), memorySize: memoryMstore}
	tbl[MSTORE8] = &operation{execute: opMstore8, constantGas: GasMstore8, dynamicGas: gasMemExpansion, minStack: minStack(2, 0), maxStack: maxStack(2, 0), memorySize: memoryMstore8}
	tbl[SLOAD] = &operation{execute: opSload, constantGas: GasExt, minStack: minStack(1, 1), maxStack: maxStack(1, 1)}
	tbl[SSTORE] = &operation{execute: opSstore, constantGas: 0, dynamicGas: gasSstoreFlat, minStack: minStack(2, 0), maxStack: maxStack(2, 0), writes: true}
	tbl[JUMP] = &operation{execute: opJump, constantGas: GasMid, minStack: minStack(1, 0), maxStack: maxStack(1, 0), jumps: true}
	tbl[JUMPI] = &operation{execute: opJumpi, constantGas: GasHigh, minStack: minStack(2, 0), maxStack: maxStack(2, 0), jumps: true}
	tbl[PC] = &operation{execute: opPc, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[MSIZE] = &operation{execute: opMsize, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[GAS] = &operation{execute: opGas, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[JUMPDEST] = &operation{execute: opJumpdest, constantGas: GasJumpDest, minStack: minStack(0, 0), maxStack: maxStack(0, 0)}

	tbl[PUSH1] = &operation{execute: opPush1, constantGas: GasPush, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	for i := 2; i <= 32; i++ {
		tbl[PUSH1+OpCode(i-1)] = &operation{execute: makePush(uint64(i)), constantGas: GasPush, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	}
	for i := 1; i <= 16; i++ {
		tbl[DUP1+OpCode(i-1)] = &operation{execute: makeDup(i), constantGas: GasDup, minStack: minDupStack(i), maxStack: maxDupStack(i)}
		tbl[SWAP1+OpCode(i-1)] = &operation{execute: makeSwap(i), constantGas: GasSwap, minStack: minSwapStack(i), maxStack: maxSwapStack(i)}
	}
	for i := 0; i <= 4; i++ {
		tbl[LOG0+OpCode(i)] = &operation{execute: makeLog(i), constantGas: GasLog, dynamicGas: makeGasLog(uint64(i)), minStack: minStack(2+i, 0), maxStack: maxStack(2+i, 0), memorySize: memoryLog, writes: true}
	}

	tbl[CREATE] = &operation{execute: opCreate, constantGas: GasCreate, dynamicGas: gasCreateFrontier, minStack: minStack(3, 1), maxStack: maxStack(3, 1), memorySize: memoryCreate, writes: true}
	tbl[CALL] = &operation{execute: opCall, constantGas: GasExt, dynamicGas: gasCallFrontier, minStack: minStack(7, 1), maxStack: maxStack(7, 1), memorySize: memoryCall}
	tbl[CALLCODE] = &operation{execute: opCallCode, constantGas: GasExt, dynamicGas: gasCallCodeFrontier, minStack: minStack(7, 1), maxStack: maxStack(7, 1), memorySize: memoryCallCode}
	tbl[RETURN] = &operation{execute: opReturn, constantGas: 0, dynamicGas: gasMemExpansion, minStack: minStack(2, 0), maxStack: maxStack(2, 0), memorySize: memoryReturn, halts: true}
	tbl[SELFDESTRUCT] = &operation{execute: opSelfdestruct, constantGas: GasSelfdestruct, dynamicGas: gasSelfdestructFrontier, minStack: minStack(1, 0), maxStack: maxStack(1, 0), halts: true, writes: true}

	tbl[INVALID] = &operation{execute: opInvalid, minStack: minStack(0, 0), maxStack: maxStack(0, 0), halts: true}
	return tbl
}

// fillUndefined sets every unassigned slot in tbl to opUndefined, so the
// interpreter loop never indexes a nil operation.
func fillUndefined(tbl *JumpTable) {
	for i := range tbl {
		if tbl[i] == nil {
			tbl[i] = &operation{execute: opUndefined, minStack: minStack(0, 0), maxStack: maxStack(0, 0), halts: true}
		}
	}
}

// NewFrontierJumpTable returns the original Frontier instruction set. Unlike
// the table this was ported from, BLOCKHASH and SELFDESTRUCT are registered
// here (both have had working execution functions all along; they were
// simply never wired into any fork's table).
func NewFrontierJumpTable() JumpTable {
	tbl := newBaseOperationSet()
	fillUndefined(&tbl)
	return tbl
}

// NewHomesteadJumpTable adds DELEGATECALL (EIP-7).
func NewHomesteadJumpTable() JumpTable {
	tbl := NewFrontierJumpTable()
	tbl[DELEGATECALL] = &operation{execute: opDelegateCall, constantGas: GasExt, dynamicGas: gasDelegateCallFrontier, minStack: minStack(6, 1), maxStack: maxStack(6, 1), memorySize: memoryDelegateStaticCall}
	return tbl
}

// NewTangerineWhistleJumpTable applies EIP-150's repriced operations to curb
// underpriced IO: EXTCODESIZE, EXTCODECOPY, CALL, CALLCODE and DELEGATECALL
// cost 700, BALANCE 400, SLOAD 200 and SELFDESTRUCT 5000.
func NewTangerineWhistleJumpTable() JumpTable {
	tbl := NewHomesteadJumpTable()
	tbl[EXTCODESIZE].constantGas = 700
	tbl[EXTCODECOPY].constantGas = 700
	tbl[BALANCE].constantGas = 400
	tbl[SLOAD].constantGas = 200
	tbl[CALL].constantGas = 700
	tbl[CALLCODE].constantGas = 700
	tbl[DELEGATECALL].constantGas = 700
	tbl[SELFDESTRUCT].constantGas = 5000
	return tbl
}

// NewSpuriousDragonJumpTable is TangerineWhistle's table unchanged. The
// fork's EIP-158/161 empty-account rule is enforced by the fork check in
// EVM.Call rather than in the jump table itself, and EIP-170's MaxCodeSize
// check by the fork check in the interpreter's create path.
func NewSpuriousDragonJumpTable() JumpTable {
	return NewTangerineWhistleJumpTable()
}

// NewByzantiumJumpTable adds REVERT, RETURNDATASIZE, RETURNDATACOPY, and
// STATICCALL. STATICCALL's execution function existed before this fork's
// table was written but was never registered; it is wired in here.
func NewByzantiumJumpTable() JumpTable {
	tbl := NewSpuriousDragonJumpTable()
	tbl[REVERT] = &operation{execute: opRevert, constantGas: 0, dynamicGas: gasMemExpansion, minStack: minStack(2, 0), maxStack: maxStack(2, 0), memorySize: memoryReturn}
	tbl[RETURNDATASIZE] = &operation{execute: opReturndataSize, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[RETURNDATACOPY] = &operation{execute: opReturndataCopy, constantGas: GasVerylow, dynamicGas: gasCopy, minStack: minStack(3, 0), maxStack: maxStack(3, 0), memorySize: memoryReturndataCopy}
	tbl[STATICCALL] = &operation{execute: opStaticCall, constantGas: 700, dynamicGas: gasStaticCallFrontier, minStack: minStack(6, 1), maxStack: maxStack(6, 1), memorySize: memoryDelegateStaticCall}
	return tbl
}

// NewConstantinopleJumpTable adds SHL, SHR, SAR (EIP-145), EXTCODEHASH
// (EIP-1052), and CREATE2 (EIP-1014). EXTCODEHASH and CREATE2 both had
// working execution functions before this fork's table was written but
// neither was registered; both are wired in here.
func NewConstantinopleJumpTable() JumpTable {
	tbl := NewByzantiumJumpTable()
	tbl[SHL] = &operation{execute: opSHL, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[SHR] = &operation{execute: opSHR, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[SAR] = &operation{execute: opSAR, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	tbl[EXTCODEHASH] = &operation{execute: opExtcodehash, constantGas: 400, minStack: minStack(1, 1), maxStack: maxStack(1, 1)}
	tbl[CREATE2] = &operation{execute: opCreate2, constantGas: GasCreate, dynamicGas: gasCreate2, minStack: minStack(4, 1), maxStack: maxStack(4, 1), memorySize: memoryCreate2, writes: true}
	return tbl
}

// NewPetersburgJumpTable is Constantinople with EIP-1283's net-gas SSTORE
// removed (re-disclosed as a reentrancy hazard days before Constantinople's
// mainnet activation); SSTORE keeps Constantinople's flat pre-EIP-1283 cost.
func NewPetersburgJumpTable() JumpTable {
	return NewConstantinopleJumpTable()
}

// NewIstanbulJumpTable adds CHAINID, SELFBALANCE (EIP-1884) and reprices
// SLOAD to 800, plus EIP-2200's net-gas SSTORE metering.
func NewIstanbulJumpTable() JumpTable {
	tbl := NewPetersburgJumpTable()
	tbl[CHAINID] = &operation{execute: opChainID, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[SELFBALANCE] = &operation{execute: opSelfBalance, constantGas: GasLow, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	tbl[SLOAD].constantGas = 800
	tbl[SSTORE] = &operation{execute: opSstore, constantGas: 0, dynamicGas: gasSstoreEIP2200, minStack: minStack(2, 0), maxStack: maxStack(2, 0), writes: true}
	return tbl
}

// NewBerlinJumpTable applies EIP-2929: every state-touching opcode loses its
// flat IO charge in favor of a cold/warm surcharge layered on top of a
// reduced constant gas (WarmStorageReadCost, already folded into
// constantGas below). Unlike the table this was ported from -- which copied
// Istanbul's table unchanged despite a doc comment claiming otherwise -- the
// affected opcodes are repriced and their dynamic gas functions actually
// wired in here.
func NewBerlinJumpTable() JumpTable {
	tbl := NewIstanbulJumpTable()

	tbl[SLOAD] = &operation{execute: opSload, constantGas: WarmStorageReadCost, dynamicGas: gasSloadEIP2929, minStack: minStack(1, 1), maxStack: maxStack(1, 1)}
	tbl[BALANCE] = &operation{execute: opBalance, constantGas: WarmStorageReadCost, dynamicGas: gasBalanceEIP2929, minStack: minStack(1, 1), maxStack: maxStack(1, 1)}
	tbl[EXTCODESIZE] = &operation{execute: opExtcodesize, constantGas: WarmStorageReadCost, dynamicGas: gasExtCodeSizeEIP2929, minStack: minStack(1, 1), maxStack: maxStack(1, 1)}
	tbl[EXTCODECOPY] = &operation{execute: opExtcodecopy, constantGas: WarmStorageReadCost, dynamicGas: gasExtCodeCopyEIP2929, minStack: minStack(4, 0), maxStack: maxStack(4, 0), memorySize: memoryExtCodeCopy}
	tbl[EXTCODEHASH] = &operation{execute: opExtcodehash, constantGas: WarmStorageReadCost, dynamicGas: gasExtCodeHashEIP2929, minStack: minStack(1, 1), maxStack: maxStack(1, 1)}
	tbl[SSTORE] = &operation{execute: opSstore, constantGas: 0, dynamicGas: gasSstoreEIP2929, minStack: minStack(2, 0), maxStack: maxStack(2, 0), writes: true}
	tbl[CALL] = &operation{execute: opCall, constantGas: WarmStorageReadCost, dynamicGas: gasCallEIP2929, minStack: minStack(7, 1), maxStack: maxStack(7, 1), memorySize: memoryCall}
	tbl[CALLCODE] = &operation{execute: opCallCode, constantGas: WarmStorageReadCost, dynamicGas: gasCallCodeEIP2929, minStack: minStack(7, 1), maxStack: maxStack(7, 1), memorySize: memoryCallCode}
	tbl[DELEGATECALL] = &operation{execute: opDelegateCall, constantGas: WarmStorageReadCost, dynamicGas: gasDelegateCallEIP2929, minStack: minStack(6, 1), maxStack: maxStack(6, 1), memorySize: memoryDelegateStaticCall}
	tbl[STATICCALL] = &operation{execute: opStaticCall, constantGas: WarmStorageReadCost, dynamicGas: gasStaticCallEIP2929, minStack: minStack(6, 1), maxStack: maxStack(6, 1), memorySize: memoryDelegateStaticCall}
	tbl[SELFDESTRUCT] = &operation{execute: opSelfdestruct, constantGas: GasSelfdestruct, dynamicGas: gasSelfdestructEIP2929, minStack: minStack(1, 0), maxStack: maxStack(1, 0), halts: true, writes: true}
	return tbl
}
