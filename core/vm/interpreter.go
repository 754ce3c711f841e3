package vm

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/ethcore/evmcore/core/types"
	"github.com/ethcore/evmcore/crypto"
	"github.com/ethcore/evmcore/log"
)

// GetHashFunc returns the hash of the ancestor block with the given number,
// backing the BLOCKHASH opcode.
type GetHashFunc func(uint64) types.Hash

// BlockContext carries the block-level information the EVM needs but cannot
// derive from the running contract: coinbase, timestamp, difficulty, and the
// 256-ancestor BLOCKHASH window. Field names follow pre-Merge terminology
// (Difficulty, not PrevRandao) since this interpreter's fork range ends at
// Berlin.
type BlockContext struct {
	GetHash     GetHashFunc
	Coinbase    types.Address
	GasLimit    uint64
	BlockNumber uint64
	Time        uint64
	Difficulty  *uint256.Int
}

// TxContext carries the transaction-level information the EVM needs: the
// original sender (distinct from the immediate caller once calls nest) and
// the gas price charged against it.
type TxContext struct {
	Origin     types.Address
	GasPrice   *uint256.Int
	AccessList types.AccessList
}

// StateDB is the HostContext the interpreter requires to read and mutate
// world state. Unlike a diagnostic add-on, it is a required, always-non-nil
// field on EVM: gas metering for SLOAD/SSTORE/BALANCE/EXTCODE*/CALL*/
// SELFDESTRUCT reads and writes through it on every opcode, so an EVM
// constructed without one is a programming error, not a degraded mode.
type StateDB interface {
	CreateAccount(addr types.Address)
	GetBalance(addr types.Address) *uint256.Int
	AddBalance(addr types.Address, amount *uint256.Int)
	SubBalance(addr types.Address, amount *uint256.Int)
	GetNonce(addr types.Address) uint64
	SetNonce(addr types.Address, nonce uint64)
	GetCode(addr types.Address) []byte
	SetCode(addr types.Address, code []byte)
	GetCodeHash(addr types.Address) types.Hash
	GetCodeSize(addr types.Address) int

	GetState(addr types.Address, key types.Hash) types.Hash
	SetState(addr types.Address, key, value types.Hash)
	GetCommittedState(addr types.Address, key types.Hash) types.Hash

	SelfDestruct(addr types.Address)
	HasSelfDestructed(addr types.Address) bool

	Exist(addr types.Address) bool
	Empty(addr types.Address) bool

	Snapshot() int
	RevertToSnapshot(id int)

	AddLog(log *types.Log)

	AddRefund(gas uint64)
	SubRefund(gas uint64)
	GetRefund() uint64

	AddAddressToAccessList(addr types.Address)
	AddSlotToAccessList(addr types.Address, slot types.Hash)
	AddressInAccessList(addr types.Address) bool
	SlotInAccessList(addr types.Address, slot types.Hash) (addressOk, slotOk bool)
}

// Fork identifies one of the protocol upgrades this interpreter supports,
// Frontier through Berlin. Each selects a jump table and precompile set.
type Fork int

const (
	Frontier Fork = iota
	Homestead
	TangerineWhistle
	SpuriousDragon
	Byzantium
	Constantinople
	Petersburg
	Istanbul
	Berlin
)

// SelectJumpTable returns the jump table for fork.
func SelectJumpTable(fork Fork) JumpTable {
	switch fork {
	case Frontier:
		return NewFrontierJumpTable()
	case Homestead:
		return NewHomesteadJumpTable()
	case TangerineWhistle:
		return NewTangerineWhistleJumpTable()
	case SpuriousDragon:
		return NewSpuriousDragonJumpTable()
	case Byzantium:
		return NewByzantiumJumpTable()
	case Constantinople:
		return NewConstantinopleJumpTable()
	case Petersburg:
		return NewPetersburgJumpTable()
	case Istanbul:
		return NewIstanbulJumpTable()
	case Berlin:
		return NewBerlinJumpTable()
	default:
		return NewBerlinJumpTable()
	}
}

// SelectPrecompiles returns the precompile set for fork. Every fork gets the
// same Berlin set (0x01-0x09), so the precompiles introduced at Byzantium
// (0x05-0x08) and Istanbul (0x09) are also present under earlier forks.
func SelectPrecompiles(fork Fork) map[types.Address]PrecompiledContract {
	return PrecompiledContractsBerlin
}

// Config bundles the tunables an embedding host sets once per EVM instance.
type Config struct {
	Fork         Fork
	MaxCallDepth int // defaults to 1024 if zero
}

const maxCallDepth = 1024

// EVM is a single execution environment: one jump table, one precompile
// set, one StateDB, shared by every nested CALL/CREATE frame reached from a
// top-level message.
type EVM struct {
	Context   BlockContext
	TxContext TxContext
	Config    Config
	StateDB   StateDB

	chainID     uint64
	depth       int
	readOnly    bool
	jumpTable   JumpTable
	precompiles map[types.Address]PrecompiledContract
	returnData  []byte

	log *log.Logger

	// StepListener, when set, is invoked after every instruction in Run's
	// loop with the program counter, the opcode just executed, and the
	// remaining gas. Returning true aborts the current frame with
	// StatusHalted. This is the interpreter's only external cancellation
	// mechanism; when nil (the common case), Run never pays for the check
	// beyond a single nil comparison per step.
	StepListener func(pc uint64, op OpCode, gasLeft uint64, depth int) (halt bool)
}

// NewEVM constructs an EVM for the given fork, wiring its jump table and
// precompile set. StateDB must be set by the caller before Run/Call/Create
// are invoked.
func NewEVM(blockCtx BlockContext, txCtx TxContext, stateDB StateDB, chainID uint64, config Config) *EVM {
	if config.MaxCallDepth == 0 {
		config.MaxCallDepth = maxCallDepth
	}
	return &EVM{
		Context:     blockCtx,
		TxContext:   txCtx,
		Config:      config,
		StateDB:     stateDB,
		chainID:     chainID,
		jumpTable:   SelectJumpTable(config.Fork),
		precompiles: SelectPrecompiles(config.Fork),
		log:         log.Module("vm"),
	}
}

func (evm *EVM) precompile(addr types.Address) (PrecompiledContract, bool) {
	p, ok := evm.precompiles[addr]
	return p, ok
}

// Run drives the fetch-decode-execute loop over contract's code until a
// halting opcode, an error, or an out-of-gas condition ends the frame.
// Gas is charged in a fixed order -- constant, then dynamic (which covers
// memory expansion) -- before memory is actually resized, matching the
// Yellow Paper's requirement that a step which cannot afford its own memory
// growth fails before mutating state.
func (evm *EVM) Run(contract *Contract, input []byte) ([]byte, error) {
	contract.Input = input

	if evm.log != nil {
		evm.log.Debug("frame enter", "address", contract.Address, "depth", evm.depth, "gas", contract.Gas)
	}

	var (
		pc    uint64
		stack = newStack()
		mem   = NewMemory()
	)
	defer returnStack(stack)

	for {
		op := contract.GetOp(pc)
		op_ := evm.jumpTable[op]
		if op_ == nil || op_.execute == nil {
			return nil, ErrUndefinedOpCode
		}

		sLen := stack.Len()
		if sLen < op_.minStack {
			return nil, ErrStackUnderflow
		}
		if sLen > op_.maxStack {
			return nil, ErrStackOverflow
		}
		if evm.readOnly && op_.writes {
			return nil, ErrWriteProtection
		}

		if op_.constantGas > 0 {
			if !contract.UseGas(op_.constantGas) {
				if evm.log != nil {
					evm.log.Debug("out of gas", "op", op, "pc", pc, "needed", op_.constantGas, "available", contract.Gas)
				}
				return nil, ErrOutOfGas
			}
		}

		var memorySize uint64
		if op_.memorySize != nil {
			memorySize = op_.memorySize(stack)
			if memorySize > 0 {
				memorySize = (memorySize + 31) / 32 * 32
			}
		}

		if op_.dynamicGas != nil {
			cost := op_.dynamicGas(evm, contract, stack, mem, memorySize)
			if cost == ^uint64(0) || !contract.UseGas(cost) {
				if evm.log != nil {
					evm.log.Debug("out of gas", "op", op, "pc", pc, "needed", cost, "available", contract.Gas)
				}
				return nil, ErrOutOfGas
			}
		}

		if memorySize > 0 && uint64(mem.Len()) < memorySize {
			mem.Resize(memorySize)
		}

		ret, err := op_.execute(&pc, evm, contract, mem, stack)
		if err != nil {
			if errors.Is(err, ErrExecutionReverted) {
				return ret, err
			}
			if evm.log != nil {
				if errors.Is(err, ErrInvalidJump) {
					evm.log.Debug("invalid jump", "op", op, "pc", pc)
				}
				evm.log.Debug("frame exit", "address", contract.Address, "depth", evm.depth, "err", err)
			}
			return nil, err
		}

		if evm.StepListener != nil && evm.StepListener(pc, op, contract.Gas, evm.depth) {
			return nil, ErrExecutionAborted
		}

		if op_.halts {
			if evm.log != nil {
				evm.log.Debug("frame exit", "address", contract.Address, "depth", evm.depth, "gasLeft", contract.Gas)
			}
			return ret, nil
		}
		if op_.jumps {
			continue
		}
		pc++
	}
}

// Call executes a message call to addr, running its code (or a precompile)
// with input as calldata and forwarding gas, transferring value if
// non-zero.
func (evm *EVM) Call(caller, addr types.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	if evm.depth > evm.Config.MaxCallDepth {
		return nil, gas, ErrCallDepthExceeded
	}

	transfersValue := value != nil && !value.IsZero()
	if transfersValue {
		if evm.StateDB.GetBalance(caller).Cmp(value) < 0 {
			return nil, gas, ErrInsufficientBalance
		}
	}

	snapshot := evm.StateDB.Snapshot()

	p, isPrecompile := evm.precompile(addr)

	if !evm.StateDB.Exist(addr) {
		// Pre-Spurious Dragon, every CALL materializes its target account even
		// when it carries no value; EIP-158 restricts that to precompiles and
		// value-transfers so that touching an empty account doesn't leave it
		// behind for the state-clearing rule to sweep up.
		if !isPrecompile && !transfersValue && evm.Config.Fork >= SpuriousDragon {
			return nil, gas, nil
		}
		evm.StateDB.CreateAccount(addr)
	}

	if transfersValue {
		if evm.readOnly {
			return nil, gas, ErrWriteProtection
		}
		evm.StateDB.SubBalance(caller, value)
		evm.StateDB.AddBalance(addr, value)
	}

	if isPrecompile {
		ret, gasLeft, err := RunPrecompiledContract(p, input, gas)
		if err != nil {
			evm.StateDB.RevertToSnapshot(snapshot)
		}
		return ret, gasLeft, err
	}

	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(caller, addr, value, gas)
	contract.Code = code
	contract.CodeHash = evm.StateDB.GetCodeHash(addr)

	evm.depth++
	ret, err := evm.Run(contract, input)
	evm.depth--

	gasLeft := contract.Gas
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if !errors.Is(err, ErrExecutionReverted) {
			gasLeft = 0
		}
	}
	return ret, gasLeft, err
}

// CallCode runs addr's code but in the caller's own storage and address
// context -- only msg.sender and the target code differ from Call.
func (evm *EVM) CallCode(caller, addr types.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	if evm.depth > evm.Config.MaxCallDepth {
		return nil, gas, ErrCallDepthExceeded
	}

	if p, ok := evm.precompile(addr); ok {
		return RunPrecompiledContract(p, input, gas)
	}

	snapshot := evm.StateDB.Snapshot()

	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(caller, caller, value, gas)
	contract.Code = code
	contract.CodeHash = evm.StateDB.GetCodeHash(addr)

	evm.depth++
	ret, err := evm.Run(contract, input)
	evm.depth--

	gasLeft := contract.Gas
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if !errors.Is(err, ErrExecutionReverted) {
			gasLeft = 0
		}
	}
	return ret, gasLeft, err
}

// DelegateCall runs addr's code in the caller's storage, address, and
// value context, preserving the grandcaller's msg.sender across the jump.
func (evm *EVM) DelegateCall(originalCaller, currentAddr, addr types.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	if evm.depth > evm.Config.MaxCallDepth {
		return nil, gas, ErrCallDepthExceeded
	}

	if p, ok := evm.precompile(addr); ok {
		return RunPrecompiledContract(p, input, gas)
	}

	snapshot := evm.StateDB.Snapshot()

	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(originalCaller, currentAddr, value, gas)
	contract.Code = code
	contract.CodeHash = evm.StateDB.GetCodeHash(addr)

	evm.depth++
	ret, err := evm.Run(contract, input)
	evm.depth--

	gasLeft := contract.Gas
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if !errors.Is(err, ErrExecutionReverted) {
			gasLeft = 0
		}
	}
	return ret, gasLeft, err
}

// StaticCall runs addr's code with write protection: any opcode flagged
// writes (SSTORE, LOG*, CREATE*, SELFDESTRUCT, or a value-transferring CALL)
// fails with ErrWriteProtection for the duration of this call and everything
// it calls in turn.
func (evm *EVM) StaticCall(caller, addr types.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	if evm.depth > evm.Config.MaxCallDepth {
		return nil, gas, ErrCallDepthExceeded
	}

	prevReadOnly := evm.readOnly
	evm.readOnly = true
	defer func() { evm.readOnly = prevReadOnly }()

	snapshot := evm.StateDB.Snapshot()

	if p, ok := evm.precompile(addr); ok {
		ret, gasLeft, err := RunPrecompiledContract(p, input, gas)
		if err != nil {
			evm.StateDB.RevertToSnapshot(snapshot)
		}
		return ret, gasLeft, err
	}

	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(caller, addr, new(uint256.Int), gas)
	contract.Code = code
	contract.CodeHash = evm.StateDB.GetCodeHash(addr)

	evm.depth++
	ret, err := evm.Run(contract, input)
	evm.depth--

	gasLeft := contract.Gas
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if !errors.Is(err, ErrExecutionReverted) {
			gasLeft = 0
		}
	}
	return ret, gasLeft, err
}

// createAddress computes the deterministic address of a CREATE-deployed
// contract: keccak256(rlp([sender, nonce]))[12:].
func createAddress(caller types.Address, nonce uint64) types.Address {
	addrEnc := encodeRLPBytes(caller[:])
	nonceEnc := encodeRLPUint(nonce)
	payload := append(addrEnc, nonceEnc...)
	data := wrapRLPList(payload)
	hash := crypto.Keccak256(data)
	return types.BytesToAddress(hash[12:])
}

// create2Address computes the deterministic address of a CREATE2-deployed
// contract: keccak256(0xff ++ sender ++ salt ++ keccak256(initcode))[12:].
func create2Address(caller types.Address, salt *uint256.Int, initCodeHash []byte) types.Address {
	saltBytes := salt.Bytes32()
	data := make([]byte, 0, 85)
	data = append(data, 0xff)
	data = append(data, caller[:]...)
	data = append(data, saltBytes[:]...)
	data = append(data, initCodeHash...)
	hash := crypto.Keccak256(data)
	return types.BytesToAddress(hash[12:])
}

func encodeRLPBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	if len(b) < 56 {
		return append([]byte{byte(0x80 + len(b))}, b...)
	}
	lenBytes := uintToMinBytes(uint64(len(b)))
	header := append([]byte{byte(0xb7 + len(lenBytes))}, lenBytes...)
	return append(header, b...)
}

func encodeRLPUint(v uint64) []byte {
	if v == 0 {
		return []byte{0x80}
	}
	if v < 128 {
		return []byte{byte(v)}
	}
	b := uintToMinBytes(v)
	return append([]byte{byte(0x80 + len(b))}, b...)
}

func wrapRLPList(payload []byte) []byte {
	if len(payload) < 56 {
		return append([]byte{byte(0xc0 + len(payload))}, payload...)
	}
	lenBytes := uintToMinBytes(uint64(len(payload)))
	header := append([]byte{byte(0xf7 + len(lenBytes))}, lenBytes...)
	return append(header, payload...)
}

func uintToMinBytes(v uint64) []byte {
	if v == 0 {
		return nil
	}
	var buf [8]byte
	n := 0
	for i := 7; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
		if buf[i] != 0 {
			n = 8 - i
		}
	}
	return buf[8-n:]
}

// Create deploys code as a new contract owned by caller, at the address
// determined by caller's current nonce.
func (evm *EVM) Create(caller types.Address, code []byte, gas uint64, value *uint256.Int) ([]byte, types.Address, uint64, error) {
	if evm.depth > evm.Config.MaxCallDepth {
		return nil, types.Address{}, gas, ErrCallDepthExceeded
	}
	if evm.readOnly {
		return nil, types.Address{}, gas, ErrWriteProtection
	}

	nonce := evm.StateDB.GetNonce(caller)
	evm.StateDB.SetNonce(caller, nonce+1)
	contractAddr := createAddress(caller, nonce)

	return evm.create(caller, code, gas, value, contractAddr)
}

// Create2 deploys code as a new contract at an address determined by
// caller, salt, and the init code's hash -- reproducible independent of
// caller's nonce.
func (evm *EVM) Create2(caller types.Address, code []byte, gas uint64, value, salt *uint256.Int) ([]byte, types.Address, uint64, error) {
	if evm.depth > evm.Config.MaxCallDepth {
		return nil, types.Address{}, gas, ErrCallDepthExceeded
	}
	if evm.readOnly {
		return nil, types.Address{}, gas, ErrWriteProtection
	}

	initCodeHash := crypto.Keccak256(code)
	contractAddr := create2Address(caller, salt, initCodeHash)

	return evm.create(caller, code, gas, value, contractAddr)
}

// create is the shared CREATE/CREATE2 implementation: collision check,
// value transfer, init code execution under the 63/64 gas-forwarding rule,
// and EIP-170 code-size enforcement on the deposited result.
func (evm *EVM) create(caller types.Address, code []byte, gas uint64, value *uint256.Int, contractAddr types.Address) ([]byte, types.Address, uint64, error) {
	contractHash := evm.StateDB.GetCodeHash(contractAddr)
	if evm.StateDB.GetNonce(contractAddr) != 0 ||
		(contractHash != (types.Hash{}) && contractHash != types.EmptyCodeHash) {
		return nil, types.Address{}, gas, ErrContractAddressCollision
	}

	evm.StateDB.AddAddressToAccessList(contractAddr)

	snapshot := evm.StateDB.Snapshot()

	if !evm.StateDB.Exist(contractAddr) {
		evm.StateDB.CreateAccount(contractAddr)
	}
	evm.StateDB.SetNonce(contractAddr, 1)

	if value != nil && !value.IsZero() {
		if evm.StateDB.GetBalance(caller).Cmp(value) < 0 {
			evm.StateDB.RevertToSnapshot(snapshot)
			return nil, types.Address{}, gas, ErrInsufficientBalance
		}
		evm.StateDB.SubBalance(caller, value)
		evm.StateDB.AddBalance(contractAddr, value)
	}

	callGas := CallGas(gas, 0)
	gas -= callGas

	contract := NewContract(caller, contractAddr, value, callGas)
	contract.Code = code

	evm.depth++
	ret, err := evm.Run(contract, nil)
	evm.depth--

	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if !errors.Is(err, ErrExecutionReverted) {
			return ret, types.Address{}, gas, err
		}
		gas += contract.Gas
		return ret, types.Address{}, gas, err
	}

	gas += contract.Gas

	if len(ret) > 0 {
		if len(ret) > MaxCodeSize && evm.Config.Fork >= SpuriousDragon {
			evm.StateDB.RevertToSnapshot(snapshot)
			return nil, types.Address{}, 0, ErrMaxCodeSizeExceeded
		}
		depositCost := uint64(len(ret)) * GasCodeDeposit
		if gas < depositCost {
			evm.StateDB.RevertToSnapshot(snapshot)
			return nil, types.Address{}, 0, ErrOutOfGas
		}
		gas -= depositCost
		evm.StateDB.SetCode(contractAddr, ret)
	}

	return ret, contractAddr, gas, nil
}
