package vm

import (
	"github.com/holiman/uint256"

	"github.com/ethcore/evmcore/core/types"
)

// Contract represents the code and execution context of a single call frame.
// A fresh Contract is created for every CALL/CALLCODE/DELEGATECALL/STATICCALL
// and every CREATE/CREATE2, and lives only for the duration of that frame.
type Contract struct {
	CallerAddress types.Address
	Address       types.Address
	Code          []byte
	CodeHash      types.Hash
	Input         []byte
	Gas           uint64
	Value         *uint256.Int

	jumpdests map[uint64]bool // cached JUMPDEST analysis, built lazily
}

// NewContract creates the execution frame for addr, called by caller with the
// given value and gas allowance.
func NewContract(caller, addr types.Address, value *uint256.Int, gas uint64) *Contract {
	if value == nil {
		value = new(uint256.Int)
	}
	return &Contract{
		CallerAddress: caller,
		Address:       addr,
		Value:         value,
		Gas:           gas,
	}
}

// GetOp returns the opcode at position n, or STOP if n runs past the end of
// the code -- the Yellow Paper treats code as implicitly STOP-padded.
func (c *Contract) GetOp(n uint64) OpCode {
	if n < uint64(len(c.Code)) {
		return OpCode(c.Code[n])
	}
	return STOP
}

// UseGas deducts gas from the contract's remaining allowance, reporting
// whether enough was available.
func (c *Contract) UseGas(gas uint64) bool {
	if c.Gas < gas {
		return false
	}
	c.Gas -= gas
	return true
}

// SetCallCode installs the code to execute along with its hash, and
// optionally rewrites the contract's reported address -- used by
// DELEGATECALL and CALLCODE, which execute another account's code in the
// current account's context.
func (c *Contract) SetCallCode(addr *types.Address, hash types.Hash, code []byte) {
	c.Code = code
	c.CodeHash = hash
	if addr != nil {
		c.Address = *addr
	}
}

// validJumpdest reports whether dest is a JUMPDEST opcode that was not
// produced by PUSH immediate data.
func (c *Contract) validJumpdest(dest *uint256.Int) bool {
	if !dest.IsUint64() {
		return false
	}
	udest := dest.Uint64()
	if udest >= uint64(len(c.Code)) {
		return false
	}
	if OpCode(c.Code[udest]) != JUMPDEST {
		return false
	}
	return c.isCode(udest)
}

// isCode reports whether pos is a JUMPDEST at an instruction boundary (not
// inside PUSH data), running the one-time jumpdest analysis on first use.
func (c *Contract) isCode(pos uint64) bool {
	if c.jumpdests == nil {
		c.jumpdests = make(map[uint64]bool)
		c.analyzeJumpdests()
	}
	return c.jumpdests[pos]
}

// analyzeJumpdests walks the code once, recording every JUMPDEST byte offset
// that is a genuine instruction (not inside a PUSH's immediate data).
func (c *Contract) analyzeJumpdests() {
	for i := uint64(0); i < uint64(len(c.Code)); i++ {
		op := OpCode(c.Code[i])
		if op == JUMPDEST {
			c.jumpdests[i] = true
		}
		if op.IsPush() {
			i += uint64(op - PUSH1 + 1)
		}
	}
}
