// Package state implements the transactional, in-memory world-state overlay
// that backs vm.StateDB: account balances, nonces, code and storage, plus
// the journal that makes every mutation revertible to an earlier snapshot.
package state

import (
	"github.com/holiman/uint256"

	"github.com/ethcore/evmcore/core/types"
)

// stateObject is the in-memory representation of a single account: its
// balance/nonce/code plus the two-tier storage view SSTORE metering needs --
// committedStorage holds values as of the start of the current transaction,
// dirtyStorage holds writes made since then.
type stateObject struct {
	nonce    uint64
	balance  *uint256.Int
	codeHash types.Hash
	code     []byte

	dirtyStorage     map[types.Hash]types.Hash
	committedStorage map[types.Hash]types.Hash

	selfDestructed bool
}

func newStateObject() *stateObject {
	return &stateObject{
		balance:          new(uint256.Int),
		codeHash:         types.EmptyCodeHash,
		dirtyStorage:     make(map[types.Hash]types.Hash),
		committedStorage: make(map[types.Hash]types.Hash),
	}
}

// clone returns a deep copy of the object, used both by journal entries that
// need to snapshot the whole account (CreateAccount) and by StateDB.Copy.
func (o *stateObject) clone() *stateObject {
	cp := &stateObject{
		nonce:            o.nonce,
		balance:          o.balance.Clone(),
		codeHash:         o.codeHash,
		selfDestructed:   o.selfDestructed,
		dirtyStorage:     make(map[types.Hash]types.Hash, len(o.dirtyStorage)),
		committedStorage: make(map[types.Hash]types.Hash, len(o.committedStorage)),
	}
	if o.code != nil {
		cp.code = append([]byte(nil), o.code...)
	}
	for k, v := range o.dirtyStorage {
		cp.dirtyStorage[k] = v
	}
	for k, v := range o.committedStorage {
		cp.committedStorage[k] = v
	}
	return cp
}

// empty reports whether the account is indistinguishable from one that never
// existed, per EIP-161: zero nonce, zero balance, no code.
func (o *stateObject) empty() bool {
	return o.nonce == 0 && o.balance.IsZero() && o.codeHash == types.EmptyCodeHash
}
