package coverage

import (
	"github.com/bnb-chain/evmcov/core/vm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/lru"
	"github.com/ethereum/go-ethereum/crypto"
)

const defaultScanCacheCap = 256

type scanKey struct {
	codeHash common.Hash
	set      *vm.InstructionSet
}

// ScanCache keeps the instruction starts of recently scanned code, keyed by
// code hash and instruction set. It is safe for concurrent use.
type ScanCache struct {
	instrs *lru.Cache[scanKey, *vm.Instructions]
}

// NewScanCache creates a cache holding at most capacity entries. A
// non-positive capacity selects the default.
func NewScanCache(capacity int) *ScanCache {
	if capacity <= 0 {
		capacity = defaultScanCacheCap
	}
	return &ScanCache{instrs: lru.NewCache[scanKey, *vm.Instructions](capacity)}
}

// Scan returns the instruction starts of code, scanning it only if it is not
// cached yet. The returned set must not be modified.
func (c *ScanCache) Scan(code []byte, set *vm.InstructionSet) (*vm.Instructions, common.Hash) {
	if set == nil {
		set = &vm.LegacyInstructionSet
	}
	key := scanKey{codeHash: crypto.Keccak256Hash(code), set: set}
	if instrs, ok := c.instrs.Get(key); ok {
		scanCacheHitCounter.Inc(1)
		return instrs, key.codeHash
	}
	scanCacheMissCounter.Inc(1)
	instrs := set.Scan(code)
	c.instrs.Add(key, instrs)
	return instrs, key.codeHash
}

// Len returns the number of cached scans.
func (c *ScanCache) Len() int {
	return c.instrs.Len()
}
