// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/kv"
)

var (
	balanceBucket = kv.Bucket("b")
	storageBucket = kv.Bucket("s")
)

// Stater is the state creator. It owns the committed data and a cache of it.
type Stater struct {
	store kv.Store
	cache *cache.LRU
}

// NewStater create a new stater.
func NewStater(store kv.Store, cacheSize int) *Stater {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	c, _ := cache.NewLRU(cacheSize)
	return &Stater{store: store, cache: c}
}

// NewState create a new state over the committed data.
func (s *Stater) NewState() *State {
	return newState(s)
}

func (s *Stater) load(key any) (any, bool, error) {
	v, err := s.cache.GetOrLoad(key, s.loadFromStore)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *Stater) loadFromStore(key any) (any, error) {
	switch k := key.(type) {
	case balanceKey:
		data, err := kv.GetOrNil(s.store, balanceBucket.Key(k[:]))
		if err != nil {
			return nil, errors.Wrap(err, "load balance")
		}
		bal := new(big.Int)
		if len(data) > 0 {
			if err := rlp.DecodeBytes(data, bal); err != nil {
				return nil, errors.Wrap(err, "decode balance")
			}
		}
		return bal, nil
	case storageKey:
		data, err := kv.GetOrNil(s.store, storageBucket.Key(append(k.addr.Bytes(), k.key.Bytes()...)))
		if err != nil {
			return nil, errors.Wrap(err, "load storage")
		}
		return rlp.RawValue(data), nil
	}
	return nil, errors.Errorf("unexpected key type %T", key)
}
