// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

type change struct {
	key   any
	value any
}

// Stage abstracts the changes of a state, committed as a whole.
type Stage struct {
	stater  *Stater
	changes []change
}

// Len returns the count of changed entries.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Commit writes all changes into the store in one atomic batch, then refreshes the cache.
func (s *Stage) Commit() error {
	bulk := s.stater.store.Bulk()
	for _, c := range s.changes {
		switch key := c.key.(type) {
		case balanceKey:
			bal := c.value.(*big.Int)
			k := balanceBucket.Key(key[:])
			if bal.Sign() == 0 {
				if err := bulk.Delete(k); err != nil {
					return &Error{err}
				}
				continue
			}
			data, err := rlp.EncodeToBytes(bal)
			if err != nil {
				return &Error{errors.Wrap(err, "encode balance")}
			}
			if err := bulk.Put(k, data); err != nil {
				return &Error{err}
			}
		case storageKey:
			raw := c.value.(rlp.RawValue)
			k := storageBucket.Key(append(key.addr.Bytes(), key.key.Bytes()...))
			if len(raw) == 0 {
				if err := bulk.Delete(k); err != nil {
					return &Error{err}
				}
				continue
			}
			if err := bulk.Put(k, raw); err != nil {
				return &Error{err}
			}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}

	for _, c := range s.changes {
		s.stater.cache.Add(c.key, c.value)
	}
	return nil
}
