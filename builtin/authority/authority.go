// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package authority implements the role registry: which subjects hold which roles, at which version.
package authority

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

// ErrZeroVersion is returned when granting a role at version 0.
var ErrZeroVersion = errors.New("authority: role version must be positive")

// Authority implements the role registry stored in contract storage.
type Authority struct {
	addr  thor.Address
	state *state.State
}

// New create a new instance.
func New(addr thor.Address, state *state.State) *Authority {
	return &Authority{addr, state}
}

func entryKey(subject thor.Address, role thor.Bytes32) thor.Bytes32 {
	return thor.Blake2b(subject.Bytes(), role.Bytes())
}

func headKey(role thor.Bytes32) thor.Bytes32 {
	return thor.Blake2b([]byte("head"), role.Bytes())
}

func tailKey(role thor.Bytes32) thor.Bytes32 {
	return thor.Blake2b([]byte("tail"), role.Bytes())
}

func (a *Authority) getEntry(subject thor.Address, role thor.Bytes32) (*entry, error) {
	var entry entry
	if err := a.state.DecodeStorage(a.addr, entryKey(subject, role), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &entry)
	}); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (a *Authority) setEntry(subject thor.Address, role thor.Bytes32, entry *entry) error {
	return a.state.EncodeStorage(a.addr, entryKey(subject, role), func() ([]byte, error) {
		if entry.IsEmpty() {
			return nil, nil
		}
		return rlp.EncodeToBytes(entry)
	})
}

func (a *Authority) getAddressPtr(key thor.Bytes32) (addr *thor.Address, err error) {
	err = a.state.DecodeStorage(a.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &addr)
	})
	return
}

func (a *Authority) setAddressPtr(key thor.Bytes32, addr *thor.Address) error {
	return a.state.EncodeStorage(a.addr, key, func() ([]byte, error) {
		if addr == nil {
			return nil, nil
		}
		return rlp.EncodeToBytes(addr)
	})
}

// HasRole returns whether subject holds role at version or above.
func (a *Authority) HasRole(subject thor.Address, role thor.Bytes32, version uint64) (bool, error) {
	entry, err := a.getEntry(subject, role)
	if err != nil {
		return false, err
	}
	return entry.Listed && entry.Version >= version, nil
}

// Grant grants role to subject at version. Granting an already held role updates its version.
// It returns true if the subject was newly listed.
func (a *Authority) Grant(subject thor.Address, role thor.Bytes32, version uint64) (bool, error) {
	if version == 0 {
		return false, ErrZeroVersion
	}
	entry, err := a.getEntry(subject, role)
	if err != nil {
		return false, err
	}
	if entry.Listed {
		entry.Version = version
		return false, a.setEntry(subject, role, entry)
	}

	entry.Version = version
	entry.Listed = true

	tailPtr, err := a.getAddressPtr(tailKey(role))
	if err != nil {
		return false, err
	}
	entry.Prev = tailPtr

	if err := a.setAddressPtr(tailKey(role), &subject); err != nil {
		return false, err
	}
	if tailPtr == nil {
		if err := a.setAddressPtr(headKey(role), &subject); err != nil {
			return false, err
		}
	} else {
		tailEntry, err := a.getEntry(*tailPtr, role)
		if err != nil {
			return false, err
		}
		tailEntry.Next = &subject
		if err := a.setEntry(*tailPtr, role, tailEntry); err != nil {
			return false, err
		}
	}

	if err := a.setEntry(subject, role, entry); err != nil {
		return false, err
	}
	return true, nil
}

// Revoke removes role from subject. It returns false if the subject did not hold the role.
func (a *Authority) Revoke(subject thor.Address, role thor.Bytes32) (bool, error) {
	entry, err := a.getEntry(subject, role)
	if err != nil {
		return false, err
	}
	if !entry.Listed {
		return false, nil
	}

	if entry.Prev == nil {
		if err := a.setAddressPtr(headKey(role), entry.Next); err != nil {
			return false, err
		}
	} else {
		prevEntry, err := a.getEntry(*entry.Prev, role)
		if err != nil {
			return false, err
		}
		prevEntry.Next = entry.Next
		if err := a.setEntry(*entry.Prev, role, prevEntry); err != nil {
			return false, err
		}
	}

	if entry.Next == nil {
		if err := a.setAddressPtr(tailKey(role), entry.Prev); err != nil {
			return false, err
		}
	} else {
		nextEntry, err := a.getEntry(*entry.Next, role)
		if err != nil {
			return false, err
		}
		nextEntry.Prev = entry.Prev
		if err := a.setEntry(*entry.Next, role, nextEntry); err != nil {
			return false, err
		}
	}

	entry.Next = nil
	entry.Prev = nil
	entry.Listed = false // unlist
	entry.Version = 0
	if err := a.setEntry(subject, role, entry); err != nil {
		return false, err
	}
	return true, nil
}

// Members returns all subjects holding role, in grant order.
func (a *Authority) Members(role thor.Bytes32) ([]Member, error) {
	ptr, err := a.getAddressPtr(headKey(role))
	if err != nil {
		return nil, err
	}
	var members []Member
	for ptr != nil {
		entry, err := a.getEntry(*ptr, role)
		if err != nil {
			return nil, err
		}
		members = append(members, Member{*ptr, entry.Version})
		ptr = entry.Next
	}
	return members, nil
}
