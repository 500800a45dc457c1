// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"github.com/vechain/stakepool/thor"
)

// entry is a role grant, linked into the member list of its role.
type entry struct {
	Version uint64
	Listed  bool
	Prev    *thor.Address `rlp:"nil"`
	Next    *thor.Address `rlp:"nil"`
}

// IsEmpty returns whether the entry can be treated as empty.
func (e *entry) IsEmpty() bool {
	return e.Version == 0 &&
		!e.Listed &&
		e.Prev == nil &&
		e.Next == nil
}

// Member is a subject holding a role.
type Member struct {
	Subject thor.Address
	Version uint64
}
