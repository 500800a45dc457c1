// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"github.com/vechain/stakepool/thor"
)

// GrantRequest grants or revokes a role. Role is a name or a 0x-prefixed 32-byte identifier.
type GrantRequest struct {
	Caller  thor.Address `json:"caller"`
	Subject thor.Address `json:"subject"`
	Role    string       `json:"role"`
	Version uint64       `json:"version,omitempty"`
}

type Changed struct {
	Changed bool `json:"changed"`
}

type HasRole struct {
	HasRole bool `json:"hasRole"`
}

type Member struct {
	Subject thor.Address `json:"subject"`
	Version uint64       `json:"version"`
}
