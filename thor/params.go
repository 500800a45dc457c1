// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/big"
)

// Well-known role identifiers.
var (
	OwnerRole  = Keccak256([]byte("owner"))
	PatronRole = Keccak256([]byte("patron"))
)

// DefaultRoleVersion is the role version requested by the pool when asking the role backend.
const DefaultRoleVersion uint64 = 1

// Fixed-point scale of ratios (18 decimals).
var Ether = big.NewInt(1e18)

// Built-in contract addresses.
var (
	PoolContractAddress      = BytesToAddress([]byte("StakingPool"))
	AuthorityContractAddress = BytesToAddress([]byte("Authority"))
)

// Node defaults.
const (
	DefaultCacheSize      = 512  // MiB given to the main store
	DefaultStateCacheSize = 4096 // entries of committed state kept in memory
	DefaultLogsLimit      = 1000 // max notifications returned by one query
)

// RoleID returns the identifier of a named role.
// A 0x-prefixed 32-byte hex string is taken as a literal identifier.
func RoleID(name string) Bytes32 {
	if id, err := ParseBytes32(name); err == nil {
		return id
	}
	return Keccak256([]byte(name))
}
