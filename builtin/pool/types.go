// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakepool/thor"
)

// Status is the lifecycle phase of the pool at a given time.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusPending       Status = "pending"
	StatusActive        Status = "active"
	StatusExpired       Status = "expired"
	StatusTerminated    Status = "terminated"
)

// Params are the parameters a pool is initialized with.
type Params struct {
	Start             uint64 // first second of the window, inclusive
	End               uint64 // last second of the window, inclusive
	Ratio             *big.Int
	HardCap           *big.Int
	ContributionLimit *big.Int
	AllowedRoles      []thor.Bytes32
}

// record is the stored pool singleton.
type record struct {
	Start             uint64
	End               uint64
	Ratio             *big.Int
	HardCap           *big.Int
	ContributionLimit *big.Int
	AllowedRoles      []thor.Bytes32
	Initializer       thor.Address
	Initialized       bool
	Terminated        bool
}

func (r *record) ratio() *big.Int {
	return orZero(r.Ratio)
}

func (r *record) status(now uint64) Status {
	switch {
	case r.Terminated:
		return StatusTerminated
	case !r.Initialized:
		return StatusUninitialized
	case now < r.Start:
		return StatusPending
	case now > r.End:
		return StatusExpired
	default:
		return StatusActive
	}
}

// account is the stored state of a participant.
type account struct {
	Principal  *big.Int
	Deposit    *big.Int // part of principal counted in total staked
	LastUpdate uint64
}

func (a *account) isEmpty() bool {
	return orZero(a.Principal).Sign() == 0 && orZero(a.Deposit).Sign() == 0
}

// Account is a participant's position at a given time.
type Account struct {
	Principal  *big.Int
	Deposit    *big.Int
	LastUpdate uint64
	Compounded *big.Int
}

// Info is a snapshot of the pool at a given time.
type Info struct {
	Params
	Initializer    thor.Address
	Initialized    bool
	Terminated     bool
	Status         Status
	TotalStaked    *big.Int
	RewardsReserve *big.Int
	RewardsPaid    *big.Int
	Balance        *big.Int // funds custodied by the pool
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
