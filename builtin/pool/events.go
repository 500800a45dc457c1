// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakepool/thor"
)

// EventKind names a pool notification.
type EventKind string

const (
	EventPoolInitialized EventKind = "PoolInitialized"
	EventStakeAdded      EventKind = "StakeAdded"
	EventStakeWithdrawn  EventKind = "StakeWithdrawn"
	EventPoolTerminated  EventKind = "PoolTerminated"
)

// Event is a notification emitted by a successful pool operation.
//
//	PoolInitialized: Participant is the initializer, Amount the rewards required for the window.
//	StakeAdded:      Participant is the staker, Amount the deposit.
//	StakeWithdrawn:  Participant is the staker, Amount the withdrawn value.
//	PoolTerminated:  Participant is the initializer, Amount the returned reserve.
type Event struct {
	Kind        EventKind
	Participant thor.Address
	Amount      *big.Int
	Timestamp   uint64
}

// Emitter receives events of successful operations.
type Emitter func(ev *Event)
