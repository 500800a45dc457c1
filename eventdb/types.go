// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"math/big"

	"github.com/vechain/stakepool/thor"
)

// Event is a stored pool notification.
type Event struct {
	Seq         uint64 // assigned on write, strictly increasing
	Kind        string
	Participant thor.Address
	Amount      *big.Int
	Timestamp   uint64
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive timestamp range. To is ignored when it is below From.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// Filter selects events. Nil or empty fields match everything.
type Filter struct {
	Kinds       []string
	Participant *thor.Address
	Range       *Range
	AfterSeq    uint64
	Order       Order
	Options     *Options
}
