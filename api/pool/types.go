// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/thor"
)

// Params of a pool. Roles are names or 0x-prefixed 32-byte identifiers.
type Params struct {
	Start             uint64                `json:"start"`
	End               uint64                `json:"end"`
	Ratio             *math.HexOrDecimal256 `json:"ratio"`
	HardCap           *math.HexOrDecimal256 `json:"hardCap"`
	ContributionLimit *math.HexOrDecimal256 `json:"contributionLimit"`
	AllowedRoles      []string              `json:"allowedRoles"`
}

type InitializeRequest struct {
	Caller thor.Address          `json:"caller"`
	Params Params                `json:"params"`
	Value  *math.HexOrDecimal256 `json:"value"`
}

type AmountRequest struct {
	Caller thor.Address          `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type CallerRequest struct {
	Caller thor.Address `json:"caller"`
}

type Amount struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Info for marshal pool info.
type Info struct {
	Status            string                `json:"status"`
	Timestamp         uint64                `json:"timestamp"`
	Start             uint64                `json:"start"`
	End               uint64                `json:"end"`
	Ratio             *math.HexOrDecimal256 `json:"ratio"`
	HardCap           *math.HexOrDecimal256 `json:"hardCap"`
	ContributionLimit *math.HexOrDecimal256 `json:"contributionLimit"`
	AllowedRoles      []thor.Bytes32        `json:"allowedRoles"`
	Initializer       thor.Address          `json:"initializer"`
	Initialized       bool                  `json:"initialized"`
	Terminated        bool                  `json:"terminated"`
	TotalStaked       *math.HexOrDecimal256 `json:"totalStaked"`
	RewardsReserve    *math.HexOrDecimal256 `json:"rewardsReserve"`
	RewardsPaid       *math.HexOrDecimal256 `json:"rewardsPaid"`
	Balance           *math.HexOrDecimal256 `json:"balance"`
}

// Participant for marshal a participant account.
type Participant struct {
	Address    thor.Address          `json:"address"`
	Principal  *math.HexOrDecimal256 `json:"principal"`
	Deposit    *math.HexOrDecimal256 `json:"deposit"`
	Compounded *math.HexOrDecimal256 `json:"compoundedBalance"`
	LastUpdate uint64                `json:"lastUpdate"`
}

func toHex(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

// toBig returns a copy of v, zero when v is nil.
func toBig(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(v))
}

func convertParams(p *Params) (*pool.Params, error) {
	if p.Ratio == nil {
		return nil, errors.New("ratio: required")
	}
	if p.HardCap == nil {
		return nil, errors.New("hardCap: required")
	}
	if p.ContributionLimit == nil {
		return nil, errors.New("contributionLimit: required")
	}
	roles := make([]thor.Bytes32, 0, len(p.AllowedRoles))
	for i, name := range p.AllowedRoles {
		if name == "" {
			return nil, errors.Errorf("allowedRoles[%d]: empty", i)
		}
		roles = append(roles, thor.RoleID(name))
	}
	return &pool.Params{
		Start:             p.Start,
		End:               p.End,
		Ratio:             toBig(p.Ratio),
		HardCap:           toBig(p.HardCap),
		ContributionLimit: toBig(p.ContributionLimit),
		AllowedRoles:      roles,
	}, nil
}

func convertInfo(info *pool.Info, now uint64) *Info {
	roles := info.AllowedRoles
	if roles == nil {
		roles = []thor.Bytes32{}
	}
	return &Info{
		Status:            string(info.Status),
		Timestamp:         now,
		Start:             info.Start,
		End:               info.End,
		Ratio:             toHex(info.Ratio),
		HardCap:           toHex(info.HardCap),
		ContributionLimit: toHex(info.ContributionLimit),
		AllowedRoles:      roles,
		Initializer:       info.Initializer,
		Initialized:       info.Initialized,
		Terminated:        info.Terminated,
		TotalStaked:       toHex(info.TotalStaked),
		RewardsReserve:    toHex(info.RewardsReserve),
		RewardsPaid:       toHex(info.RewardsPaid),
		Balance:           toHex(info.Balance),
	}
}

func convertAccount(addr thor.Address, acc *pool.Account) *Participant {
	return &Participant{
		Address:    addr,
		Principal:  toHex(acc.Principal),
		Deposit:    toHex(acc.Deposit),
		Compounded: toHex(acc.Compounded),
		LastUpdate: acc.LastUpdate,
	}
}
