// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin/accrual"
	"github.com/vechain/stakepool/thor"
)

//
// Getters - no state change
//

// Balance returns the principal and the compounded balance of addr at now.
func (p *Pool) Balance(addr thor.Address, now uint64) (principal *big.Int, compoundedBalance *big.Int, err error) {
	acc, err := p.Account(addr, now)
	if err != nil {
		return nil, nil, err
	}
	return acc.Principal, acc.Compounded, nil
}

// Account returns the position of addr at now.
func (p *Pool) Account(addr thor.Address, now uint64) (*Account, error) {
	rec, err := p.record.Get()
	if err != nil {
		return nil, err
	}
	acc, err := p.accounts.Get(addr)
	if err != nil {
		return nil, err
	}
	bal, err := compounded(rec, acc, now)
	if err != nil {
		return nil, err
	}
	return &Account{
		Principal:  new(big.Int).Set(orZero(acc.Principal)),
		Deposit:    new(big.Int).Set(orZero(acc.Deposit)),
		LastUpdate: acc.LastUpdate,
		Compounded: bal,
	}, nil
}

// Info returns the pool snapshot at now.
func (p *Pool) Info(now uint64) (*Info, error) {
	rec, err := p.record.Get()
	if err != nil {
		return nil, err
	}
	total, err := p.totalStaked.Get()
	if err != nil {
		return nil, err
	}
	reserve, err := p.rewardsReserve.Get()
	if err != nil {
		return nil, err
	}
	paid, err := p.rewardsPaid.Get()
	if err != nil {
		return nil, err
	}
	balance, err := p.state.GetBalance(p.addr)
	if err != nil {
		return nil, err
	}
	return &Info{
		Params: Params{
			Start:             rec.Start,
			End:               rec.End,
			Ratio:             new(big.Int).Set(rec.ratio()),
			HardCap:           new(big.Int).Set(orZero(rec.HardCap)),
			ContributionLimit: new(big.Int).Set(orZero(rec.ContributionLimit)),
			AllowedRoles:      rec.AllowedRoles,
		},
		Initializer:    rec.Initializer,
		Initialized:    rec.Initialized,
		Terminated:     rec.Terminated,
		Status:         rec.status(now),
		TotalStaked:    total,
		RewardsReserve: reserve,
		RewardsPaid:    paid,
		Balance:        balance,
	}, nil
}

// RequiredRewards returns the reserve a pool with params must be funded with:
// the yield of a full hard cap held for the whole window.
func RequiredRewards(params *Params) (*big.Int, error) {
	if params.End <= params.Start {
		return nil, ErrInvalidWindow
	}
	ratio := orZero(params.Ratio)
	if ratio.Sign() < 0 {
		return nil, ErrInvalidRatio
	}
	if orZero(params.HardCap).Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	required, err := accrual.RequiredRewards(orZero(params.HardCap), ratio, params.End-params.Start)
	if err != nil {
		if errors.Is(err, accrual.ErrOverflow) {
			return nil, ErrArithmeticOverflow
		}
		return nil, err
	}
	return required, nil
}
