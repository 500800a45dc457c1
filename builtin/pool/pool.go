// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool implements the time-bounded staking pool ledger.
//
// Participants lock funds inside the window [Start, End]. Balances compound every second
// at the pool ratio, yield being paid out of a reserve funded at initialization.
// All operations take the current time explicitly and either fully apply or have no effect.
package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin/accrual"
	"github.com/vechain/stakepool/builtin/solidity"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

var (
	logger = log.WithContext("pkg", "pool")

	slotRecord         = thor.BytesToBytes32([]byte("pool-record"))
	slotTotalStaked    = thor.BytesToBytes32([]byte("total-staked"))
	slotRewardsReserve = thor.BytesToBytes32([]byte("rewards-reserve"))
	slotRewardsPaid    = thor.BytesToBytes32([]byte("rewards-paid"))
	slotAccounts       = thor.BytesToBytes32([]byte("accounts"))
)

// Authorizer answers whether a subject holds a role.
type Authorizer interface {
	HasRole(subject thor.Address, role thor.Bytes32, version uint64) (bool, error)
}

// Pool implements the staking pool contract.
type Pool struct {
	addr        thor.Address
	state       *state.State
	auth        Authorizer
	emit        Emitter
	roleVersion uint64

	record         *solidity.Raw[*record]
	totalStaked    *solidity.Uint256
	rewardsReserve *solidity.Uint256
	rewardsPaid    *solidity.Uint256
	accounts       *solidity.Mapping[thor.Address, *account]
}

// New create a new instance. emit may be nil.
func New(addr thor.Address, state *state.State, auth Authorizer, emit Emitter) *Pool {
	sctx := solidity.NewContext(addr, state)
	if emit == nil {
		emit = func(*Event) {}
	}
	return &Pool{
		addr:        addr,
		state:       state,
		auth:        auth,
		emit:        emit,
		roleVersion: thor.DefaultRoleVersion,

		record:         solidity.NewRaw[*record](sctx, slotRecord),
		totalStaked:    solidity.NewUint256(sctx, slotTotalStaked),
		rewardsReserve: solidity.NewUint256(sctx, slotRewardsReserve),
		rewardsPaid:    solidity.NewUint256(sctx, slotRewardsPaid),
		accounts:       solidity.NewMapping[thor.Address, *account](sctx, slotAccounts),
	}
}

// WithRoleVersion sets the role version requested from the authorizer.
func (p *Pool) WithRoleVersion(version uint64) *Pool {
	p.roleVersion = version
	return p
}

// Address returns the address custodying pool funds.
func (p *Pool) Address() thor.Address {
	return p.addr
}

func (p *Pool) hasRole(subject thor.Address, role thor.Bytes32) bool {
	ok, err := p.auth.HasRole(subject, role, p.roleVersion)
	if err != nil {
		logger.Warn("role check failed", "subject", subject, "role", role, "error", err)
		return false
	}
	return ok
}

func (p *Pool) hasAnyRole(subject thor.Address, roles []thor.Bytes32) bool {
	for _, role := range roles {
		if p.hasRole(subject, role) {
			return true
		}
	}
	return false
}

// compounded returns the balance of acc at now.
func compounded(rec *record, acc *account, now uint64) (*big.Int, error) {
	principal := orZero(acc.Principal)
	if !rec.Initialized {
		return new(big.Int).Set(principal), nil
	}
	elapsed := accrual.Elapsed(acc.LastUpdate, now, rec.Start, rec.End)
	bal, err := accrual.Accrue(principal, rec.ratio(), elapsed)
	if err != nil {
		if errors.Is(err, accrual.ErrOverflow) {
			return nil, ErrArithmeticOverflow
		}
		return nil, err
	}
	return bal, nil
}

// transfer moves funds, mapping a short balance to ErrInsufficientFunds.
func (p *Pool) transfer(from, to thor.Address, amount *big.Int) error {
	if err := p.state.Transfer(from, to, amount); err != nil {
		if errors.Is(err, state.ErrInsufficientBalance) {
			return ErrInsufficientFunds
		}
		return err
	}
	return nil
}

// Initialize configures the pool and funds its rewards reserve with value, transferred from caller.
func (p *Pool) Initialize(caller thor.Address, params *Params, value *big.Int, now uint64) error {
	logger.Debug("initializing pool", "caller", caller, "start", params.Start, "end", params.End, "ratio", params.Ratio, "value", value)

	if err := p.initialize(caller, params, value, now); err != nil {
		logger.Debug("initialize failed", "caller", caller, "error", err)
		return err
	}

	logger.Info("pool initialized", "initializer", caller, "start", params.Start, "end", params.End, "reserve", value)
	return nil
}

func (p *Pool) initialize(caller thor.Address, params *Params, value *big.Int, now uint64) error {
	value = orZero(value)
	if !p.hasRole(caller, thor.OwnerRole) {
		return ErrNotAuthorized
	}
	rec, err := p.record.Get()
	if err != nil {
		return err
	}
	if rec.Initialized {
		return ErrAlreadyInitialized
	}
	if rec.Terminated {
		return ErrPoolTerminated
	}
	if params.End <= params.Start {
		return ErrInvalidWindow
	}
	if len(params.AllowedRoles) == 0 {
		return ErrNoAllowedRoles
	}
	ratio, hardCap, limit := orZero(params.Ratio), orZero(params.HardCap), orZero(params.ContributionLimit)
	if ratio.Sign() < 0 {
		return ErrInvalidRatio
	}
	if hardCap.Sign() < 0 || limit.Sign() < 0 || value.Sign() < 0 {
		return ErrInvalidAmount
	}
	if limit.Cmp(hardCap) > 0 {
		return ErrContributionLimitExceedsHardCap
	}
	required, err := RequiredRewards(params)
	if err != nil {
		return err
	}
	if value.Cmp(required) < 0 {
		return ErrInsufficientRewards
	}

	if err := p.transfer(caller, p.addr, value); err != nil {
		return err
	}

	roles := make([]thor.Bytes32, len(params.AllowedRoles))
	copy(roles, params.AllowedRoles)
	if err := p.record.Set(&record{
		Start:             params.Start,
		End:               params.End,
		Ratio:             new(big.Int).Set(ratio),
		HardCap:           new(big.Int).Set(hardCap),
		ContributionLimit: new(big.Int).Set(limit),
		AllowedRoles:      roles,
		Initializer:       caller,
		Initialized:       true,
	}); err != nil {
		return err
	}
	p.rewardsReserve.Set(value)

	p.emit(&Event{Kind: EventPoolInitialized, Participant: caller, Amount: required, Timestamp: now})
	return nil
}

// Stake deposits amount from caller into the pool.
func (p *Pool) Stake(caller thor.Address, amount *big.Int, now uint64) error {
	logger.Debug("staking", "caller", caller, "amount", amount)

	if err := p.stake(caller, amount, now); err != nil {
		logger.Debug("stake failed", "caller", caller, "error", err)
		return err
	}
	return nil
}

func (p *Pool) stake(caller thor.Address, amount *big.Int, now uint64) error {
	rec, err := p.record.Get()
	if err != nil {
		return err
	}
	if !rec.Initialized {
		return ErrPoolNotInitialized
	}
	if rec.Terminated {
		return ErrPoolTerminated
	}
	if now < rec.Start {
		return ErrPoolNotStarted
	}
	if now > rec.End {
		return ErrPoolExpired
	}
	if !p.hasAnyRole(caller, rec.AllowedRoles) {
		return ErrUnauthorized
	}
	amount = orZero(amount)
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	acc, err := p.accounts.Get(caller)
	if err != nil {
		return err
	}
	bal, err := compounded(rec, acc, now)
	if err != nil {
		return err
	}
	principal := bal.Add(bal, amount)
	if principal.Cmp(orZero(rec.ContributionLimit)) > 0 {
		return ErrContributionLimitExceeded
	}
	total, err := p.totalStaked.Get()
	if err != nil {
		return err
	}
	if total.Add(total, amount).Cmp(orZero(rec.HardCap)) > 0 {
		return ErrPoolFull
	}

	checkpoint := p.state.NewCheckpoint()
	acc.Principal = principal
	acc.Deposit = new(big.Int).Add(orZero(acc.Deposit), amount)
	acc.LastUpdate = now
	if err := p.accounts.Set(caller, acc); err != nil {
		return err
	}
	p.totalStaked.Set(total)

	if err := p.transfer(caller, p.addr, amount); err != nil {
		p.state.RevertTo(checkpoint)
		return err
	}

	p.emit(&Event{Kind: EventStakeAdded, Participant: caller, Amount: new(big.Int).Set(amount), Timestamp: now})
	return nil
}

// Unstake withdraws amount of caller's compounded balance, paid from deposits first, then rewards.
func (p *Pool) Unstake(caller thor.Address, amount *big.Int, now uint64) error {
	logger.Debug("unstaking", "caller", caller, "amount", amount)

	if _, err := p.unstake(caller, orZero(amount), now); err != nil {
		logger.Debug("unstake failed", "caller", caller, "error", err)
		return err
	}
	return nil
}

// UnstakeAll withdraws caller's whole compounded balance. It returns the withdrawn amount.
func (p *Pool) UnstakeAll(caller thor.Address, now uint64) (*big.Int, error) {
	logger.Debug("unstaking all", "caller", caller)

	withdrawn, err := p.unstake(caller, nil, now)
	if err != nil {
		logger.Debug("unstake all failed", "caller", caller, "error", err)
		return nil, err
	}
	return withdrawn, nil
}

// unstake withdraws amount, or everything when amount is nil.
func (p *Pool) unstake(caller thor.Address, amount *big.Int, now uint64) (*big.Int, error) {
	rec, err := p.record.Get()
	if err != nil {
		return nil, err
	}
	acc, err := p.accounts.Get(caller)
	if err != nil {
		return nil, err
	}
	bal, err := compounded(rec, acc, now)
	if err != nil {
		return nil, err
	}
	if bal.Sign() == 0 {
		return nil, ErrNoFundsToUnstake
	}
	if amount == nil {
		amount = new(big.Int).Set(bal)
	}
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount.Cmp(bal) > 0 {
		return nil, ErrInsufficientBalance
	}

	deposit := orZero(acc.Deposit)
	fromDeposit := new(big.Int).Set(amount)
	if fromDeposit.Cmp(deposit) > 0 {
		fromDeposit.Set(deposit)
	}
	fromRewards := new(big.Int).Sub(amount, fromDeposit)

	reserve, err := p.rewardsReserve.Get()
	if err != nil {
		return nil, err
	}
	if fromRewards.Cmp(reserve) > 0 {
		return nil, ErrRewardsExhausted
	}

	checkpoint := p.state.NewCheckpoint()
	acc.Principal = bal.Sub(bal, amount)
	acc.Deposit = new(big.Int).Sub(deposit, fromDeposit)
	acc.LastUpdate = now
	if acc.isEmpty() {
		p.accounts.Delete(caller)
	} else if err := p.accounts.Set(caller, acc); err != nil {
		return nil, err
	}
	if err := p.totalStaked.Sub(fromDeposit); err != nil {
		return nil, errors.Wrap(err, "total staked")
	}
	p.rewardsReserve.Set(reserve.Sub(reserve, fromRewards))
	if err := p.rewardsPaid.Add(fromRewards); err != nil {
		return nil, err
	}

	if err := p.transfer(p.addr, caller, amount); err != nil {
		p.state.RevertTo(checkpoint)
		return nil, err
	}

	p.emit(&Event{Kind: EventStakeWithdrawn, Participant: caller, Amount: new(big.Int).Set(amount), Timestamp: now})
	return amount, nil
}

// Terminate cancels the pool before it starts and returns the reserve to the initializer.
// It returns the returned reserve.
func (p *Pool) Terminate(caller thor.Address, now uint64) (*big.Int, error) {
	logger.Debug("terminating pool", "caller", caller)

	refund, err := p.terminate(caller, now)
	if err != nil {
		logger.Debug("terminate failed", "caller", caller, "error", err)
		return nil, err
	}

	logger.Info("pool terminated", "caller", caller, "refund", refund)
	return refund, nil
}

func (p *Pool) terminate(caller thor.Address, now uint64) (*big.Int, error) {
	if !p.hasRole(caller, thor.OwnerRole) {
		return nil, ErrNotAuthorized
	}
	rec, err := p.record.Get()
	if err != nil {
		return nil, err
	}
	if rec.Terminated {
		return nil, ErrPoolTerminated
	}
	if rec.Initialized && now >= rec.Start {
		return nil, ErrPoolStarted
	}

	reserve, err := p.rewardsReserve.Get()
	if err != nil {
		return nil, err
	}

	checkpoint := p.state.NewCheckpoint()
	rec.Terminated = true
	if err := p.record.Set(rec); err != nil {
		return nil, err
	}
	p.rewardsReserve.Set(new(big.Int))

	if err := p.transfer(p.addr, rec.Initializer, reserve); err != nil {
		p.state.RevertTo(checkpoint)
		return nil, err
	}

	p.emit(&Event{Kind: EventPoolTerminated, Participant: rec.Initializer, Amount: new(big.Int).Set(reserve), Timestamp: now})
	return reserve, nil
}
