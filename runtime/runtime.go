// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime hosts the pool ledger: it serializes operations, commits their state
// changes atomically and records the notifications they emit.
package runtime

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin/authority"
	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/co"
	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

var logger = log.WithContext("pkg", "runtime")

// ErrInvalidVersion is the rejection of a role grant at version 0.
var ErrInvalidVersion = reverts.New("InvalidVersion", reverts.KindValidation, "role version must be positive")

// AuthorizerFunc builds the role backend used by the pool for a state.
type AuthorizerFunc func(st *state.State) pool.Authorizer

// Config of a Runtime. Zero fields take defaults.
type Config struct {
	PoolAddress      thor.Address
	AuthorityAddress thor.Address
	RoleVersion      uint64
	// Authorizer overrides the local role registry, e.g. with a remote claims client.
	Authorizer AuthorizerFunc
	// Clock returns the current unix time in seconds.
	Clock func() uint64
}

// Runtime executes pool operations one at a time.
type Runtime struct {
	mu         sync.RWMutex
	stater     *state.Stater
	events     *eventdb.EventDB
	poolAddr   thor.Address
	authAddr   thor.Address
	version    uint64
	authorizer AuthorizerFunc
	clock      func() uint64
	signal     co.Signal
}

// New creates a runtime over committed state. events may be nil.
func New(stater *state.Stater, events *eventdb.EventDB, cfg Config) *Runtime {
	rt := &Runtime{
		stater:     stater,
		events:     events,
		poolAddr:   cfg.PoolAddress,
		authAddr:   cfg.AuthorityAddress,
		version:    cfg.RoleVersion,
		authorizer: cfg.Authorizer,
		clock:      cfg.Clock,
	}
	if rt.poolAddr.IsZero() {
		rt.poolAddr = thor.PoolContractAddress
	}
	if rt.authAddr.IsZero() {
		rt.authAddr = thor.AuthorityContractAddress
	}
	if rt.version == 0 {
		rt.version = thor.DefaultRoleVersion
	}
	if rt.clock == nil {
		rt.clock = func() uint64 { return uint64(time.Now().Unix()) }
	}
	if rt.authorizer == nil {
		rt.authorizer = func(st *state.State) pool.Authorizer {
			return authority.New(rt.authAddr, st)
		}
	}
	return rt
}

// Env is the view an operation runs against.
type Env struct {
	State     *state.State
	Pool      *pool.Pool
	Authority *authority.Authority
	Now       uint64
}

func (rt *Runtime) newEnv(st *state.State, emit pool.Emitter) *Env {
	return &Env{
		State:     st,
		Pool:      pool.New(rt.poolAddr, st, rt.authorizer(st), emit).WithRoleVersion(rt.version),
		Authority: authority.New(rt.authAddr, st),
		Now:       rt.clock(),
	}
}

// Now returns the current time of the runtime clock.
func (rt *Runtime) Now() uint64 {
	return rt.clock()
}

// PoolAddress returns the address custodying pool funds.
func (rt *Runtime) PoolAddress() thor.Address {
	return rt.poolAddr
}

// EventDB returns the notification log, nil if not configured.
func (rt *Runtime) EventDB() *eventdb.EventDB {
	return rt.events
}

// NewWaiter returns a waiter woken after every commit that recorded notifications.
func (rt *Runtime) NewWaiter() *co.Waiter {
	return rt.signal.NewWaiter()
}

// execute runs fn against a fresh state and commits it when fn succeeds.
func (rt *Runtime) execute(op string, fn func(env *Env) error) (err error) {
	startTime := time.Now()
	defer func() {
		result := "success"
		if err != nil {
			result = "failure"
			if reverts.IsRevertErr(err) {
				result = "reverted"
			}
		}
		metricOperations().AddWithLabel(1, map[string]string{"op": op, "result": result})
		metricOpDuration().ObserveWithLabels(time.Since(startTime).Milliseconds(), map[string]string{"op": op})
	}()

	rt.mu.Lock()
	defer rt.mu.Unlock()

	var emitted []*pool.Event
	env := rt.newEnv(rt.stater.NewState(), func(ev *pool.Event) {
		emitted = append(emitted, ev)
	})

	if err := fn(env); err != nil {
		if rev, ok := reverts.AsRevert(err); ok {
			logger.Debug("operation reverted", "op", op, "revert", rev.Name())
		} else {
			logger.Error("operation failed", "op", op, "err", err)
		}
		return err
	}

	if err := env.State.Stage().Commit(); err != nil {
		logger.Error("failed to commit state", "op", op, "err", err)
		return errors.Wrap(err, "commit state")
	}

	rt.afterCommit(env, emitted)
	return nil
}

func (rt *Runtime) afterCommit(env *Env, emitted []*pool.Event) {
	if info, err := env.Pool.Info(env.Now); err == nil {
		metricPoolBalance().SetWithLabel(toEther(info.TotalStaked), map[string]string{"kind": "staked"})
		metricPoolBalance().SetWithLabel(toEther(info.RewardsReserve), map[string]string{"kind": "reserve"})
	}

	if len(emitted) == 0 {
		return
	}
	if rt.events != nil {
		records := make([]*eventdb.Event, 0, len(emitted))
		for _, ev := range emitted {
			records = append(records, &eventdb.Event{
				Kind:        string(ev.Kind),
				Participant: ev.Participant,
				Amount:      ev.Amount,
				Timestamp:   ev.Timestamp,
			})
		}
		// state is already committed, a lost notification does not undo the operation
		if err := rt.events.Write(records); err != nil {
			metricEventWrites().AddWithLabel(1, map[string]string{"result": "failure"})
			logger.Error("failed to write events", "count", len(records), "err", err)
		} else {
			metricEventWrites().AddWithLabel(1, map[string]string{"result": "success"})
		}
	}
	rt.signal.Broadcast()
}

// view runs fn against a fresh state over committed data. Writes made by fn are dropped.
func (rt *Runtime) view(fn func(env *Env) error) error {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	return fn(rt.newEnv(rt.stater.NewState(), nil))
}

// Initialize configures the pool, funding the reserve with value from caller.
func (rt *Runtime) Initialize(caller thor.Address, params *pool.Params, value *big.Int) error {
	return rt.execute("initialize", func(env *Env) error {
		return env.Pool.Initialize(caller, params, value, env.Now)
	})
}

// Stake deposits amount from caller.
func (rt *Runtime) Stake(caller thor.Address, amount *big.Int) error {
	return rt.execute("stake", func(env *Env) error {
		return env.Pool.Stake(caller, amount, env.Now)
	})
}

// Unstake withdraws amount of the compounded balance of caller.
func (rt *Runtime) Unstake(caller thor.Address, amount *big.Int) error {
	return rt.execute("unstake", func(env *Env) error {
		return env.Pool.Unstake(caller, amount, env.Now)
	})
}

// UnstakeAll withdraws the whole compounded balance of caller and returns it.
func (rt *Runtime) UnstakeAll(caller thor.Address) (amount *big.Int, err error) {
	err = rt.execute("unstake_all", func(env *Env) error {
		amount, err = env.Pool.UnstakeAll(caller, env.Now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// Terminate cancels the pool before it starts and returns the refunded reserve.
func (rt *Runtime) Terminate(caller thor.Address) (refund *big.Int, err error) {
	err = rt.execute("terminate", func(env *Env) error {
		refund, err = env.Pool.Terminate(caller, env.Now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return refund, nil
}

func (rt *Runtime) requireOwner(env *Env, caller thor.Address) error {
	ok, err := rt.authorizer(env.State).HasRole(caller, thor.OwnerRole, rt.version)
	if err != nil {
		logger.Warn("role check failed", "subject", caller, "err", err)
		return pool.ErrNotAuthorized
	}
	if !ok {
		return pool.ErrNotAuthorized
	}
	return nil
}

// Grant gives role to subject in the local registry. Only owners may grant.
func (rt *Runtime) Grant(caller, subject thor.Address, role thor.Bytes32, version uint64) (changed bool, err error) {
	err = rt.execute("grant", func(env *Env) error {
		if err := rt.requireOwner(env, caller); err != nil {
			return err
		}
		changed, err = env.Authority.Grant(subject, role, version)
		if errors.Is(err, authority.ErrZeroVersion) {
			return ErrInvalidVersion
		}
		return err
	})
	return
}

// Revoke removes role from subject in the local registry. Only owners may revoke.
func (rt *Runtime) Revoke(caller, subject thor.Address, role thor.Bytes32) (changed bool, err error) {
	err = rt.execute("revoke", func(env *Env) error {
		if err := rt.requireOwner(env, caller); err != nil {
			return err
		}
		changed, err = env.Authority.Revoke(subject, role)
		return err
	})
	return
}

// PoolInfo returns the pool state at the current time, along with that time.
func (rt *Runtime) PoolInfo() (info *pool.Info, now uint64, err error) {
	err = rt.view(func(env *Env) error {
		now = env.Now
		info, err = env.Pool.Info(now)
		return err
	})
	return
}

// Account returns the participant account of addr at the current time.
func (rt *Runtime) Account(addr thor.Address) (acc *pool.Account, err error) {
	err = rt.view(func(env *Env) error {
		acc, err = env.Pool.Account(addr, env.Now)
		return err
	})
	return
}

// LedgerBalance returns the funds held by addr.
func (rt *Runtime) LedgerBalance(addr thor.Address) (balance *big.Int, err error) {
	err = rt.view(func(env *Env) error {
		balance, err = env.State.GetBalance(addr)
		return err
	})
	return
}

// HasRole asks the configured role backend.
func (rt *Runtime) HasRole(subject thor.Address, role thor.Bytes32, version uint64) (ok bool, err error) {
	err = rt.view(func(env *Env) error {
		ok, err = rt.authorizer(env.State).HasRole(subject, role, version)
		return err
	})
	return
}

// Members lists the holders of role in the local registry.
func (rt *Runtime) Members(role thor.Bytes32) (members []authority.Member, err error) {
	err = rt.view(func(env *Env) error {
		members, err = env.Authority.Members(role)
		return err
	})
	return
}

// RequiredRewards returns the reserve Initialize would demand for params.
func (rt *Runtime) RequiredRewards(params *pool.Params) (*big.Int, error) {
	return pool.RequiredRewards(params)
}

// Events queries recorded notifications.
func (rt *Runtime) Events(ctx context.Context, filter *eventdb.Filter) ([]*eventdb.Event, error) {
	if rt.events == nil {
		return nil, errors.New("event db not configured")
	}
	return rt.events.Filter(ctx, filter)
}
