// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes and applies the initial state of a node: funded accounts and role grants.
package genesis

import (
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakepool/builtin/authority"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

var (
	logger = log.WithContext("pkg", "genesis")

	markerKey = kv.Bucket("g").Key([]byte("id"))
)

// Genesis is the user customized initial state.
type Genesis struct {
	PoolAddress      string      `yaml:"poolAddress,omitempty"`
	AuthorityAddress string      `yaml:"authorityAddress,omitempty"`
	Accounts         []Account   `yaml:"accounts"`
	Roles            []RoleGrant `yaml:"roles"`
}

// Account is an address funded at genesis. Balance is decimal or 0x-prefixed hex.
type Account struct {
	Address string `yaml:"address"`
	Balance string `yaml:"balance"`
}

// RoleGrant grants a role at genesis. Role is a name, or a 0x-prefixed 32-byte identifier.
type RoleGrant struct {
	Subject string `yaml:"subject"`
	Role    string `yaml:"role"`
	Version uint64 `yaml:"version,omitempty"`
}

// Load reads genesis from a yaml file.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	return Parse(data)
}

// Parse decodes and validates yaml encoded genesis.
func Parse(data []byte) (*Genesis, error) {
	var gen Genesis
	if err := yaml.Unmarshal(data, &gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if _, err := gen.resolve(); err != nil {
		return nil, err
	}
	return &gen, nil
}

// Devnet returns the genesis of a local development node.
// The owner and the patrons are funded, pool and authority use the well-known addresses.
func Devnet() *Genesis {
	gen := &Genesis{}
	owner := DevAccount("owner")
	gen.Accounts = append(gen.Accounts, Account{owner.String(), "1000000000000000000000000000"})
	gen.Roles = append(gen.Roles, RoleGrant{Subject: owner.String(), Role: "owner", Version: thor.DefaultRoleVersion})
	for _, name := range []string{"patron1", "patron2", "patron3"} {
		addr := DevAccount(name)
		gen.Accounts = append(gen.Accounts, Account{addr.String(), "1000000000000000000000000"})
		gen.Roles = append(gen.Roles, RoleGrant{Subject: addr.String(), Role: "patron", Version: thor.DefaultRoleVersion})
	}
	return gen
}

// DevAccount returns the deterministic address of a named devnet account.
func DevAccount(name string) thor.Address {
	return thor.BytesToAddress(thor.Blake2b([]byte("devnet"), []byte(name)).Bytes())
}

type resolved struct {
	pool      thor.Address
	authority thor.Address
	balances  []struct {
		addr    thor.Address
		balance *big.Int
	}
	grants []struct {
		subject thor.Address
		role    thor.Bytes32
		version uint64
	}
}

func (g *Genesis) resolve() (*resolved, error) {
	res := &resolved{
		pool:      thor.PoolContractAddress,
		authority: thor.AuthorityContractAddress,
	}
	var err error
	if g.PoolAddress != "" {
		if res.pool, err = thor.ParseAddress(g.PoolAddress); err != nil {
			return nil, errors.Wrap(err, "pool address")
		}
	}
	if g.AuthorityAddress != "" {
		if res.authority, err = thor.ParseAddress(g.AuthorityAddress); err != nil {
			return nil, errors.Wrap(err, "authority address")
		}
	}
	if res.pool == res.authority {
		return nil, errors.New("pool and authority addresses must differ")
	}
	for i, acc := range g.Accounts {
		addr, err := thor.ParseAddress(acc.Address)
		if err != nil {
			return nil, errors.Wrapf(err, "accounts[%d]", i)
		}
		balance, ok := math.ParseBig256(acc.Balance)
		if !ok {
			return nil, errors.Errorf("accounts[%d]: invalid balance %q", i, acc.Balance)
		}
		res.balances = append(res.balances, struct {
			addr    thor.Address
			balance *big.Int
		}{addr, balance})
	}
	for i, grant := range g.Roles {
		subject, err := thor.ParseAddress(grant.Subject)
		if err != nil {
			return nil, errors.Wrapf(err, "roles[%d]", i)
		}
		if grant.Role == "" {
			return nil, errors.Errorf("roles[%d]: empty role", i)
		}
		version := grant.Version
		if version == 0 {
			version = thor.DefaultRoleVersion
		}
		res.grants = append(res.grants, struct {
			subject thor.Address
			role    thor.Bytes32
			version uint64
		}{subject, thor.RoleID(grant.Role), version})
	}
	return res, nil
}

// ID returns the identifier of the genesis content.
func (g *Genesis) ID() (thor.Bytes32, error) {
	data, err := yaml.Marshal(g)
	if err != nil {
		return thor.Bytes32{}, err
	}
	return thor.Blake2b(data), nil
}

// Addresses returns the pool and the authority contract addresses.
func (g *Genesis) Addresses() (pool thor.Address, authorityAddr thor.Address, err error) {
	res, err := g.resolve()
	if err != nil {
		return thor.Address{}, thor.Address{}, err
	}
	return res.pool, res.authority, nil
}

// Apply writes the genesis state into an empty store. A store already initialized
// with the same genesis is left untouched; a different genesis is an error.
func (g *Genesis) Apply(store kv.Store, stater *state.Stater) (applied bool, err error) {
	id, err := g.ID()
	if err != nil {
		return false, err
	}
	existing, err := kv.GetOrNil(store, markerKey)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		if thor.BytesToBytes32(existing) != id {
			return false, errors.Errorf("genesis mismatch: store initialized with %v, got %v", thor.BytesToBytes32(existing), id)
		}
		return false, nil
	}

	res, err := g.resolve()
	if err != nil {
		return false, err
	}
	st := stater.NewState()
	for _, b := range res.balances {
		if err := st.SetBalance(b.addr, b.balance); err != nil {
			return false, err
		}
	}
	aut := authority.New(res.authority, st)
	for _, grant := range res.grants {
		if _, err := aut.Grant(grant.subject, grant.role, grant.version); err != nil {
			return false, errors.Wrap(err, "grant role")
		}
	}
	if err := st.Stage().Commit(); err != nil {
		return false, err
	}
	// marker last, a partially applied genesis is applied again on restart
	if err := store.Put(markerKey, id.Bytes()); err != nil {
		return false, err
	}

	logger.Info("genesis applied", "id", id, "accounts", len(res.balances), "grants", len(res.grants))
	return true, nil
}
