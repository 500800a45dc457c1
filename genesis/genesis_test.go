// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/builtin/authority"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

const sample = `
poolAddress: "0x000000000000000000000000000000000000bee1"
accounts:
  - address: "0x0000000000000000000000000000000000000001"
    balance: "1000"
  - address: "0x0000000000000000000000000000000000000002"
    balance: "0x10"
roles:
  - subject: "0x0000000000000000000000000000000000000001"
    role: owner
  - subject: "0x0000000000000000000000000000000000000002"
    role: patron
    version: 3
`

func TestParse(t *testing.T) {
	gen, err := Parse([]byte(sample))
	require.NoError(t, err)

	pool, aut, err := gen.Addresses()
	require.NoError(t, err)
	assert.Equal(t, thor.MustParseAddress("0x000000000000000000000000000000000000bee1"), pool)
	assert.Equal(t, thor.AuthorityContractAddress, aut)
	assert.Len(t, gen.Accounts, 2)
	assert.Len(t, gen.Roles, 2)
}

func TestParseErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"bad yaml":       "accounts: [",
		"bad address":    "accounts: [{address: nope, balance: '1'}]",
		"bad balance":    "accounts: [{address: '0x0000000000000000000000000000000000000001', balance: 'x'}]",
		"empty role":     "roles: [{subject: '0x0000000000000000000000000000000000000001'}]",
		"same addresses": "poolAddress: '0x0000000000000000000000000000000000000001'\nauthorityAddress: '0x0000000000000000000000000000000000000001'",
	} {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	gen, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, gen.Accounts, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	stater := state.NewStater(db, 16)

	gen, err := Parse([]byte(sample))
	require.NoError(t, err)

	applied, err := gen.Apply(db, stater)
	require.NoError(t, err)
	assert.True(t, applied)

	st := stater.NewState()
	bal, err := st.GetBalance(thor.MustParseAddress("0x0000000000000000000000000000000000000001"))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), bal)
	bal, err = st.GetBalance(thor.MustParseAddress("0x0000000000000000000000000000000000000002"))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(16), bal)

	aut := authority.New(thor.AuthorityContractAddress, st)
	ok, err := aut.HasRole(thor.MustParseAddress("0x0000000000000000000000000000000000000001"), thor.OwnerRole, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = aut.HasRole(thor.MustParseAddress("0x0000000000000000000000000000000000000002"), thor.PatronRole, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	// same genesis again is a no-op
	applied, err = gen.Apply(db, stater)
	require.NoError(t, err)
	assert.False(t, applied)

	// a different genesis is rejected
	_, err = Devnet().Apply(db, stater)
	assert.Error(t, err)
}

func TestDevnet(t *testing.T) {
	gen := Devnet()
	pool, aut, err := gen.Addresses()
	require.NoError(t, err)
	assert.Equal(t, thor.PoolContractAddress, pool)
	assert.Equal(t, thor.AuthorityContractAddress, aut)
	assert.Len(t, gen.Accounts, 4)

	id1, err := gen.ID()
	require.NoError(t, err)
	id2, err := Devnet().ID()
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	assert.NotEqual(t, DevAccount("owner"), DevAccount("patron1"))
}
