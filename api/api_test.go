// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

const start = 50_000

var (
	owner  = genesis.DevAccount("owner")
	patron = genesis.DevAccount("patron1")
)

type testServer struct {
	*httptest.Server
	now atomic.Uint64
}

func newTestServer(t *testing.T) *testServer {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	edb, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { edb.Close() })

	stater := state.NewStater(db, 64)
	_, err = genesis.Devnet().Apply(db, stater)
	require.NoError(t, err)

	ts := &testServer{}
	ts.now.Store(start - 10)
	rt := runtime.New(stater, edb, runtime.Config{Clock: ts.now.Load})

	handler, closeSubs := New(rt, Options{
		AllowedOrigins:  "*",
		BacktraceLimit:  100,
		EnableReqLogger: true,
		EnableMetrics:   true,
		LogsLimit:       10,
	})
	ts.Server = httptest.NewServer(handler)
	t.Cleanup(func() {
		closeSubs()
		ts.Close()
	})
	return ts
}

func (ts *testServer) post(t *testing.T, path string, body any) (int, []byte, http.Header) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	out, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, out, res.Header
}

func (ts *testServer) get(t *testing.T, path string) (int, []byte) {
	res, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()
	out, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, out
}

func eth(n int64) string {
	return new(big.Int).Mul(big.NewInt(n), thor.Ether).String()
}

func params() utils.M {
	return utils.M{
		"start":             start,
		"end":               start + 31_536_000,
		"ratio":             "317097919",
		"hardCap":           eth(1_000_000),
		"contributionLimit": eth(10_000),
		"allowedRoles":      []string{"patron"},
	}
}

func parseAmount(t *testing.T, data []byte) *big.Int {
	var res struct {
		Amount *math.HexOrDecimal256 `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(data, &res))
	require.NotNil(t, res.Amount)
	return (*big.Int)(res.Amount)
}

func (ts *testServer) initialize(t *testing.T) *big.Int {
	code, body, _ := ts.post(t, "/pool/required-rewards", params())
	require.Equal(t, http.StatusOK, code, string(body))
	required := parseAmount(t, body)

	code, body, _ = ts.post(t, "/pool/initialize", utils.M{
		"caller": owner,
		"params": params(),
		"value":  required.String(),
	})
	require.Equal(t, http.StatusOK, code, string(body))
	return required
}

func TestPool(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.get(t, "/pool")
	require.Equal(t, http.StatusOK, code)
	var info struct {
		Status      string `json:"status"`
		Initialized bool   `json:"initialized"`
		Timestamp   uint64 `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(body, &info))
	assert.Equal(t, "uninitialized", info.Status)
	assert.Equal(t, uint64(start-10), info.Timestamp)

	required := ts.initialize(t)
	assert.Equal(t, 1, required.Sign())

	// initialized once
	code, _, hdr := ts.post(t, "/pool/initialize", utils.M{"caller": owner, "params": params(), "value": required.String()})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "AlreadyInitialized", hdr.Get(utils.RevertHeader))

	// too early
	code, _, hdr = ts.post(t, "/pool/stake", utils.M{"caller": patron, "amount": eth(1)})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "PoolNotStarted", hdr.Get(utils.RevertHeader))

	ts.now.Store(start)
	code, body, _ = ts.post(t, "/pool/stake", utils.M{"caller": patron, "amount": eth(100)})
	require.Equal(t, http.StatusOK, code, string(body))

	// not a patron
	code, _, hdr = ts.post(t, "/pool/stake", utils.M{"caller": owner, "amount": eth(1)})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Unauthorized", hdr.Get(utils.RevertHeader))

	ts.now.Store(start + 3600)
	code, body = ts.get(t, "/pool/participants/"+patron.String())
	require.Equal(t, http.StatusOK, code)
	var participant struct {
		Principal  *math.HexOrDecimal256 `json:"principal"`
		Compounded *math.HexOrDecimal256 `json:"compoundedBalance"`
	}
	require.NoError(t, json.Unmarshal(body, &participant))
	assert.Equal(t, eth(100), (*big.Int)(participant.Principal).String())
	assert.Equal(t, 1, (*big.Int)(participant.Compounded).Cmp((*big.Int)(participant.Principal)))

	code, body, _ = ts.post(t, "/pool/unstake", utils.M{"caller": patron, "amount": eth(50)})
	require.Equal(t, http.StatusOK, code, string(body))

	code, body, _ = ts.post(t, "/pool/unstake-all", utils.M{"caller": patron})
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Equal(t, 1, parseAmount(t, body).Cmp(new(big.Int).Mul(big.NewInt(50), thor.Ether)))

	code, _, hdr = ts.post(t, "/pool/unstake-all", utils.M{"caller": patron})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "NoFundsToUnstake", hdr.Get(utils.RevertHeader))

	// started pools cannot be terminated
	code, _, hdr = ts.post(t, "/pool/terminate", utils.M{"caller": owner})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "PoolStarted", hdr.Get(utils.RevertHeader))
}

func TestTerminate(t *testing.T) {
	ts := newTestServer(t)
	required := ts.initialize(t)

	code, _, _ := ts.post(t, "/pool/terminate", utils.M{"caller": patron})
	assert.Equal(t, http.StatusForbidden, code)

	code, body, _ := ts.post(t, "/pool/terminate", utils.M{"caller": owner})
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Equal(t, required, parseAmount(t, body))
}

func TestBadRequests(t *testing.T) {
	ts := newTestServer(t)

	for _, tt := range []struct {
		path string
		body string
	}{
		{"/pool/stake", `{"caller":"0x1"}`},
		{"/pool/stake", `{"caller":"` + patron.String() + `"}`},
		{"/pool/stake", `{"unknown":1}`},
		{"/pool/initialize", `{"caller":"` + owner.String() + `","params":{"start":1,"end":2}}`},
		{"/pool/required-rewards", `{"start":1,"end":2,"ratio":"1","hardCap":"1","contributionLimit":"1","allowedRoles":[""]}`},
		{"/authority/grant", `{"caller":"` + owner.String() + `","subject":"` + patron.String() + `"}`},
		{"/logs/event", `{"order":"sideways"}`},
		{"/logs/event", `{"kinds":["Nope"]}`},
		{"/logs/event", `{"range":{"from":10,"to":1}}`},
	} {
		res, err := http.Post(ts.URL+tt.path, "application/json", strings.NewReader(tt.body))
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, tt.path+" "+tt.body)
	}

	code, _ := ts.get(t, "/pool/participants/nope")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = ts.get(t, "/accounts/nope")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAccounts(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.get(t, "/accounts/"+patron.String())
	require.Equal(t, http.StatusOK, code)
	var acc struct {
		Balance *math.HexOrDecimal256 `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(body, &acc))
	assert.Equal(t, eth(1_000_000), (*big.Int)(acc.Balance).String())
}

func TestAuthority(t *testing.T) {
	ts := newTestServer(t)
	subject := thor.BytesToAddress([]byte("subject"))

	code, body := ts.get(t, "/authority/"+owner.String()+"/owner")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"hasRole":true}`, string(body))

	code, _, _ = ts.post(t, "/authority/grant", utils.M{"caller": patron, "subject": subject, "role": "patron"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body, _ = ts.post(t, "/authority/grant", utils.M{"caller": owner, "subject": subject, "role": "patron", "version": 2})
	require.Equal(t, http.StatusOK, code, string(body))
	assert.JSONEq(t, `{"changed":true}`, string(body))

	code, body = ts.get(t, "/authority/"+subject.String()+"/patron?version=2")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"hasRole":true}`, string(body))

	code, _ = ts.get(t, "/authority/"+subject.String()+"/patron?version=x")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = ts.get(t, "/authority/members/patron")
	require.Equal(t, http.StatusOK, code)
	var members []struct {
		Subject thor.Address `json:"subject"`
	}
	require.NoError(t, json.Unmarshal(body, &members))
	assert.Len(t, members, 4)

	code, body, _ = ts.post(t, "/authority/revoke", utils.M{"caller": owner, "subject": subject, "role": "patron"})
	require.Equal(t, http.StatusOK, code, string(body))
	assert.JSONEq(t, `{"changed":true}`, string(body))
}

func TestEvents(t *testing.T) {
	ts := newTestServer(t)
	ts.initialize(t)
	ts.now.Store(start)
	for range 3 {
		code, body, _ := ts.post(t, "/pool/stake", utils.M{"caller": patron, "amount": eth(1)})
		require.Equal(t, http.StatusOK, code, string(body))
	}

	code, body, _ := ts.post(t, "/logs/event", utils.M{"kinds": []string{"StakeAdded"}, "order": "desc"})
	require.Equal(t, http.StatusOK, code, string(body))
	var evs []*events.Event
	require.NoError(t, json.Unmarshal(body, &evs))
	require.Len(t, evs, 3)
	assert.Equal(t, uint64(4), evs[0].Seq)
	assert.Equal(t, patron, evs[0].Participant)

	code, body, _ = ts.post(t, "/logs/event", utils.M{"participant": owner})
	require.Equal(t, http.StatusOK, code, string(body))
	require.NoError(t, json.Unmarshal(body, &evs))
	require.Len(t, evs, 1)
	assert.Equal(t, "PoolInitialized", evs[0].Kind)

	code, _, _ = ts.post(t, "/logs/event", utils.M{"options": utils.M{"limit": 11}})
	assert.Equal(t, http.StatusForbidden, code)

	code, body, _ = ts.post(t, "/logs/event", utils.M{"options": utils.M{"offset": 1, "limit": 2}})
	require.Equal(t, http.StatusOK, code, string(body))
	require.NoError(t, json.Unmarshal(body, &evs))
	require.Len(t, evs, 2)
	assert.Equal(t, uint64(2), evs[0].Seq)
}

func TestSubscription(t *testing.T) {
	ts := newTestServer(t)
	ts.initialize(t)

	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscriptions/event?pos=0"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() *events.Event {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var ev events.Event
		require.NoError(t, conn.ReadJSON(&ev))
		return &ev
	}

	// backlog
	ev := read()
	assert.Equal(t, "PoolInitialized", ev.Kind)
	assert.Equal(t, uint64(1), ev.Seq)

	// live
	ts.now.Store(start)
	code, body, _ := ts.post(t, "/pool/stake", utils.M{"caller": patron, "amount": eth(5)})
	require.Equal(t, http.StatusOK, code, string(body))

	ev = read()
	assert.Equal(t, "StakeAdded", ev.Kind)
	assert.Equal(t, eth(5), (*big.Int)(ev.Amount).String())
}

func TestSubscriptionBadRequest(t *testing.T) {
	ts := newTestServer(t)

	for _, query := range []string{"pos=x", "pos=5", "kind=Nope", "participant=0x1"} {
		res, err := http.Get(fmt.Sprintf("%s/subscriptions/event?%s", ts.URL, query))
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, query)
	}
}
