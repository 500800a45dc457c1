// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package claimsclient

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/stakepool/thor"
)

func TestClient_HasRole(t *testing.T) {
	subject := thor.BytesToAddress([]byte("patron"))
	role := thor.PatronRole

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/roles/"+subject.String()+"/"+role.String(), r.URL.Path)
		if r.URL.Query().Get("version") == "1" {
			w.Write([]byte(`{"hasRole":true}`))
			return
		}
		w.Write([]byte(`{"hasRole":false}`))
	}))
	defer ts.Close()

	client := New(ts.URL)

	ok, err := client.HasRole(subject, role, 1)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.HasRole(subject, role, 2)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_Errors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("version") == "1" {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("not json"))
	}))
	defer ts.Close()

	client := New(ts.URL)

	ok, err := client.HasRole(thor.Address{}, thor.OwnerRole, 1)
	assert.ErrorIs(t, err, ErrNot200Status)
	assert.False(t, ok)

	ok, err = client.HasRole(thor.Address{}, thor.OwnerRole, 2)
	assert.Error(t, err)
	assert.False(t, ok)

	ok, err = New("http://127.0.0.1:0").HasRole(thor.Address{}, thor.OwnerRole, 1)
	assert.Error(t, err)
	assert.False(t, ok)
}
