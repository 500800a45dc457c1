// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/log"
)

type recordHandler struct {
	records []slog.Record
}

func (h *recordHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *recordHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}

func (h *recordHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordHandler) WithGroup(string) slog.Handler      { return h }

func TestRequestLoggerHandler(t *testing.T) {
	rec := &recordHandler{}
	logger := log.NewLogger(rec)

	var seen []byte
	handler := RequestLoggerHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		seen = buf.Bytes()
		w.WriteHeader(http.StatusOK)
	}), logger)

	req := httptest.NewRequest(http.MethodPost, "/pool/stake", strings.NewReader(`{"amount":"1"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	// body still readable downstream
	assert.Equal(t, `{"amount":"1"}`, string(seen))
	assert.NotEmpty(t, res.Header().Get(requestIDHeader))

	require.Len(t, rec.records, 1)
	attrs := make(map[string]string)
	rec.records[0].Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})
	assert.Equal(t, "/pool/stake", attrs["URI"])
	assert.Equal(t, http.MethodPost, attrs["Method"])
	assert.Equal(t, `{"amount":"1"}`, attrs["Body"])
	assert.Equal(t, res.Header().Get(requestIDHeader), attrs["id"])

	// an incoming id is kept
	req = httptest.NewRequest(http.MethodGet, "/pool", nil)
	req.Header.Set(requestIDHeader, "abc")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	assert.Equal(t, "abc", res.Header().Get(requestIDHeader))
}
