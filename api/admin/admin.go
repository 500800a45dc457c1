// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin serves node administration endpoints on a private listener.
package admin

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/log"
)

var levels = map[string]slog.Level{
	"trace": log.LevelTrace,
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
	"crit":  log.LevelCrit,
}

type LogLevel struct {
	Level string `json:"level"`
}

// New returns the admin handler. metrics is mounted at /metrics when not nil.
func New(logLevel *slog.LevelVar, metrics http.Handler) http.Handler {
	router := mux.NewRouter()

	sub := router.PathPrefix("/admin/loglevel").Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /admin/loglevel").
		HandlerFunc(utils.WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			return utils.WriteJSON(w, &LogLevel{log.LevelString(logLevel.Level())})
		}))
	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /admin/loglevel").
		HandlerFunc(utils.WrapHandlerFunc(func(w http.ResponseWriter, req *http.Request) error {
			var body LogLevel
			if err := utils.ParseJSON(req.Body, &body); err != nil {
				return utils.BadRequest(errors.WithMessage(err, "body"))
			}
			lvl, ok := levels[body.Level]
			if !ok {
				return utils.BadRequest(errors.Errorf("level: unknown value %q", body.Level))
			}
			logLevel.Set(lvl)
			return utils.WriteJSON(w, &LogLevel{log.LevelString(logLevel.Level())})
		}))

	if metrics != nil {
		router.Path("/metrics").Methods(http.MethodGet).Handler(metrics)
	}

	return handlers.CompressHandler(router)
}
