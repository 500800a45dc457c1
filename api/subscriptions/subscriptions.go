// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/co"
	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/thor"
)

const (
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	readBatch = 100
)

var logger = log.WithContext("pkg", "subscriptions")

type Subscriptions struct {
	rt             *runtime.Runtime
	backtraceLimit uint64
	upgrader       *websocket.Upgrader
	done           chan struct{}
	wg             sync.WaitGroup
}

func New(rt *runtime.Runtime, allowedOrigins []string, backtraceLimit uint64) *Subscriptions {
	return &Subscriptions{
		rt:             rt,
		backtraceLimit: backtraceLimit,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

type eventSub struct {
	filter eventdb.Filter
}

func (s *Subscriptions) parseEventSub(req *http.Request) (*eventSub, error) {
	query := req.URL.Query()
	sub := &eventSub{}
	sub.filter.Order = eventdb.ASC
	sub.filter.Options = &eventdb.Options{Limit: readBatch}

	for i, kind := range query["kind"] {
		if !events.ValidKind(kind) {
			return nil, utils.BadRequest(fmt.Errorf("kind[%d]: unknown kind %q", i, kind))
		}
		sub.filter.Kinds = append(sub.filter.Kinds, kind)
	}
	if p := query.Get("participant"); p != "" {
		addr, err := thor.ParseAddress(p)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "participant"))
		}
		sub.filter.Participant = &addr
	}

	last, err := s.rt.EventDB().LastSeq(req.Context())
	if err != nil {
		return nil, err
	}
	pos := query.Get("pos")
	if pos == "" {
		sub.filter.AfterSeq = last
		return sub, nil
	}
	seq, err := strconv.ParseUint(pos, 10, 64)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "pos"))
	}
	if seq > last {
		return nil, utils.BadRequest(errors.New("pos: out of range"))
	}
	if last-seq > s.backtraceLimit {
		return nil, utils.Forbidden(errors.New("pos: backtrace limit exceeded"))
	}
	sub.filter.AfterSeq = seq
	return sub, nil
}

func (s *Subscriptions) handleEventSubscription(w http.ResponseWriter, req *http.Request) error {
	if s.rt.EventDB() == nil {
		return utils.HTTPError(errors.New("event db not configured"), http.StatusServiceUnavailable)
	}
	sub, err := s.parseEventSub(req)
	if err != nil {
		return err
	}
	// created before the first read so no commit in between is missed
	waiter := s.rt.NewWaiter()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		// response already written by the upgrader
		return nil
	}

	s.wg.Add(1)
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debug("websocket read", "err", err)
				return
			}
		}
	}()

	if err := s.pipe(ctx, conn, sub, waiter); err != nil {
		logger.Debug("subscription closed", "err", err)
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	// the connection is hijacked, nothing more can be responded
	_ = conn.Close()
	return nil
}

// flush writes every event after the subscription position.
func (s *Subscriptions) flush(ctx context.Context, conn *websocket.Conn, sub *eventSub) error {
	for {
		evs, err := s.rt.EventDB().Filter(ctx, &sub.filter)
		if err != nil {
			return err
		}
		for _, ev := range evs {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(events.ConvertEvent(ev)); err != nil {
				return err
			}
			sub.filter.AfterSeq = ev.Seq
		}
		if len(evs) < readBatch {
			return nil
		}
	}
}

func (s *Subscriptions) pipe(ctx context.Context, conn *websocket.Conn, sub *eventSub, waiter *co.Waiter) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	wake := waiter.C()
	if err := s.flush(ctx, conn, sub); err != nil {
		return err
	}
	for {
		select {
		case <-s.done:
			return nil
		case <-ctx.Done():
			return nil
		case <-wake:
			wake = waiter.C()
			if err := s.flush(ctx, conn, sub); err != nil {
				return err
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// Close stops all subscriptions and waits for them to exit.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(utils.WrapHandlerFunc(s.handleEventSubscription))
}
