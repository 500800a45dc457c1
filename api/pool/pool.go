// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/thor"
)

type Pool struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Pool {
	return &Pool{rt}
}

func (p *Pool) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	info, now, err := p.rt.PoolInfo()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertInfo(info, now))
}

func (p *Pool) handleGetParticipant(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	acc, err := p.rt.Account(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertAccount(addr, acc))
}

func (p *Pool) handleInitialize(w http.ResponseWriter, req *http.Request) error {
	var body InitializeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	params, err := convertParams(&body.Params)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "params"))
	}
	if err := p.rt.Initialize(body.Caller, params, toBig(body.Value)); err != nil {
		return err
	}
	return p.handleGetPool(w, req)
}

func (p *Pool) parseAmountRequest(req *http.Request) (*AmountRequest, error) {
	var body AmountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return nil, utils.BadRequest(errors.New("amount: required"))
	}
	return &body, nil
}

func (p *Pool) writeParticipant(w http.ResponseWriter, addr thor.Address) error {
	acc, err := p.rt.Account(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertAccount(addr, acc))
}

func (p *Pool) handleStake(w http.ResponseWriter, req *http.Request) error {
	body, err := p.parseAmountRequest(req)
	if err != nil {
		return err
	}
	if err := p.rt.Stake(body.Caller, toBig(body.Amount)); err != nil {
		return err
	}
	return p.writeParticipant(w, body.Caller)
}

func (p *Pool) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	body, err := p.parseAmountRequest(req)
	if err != nil {
		return err
	}
	if err := p.rt.Unstake(body.Caller, toBig(body.Amount)); err != nil {
		return err
	}
	return p.writeParticipant(w, body.Caller)
}

func (p *Pool) handleUnstakeAll(w http.ResponseWriter, req *http.Request) error {
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := p.rt.UnstakeAll(body.Caller)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Amount{toHex(amount)})
}

func (p *Pool) handleTerminate(w http.ResponseWriter, req *http.Request) error {
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	refund, err := p.rt.Terminate(body.Caller)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Amount{toHex(refund)})
}

func (p *Pool) handleRequiredRewards(w http.ResponseWriter, req *http.Request) error {
	var body Params
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	params, err := convertParams(&body)
	if err != nil {
		return utils.BadRequest(err)
	}
	required, err := p.rt.RequiredRewards(params)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Amount{toHex(required)})
}

func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pool").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/participants/{address}").
		Methods(http.MethodGet).
		Name("GET /pool/participants/{address}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetParticipant))
	sub.Path("/initialize").
		Methods(http.MethodPost).
		Name("POST /pool/initialize").
		HandlerFunc(utils.WrapHandlerFunc(p.handleInitialize))
	sub.Path("/stake").
		Methods(http.MethodPost).
		Name("POST /pool/stake").
		HandlerFunc(utils.WrapHandlerFunc(p.handleStake))
	sub.Path("/unstake").
		Methods(http.MethodPost).
		Name("POST /pool/unstake").
		HandlerFunc(utils.WrapHandlerFunc(p.handleUnstake))
	sub.Path("/unstake-all").
		Methods(http.MethodPost).
		Name("POST /pool/unstake-all").
		HandlerFunc(utils.WrapHandlerFunc(p.handleUnstakeAll))
	sub.Path("/terminate").
		Methods(http.MethodPost).
		Name("POST /pool/terminate").
		HandlerFunc(utils.WrapHandlerFunc(p.handleTerminate))
	sub.Path("/required-rewards").
		Methods(http.MethodPost).
		Name("POST /pool/required-rewards").
		HandlerFunc(utils.WrapHandlerFunc(p.handleRequiredRewards))
}
