// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/thor"
)

type Authority struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Authority {
	return &Authority{rt}
}

func parseVersion(s string) (uint64, error) {
	if s == "" {
		return thor.DefaultRoleVersion, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

func (a *Authority) handleHasRole(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	version, err := parseVersion(req.URL.Query().Get("version"))
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "version"))
	}
	ok, err := a.rt.HasRole(addr, thor.RoleID(mux.Vars(req)["role"]), version)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &HasRole{ok})
}

func (a *Authority) handleMembers(w http.ResponseWriter, req *http.Request) error {
	members, err := a.rt.Members(thor.RoleID(mux.Vars(req)["role"]))
	if err != nil {
		return err
	}
	res := make([]*Member, 0, len(members))
	for _, m := range members {
		res = append(res, &Member{Subject: m.Subject, Version: m.Version})
	}
	return utils.WriteJSON(w, res)
}

func parseGrant(req *http.Request) (*GrantRequest, error) {
	var body GrantRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Role == "" {
		return nil, utils.BadRequest(errors.New("role: required"))
	}
	return &body, nil
}

func (a *Authority) handleGrant(w http.ResponseWriter, req *http.Request) error {
	body, err := parseGrant(req)
	if err != nil {
		return err
	}
	if body.Version == 0 {
		body.Version = thor.DefaultRoleVersion
	}
	changed, err := a.rt.Grant(body.Caller, body.Subject, thor.RoleID(body.Role), body.Version)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Changed{changed})
}

func (a *Authority) handleRevoke(w http.ResponseWriter, req *http.Request) error {
	body, err := parseGrant(req)
	if err != nil {
		return err
	}
	changed, err := a.rt.Revoke(body.Caller, body.Subject, thor.RoleID(body.Role))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Changed{changed})
}

func (a *Authority) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/grant").
		Methods(http.MethodPost).
		Name("POST /authority/grant").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGrant))
	sub.Path("/revoke").
		Methods(http.MethodPost).
		Name("POST /authority/revoke").
		HandlerFunc(utils.WrapHandlerFunc(a.handleRevoke))
	sub.Path("/members/{role}").
		Methods(http.MethodGet).
		Name("GET /authority/members/{role}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleMembers))
	sub.Path("/{address}/{role}").
		Methods(http.MethodGet).
		Name("GET /authority/{address}/{role}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleHasRole))
}
