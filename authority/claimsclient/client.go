// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package claimsclient provides a role checker backed by a remote claim manager service.
package claimsclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/vechain/stakepool/thor"
)

var ErrNot200Status = errors.New("not 200 status code")

const defaultTimeout = 5 * time.Second

// RoleResult is the claim manager's answer to a role query.
type RoleResult struct {
	HasRole bool `json:"hasRole"`
}

// Client queries role claims over HTTP.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided base URL.
func New(url string) *Client {
	return NewWithHTTP(url, &http.Client{Timeout: defaultTimeout})
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: url,
		c:   c,
	}
}

// HasRole asks the claim manager whether subject holds role at version.
func (c *Client) HasRole(subject thor.Address, role thor.Bytes32, version uint64) (bool, error) {
	url := c.url + "/roles/" + subject.String() + "/" + role.String() + "?version=" + strconv.FormatUint(version, 10)

	body, err := c.httpGET(url)
	if err != nil {
		return false, fmt.Errorf("unable to retrieve role - %w", err)
	}

	var res RoleResult
	if err = json.Unmarshal(body, &res); err != nil {
		return false, fmt.Errorf("unable to unmarshal role result - %w", err)
	}
	return res.HasRole, nil
}

func (c *Client) httpGET(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error - Status Code %d - %s - %w", resp.StatusCode, responseBody, ErrNot200Status)
	}
	return responseBody, nil
}
