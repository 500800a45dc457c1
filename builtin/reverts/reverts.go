// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
)

// Kind classifies a revert.
type Kind uint8

const (
	KindAuthorization Kind = iota + 1
	KindLifecycle
	KindCapacity
	KindFunding
	KindBalance
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindLifecycle:
		return "lifecycle"
	case KindCapacity:
		return "capacity"
	case KindFunding:
		return "funding"
	case KindBalance:
		return "balance"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// ErrRevert is a named rejection of a builtin contract call.
// The call has no effect when it reverts.
type ErrRevert struct {
	name    string
	kind    Kind
	message string
}

func New(name string, kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		name:    name,
		kind:    kind,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Name() string {
	return e.name
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// Bytes returns the revert reason ABI encoded as Error(string).
func (e *ErrRevert) Bytes() []byte {
	if e == nil {
		return nil
	}

	// 4-byte selector for Error(string)
	selector, _ := hex.DecodeString("08c379a0")
	msgBytes := []byte(e.message)
	msgLen := uint64(len(msgBytes))

	// selector + offset (32 bytes) + length (32 bytes) + data (padded to 32)
	encoded := make([]byte, 0, 4+32+32+((len(msgBytes)+31)/32)*32)
	encoded = append(encoded, selector...)

	offset := make([]byte, 32)
	binary.BigEndian.PutUint64(offset[24:], 32)
	encoded = append(encoded, offset...)

	length := make([]byte, 32)
	binary.BigEndian.PutUint64(length[24:], msgLen)
	encoded = append(encoded, length...)

	data := make([]byte, ((len(msgBytes)+31)/32)*32)
	copy(data, msgBytes)
	encoded = append(encoded, data...)

	return encoded
}

// AsRevert extracts the revert from err's chain.
func AsRevert(err error) (*ErrRevert, bool) {
	var re *ErrRevert
	if errors.As(err, &re) && re != nil {
		return re, true
	}
	return nil, false
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	_, ok = AsRevert(e)
	return ok
}
