package jsonrpc

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/kate"
)

// BlockNumber is a block number given either as a JSON integer or as a 0x
// prefixed hex string. Leading zero digits are allowed. It must fit in 32 bits.
type BlockNumber uint32

// UnmarshalJSON implements json.Unmarshaler.
func (n *BlockNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return errors.Wrap(err, "block number")
		}
		digits, ok := strings.CutPrefix(s, "0x")
		if !ok || digits == "" {
			return errors.Errorf("block number %q is not a 0x prefixed hex string", s)
		}
		v, err := strconv.ParseUint(digits, 16, 64)
		if err != nil {
			return errors.Wrapf(err, "block number %q", s)
		}
		return n.set(v)
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return errors.Errorf("block number must be a non-negative integer or hex string, got %s", data)
	}
	return n.set(v)
}

func (n *BlockNumber) set(v uint64) error {
	if v > math.MaxUint32 {
		return errors.Errorf("block number %d does not fit in 32 bits", v)
	}
	*n = BlockNumber(v)
	return nil
}

type queryProofParams struct {
	BlockNumber *BlockNumber `json:"blockNumber"`
	Cells       []kate.Cell  `json:"cells"`
}

// decodeQueryProofParams accepts positional [blockNumber, cells] or named
// {"blockNumber": ..., "cells": [...]} parameters.
func decodeQueryProofParams(raw []byte) (uint32, []kate.Cell, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil, errors.New("missing params")
	}

	var p queryProofParams
	switch raw[0] {
	case '[':
		var positional []jsonRaw
		if err := json.Unmarshal(raw, &positional); err != nil {
			return 0, nil, errors.Wrap(err, "params")
		}
		if len(positional) != 2 {
			return 0, nil, errors.Errorf("expected 2 params, got %d", len(positional))
		}
		p.BlockNumber = new(BlockNumber)
		if err := json.Unmarshal(positional[0], p.BlockNumber); err != nil {
			return 0, nil, errors.Wrap(err, "invalid argument 0")
		}
		if err := json.Unmarshal(positional[1], &p.Cells); err != nil {
			return 0, nil, errors.Wrap(err, "invalid argument 1")
		}
	case '{':
		if err := json.Unmarshal(raw, &p); err != nil {
			return 0, nil, errors.Wrap(err, "params")
		}
		if p.BlockNumber == nil {
			return 0, nil, errors.New("missing blockNumber")
		}
	default:
		return 0, nil, errors.New("params must be an array or an object")
	}
	if p.Cells == nil {
		return 0, nil, errors.New("missing cells")
	}
	return uint32(*p.BlockNumber), p.Cells, nil
}

// decodeNoParams accepts absent, null, [] or {} params.
func decodeNoParams(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "[]", "{}":
		return nil
	}
	return errors.New("method takes no params")
}
