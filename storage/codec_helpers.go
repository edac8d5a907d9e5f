// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.
//
// The N42 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The N42 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the N42 library. If not, see <http://www.gnu.org/licenses/>.

package storage

import (
	"fmt"

	"github.com/starknetcore/storage/felt"
	"github.com/starknetcore/storage/storage/serde"
)

// putFelt appends the 32 raw bytes of f; felts are fixed-width so no
// length prefix is needed to keep composite keys totally ordered.
func putFelt(dst []byte, f felt.Felt) []byte {
	return append(dst, f.Bytes()...)
}

func getFelt(b []byte) (felt.Felt, []byte, error) {
	if len(b) < felt.Size {
		return felt.Felt{}, nil, fmt.Errorf("%w: need %d bytes for felt, have %d", serde.ErrMalformed, felt.Size, len(b))
	}
	f, err := felt.FromBytes(b[:felt.Size])
	if err != nil {
		return felt.Felt{}, nil, err
	}
	return f, b[felt.Size:], nil
}

func putBlockNumber(dst []byte, n felt.BlockNumber) []byte {
	return serde.PutUint64(dst, n.Uint64())
}

func getBlockNumber(b []byte) (felt.BlockNumber, []byte, error) {
	v, rest, err := serde.GetUint64(b)
	if err != nil {
		return 0, nil, err
	}
	return felt.BlockNumber(v), rest, nil
}

func putTxOffset(dst []byte, off felt.TxOffsetInBlock) []byte {
	return serde.PutUint32(dst, uint32(off))
}

func getTxOffset(b []byte) (felt.TxOffsetInBlock, []byte, error) {
	v, rest, err := serde.GetUint32(b)
	if err != nil {
		return 0, nil, err
	}
	return felt.TxOffsetInBlock(v), rest, nil
}

func putEventIndex(dst []byte, idx felt.EventIndexInTx) []byte {
	return serde.PutUint32(dst, uint32(idx))
}

func getEventIndex(b []byte) (felt.EventIndexInTx, []byte, error) {
	v, rest, err := serde.GetUint32(b)
	if err != nil {
		return 0, nil, err
	}
	return felt.EventIndexInTx(v), rest, nil
}

func putFeltSeq(dst []byte, items []felt.Felt) []byte {
	return serde.PutSequence(dst, items, putFelt)
}

func getFeltSeq(b []byte) ([]felt.Felt, []byte, error) {
	return serde.GetSequence(b, getFelt)
}

func putString(dst []byte, s string) []byte {
	return serde.PutBytes(dst, []byte(s))
}

func getString(b []byte) (string, []byte, error) {
	raw, rest, err := serde.GetBytes(b)
	if err != nil {
		return "", nil, err
	}
	return string(raw), rest, nil
}
