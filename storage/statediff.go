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
	"github.com/starknetcore/storage/felt"
	apierrors "github.com/starknetcore/storage/pkg/errors"
	"github.com/starknetcore/storage/storage/db"
	"github.com/starknetcore/storage/storage/filestore"
	"github.com/starknetcore/storage/storage/schema"
	"github.com/starknetcore/storage/storage/serde"
)

// StateDiffReader is the read half of the state-diff domain.
type StateDiffReader interface {
	GetStateDiff(tx db.Tx, n felt.BlockNumber) (ThinStateDiff, bool, error)
	GetStorageAt(tx db.Tx, addr felt.ContractAddress, key felt.StorageKey, at felt.BlockNumber) (felt.Felt, error)
	GetNonceAt(tx db.Tx, addr felt.ContractAddress, at felt.BlockNumber) (felt.Nonce, error)
	GetClassHashAt(tx db.Tx, addr felt.ContractAddress, at felt.BlockNumber) (felt.ClassHash, bool, error)
	GetStateMarker(tx db.Tx) (felt.BlockNumber, error)
}

// StateDiffWriter is the write half of the state-diff domain.
type StateDiffWriter interface {
	AppendStateDiff(tx *db.RwTx, n felt.BlockNumber, diff ThinStateDiff) error
}

func encodeStateDiffRaw(dst []byte, d ThinStateDiff) []byte {
	deployed := make([]felt.ContractAddress, 0, len(d.DeployedContracts))
	for addr := range d.DeployedContracts {
		deployed = append(deployed, addr)
	}
	dst = serde.PutSequence(dst, deployed, func(dst []byte, addr felt.ContractAddress) []byte {
		dst = putFelt(dst, addr)
		return putFelt(dst, d.DeployedContracts[addr])
	})

	type storageEntry struct {
		Addr felt.ContractAddress
		Key  felt.StorageKey
		Val  felt.Felt
	}
	var entries []storageEntry
	for addr, m := range d.StorageDiffs {
		for key, val := range m {
			entries = append(entries, storageEntry{addr, key, val})
		}
	}
	dst = serde.PutSequence(dst, entries, func(dst []byte, e storageEntry) []byte {
		dst = putFelt(dst, e.Addr)
		dst = putFelt(dst, e.Key)
		return putFelt(dst, e.Val)
	})

	nonceAddrs := make([]felt.ContractAddress, 0, len(d.Nonces))
	for addr := range d.Nonces {
		nonceAddrs = append(nonceAddrs, addr)
	}
	dst = serde.PutSequence(dst, nonceAddrs, func(dst []byte, addr felt.ContractAddress) []byte {
		dst = putFelt(dst, addr)
		return putFelt(dst, d.Nonces[addr])
	})

	dst = putFeltSeq(dst, d.DeclaredClasses)
	dst = putFeltSeq(dst, d.DeprecatedClasses)
	return dst
}

func decodeStateDiffRaw(b []byte) (ThinStateDiff, []byte, error) {
	d := ThinStateDiff{
		DeployedContracts: map[felt.ContractAddress]felt.ClassHash{},
		StorageDiffs:      map[felt.ContractAddress]map[felt.StorageKey]felt.Felt{},
		Nonces:            map[felt.ContractAddress]felt.Nonce{},
	}
	var err error

	type deployedEntry struct {
		Addr  felt.ContractAddress
		Class felt.ClassHash
	}
	deployed, b, err := serde.GetSequence(b, func(b []byte) (deployedEntry, []byte, error) {
		var e deployedEntry
		var err error
		if e.Addr, b, err = getFelt(b); err != nil {
			return e, nil, err
		}
		if e.Class, b, err = getFelt(b); err != nil {
			return e, nil, err
		}
		return e, b, nil
	})
	if err != nil {
		return d, nil, err
	}
	for _, e := range deployed {
		d.DeployedContracts[e.Addr] = e.Class
	}

	type storageEntry struct {
		Addr felt.ContractAddress
		Key  felt.StorageKey
		Val  felt.Felt
	}
	entries, b, err := serde.GetSequence(b, func(b []byte) (storageEntry, []byte, error) {
		var e storageEntry
		var err error
		if e.Addr, b, err = getFelt(b); err != nil {
			return e, nil, err
		}
		if e.Key, b, err = getFelt(b); err != nil {
			return e, nil, err
		}
		if e.Val, b, err = getFelt(b); err != nil {
			return e, nil, err
		}
		return e, b, nil
	})
	if err != nil {
		return d, nil, err
	}
	for _, e := range entries {
		m, ok := d.StorageDiffs[e.Addr]
		if !ok {
			m = map[felt.StorageKey]felt.Felt{}
			d.StorageDiffs[e.Addr] = m
		}
		m[e.Key] = e.Val
	}

	type nonceEntry struct {
		Addr  felt.ContractAddress
		Nonce felt.Nonce
	}
	nonces, b, err := serde.GetSequence(b, func(b []byte) (nonceEntry, []byte, error) {
		var e nonceEntry
		var err error
		if e.Addr, b, err = getFelt(b); err != nil {
			return e, nil, err
		}
		if e.Nonce, b, err = getFelt(b); err != nil {
			return e, nil, err
		}
		return e, b, nil
	})
	if err != nil {
		return d, nil, err
	}
	for _, e := range nonces {
		d.Nonces[e.Addr] = e.Nonce
	}

	if d.DeclaredClasses, b, err = getFeltSeq(b); err != nil {
		return d, nil, err
	}
	if d.DeprecatedClasses, b, err = getFeltSeq(b); err != nil {
		return d, nil, err
	}
	return d, b, nil
}

var stateDiffWrapper = serde.NoVersion[ThinStateDiff]{}

func encodeStateDiff(d ThinStateDiff) []byte {
	return stateDiffWrapper.Encode(d, encodeStateDiffRaw)
}

func decodeStateDiff(b []byte) (ThinStateDiff, error) {
	return stateDiffWrapper.Decode(b, decodeStateDiffRaw)
}

// AppendStateDiff persists diff's blob into the state-diff file store
// and materialises deployed_contracts, contract_storage, nonces and
// declared-class placeholder rows, preconditioned on markers.State == n
// and markers.Body > n.
func (s *Storage) AppendStateDiff(tx *db.RwTx, n felt.BlockNumber, diff ThinStateDiff) error {
	if err := requireMarker(tx, schema.MarkerState, n); err != nil {
		return err
	}
	bodyMarker, err := GetBodyMarker(tx)
	if err != nil {
		return err
	}
	if bodyMarker <= n {
		return &MarkerMismatchError{Domain: schema.MarkerBody, Expected: bodyMarker, Got: n + 1}
	}

	compressed, err := s.blobCodec.Compress(encodeStateDiff(diff))
	if err != nil {
		return err
	}
	loc, err := s.stateDiffStore.Append(compressed)
	if err != nil {
		return err
	}

	stateDiffs, err := db.OpenRwTable(tx, stateDiffsTable)
	if err != nil {
		return err
	}
	if err := stateDiffs.Upsert(n, loc); err != nil {
		return err
	}

	deployed, err := db.OpenRwTable(tx, deployedContractsTable)
	if err != nil {
		return err
	}
	for addr, class := range diff.DeployedContracts {
		if has, err := deployed.Has(addr); err != nil {
			return err
		} else if has {
			return ErrContractAlreadyDeployed
		}
		if err := deployed.Upsert(addr, deployedContractRow{Block: n, ClassHash: class}); err != nil {
			return err
		}
	}

	storageTbl, err := db.OpenRwTable(tx, contractStorageTable)
	if err != nil {
		return err
	}
	seenKeys := map[storageKey]struct{}{}
	for addr, m := range diff.StorageDiffs {
		for key, val := range m {
			sk := storageKey{Address: addr, Key: key, Block: n}
			if _, dup := seenKeys[sk]; dup {
				return ErrDuplicateStorageWrite
			}
			seenKeys[sk] = struct{}{}
			if err := storageTbl.Upsert(sk, val); err != nil {
				return err
			}
		}
	}

	noncesTbl, err := db.OpenRwTable(tx, noncesTable)
	if err != nil {
		return err
	}
	for addr, nonce := range diff.Nonces {
		if err := noncesTbl.Upsert(nonceKey{Address: addr, Block: n}, nonce); err != nil {
			return err
		}
	}

	declared, err := db.OpenRwTable(tx, declaredClassesTable)
	if err != nil {
		return err
	}
	for _, classHash := range diff.DeclaredClasses {
		if err := declared.Upsert(classHash, classDeclarationRow{Block: n, Location: filestore.Location{}}); err != nil {
			return err
		}
	}
	deprecated, err := db.OpenRwTable(tx, deprecatedDeclaredClassesTable)
	if err != nil {
		return err
	}
	for _, classHash := range diff.DeprecatedClasses {
		if err := deprecated.Upsert(classHash, classDeclarationRow{Block: n, Location: filestore.Location{}}); err != nil {
			return err
		}
	}

	if err := advanceMarker(tx, schema.MarkerState, n); err != nil {
		return err
	}
	s.reportFileStoreStats()
	return nil
}

// GetStateDiff reads block n's diff back out of the state-diff file store.
func (s *Storage) GetStateDiff(tx db.Tx, n felt.BlockNumber) (ThinStateDiff, bool, error) {
	h, err := db.OpenTable(tx, stateDiffsTable)
	if err != nil {
		return ThinStateDiff{}, false, err
	}
	loc, err := h.Get(n)
	if err != nil {
		if apierrors.Is(err, apierrors.ErrKeyNotFound) {
			return ThinStateDiff{}, false, nil
		}
		return ThinStateDiff{}, false, err
	}
	raw, err := s.stateDiffStore.Read(loc)
	if err != nil {
		return ThinStateDiff{}, false, err
	}
	decompressed, err := s.blobCodec.Decompress(raw)
	if err != nil {
		return ThinStateDiff{}, false, err
	}
	diff, err := decodeStateDiff(decompressed)
	if err != nil {
		return ThinStateDiff{}, false, err
	}
	return diff, true, nil
}

// GetStorageAt returns the value written to (addr, key) as of block at:
// the largest recorded block <= at, or zero if none exists.
func (s *Storage) GetStorageAt(tx db.Tx, addr felt.ContractAddress, key felt.StorageKey, at felt.BlockNumber) (felt.Felt, error) {
	h, err := db.OpenTable(tx, contractStorageTable)
	if err != nil {
		return felt.Felt{}, err
	}
	c, err := h.Cursor()
	if err != nil {
		return felt.Felt{}, err
	}
	defer c.Close()

	k, v, ok, err := c.LowerBound(storageKey{Address: addr, Key: key, Block: at + 1})
	if err != nil {
		return felt.Felt{}, err
	}
	if ok {
		k, v, ok, err = c.Prev()
	} else {
		k, v, ok, err = c.Last()
	}
	if err != nil {
		return felt.Felt{}, err
	}
	if !ok || k.Address != addr || k.Key != key || k.Block > at {
		return felt.Felt{}, nil
	}
	return v, nil
}

// GetNonceAt returns addr's nonce as of block at, or zero if never set.
func (s *Storage) GetNonceAt(tx db.Tx, addr felt.ContractAddress, at felt.BlockNumber) (felt.Nonce, error) {
	h, err := db.OpenTable(tx, noncesTable)
	if err != nil {
		return felt.Nonce{}, err
	}
	c, err := h.Cursor()
	if err != nil {
		return felt.Nonce{}, err
	}
	defer c.Close()

	k, v, ok, err := c.LowerBound(nonceKey{Address: addr, Block: at + 1})
	if err != nil {
		return felt.Nonce{}, err
	}
	if ok {
		k, v, ok, err = c.Prev()
	} else {
		k, v, ok, err = c.Last()
	}
	if err != nil {
		return felt.Nonce{}, err
	}
	if !ok || k.Address != addr || k.Block > at {
		return felt.Nonce{}, nil
	}
	return v, nil
}

// GetClassHashAt returns the class hash deployed at addr, if any, as of
// block at (deployment is a single irrevocable event per address, so no
// history walk is needed beyond the deployment-block check).
func (s *Storage) GetClassHashAt(tx db.Tx, addr felt.ContractAddress, at felt.BlockNumber) (felt.ClassHash, bool, error) {
	h, err := db.OpenTable(tx, deployedContractsTable)
	if err != nil {
		return felt.ClassHash{}, false, err
	}
	row, err := h.Get(addr)
	if err != nil {
		if apierrors.Is(err, apierrors.ErrKeyNotFound) {
			return felt.ClassHash{}, false, nil
		}
		return felt.ClassHash{}, false, err
	}
	if row.Block > at {
		return felt.ClassHash{}, false, nil
	}
	return row.ClassHash, true, nil
}

// GetStateMarker returns the smallest block number not yet appended to
// the state domain.
func (s *Storage) GetStateMarker(tx db.Tx) (felt.BlockNumber, error) {
	return getMarker(tx, schema.MarkerState)
}
