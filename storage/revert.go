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
	"github.com/starknetcore/storage/storage/db"
	"github.com/starknetcore/storage/storage/schema"
)

// RevertReport describes which domains RevertBlock actually tail-
// truncated, highest marker first.
type RevertReport struct {
	Domains []schema.MarkerKind
}

// RevertBlock removes block n from every domain whose marker currently
// equals n+1, proceeding from the highest-ordered domain (CompiledClass)
// down to Header, so a higher domain is always torn down before a lower
// one. It fails with RevertBlockedError, reverting nothing, if no
// domain's marker equals n+1.
func (s *Storage) RevertBlock(tx *db.RwTx, n felt.BlockNumber) (RevertReport, error) {
	order := []schema.MarkerKind{
		schema.MarkerCompiledClass,
		schema.MarkerClass,
		schema.MarkerState,
		schema.MarkerBody,
		schema.MarkerHeader,
	}

	var report RevertReport
	for _, kind := range order {
		marker, err := getMarker(tx, kind)
		if err != nil {
			return report, err
		}
		if marker != n+1 {
			// Nothing to do for this domain: n is not its last block.
			continue
		}
		if err := s.revertDomain(tx, kind, n); err != nil {
			return report, err
		}
		observeRevert(kind)
		report.Domains = append(report.Domains, kind)
	}

	if len(report.Domains) == 0 {
		return report, &RevertBlockedError{Domain: schema.MarkerHeader, Marker: n}
	}
	return report, nil
}

func (s *Storage) revertDomain(tx *db.RwTx, kind schema.MarkerKind, n felt.BlockNumber) error {
	switch kind {
	case schema.MarkerCompiledClass:
		if err := s.revertCompiledClasses(tx, n); err != nil {
			return err
		}
	case schema.MarkerClass:
		if err := s.revertClasses(tx, n); err != nil {
			return err
		}
	case schema.MarkerState:
		if err := s.revertStateDiff(tx, n); err != nil {
			return err
		}
	case schema.MarkerBody:
		if err := s.revertBody(tx, n); err != nil {
			return err
		}
	case schema.MarkerHeader:
		if err := revertHeader(tx, n); err != nil {
			return err
		}
		if n > 0 {
			if err := TryRevertBaseLayerMarker(tx, n-1); err != nil {
				return err
			}
		}
	}
	return setMarker(tx, kind, n)
}

func revertHeader(tx *db.RwTx, n felt.BlockNumber) error {
	headers, err := db.OpenRwTable(tx, headersTable)
	if err != nil {
		return err
	}
	h, err := headers.Get(n)
	if err != nil {
		return err
	}
	if err := headers.Delete(n); err != nil {
		return err
	}
	hashes, err := db.OpenRwTable(tx, blockHashToNumberTable)
	if err != nil {
		return err
	}
	if err := hashes.Delete(h.Hash); err != nil {
		return err
	}
	signatures, err := db.OpenRwTable(tx, blockSignaturesTable)
	if err != nil {
		return err
	}
	return signatures.Delete(n)
}

func (s *Storage) revertBody(tx *db.RwTx, n felt.BlockNumber) error {
	txs, err := db.OpenRwTable(tx, transactionsTable)
	if err != nil {
		return err
	}
	outputs, err := db.OpenRwTable(tx, transactionOutputsTable)
	if err != nil {
		return err
	}
	lookup, err := db.OpenRwTable(tx, txHashToIndexTable)
	if err != nil {
		return err
	}
	events, err := db.OpenRwTable(tx, eventsTable)
	if err != nil {
		return err
	}

	var rows []txKey
	var hashesToDrop []felt.TxHash
	{
		c, err := txs.Cursor()
		if err != nil {
			return err
		}
		for k, v, ok, err := c.Seek(txKey{Block: n, Offset: 0}); ok; k, v, ok, err = c.Next() {
			if err != nil {
				c.Close()
				return err
			}
			if k.Block != n {
				break
			}
			rows = append(rows, k)
			hashesToDrop = append(hashesToDrop, v.Hash)
		}
		c.Close()
	}

	var eventKeys []eventKey
	{
		c, err := events.Cursor()
		if err != nil {
			return err
		}
		for k, _, ok, err := c.First(); ok; k, _, ok, err = c.Next() {
			if err != nil {
				c.Close()
				return err
			}
			if k.Block == n {
				eventKeys = append(eventKeys, k)
			}
		}
		c.Close()
	}
	touched := map[felt.ContractAddress]struct{}{}
	for _, k := range eventKeys {
		if err := events.Delete(k); err != nil {
			return err
		}
		touched[k.Address] = struct{}{}
	}
	for addr := range touched {
		s.eventIdx.invalidate(addr)
	}

	for _, k := range rows {
		if err := txs.Delete(k); err != nil {
			return err
		}
		if err := outputs.Delete(k); err != nil {
			return err
		}
	}
	for _, h := range hashesToDrop {
		if err := lookup.Delete(h); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) revertStateDiff(tx *db.RwTx, n felt.BlockNumber) error {
	stateDiffs, err := db.OpenRwTable(tx, stateDiffsTable)
	if err != nil {
		return err
	}
	if err := stateDiffs.Delete(n); err != nil {
		return err
	}

	deployed, err := db.OpenRwTable(tx, deployedContractsTable)
	if err != nil {
		return err
	}
	if err := deleteMatchingRows(deployed, func(row deployedContractRow) bool { return row.Block == n }); err != nil {
		return err
	}

	storageTbl, err := db.OpenRwTable(tx, contractStorageTable)
	if err != nil {
		return err
	}
	if err := deleteMatchingKeys(storageTbl, func(k storageKey) bool { return k.Block == n }); err != nil {
		return err
	}

	noncesTbl, err := db.OpenRwTable(tx, noncesTable)
	if err != nil {
		return err
	}
	if err := deleteMatchingKeys(noncesTbl, func(k nonceKey) bool { return k.Block == n }); err != nil {
		return err
	}
	return nil
}

func (s *Storage) revertClasses(tx *db.RwTx, n felt.BlockNumber) error {
	declared, err := db.OpenRwTable(tx, declaredClassesTable)
	if err != nil {
		return err
	}
	if err := deleteMatchingRows(declared, func(row classDeclarationRow) bool { return row.Block == n }); err != nil {
		return err
	}
	deprecated, err := db.OpenRwTable(tx, deprecatedDeclaredClassesTable)
	if err != nil {
		return err
	}
	return deleteMatchingRows(deprecated, func(row classDeclarationRow) bool { return row.Block == n })
}

func (s *Storage) revertCompiledClasses(tx *db.RwTx, n felt.BlockNumber) error {
	declared, err := db.OpenTable(tx, declaredClassesTable)
	if err != nil {
		return err
	}
	compiled, err := db.OpenRwTable(tx, compiledClassesTable)
	if err != nil {
		return err
	}
	c, err := declared.Cursor()
	if err != nil {
		return err
	}
	defer c.Close()
	for classHash, row, ok, err := c.First(); ok; classHash, row, ok, err = c.Next() {
		if err != nil {
			return err
		}
		if row.Block != n {
			continue
		}
		if err := compiled.Delete(classHash); err != nil {
			return err
		}
		if s.casmCache != nil {
			s.casmCache.Remove(classHash)
		}
	}
	return nil
}

// deleteMatchingRows removes every row whose value satisfies pred by
// scanning the whole table; these domains are never large enough within
// one block's worth of rows for this to dominate revert cost.
func deleteMatchingRows[K comparable, V any](h db.RwTableHandle[K, V], pred func(V) bool) error {
	c, err := h.Cursor()
	if err != nil {
		return err
	}
	var keys []K
	for k, v, ok, err := c.First(); ok; k, v, ok, err = c.Next() {
		if err != nil {
			c.Close()
			return err
		}
		if pred(v) {
			keys = append(keys, k)
		}
	}
	c.Close()
	for _, k := range keys {
		if err := h.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func deleteMatchingKeys[K comparable, V any](h db.RwTableHandle[K, V], pred func(K) bool) error {
	c, err := h.Cursor()
	if err != nil {
		return err
	}
	var keys []K
	for k, _, ok, err := c.First(); ok; k, _, ok, err = c.Next() {
		if err != nil {
			c.Close()
			return err
		}
		if pred(k) {
			keys = append(keys, k)
		}
	}
	c.Close()
	for _, k := range keys {
		if err := h.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
