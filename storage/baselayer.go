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

// UpdateBaseLayerMarker advances markers.BaseLayer to n, tracking the
// highest block this node has observed settled on L1. It only ever
// advances; callers that race it across processes must serialize
// externally the same way any other append does.
func UpdateBaseLayerMarker(tx *db.RwTx, n felt.BlockNumber) error {
	current, err := getMarker(tx, schema.MarkerBaseLayer)
	if err != nil {
		return err
	}
	if n < current {
		return nil
	}
	return setMarker(tx, schema.MarkerBaseLayer, n)
}

// TryRevertBaseLayerMarker rolls markers.BaseLayer back to revertedN
// only when it currently equals revertedN+1 exactly; per the current
// rule, reverting a block older than the base-layer marker is a no-op.
func TryRevertBaseLayerMarker(tx *db.RwTx, revertedN felt.BlockNumber) error {
	current, err := getMarker(tx, schema.MarkerBaseLayer)
	if err != nil {
		return err
	}
	if current != revertedN+1 {
		return nil
	}
	return setMarker(tx, schema.MarkerBaseLayer, revertedN)
}

// GetBaseLayerMarker returns the highest block number known settled on
// the base layer.
func GetBaseLayerMarker(tx db.Tx) (felt.BlockNumber, error) {
	return getMarker(tx, schema.MarkerBaseLayer)
}
