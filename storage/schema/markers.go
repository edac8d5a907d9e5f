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

package schema

import (
	"errors"
	"fmt"

	"github.com/starknetcore/storage/felt"
)

// MarkerKind names one of the six append domains tracked by Markers.
type MarkerKind int

const (
	MarkerHeader MarkerKind = iota
	MarkerBody
	MarkerState
	MarkerClass
	MarkerCompiledClass
	MarkerBaseLayer
	markerCount
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerHeader:
		return "Header"
	case MarkerBody:
		return "Body"
	case MarkerState:
		return "State"
	case MarkerClass:
		return "Class"
	case MarkerCompiledClass:
		return "CompiledClass"
	case MarkerBaseLayer:
		return "BaseLayer"
	default:
		return "Unknown"
	}
}

// ErrMarkerInvariant is returned by Validate when two markers violate
// their required ordering.
var ErrMarkerInvariant = errors.New("schema: marker invariant violated")

// Markers is the smallest-block-number-not-yet-present per domain. All
// markers start at zero; each append_X advances markers.X by exactly 1.
type Markers [markerCount]felt.BlockNumber

// Get returns the marker value for kind.
func (m Markers) Get(kind MarkerKind) felt.BlockNumber { return m[kind] }

// Set assigns the marker value for kind.
func (m *Markers) Set(kind MarkerKind, n felt.BlockNumber) { m[kind] = n }

// Validate checks invariants 1-2 of the data model:
// Header >= Body >= State >= Class >= CompiledClass, and BaseLayer <= Header.
func (m Markers) Validate() error {
	chain := []MarkerKind{MarkerHeader, MarkerBody, MarkerState, MarkerClass, MarkerCompiledClass}
	for i := 1; i < len(chain); i++ {
		if m[chain[i-1]] < m[chain[i]] {
			return fmt.Errorf("%w: %s (%d) < %s (%d)", ErrMarkerInvariant,
				chain[i-1], m[chain[i-1]], chain[i], m[chain[i]])
		}
	}
	if m[MarkerBaseLayer] > m[MarkerHeader] {
		return fmt.Errorf("%w: BaseLayer (%d) > Header (%d)", ErrMarkerInvariant, m[MarkerBaseLayer], m[MarkerHeader])
	}
	return nil
}
