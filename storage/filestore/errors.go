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

package filestore

import "errors"

var (
	// ErrSegmentFull is returned internally by appendLocked when a
	// write would cross the configured segment size; Append catches it,
	// rolls to a new segment, and retries once.
	ErrSegmentFull = errors.New("filestore: segment full")

	// ErrObjectTooLarge is returned by Append when payload exceeds the
	// configured max object size.
	ErrObjectTooLarge = errors.New("filestore: object exceeds max_object_size")

	// ErrOrphanRecovery is returned by Open if the on-disk segment sizes
	// are smaller than the caller's maxReferencedLocation, meaning a KV
	// row points at bytes that were never actually written — a
	// corruption this package cannot repair itself.
	ErrOrphanRecovery = errors.New("filestore: KV references bytes absent from segment files")
)
