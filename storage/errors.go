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
	"errors"
	"fmt"

	"github.com/starknetcore/storage/felt"
	"github.com/starknetcore/storage/storage/schema"
)

// Caller-contract violations: always reported, never retried inside
// the engine.
var (
	// ErrDuplicateHash is returned by AppendHeader if the header's hash
	// is already mapped to a different block number.
	ErrDuplicateHash = errors.New("storage: block hash already mapped to a block number")

	// ErrDuplicateTxHash is returned by AppendBody if any transaction in
	// the body has a hash already present in tx_hash_to_index.
	ErrDuplicateTxHash = errors.New("storage: transaction hash already indexed")

	// ErrContractAlreadyDeployed is returned by AppendStateDiff when a
	// deployment names an address already present in deployed_contracts.
	ErrContractAlreadyDeployed = errors.New("storage: contract address already deployed")

	// ErrDuplicateStorageWrite is returned by AppendStateDiff when the
	// same (address, key) pair is written more than once within a
	// single state diff.
	ErrDuplicateStorageWrite = errors.New("storage: duplicate storage write for the same key within one block")

	// ErrMissingClassDeclaration is returned by AppendClasses when the
	// state diff declares a class the caller did not supply bytes for.
	ErrMissingClassDeclaration = errors.New("storage: state diff declares a class with no supplied bytes")

	// ErrExtraClassDeclaration is returned by AppendClasses when a
	// supplied class_hash was not declared in the state diff at this
	// block.
	ErrExtraClassDeclaration = errors.New("storage: class hash was not declared at this block's state diff")

	// ErrNoSierraClass is returned by AppendCompiledClass when no Sierra
	// class with the given hash has been declared.
	ErrNoSierraClass = errors.New("storage: no declared Sierra class for this compiled-class hash")
)

// MarkerMismatchError is returned by every append_* call whose
// precondition on the relevant marker (and any prerequisite marker) does
// not hold.
type MarkerMismatchError struct {
	Domain   schema.MarkerKind
	Expected felt.BlockNumber
	Got      felt.BlockNumber
}

func (e *MarkerMismatchError) Error() string {
	return fmt.Sprintf("storage: marker mismatch for %s: expected %d, got append at %d", e.Domain, e.Expected, e.Got)
}

// RevertBlockedError is returned by RevertBlock when no domain's marker
// equals n+1, so block n is the last block of no domain.
type RevertBlockedError struct {
	Domain schema.MarkerKind
	Marker felt.BlockNumber
}

func (e *RevertBlockedError) Error() string {
	return fmt.Sprintf("storage: revert blocked: %s marker is still at %d", e.Domain, e.Marker)
}
