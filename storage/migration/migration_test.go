// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.

package migration

import (
	"testing"

	"github.com/starknetcore/storage/storage/db"
)

func TestErrUnsupportedNewerVersionMessage(t *testing.T) {
	err := &ErrUnsupportedNewerVersion{OnDisk: "2.0.0", Current: CurrentVersion}
	if err.Error() == "" {
		t.Fatal("expected non-empty error message")
	}
	t.Log("✓ ErrUnsupportedNewerVersion formats on-disk and current versions")
}

func TestEmptyStoreErrorMessage(t *testing.T) {
	if ErrEmptyStoreNotAllowed.Error() == "" {
		t.Fatal("expected non-empty error message")
	}
	t.Log("✓ ErrEmptyStoreNotAllowed has a descriptive message")
}

func TestVersionTableIsNamedStorageVersion(t *testing.T) {
	if VersionTable.Name != "storage_version" {
		t.Fatalf("expected table name storage_version, got %s", VersionTable.Name)
	}
	t.Log("✓ VersionTable binds to the storage_version table name")
}

func TestRegistryOrdering(t *testing.T) {
	saved := Registry
	defer func() { Registry = saved }()

	Registry = []Step{
		{FromVersion: "0.0.0", ToVersion: "0.1.0", Apply: func(tx *db.RwTx) error { return nil }},
	}
	if len(Registry) != 1 || Registry[0].FromVersion != "0.0.0" {
		t.Fatal("expected a single registered step starting at 0.0.0")
	}
	t.Log("✓ Registry can be replaced for testing without touching package state permanently")
}
