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

// Command storage-migrate brings an existing storage directory's schema
// up to the current version. Both of its commands open the store, which
// applies any pending migration; status then also reports the version.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/starknetcore/storage/log"
	"github.com/starknetcore/storage/params"
	"github.com/starknetcore/storage/storage"
	"github.com/starknetcore/storage/storage/migration"
)

var (
	pathFlag = &cli.StringFlag{
		Name:     "path",
		Aliases:  []string{"p"},
		Usage:    "storage root directory (parent of <chain-id>/mdbx)",
		Required: true,
	}
	chainFlag = &cli.StringFlag{
		Name:  "chain",
		Usage: "chain id subdirectory under --path",
		Value: "mainnet",
	}
)

func statusCmd(c *cli.Context) error {
	s, err := storage.Open(context.Background(), openConfig(c, true))
	if err != nil {
		return err
	}
	defer s.Close()

	v, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	fmt.Printf("on-disk version: %s\n", v)
	fmt.Printf("binary version:  %s\n", migration.CurrentVersion)
	if v != migration.CurrentVersion {
		return cli.Exit("store is behind the version this binary writes", 1)
	}
	return nil
}

func runCmd(c *cli.Context) error {
	before := openConfig(c, true)
	s, err := storage.Open(context.Background(), before)
	if err != nil {
		return err
	}
	defer s.Close()

	v, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	log.Info("storage-migrate: store is at current version", "version", v)
	return nil
}

func openConfig(c *cli.Context, enforceExists bool) storage.StorageConfig {
	cfg := storage.DefaultStorageConfig(c.String(pathFlag.Name), c.String(chainFlag.Name))
	cfg.DB.EnforceFileExists = enforceExists
	return cfg
}

func main() {
	app := &cli.App{
		Name:    "storage-migrate",
		Usage:   "report or apply schema migrations for a starknet-storage data directory",
		Version: params.VersionWithMeta,
		Flags:   []cli.Flag{pathFlag, chainFlag},
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "open the store (applying any pending migration) and print its version",
				Action: statusCmd,
			},
			{
				Name:   "run",
				Usage:  "apply any pending migration steps",
				Action: runCmd,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("storage-migrate failed", "error", err)
		os.Exit(1)
	}
}
