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

// Command storage-debug inspects an existing storage directory: its
// markers, a single header, or an address's events.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/starknetcore/storage/felt"
	"github.com/starknetcore/storage/log"
	"github.com/starknetcore/storage/params"
	"github.com/starknetcore/storage/storage"
)

// parseFelt decodes a "0x"-prefixed hex string into a left-padded Felt.
func parseFelt(s string) (felt.Felt, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return felt.Felt{}, err
	}
	if len(raw) > 32 {
		return felt.Felt{}, fmt.Errorf("felt: %d bytes exceeds 32-byte width", len(raw))
	}
	padded := make([]byte, 32)
	copy(padded[32-len(raw):], raw)
	return felt.FromBytes(padded)
}

var pathFlag = &cli.StringFlag{
	Name:     "path",
	Aliases:  []string{"p"},
	Usage:    "storage root directory (parent of <chain-id>/mdbx)",
	Required: true,
}

var chainFlag = &cli.StringFlag{
	Name:  "chain",
	Usage: "chain id subdirectory under --path",
	Value: "mainnet",
}

func openStorage(c *cli.Context) (*storage.Storage, error) {
	cfg := storage.DefaultStorageConfig(c.String(pathFlag.Name), c.String(chainFlag.Name))
	cfg.DB.EnforceFileExists = true
	return storage.Open(context.Background(), cfg)
}

func markersCmd(c *cli.Context) error {
	s, err := openStorage(c)
	if err != nil {
		return err
	}
	defer s.Close()

	tx, err := s.BeginRO()
	if err != nil {
		return err
	}
	defer tx.Close()

	header, err := storage.GetHeaderMarker(tx)
	if err != nil {
		return err
	}
	body, err := storage.GetBodyMarker(tx)
	if err != nil {
		return err
	}
	state, err := s.GetStateMarker(tx)
	if err != nil {
		return err
	}
	class, err := s.GetClassMarker(tx)
	if err != nil {
		return err
	}
	compiledClass, err := s.GetCompiledClassMarker(tx)
	if err != nil {
		return err
	}
	baseLayer, err := storage.GetBaseLayerMarker(tx)
	if err != nil {
		return err
	}

	fmt.Printf("Header         %d\n", header)
	fmt.Printf("Body           %d\n", body)
	fmt.Printf("State          %d\n", state)
	fmt.Printf("Class          %d\n", class)
	fmt.Printf("CompiledClass  %d\n", compiledClass)
	fmt.Printf("BaseLayer      %d\n", baseLayer)
	return nil
}

func headerCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return cli.Exit("usage: storage-debug header --path ... <block-number>", 1)
	}
	var n felt.BlockNumber
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &n); err != nil {
		return cli.Exit(fmt.Sprintf("invalid block number: %v", err), 1)
	}

	s, err := openStorage(c)
	if err != nil {
		return err
	}
	defer s.Close()

	tx, err := s.BeginRO()
	if err != nil {
		return err
	}
	defer tx.Close()

	h, ok, err := storage.GetHeader(tx, n)
	if err != nil {
		return err
	}
	if !ok {
		return cli.Exit(fmt.Sprintf("block %d not found", n), 1)
	}
	fmt.Printf("%+v\n", h)
	return nil
}

func eventsCmd(c *cli.Context) error {
	addrHex := c.String("address")
	if addrHex == "" {
		return cli.Exit("--address is required", 1)
	}
	addr, err := parseFelt(addrHex)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid address: %v", err), 1)
	}

	s, err := openStorage(c)
	if err != nil {
		return err
	}
	defer s.Close()

	tx, err := s.BeginRO()
	if err != nil {
		return err
	}
	defer tx.Close()

	filter := storage.EventFilter{
		FromBlock: felt.BlockNumber(c.Uint64("from")),
		ToBlock:   felt.BlockNumber(c.Uint64("to")),
		Address:   felt.ContractAddress(addr),
	}
	it, err := s.IterEvents(tx, filter)
	if err != nil {
		return err
	}
	defer it.Close()

	n := 0
	for {
		rec, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		fmt.Printf("block=%d offset=%d index=%d keys=%d data=%d\n",
			rec.Block, rec.Offset, rec.Index, len(rec.Event.Keys), len(rec.Event.Data))
		n++
	}
	fmt.Printf("%d event(s)\n", n)
	return nil
}

func main() {
	app := &cli.App{
		Name:    "storage-debug",
		Usage:   "inspect a starknet-storage data directory",
		Version: params.VersionWithMeta,
		Flags:   []cli.Flag{pathFlag, chainFlag},
		Commands: []*cli.Command{
			{
				Name:   "markers",
				Usage:  "print every domain's current marker",
				Action: markersCmd,
			},
			{
				Name:      "header",
				Usage:     "print one block's header",
				ArgsUsage: "<block-number>",
				Action:    headerCmd,
			},
			{
				Name:  "events",
				Usage: "iterate events for an address",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "address", Required: true},
					&cli.Uint64Flag{Name: "from"},
					&cli.Uint64Flag{Name: "to", Value: ^uint64(0)},
				},
				Action: eventsCmd,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("storage-debug failed", "error", err)
		os.Exit(1)
	}
}
