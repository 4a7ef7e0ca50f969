package main

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
)

func parseSwapID(raw string) (address.SwapID, error) {
	var id address.SwapID
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return id, fmt.Errorf("malformed swap id: %w", err)
	}
	if len(decoded) != len(id) {
		return id, errors.New("swap id must be 32 bytes hex-encoded")
	}
	copy(id[:], decoded)
	return id, nil
}

func checkpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkpoints",
		Short: "list persisted swap checkpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call(rpcSocket, busproto.ListCheckpointsRequest{})
			if err != nil {
				return err
			}
			for _, e := range resp.(busproto.ListCheckpointsResponse).Entries {
				fmt.Printf("%s\trole=%s\tmaker=%v\n", e.SwapID, e.Role, e.IsMaker)
			}
			return nil
		},
	}
}

func restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <swap-id>",
		Short: "resume a swap from its persisted checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSwapID(args[0])
			if err != nil {
				return userErr(err)
			}
			_, err = call(rpcSocket, busproto.RestoreRequest{SwapID: id})
			if err != nil {
				return err
			}
			fmt.Println("restore requested")
			return nil
		},
	}
}

func abortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abort <swap-id>",
		Short: "abort a running swap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSwapID(args[0])
			if err != nil {
				return userErr(err)
			}
			_, err = call(rpcSocket, busproto.AbortRequest{SwapID: id})
			if err != nil {
				return err
			}
			fmt.Println("swap aborted")
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	var network string
	cmd := &cobra.Command{
		Use:   "sweep <bitcoin|monero> <source-key> <dest-addr>",
		Short: "sweep leftover funds from a source key to a destination address",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := parseChain(args[0])
			if err != nil {
				return userErr(err)
			}
			net, err := parseNetwork(network)
			if err != nil {
				return userErr(err)
			}
			resp, err := call(rpcSocket, busproto.SweepRequest{
				Chain:   chain,
				Network: net,
				Source:  args[1],
				Dest:    args[2],
			})
			if err != nil {
				return err
			}
			fmt.Println(resp.(busproto.Success).Details)
			return nil
		},
	}
	cmd.Flags().StringVar(&network, "network", "Mainnet", "Mainnet|Testnet|Local")
	return cmd
}
