package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"farcasterd/internal/busproto"
	"farcasterd/internal/offer"
)

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "print node summary: uptime, listener/peer/offer/swap/syncer counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call(rpcSocket, busproto.InfoRequest{})
			if err != nil {
				return err
			}
			info := resp.(busproto.NodeInfo)
			fmt.Printf("version:    %s\n", info.Version)
			fmt.Printf("uptime:     %s\n", info.Uptime)
			fmt.Printf("listens:    %d\n", info.ListenCount)
			fmt.Printf("peers:      %d\n", info.PeerCount)
			fmt.Printf("offers:     %d\n", info.OfferCount)
			fmt.Printf("swaps:      %d\n", info.SwapCount)
			fmt.Printf("syncers:    %d\n", info.SyncerCount)
			return nil
		},
	}
}

func peersCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "peers",
		Aliases: []string{"ls"},
		Short:   "list connected peers",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call(rpcSocket, busproto.ListPeersRequest{})
			if err != nil {
				return err
			}
			for _, p := range resp.(busproto.ListPeersResponse).Peers {
				fmt.Printf("%s\tswaps=%d\n", p.NodeAddr, p.SwapCount)
			}
			return nil
		},
	}
}

func listensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listens",
		Short: "list bound listener addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call(rpcSocket, busproto.ListListensRequest{})
			if err != nil {
				return err
			}
			for _, addr := range resp.(busproto.ListListensResponse).Addrs {
				fmt.Println(addr)
			}
			return nil
		},
	}
}

func offersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offers [open|in-progress|ended]",
		Short: "list public offers by lifecycle selector (default: open)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := busproto.SelectOpen
			if len(args) == 1 {
				var err error
				sel, err = parseSelector(args[0])
				if err != nil {
					return userErr(err)
				}
			}
			resp, err := call(rpcSocket, busproto.ListOffersRequest{Selector: sel})
			if err != nil {
				return err
			}
			for _, po := range resp.(busproto.ListOffersResponse).Offers {
				fmt.Printf("%s\t%s<->%s\t%s\n", po.Offer.UUID, po.Offer.Accordant, po.Offer.Arbitrating, po.PeerSocket)
			}
			return nil
		},
	}
	return cmd
}

func parseSelector(s string) (busproto.OfferSelector, error) {
	switch s {
	case "open":
		return busproto.SelectOpen, nil
	case "in-progress":
		return busproto.SelectInProgress, nil
	case "ended":
		return busproto.SelectEnded, nil
	default:
		return 0, fmt.Errorf("unknown selector %q (want open|in-progress|ended)", s)
	}
}

func needsFundingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "needs-funding <chain>",
		Short: "list swaps awaiting funding on a chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := parseChain(args[0])
			if err != nil {
				return userErr(err)
			}
			resp, err := call(rpcSocket, busproto.NeedsFundingRequest{Chain: chain})
			if err != nil {
				return err
			}
			for _, f := range resp.(busproto.NeedsFundingResponse).Addresses {
				fmt.Printf("%s\t%s\t%d\n", f.Chain, f.Address, f.Amount)
			}
			return nil
		},
	}
}

func parseChain(s string) (offer.Chain, error) {
	switch s {
	case "bitcoin", "Bitcoin":
		return offer.Bitcoin, nil
	case "monero", "Monero":
		return offer.Monero, nil
	default:
		return "", fmt.Errorf("unknown chain %q (want bitcoin|monero)", s)
	}
}
