package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"farcasterd/internal/busproto"
	"farcasterd/internal/offer"
	"farcasterd/pkg/offerenc"
)

func makeCmd() *cobra.Command {
	var (
		network        string
		arbitrating    string
		accordant      string
		arbAmount      uint64
		accAmount      uint64
		cancelTimelock uint32
		punishTimelock uint32
		feeStrategy    string
		makerRole      string
		bindAddr       string
	)
	cmd := &cobra.Command{
		Use:   "make",
		Short: "propose a new public offer and start listening for a taker",
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := parseNetwork(network)
			if err != nil {
				return userErr(err)
			}
			arb, err := parseChain(arbitrating)
			if err != nil {
				return userErr(err)
			}
			acc, err := parseChain(accordant)
			if err != nil {
				return userErr(err)
			}
			role, err := parseRole(makerRole)
			if err != nil {
				return userErr(err)
			}
			if bindAddr == "" {
				return userErr(fmt.Errorf("--bind-addr is required"))
			}

			resp, err := call(rpcSocket, busproto.MakeOffer{Proto: busproto.OfferParams{
				Network:           net,
				Arbitrating:       arb,
				Accordant:         acc,
				ArbitratingAmount: arbAmount,
				AccordantAmount:   accAmount,
				CancelTimelock:    cancelTimelock,
				PunishTimelock:    punishTimelock,
				FeeStrategy:       feeStrategy,
				Maker:             role,
				BindAddr:          bindAddr,
			}})
			if err != nil {
				return err
			}
			made := resp.(busproto.MadeOffer)
			display, err := offerenc.DisplayString(made.Offer)
			if err != nil {
				return fatalf("encode offer for display: %v", err)
			}
			fmt.Println(display)
			return nil
		},
	}
	cmd.Flags().StringVar(&network, "network", "Mainnet", "Mainnet|Testnet|Local")
	cmd.Flags().StringVar(&arbitrating, "arbitrating", "Bitcoin", "arbitrating (B) chain")
	cmd.Flags().StringVar(&accordant, "accordant", "Monero", "accordant (A) chain")
	cmd.Flags().Uint64Var(&arbAmount, "arbitrating-amount", 0, "amount on the arbitrating chain, in its smallest unit")
	cmd.Flags().Uint64Var(&accAmount, "accordant-amount", 0, "amount on the accordant chain, in its smallest unit")
	cmd.Flags().Uint32Var(&cancelTimelock, "cancel-timelock", 0, "cancel timelock, in blocks")
	cmd.Flags().Uint32Var(&punishTimelock, "punish-timelock", 0, "punish timelock, in blocks")
	cmd.Flags().StringVar(&feeStrategy, "fee-strategy", "", "fee strategy descriptor")
	cmd.Flags().StringVar(&makerRole, "maker-role", "Bob", "Alice|Bob: the role the maker takes")
	cmd.Flags().StringVar(&bindAddr, "bind-addr", "", "socket address to listen for the taker on")
	return cmd
}

func takeCmd() *cobra.Command {
	var (
		arbitratingAddr   string
		accordantAddr     string
		withoutValidation bool
	)
	cmd := &cobra.Command{
		Use:   "take <public-offer>",
		Short: "take a public offer shared by a maker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := offerenc.ParseDisplayString(args[0])
			if err != nil {
				return userErr(fmt.Errorf("malformed public offer: %w", err))
			}
			if arbitratingAddr == "" || accordantAddr == "" {
				return userErr(fmt.Errorf("--arbitrating-addr and --accordant-addr are required"))
			}
			_, err = call(rpcSocket, busproto.TakeOffer{
				PublicOffer:       po,
				ArbitratingAddr:   arbitratingAddr,
				AccordantAddr:     accordantAddr,
				WithoutValidation: withoutValidation,
			})
			if err != nil {
				return err
			}
			fmt.Printf("taking offer %s\n", po.Offer.UUID)
			return nil
		},
	}
	cmd.Flags().StringVar(&arbitratingAddr, "arbitrating-addr", "", "refund/receive address on the arbitrating chain")
	cmd.Flags().StringVar(&accordantAddr, "accordant-addr", "", "receive address on the accordant chain")
	cmd.Flags().BoolVar(&withoutValidation, "without-validation", false, "skip the offer's own validation rules")
	return cmd
}

func revokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <public-offer>",
		Short: "revoke an open offer this node made",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := offerenc.ParseDisplayString(args[0])
			if err != nil {
				return userErr(fmt.Errorf("malformed public offer: %w", err))
			}
			_, err = call(rpcSocket, busproto.RevokeOffer{PublicOffer: po})
			if err != nil {
				return err
			}
			fmt.Println("offer revoked")
			return nil
		},
	}
}

func parseNetwork(s string) (offer.Network, error) {
	switch s {
	case "Mainnet", "mainnet":
		return offer.Mainnet, nil
	case "Testnet", "testnet":
		return offer.Testnet, nil
	case "Local", "local":
		return offer.Local, nil
	default:
		return "", fmt.Errorf("unknown network %q (want Mainnet|Testnet|Local)", s)
	}
}

func parseRole(s string) (offer.Role, error) {
	switch s {
	case "Alice", "alice":
		return offer.Alice, nil
	case "Bob", "bob":
		return offer.Bob, nil
	default:
		return "", fmt.Errorf("unknown role %q (want Alice|Bob)", s)
	}
}
