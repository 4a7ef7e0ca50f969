package main

import (
	"encoding/hex"
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"farcasterd/internal/progress"
)

// progressCmd follows a swap's progress log over the REST gateway's
// websocket endpoint (internal/walletrpc/websocket.go) rather than the Rpc
// lane: progress is a loopback convenience surface, not a bus request.
func progressCmd() *cobra.Command {
	var (
		follow      bool
		gatewayAddr string
	)
	cmd := &cobra.Command{
		Use:   "progress <swap-id>",
		Short: "print a swap's progress log, optionally following it live",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSwapID(args[0])
			if err != nil {
				return userErr(err)
			}

			u := url.URL{Scheme: "ws", Host: gatewayAddr, Path: "/progress/" + hex.EncodeToString(id[:])}
			conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
			if err != nil {
				return fatalf("connect to gateway at %s: %v", gatewayAddr, err)
			}
			defer conn.Close()

			for {
				var ev progress.Event
				if err := conn.ReadJSON(&ev); err != nil {
					return nil
				}
				printProgressEvent(ev)
				if !follow && (ev.Kind == progress.Success || ev.Kind == progress.Failure) {
					return nil
				}
			}
		},
	}
	cmd.Flags().BoolVar(&follow, "follow", false, "keep streaming after the terminal event")
	cmd.Flags().StringVar(&gatewayAddr, "gateway-addr", "localhost:8080", "host:port of farcasterd's REST gateway")
	return cmd
}

func printProgressEvent(ev progress.Event) {
	switch ev.Kind {
	case progress.StateTransition:
		fmt.Printf("-> %s\n", ev.Text)
	case progress.Success:
		fmt.Printf("done: %s\n", ev.Info)
	case progress.Failure:
		fmt.Printf("failed [%s]: %s\n", ev.Code, ev.Info)
	default:
		fmt.Println(ev.Text)
	}
}
