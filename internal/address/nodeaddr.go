package address

import (
	"net"
	"strconv"
	"strings"

	ma "github.com/multiformats/go-multiaddr"
)

// Normalize canonicalizes a peer socket address so that two textually
// different but equivalent addresses ("127.0.0.1:9376" vs a multiaddr form)
// compare equal once wrapped in a ServiceAddress. Input that already parses
// as a multiaddr is re-rendered in go-multiaddr's canonical form; host:port
// input is converted to /ip4|ip6/<host>/tcp/<port>; a string that fails to
// parse as either is kept verbatim so callers never lose an address over a
// formatting quirk.
func Normalize(nodeAddr string) string {
	if addr, err := ma.NewMultiaddr(nodeAddr); err == nil {
		return addr.String()
	}
	host, port, err := net.SplitHostPort(nodeAddr)
	if err != nil {
		return nodeAddr
	}
	proto := "ip4"
	if strings.Contains(host, ":") {
		proto = "ip6"
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return nodeAddr
	}
	addr, err := ma.NewMultiaddr("/" + proto + "/" + host + "/tcp/" + port)
	if err != nil {
		return nodeAddr
	}
	return addr.String()
}

// SplitSocket extracts host/port from a normalized or raw node address,
// used when a worker needs an actual dial target rather than a comparison
// key.
func SplitSocket(nodeAddr string) (host, port string, err error) {
	if addr, maErr := ma.NewMultiaddr(nodeAddr); maErr == nil {
		host, hErr := addr.ValueForProtocol(ma.P_IP4)
		if hErr != nil {
			host, hErr = addr.ValueForProtocol(ma.P_IP6)
		}
		if hErr != nil {
			return "", "", hErr
		}
		port, pErr := addr.ValueForProtocol(ma.P_TCP)
		if pErr != nil {
			return "", "", pErr
		}
		return host, port, nil
	}
	return net.SplitHostPort(nodeAddr)
}
