// Package workerutil holds the bits every boundary worker binary
// (peerd/syncerd/keymanagerd/stored/swapd) needs identically: parsing the
// common socket flags supervisor.Supervisor passes on launch and exiting on
// the orchestrator's Terminate. Each worker sends its own startup Hello.
package workerutil

import "flag"

// CommonFlags is the --data-dir/--msg-socket/--ctl-socket/--rpc-socket/
// --sync-socket/--tor-proxy flag block every worker accepts, whether or
// not it dials every lane.
type CommonFlags struct {
	DataDir    string
	MsgSocket  string
	CtlSocket  string
	RpcSocket  string
	SyncSocket string
	TorProxy   string
}

// ParseNoFlags is Parse for worker kinds that take no flags of their own.
func ParseNoFlags(args []string) *CommonFlags {
	return Parse(flag.NewFlagSet("worker", flag.ExitOnError), args)
}

// Parse registers the common flags plus any kind-specific flags the caller
// has already added to fs, then parses args (normally os.Args[1:]).
func Parse(fs *flag.FlagSet, args []string) *CommonFlags {
	f := &CommonFlags{}
	fs.StringVar(&f.DataDir, "data-dir", "", "node data directory")
	fs.StringVar(&f.MsgSocket, "msg-socket", "", "path to the Msg lane socket")
	fs.StringVar(&f.CtlSocket, "ctl-socket", "", "path to the Ctl lane socket")
	fs.StringVar(&f.RpcSocket, "rpc-socket", "", "path to the Rpc lane socket")
	fs.StringVar(&f.SyncSocket, "sync-socket", "", "path to the Sync lane socket")
	fs.StringVar(&f.TorProxy, "tor-proxy", "", "SOCKS5 proxy for peer connections")
	_ = fs.Parse(args)
	return f
}
