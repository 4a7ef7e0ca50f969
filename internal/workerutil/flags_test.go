package workerutil

import (
	"flag"
	"testing"
)

func TestParseNoFlagsReadsCommonSocketFlags(t *testing.T) {
	f := ParseNoFlags([]string{
		"--data-dir", "/tmp/data",
		"--msg-socket", "msg.sock",
		"--ctl-socket", "ctl.sock",
		"--rpc-socket", "rpc.sock",
		"--sync-socket", "sync.sock",
		"--tor-proxy", "127.0.0.1:9050",
	})
	if f.DataDir != "/tmp/data" || f.MsgSocket != "msg.sock" || f.CtlSocket != "ctl.sock" ||
		f.RpcSocket != "rpc.sock" || f.SyncSocket != "sync.sock" || f.TorProxy != "127.0.0.1:9050" {
		t.Fatalf("unexpected parsed flags: %+v", f)
	}
}

func TestParseAllowsKindSpecificFlagsAlongsideCommonOnes(t *testing.T) {
	fs := flag.NewFlagSet("syncerd", flag.ContinueOnError)
	var chain string
	fs.StringVar(&chain, "chain", "", "chain to sync")

	f := Parse(fs, []string{"--chain", "Bitcoin", "--ctl-socket", "ctl.sock"})
	if chain != "Bitcoin" {
		t.Fatalf("expected the kind-specific flag parsed, got %q", chain)
	}
	if f.CtlSocket != "ctl.sock" {
		t.Fatalf("expected the common flag parsed alongside it, got %+v", f)
	}
}

func TestParseNoFlagsDefaultsToEmptyStrings(t *testing.T) {
	f := ParseNoFlags(nil)
	if f.DataDir != "" || f.MsgSocket != "" {
		t.Fatalf("expected zero-value defaults with no args, got %+v", f)
	}
}
