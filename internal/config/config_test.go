package config

import (
	"os"
	"testing"

	"farcasterd/internal/testutil"
)

func TestLoadDefaults(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox: %v", err)
	}
	defer sb.Cleanup()

	cfg, err := Load(sb.Root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Network.MsgSocket != "msg.sock" {
		t.Errorf("MsgSocket = %q, want msg.sock", cfg.Network.MsgSocket)
	}
	if cfg.Funding.TimeoutSeconds != 30 {
		t.Errorf("Funding.TimeoutSeconds = %d, want 30", cfg.Funding.TimeoutSeconds)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFromYAML(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox: %v", err)
	}
	defer sb.Cleanup()

	yaml := []byte("network:\n  data_dir: " + sb.Root + "\n  ctl_socket: custom-ctl.sock\nfunding:\n  enabled: true\n")
	if err := sb.WriteFile("farcasterd.yaml", yaml, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(sb.Root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Network.CtlSocket != "custom-ctl.sock" {
		t.Errorf("CtlSocket = %q, want custom-ctl.sock", cfg.Network.CtlSocket)
	}
	if !cfg.Funding.Enabled {
		t.Errorf("Funding.Enabled = false, want true")
	}
	// Unset values still fall back to defaults.
	if cfg.Network.MsgSocket != "msg.sock" {
		t.Errorf("MsgSocket = %q, want msg.sock", cfg.Network.MsgSocket)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox: %v", err)
	}
	defer sb.Cleanup()

	os.Setenv("CTL_SOCKET", "env-ctl.sock")
	defer os.Unsetenv("CTL_SOCKET")

	cfg, err := Load(sb.Root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Network.CtlSocket != "env-ctl.sock" {
		t.Errorf("CtlSocket = %q, want env-ctl.sock (env override)", cfg.Network.CtlSocket)
	}
}

func TestFundingConfig(t *testing.T) {
	cfg := &Config{}
	cfg.Funding.Enabled = true
	cfg.Funding.FunderEndpoint = "http://localhost:1234"
	cfg.Funding.TimeoutSeconds = 7
	cfg.Funding.Mnemonic = "abandon abandon abandon"

	fc := cfg.FundingConfig()
	if !fc.Enabled || fc.FunderEndpoint != cfg.Funding.FunderEndpoint || fc.Mnemonic != cfg.Funding.Mnemonic {
		t.Fatalf("FundingConfig did not carry fields through: %+v", fc)
	}
	if fc.Timeout.Seconds() != 7 {
		t.Errorf("Timeout = %v, want 7s", fc.Timeout)
	}
}
