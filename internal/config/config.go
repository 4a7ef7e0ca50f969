// Package config loads the daemon's configuration with a viper-backed
// loader, covering the bus-socket layout and funding settings a swap
// coordinator needs rather than a blockchain node's.
package config

import (
	"time"

	"github.com/spf13/viper"

	"farcasterd/internal/funding"
	"farcasterd/pkg/utils"
)

// Config is the unified daemon configuration, loaded from
// <data-dir>/farcasterd.yaml plus a handful of env var overrides.
type Config struct {
	Network struct {
		DataDir                     string `mapstructure:"data_dir"`
		MsgSocket                   string `mapstructure:"msg_socket"`
		CtlSocket                   string `mapstructure:"ctl_socket"`
		RpcSocket                   string `mapstructure:"rpc_socket"`
		SyncSocket                  string `mapstructure:"sync_socket"`
		TorProxy                    string `mapstructure:"tor_proxy"`
		BinDir                      string `mapstructure:"bin_dir"`
		PeerReconnectTimeoutSeconds int    `mapstructure:"peer_reconnect_timeout_seconds"`
	} `mapstructure:"network"`

	Funding struct {
		Enabled        bool   `mapstructure:"enabled"`
		FunderEndpoint string `mapstructure:"funder_endpoint"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
		Mnemonic       string `mapstructure:"mnemonic"`
	} `mapstructure:"funding"`

	Syncer struct {
		BitcoinElectrum string `mapstructure:"bitcoin_electrum"`
		MoneroDaemon    string `mapstructure:"monero_daemon"`
	} `mapstructure:"syncer"`

	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("network.data_dir", "~/.farcasterd")
	v.SetDefault("network.msg_socket", "msg.sock")
	v.SetDefault("network.ctl_socket", "ctl.sock")
	v.SetDefault("network.rpc_socket", "rpc.sock")
	v.SetDefault("network.sync_socket", "sync.sock")
	v.SetDefault("network.peer_reconnect_timeout_seconds", 120)
	v.SetDefault("funding.enabled", false)
	v.SetDefault("funding.timeout_seconds", 30)
	v.SetDefault("logging.level", "info")
}

// Load reads <dataDir>/farcasterd.yaml if present, applies defaults, then
// overrides from DATA_DIR/TOR_PROXY/MSG_SOCKET/CTL_SOCKET.
// A missing config file is not an error — every field has a default.
func Load(dataDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("farcasterd")
	v.SetConfigType("yaml")
	if dataDir != "" {
		v.AddConfigPath(dataDir)
	}
	defaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, utils.Wrap(err, "load farcasterd config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, utils.Wrap(err, "unmarshal farcasterd config")
	}

	cfg.Network.DataDir = utils.EnvOrDefault("DATA_DIR", cfg.Network.DataDir)
	cfg.Network.TorProxy = utils.EnvOrDefault("TOR_PROXY", cfg.Network.TorProxy)
	cfg.Network.MsgSocket = utils.EnvOrDefault("MSG_SOCKET", cfg.Network.MsgSocket)
	cfg.Network.CtlSocket = utils.EnvOrDefault("CTL_SOCKET", cfg.Network.CtlSocket)

	return &cfg, nil
}

// PeerReconnectTimeout is how long a swap waits for an unreachable peer to
// come back before aborting.
func (c *Config) PeerReconnectTimeout() time.Duration {
	return time.Duration(c.Network.PeerReconnectTimeoutSeconds) * time.Second
}

// FundingConfig adapts Config's Funding section to funding.Config.
func (c *Config) FundingConfig() funding.Config {
	return funding.Config{
		Enabled:        c.Funding.Enabled,
		FunderEndpoint: c.Funding.FunderEndpoint,
		Timeout:        time.Duration(c.Funding.TimeoutSeconds) * time.Second,
		Mnemonic:       c.Funding.Mnemonic,
	}
}
