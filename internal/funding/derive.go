package funding

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"

	"farcasterd/internal/offer"
)

// fundingHMACKey is a domain-separation label written into the HMAC input
// ahead of the chain and address; the seed itself is the HMAC key.
const fundingHMACKey = "farcasterd funding seed"

// deriveFundingKey deterministically derives a per-(chain,address) lookup
// key from the funding wallet seed, so the external funder can be told
// which wallet to pull from without the orchestrator ever handling a
// private key directly.
func deriveFundingKey(seed []byte, chain offer.Chain, addr string) string {
	mac := hmac.New(sha512.New, seed)
	mac.Write([]byte(fundingHMACKey))
	mac.Write([]byte{0})
	mac.Write([]byte(chain))
	mac.Write([]byte{0})
	mac.Write([]byte(addr))
	return hex.EncodeToString(mac.Sum(nil)[:16])
}
