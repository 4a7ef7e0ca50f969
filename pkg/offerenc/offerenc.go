// Package offerenc implements the PublicOffer wire format: a versioned,
// byte-exact serialization of {offer fields, 33-byte node pubkey, socket
// address}. Field order and widths are fixed so a from-scratch decoder
// written against this format would interoperate with this node.
package offerenc

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/mr-tron/base58"

	"farcasterd/internal/offer"
)

// Version is the current wire-format version byte. Bump it, never reorder
// or resize existing fields, if the layout changes.
const Version byte = 1

var networkTags = map[offer.Network]byte{
	offer.Mainnet: 0,
	offer.Testnet: 1,
	offer.Local:   2,
}

var networkFromTag = map[byte]offer.Network{
	0: offer.Mainnet,
	1: offer.Testnet,
	2: offer.Local,
}

var chainTags = map[offer.Chain]byte{
	offer.Bitcoin: 0,
	offer.Monero:  1,
}

var chainFromTag = map[byte]offer.Chain{
	0: offer.Bitcoin,
	1: offer.Monero,
}

var roleTags = map[offer.Role]byte{
	offer.Alice: 0,
	offer.Bob:   1,
}

var roleFromTag = map[byte]offer.Role{
	0: offer.Alice,
	1: offer.Bob,
}

// Encode renders a PublicOffer to its canonical wire bytes.
func Encode(po offer.PublicOffer) ([]byte, error) {
	netTag, ok := networkTags[po.Offer.Network]
	if !ok {
		return nil, fmt.Errorf("offerenc: unknown network %q", po.Offer.Network)
	}
	arbTag, ok := chainTags[po.Offer.Arbitrating]
	if !ok {
		return nil, fmt.Errorf("offerenc: unknown arbitrating chain %q", po.Offer.Arbitrating)
	}
	accTag, ok := chainTags[po.Offer.Accordant]
	if !ok {
		return nil, fmt.Errorf("offerenc: unknown accordant chain %q", po.Offer.Accordant)
	}
	makerTag, ok := roleTags[po.Offer.Maker]
	if !ok {
		return nil, fmt.Errorf("offerenc: unknown maker role %q", po.Offer.Maker)
	}
	if _, err := btcec.ParsePubKey(po.NodePubKey[:]); err != nil {
		return nil, fmt.Errorf("offerenc: invalid node pubkey: %w", err)
	}
	if len(po.Offer.FeeStrategy) > 255 {
		return nil, fmt.Errorf("offerenc: fee strategy string too long")
	}
	if len(po.PeerSocket) > 65535 {
		return nil, fmt.Errorf("offerenc: peer socket string too long")
	}

	var buf bytes.Buffer
	buf.WriteByte(Version)
	idBytes, _ := po.Offer.UUID.MarshalBinary()
	buf.Write(idBytes)
	buf.WriteByte(netTag)
	buf.WriteByte(arbTag)
	buf.WriteByte(accTag)
	_ = binary.Write(&buf, binary.BigEndian, po.Offer.ArbitratingAmount)
	_ = binary.Write(&buf, binary.BigEndian, po.Offer.AccordantAmount)
	_ = binary.Write(&buf, binary.BigEndian, po.Offer.CancelTimelock)
	_ = binary.Write(&buf, binary.BigEndian, po.Offer.PunishTimelock)
	buf.WriteByte(byte(len(po.Offer.FeeStrategy)))
	buf.WriteString(po.Offer.FeeStrategy)
	buf.WriteByte(makerTag)
	buf.Write(po.NodePubKey[:])
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(po.PeerSocket)))
	buf.WriteString(po.PeerSocket)
	return buf.Bytes(), nil
}

// Decode parses the canonical wire bytes produced by Encode.
func Decode(data []byte) (offer.PublicOffer, error) {
	var po offer.PublicOffer
	r := bytes.NewReader(data)

	version, err := r.ReadByte()
	if err != nil {
		return po, fmt.Errorf("offerenc: short read version: %w", err)
	}
	if version != Version {
		return po, fmt.Errorf("offerenc: unsupported version %d", version)
	}

	idBytes := make([]byte, 16)
	if _, err := r.Read(idBytes); err != nil {
		return po, fmt.Errorf("offerenc: short read uuid: %w", err)
	}
	if err := po.Offer.UUID.UnmarshalBinary(idBytes); err != nil {
		return po, fmt.Errorf("offerenc: invalid uuid: %w", err)
	}

	netTag, err := r.ReadByte()
	if err != nil {
		return po, err
	}
	net, ok := networkFromTag[netTag]
	if !ok {
		return po, fmt.Errorf("offerenc: unknown network tag %d", netTag)
	}
	po.Offer.Network = net

	arbTag, err := r.ReadByte()
	if err != nil {
		return po, err
	}
	arb, ok := chainFromTag[arbTag]
	if !ok {
		return po, fmt.Errorf("offerenc: unknown chain tag %d", arbTag)
	}
	po.Offer.Arbitrating = arb

	accTag, err := r.ReadByte()
	if err != nil {
		return po, err
	}
	acc, ok := chainFromTag[accTag]
	if !ok {
		return po, fmt.Errorf("offerenc: unknown chain tag %d", accTag)
	}
	po.Offer.Accordant = acc

	if err := binary.Read(r, binary.BigEndian, &po.Offer.ArbitratingAmount); err != nil {
		return po, err
	}
	if err := binary.Read(r, binary.BigEndian, &po.Offer.AccordantAmount); err != nil {
		return po, err
	}
	if err := binary.Read(r, binary.BigEndian, &po.Offer.CancelTimelock); err != nil {
		return po, err
	}
	if err := binary.Read(r, binary.BigEndian, &po.Offer.PunishTimelock); err != nil {
		return po, err
	}

	feeLen, err := r.ReadByte()
	if err != nil {
		return po, err
	}
	feeBytes := make([]byte, feeLen)
	if _, err := r.Read(feeBytes); err != nil {
		return po, err
	}
	po.Offer.FeeStrategy = string(feeBytes)

	makerTag, err := r.ReadByte()
	if err != nil {
		return po, err
	}
	maker, ok := roleFromTag[makerTag]
	if !ok {
		return po, fmt.Errorf("offerenc: unknown role tag %d", makerTag)
	}
	po.Offer.Maker = maker

	if _, err := r.Read(po.NodePubKey[:]); err != nil {
		return po, fmt.Errorf("offerenc: short read pubkey: %w", err)
	}
	if _, err := btcec.ParsePubKey(po.NodePubKey[:]); err != nil {
		return po, fmt.Errorf("offerenc: invalid node pubkey: %w", err)
	}

	var sockLen uint16
	if err := binary.Read(r, binary.BigEndian, &sockLen); err != nil {
		return po, err
	}
	sockBytes := make([]byte, sockLen)
	if _, err := r.Read(sockBytes); err != nil {
		return po, err
	}
	po.PeerSocket = string(sockBytes)

	return po, nil
}

// DisplayString renders a PublicOffer as a base58-encoded string suitable
// for sharing over chat/QR, mirroring how the chains this node bridges
// (Bitcoin/Monero) render addresses.
func DisplayString(po offer.PublicOffer) (string, error) {
	b, err := Encode(po)
	if err != nil {
		return "", err
	}
	return base58.Encode(b), nil
}

// ParseDisplayString is the inverse of DisplayString.
func ParseDisplayString(s string) (offer.PublicOffer, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return offer.PublicOffer{}, fmt.Errorf("offerenc: invalid base58: %w", err)
	}
	return Decode(b)
}
