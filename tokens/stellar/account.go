package stellar

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// AccountIDLength is the length of a hex account id.
const AccountIDLength = 64

// KeyHex renders a raw ed25519 key as lowercase hex.
func KeyHex(key xdr.Uint256) string {
	return hex.EncodeToString(key[:])
}

// MuxedAccountHex returns the hex id of the base account. Multiplexed
// accounts flatten to their underlying ed25519 key.
func MuxedAccountHex(m xdr.MuxedAccount) string {
	switch m.Type {
	case xdr.CryptoKeyTypeKeyTypeEd25519:
		if m.Ed25519 != nil {
			return KeyHex(*m.Ed25519)
		}
	case xdr.CryptoKeyTypeKeyTypeMuxedEd25519:
		if m.Med25519 != nil {
			return KeyHex(m.Med25519.Ed25519)
		}
	}
	return ""
}

// AccountIDHex returns the hex id of an account.
func AccountIDHex(a xdr.AccountId) string {
	if a.Type == xdr.PublicKeyTypePublicKeyTypeEd25519 && a.Ed25519 != nil {
		return KeyHex(*a.Ed25519)
	}
	return ""
}

// ParseAccountID accepts a hex id or a G... address and returns the hex id.
func ParseAccountID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "G") {
		raw, err := strkey.Decode(strkey.VersionByteAccountID, s)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidAccountID, err)
		}
		return hex.EncodeToString(raw), nil
	}
	if len(s) != AccountIDLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountID, s)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAccountID, err)
	}
	return hex.EncodeToString(raw), nil
}

// Address renders a hex id as a G... address.
func Address(accountHex string) (string, error) {
	raw, err := hex.DecodeString(accountHex)
	if err != nil || len(raw) != 32 {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountID, accountHex)
	}
	return strkey.Encode(strkey.VersionByteAccountID, raw)
}
