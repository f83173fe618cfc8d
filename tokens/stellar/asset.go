package stellar

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/stellar/go/xdr"
)

// asset tags
const (
	NativeAsset     = "native"
	PoolShareAsset  = "pool_share"
	TrustlinePrefix = "trustline:"
	MergeOutAsset   = "native:merge_out"
	MergeInAsset    = "native:merge_in"
)

func assetCode(code []byte) string {
	return string(bytes.TrimRight(code, "\x00"))
}

// AssetString canonicalizes an asset: "native" or "CODE:issuerhex" with
// the code padding removed.
func AssetString(a xdr.Asset) string {
	switch a.Type {
	case xdr.AssetTypeAssetTypeNative:
		return NativeAsset
	case xdr.AssetTypeAssetTypeCreditAlphanum4:
		an := a.MustAlphaNum4()
		return assetCode(an.AssetCode[:]) + ":" + AccountIDHex(an.Issuer)
	case xdr.AssetTypeAssetTypeCreditAlphanum12:
		an := a.MustAlphaNum12()
		return assetCode(an.AssetCode[:]) + ":" + AccountIDHex(an.Issuer)
	default:
		return a.Type.String()
	}
}

// ChangeTrustAssetString is AssetString for a trustline line, with
// pool-share lines rendered as "pool_share".
func ChangeTrustAssetString(a xdr.ChangeTrustAsset) string {
	switch a.Type {
	case xdr.AssetTypeAssetTypeNative:
		return NativeAsset
	case xdr.AssetTypeAssetTypeCreditAlphanum4:
		an := a.MustAlphaNum4()
		return assetCode(an.AssetCode[:]) + ":" + AccountIDHex(an.Issuer)
	case xdr.AssetTypeAssetTypeCreditAlphanum12:
		an := a.MustAlphaNum12()
		return assetCode(an.AssetCode[:]) + ":" + AccountIDHex(an.Issuer)
	case xdr.AssetTypeAssetTypePoolShare:
		return PoolShareAsset
	default:
		return a.Type.String()
	}
}

// TrustlineAsset returns the marker tag for a trustline change.
func TrustlineAsset(line xdr.ChangeTrustAsset) string {
	return TrustlinePrefix + ChangeTrustAssetString(line)
}

// Asset is a parsed asset tag.
type Asset struct {
	Code   string
	Issuer string
}

// IsNative reports whether a is the native asset.
func (a Asset) IsNative() bool {
	return a.Code == NativeAsset && a.Issuer == ""
}

func (a Asset) String() string {
	if a.Issuer == "" {
		return a.Code
	}
	return a.Code + ":" + a.Issuer
}

// ParseAsset is the inverse of AssetString. Tags without an issuer, such as
// "native" or "pool_share", parse into a code only. The issuer follows the
// last ':' and must be a hex account id, so codes containing ':' still
// round-trip.
func ParseAsset(s string) (Asset, error) {
	if s == "" {
		return Asset{}, ErrInvalidAsset
	}
	idx := strings.LastIndexByte(s, ':')
	if idx < 0 {
		return Asset{Code: s}, nil
	}
	code, issuer := s[:idx], s[idx+1:]
	if !isAccountHex(issuer) {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAsset, s)
	}
	return Asset{Code: code, Issuer: issuer}, nil
}

func isAccountHex(s string) bool {
	if len(s) != AccountIDLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// validAssetCode reports whether a padded 4 or 12 byte code is non-empty,
// alphanumeric and padded with trailing NULs only.
func validAssetCode(code []byte) bool {
	trimmed := bytes.TrimRight(code, "\x00")
	if len(trimmed) == 0 {
		return false
	}
	for _, c := range trimmed {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	return true
}

func validAsset(a xdr.Asset) bool {
	switch a.Type {
	case xdr.AssetTypeAssetTypeNative:
		return true
	case xdr.AssetTypeAssetTypeCreditAlphanum4:
		return a.AlphaNum4 != nil && validAssetCode(a.AlphaNum4.AssetCode[:])
	case xdr.AssetTypeAssetTypeCreditAlphanum12:
		return a.AlphaNum12 != nil && validAssetCode(a.AlphaNum12.AssetCode[:])
	default:
		return false
	}
}

func validChangeTrustAsset(a xdr.ChangeTrustAsset) bool {
	switch a.Type {
	case xdr.AssetTypeAssetTypeNative, xdr.AssetTypeAssetTypePoolShare:
		return true
	case xdr.AssetTypeAssetTypeCreditAlphanum4:
		return a.AlphaNum4 != nil && validAssetCode(a.AlphaNum4.AssetCode[:])
	case xdr.AssetTypeAssetTypeCreditAlphanum12:
		return a.AlphaNum12 != nil && validAssetCode(a.AlphaNum12.AssetCode[:])
	default:
		return false
	}
}
