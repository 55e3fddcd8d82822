// Package cryptox turns account secrets into their stored form and checks
// login candidates against it.
//
// Two codecs exist. PlainCodec keeps the secret verbatim, which is what the
// browser storefront always did and what existing account registries
// contain. Argon2Codec stores "argon2id$<salt-hex>$<key-hex>" and compares in
// constant time. The codec is chosen by config; switching from plain to
// argon2 does not migrate registries that already hold plaintext secrets.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/shopsage/internal/common"
)

const (
	ModePlain  = "plain"
	ModeArgon2 = "argon2"

	argon2Prefix = "argon2id"
	saltSize     = 16
)

// SecretCodec encodes a secret for storage and verifies candidates.
type SecretCodec interface {
	Encode(secret string) (string, error)
	Matches(stored, candidate string) bool
}

// NewSecretCodec returns the codec for mode ("plain" or "argon2").
func NewSecretCodec(mode string) (SecretCodec, error) {
	switch mode {
	case "", ModePlain:
		return PlainCodec{}, nil
	case ModeArgon2:
		return Argon2Codec{}, nil
	default:
		return nil, fmt.Errorf("unknown secret mode %q", mode)
	}
}

type PlainCodec struct{}

func (PlainCodec) Encode(secret string) (string, error) { return secret, nil }

func (PlainCodec) Matches(stored, candidate string) bool { return stored == candidate }

type Argon2Codec struct{}

func (Argon2Codec) Encode(secret string) (string, error) {
	salt := common.GenerateRandByteArray(saltSize)
	key := DeriveKey([]byte(secret), salt)
	return fmt.Sprintf("%s$%s$%s", argon2Prefix, hex.EncodeToString(salt), hex.EncodeToString(key)), nil
}

func (Argon2Codec) Matches(stored, candidate string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 3 || parts[0] != argon2Prefix {
		return false
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(parts[2])
	if err != nil {
		return false
	}
	got := DeriveKey([]byte(candidate), salt)
	return subtle.ConstantTimeCompare(want, got) == 1
}

// DeriveKey runs argon2id with time=1, memory=64MiB, threads=4, 32-byte output.
func DeriveKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}
