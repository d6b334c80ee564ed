package accounts

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/dmitrijs2005/tchat/internal/common"
	"golang.org/x/crypto/argon2"
)

func deriveKey(password, pepper string, salt []byte) []byte {
	return argon2.IDKey([]byte(password+pepper), salt, 1, 64*1024, 4, 32)
}

// HashPassword derives an argon2id digest of password plus the process-wide
// pepper under a fresh random salt, encoded as "salt:hexDigest".
func HashPassword(password, pepper string) string {
	salt := common.GenerateRandByteArray(16)
	key := deriveKey(password, pepper, salt)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key)
}

// VerifyPassword recomputes the digest with the stored salt and compares in
// constant time. A malformed stored hash never verifies.
func VerifyPassword(password, pepper, stored string) bool {
	saltHex, digestHex, ok := strings.Cut(stored, ":")
	if !ok {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	digest, err := hex.DecodeString(digestHex)
	if err != nil {
		return false
	}

	candidate := deriveKey(password, pepper, salt)
	return subtle.ConstantTimeCompare(candidate, digest) == 1
}
