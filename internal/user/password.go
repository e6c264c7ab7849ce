package user

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. The salt is used in its hex form, so hashes are
// interchangeable with other implementations that derive from "salt:hash"
// strings the same way.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltBytes    = 16
)

// HashPassword derives a key from plain with a fresh random salt and returns
// "salt:derivedKeyHex".
func HashPassword(plain string) (string, error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", eris.Wrap(err, "user: generate salt")
	}
	salt := hex.EncodeToString(raw)

	key, err := derive(plain, salt)
	if err != nil {
		return "", err
	}
	return salt + ":" + key, nil
}

// VerifyPassword reports whether supplied matches a value produced by
// HashPassword. Malformed stored values never match.
func VerifyPassword(stored, supplied string) bool {
	salt, want, ok := strings.Cut(stored, ":")
	if !ok || salt == "" || want == "" {
		return false
	}
	got, err := derive(supplied, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func derive(plain, salt string) (string, error) {
	key, err := scrypt.Key([]byte(plain), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", eris.Wrap(err, "user: derive key")
	}
	return hex.EncodeToString(key), nil
}
