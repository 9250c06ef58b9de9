package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashExternalID turns a provider subject into the opaque value stored in users.
// The hash is keyed, so a leaked table cannot be matched against Google ids.
func HashExternalID(secret, subject string) string {
	key := []byte(secret)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	h, err := blake2b.New256(key)
	if err != nil {
		// only reachable with an oversized key, handled above
		panic(err)
	}
	h.Write([]byte(subject))
	return hex.EncodeToString(h.Sum(nil))
}
