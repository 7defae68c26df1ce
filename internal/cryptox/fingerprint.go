// Package cryptox holds hashing helpers.
package cryptox

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint hashes a JSON object with the given top-level keys removed.
// Key order and whitespace do not affect the result.
func Fingerprint(raw []byte, ignore ...string) (string, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	for _, k := range ignore {
		delete(obj, k)
	}

	// encoding/json writes map keys sorted, which makes this canonical
	canon, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}

	sum := blake2b.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}
