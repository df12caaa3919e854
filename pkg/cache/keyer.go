package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mvollan/stirlingforge/pkg/params"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ParamsHash returns the hash of the canonical parameter encoding: the
// registry's parameters sorted by name and JSON-encoded. Two registries with
// the same parameters hash identically regardless of registration order.
func ParamsHash(reg *params.Registry) string {
	ps := reg.All()
	sort.Slice(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })
	data, _ := json.Marshal(ps)
	return Hash(data)
}

// StageKey generates a cache key for one pipeline stage's result under a
// given parameter hash. The key format is: stage:<name>:<paramsHash>.
func StageKey(stage, paramsHash string) string {
	return fmt.Sprintf("stage:%s:%s", stage, paramsHash)
}
