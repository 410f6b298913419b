package primitives

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ComputeVersion returns the version recorded with snapshots of machines
// built from config: config.Version when set, otherwise the first 8 bytes of
// the SHA-256 of the JSON form, hex encoded. The same configuration always
// yields the same version.
func ComputeVersion(config *MachineConfig) string {
	if config.Version != "" {
		return config.Version
	}
	data, err := json.Marshal(config)
	if err != nil {
		return "invalid"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
