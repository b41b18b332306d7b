package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Fingerprint derives a cache key from content identity, modification
// time and the processing parameters that affect the result. Parameter
// order is significant.
func Fingerprint(identity string, modTime time.Time, params ...string) string {
	h := sha256.New()
	_, _ = h.Write([]byte(identity))
	_, _ = h.Write([]byte{0}) // separator
	_, _ = h.Write([]byte(strconv.FormatInt(modTime.UnixNano(), 10)))
	for _, p := range params {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FingerprintFile fingerprints a file by absolute path, size and mtime.
// Touching or rewriting the file yields a new key.
func FingerprintFile(path string, params ...string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	identity := abs + "\x00" + strconv.FormatInt(info.Size(), 10)
	return Fingerprint(identity, info.ModTime(), params...), nil
}
