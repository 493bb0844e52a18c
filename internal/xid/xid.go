// Package xid builds short unique identifiers for correlating requests.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// New returns prefix-<unix millis base36>-<random hex>. If the random source
// fails the nanosecond clock stands in for the random part.
func New(prefix string) string {
	stamp := strconv.FormatInt(time.Now().UnixMilli(), 36)
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return prefix + "-" + stamp + "-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return prefix + "-" + stamp + "-" + hex.EncodeToString(buf)
}
