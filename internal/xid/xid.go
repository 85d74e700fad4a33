// Package xid generates the prefixed record IDs used across the store
// layer, e.g. "rm" for raw materials, "mo" for material orders, "ord"
// for sales orders and "dc" for daily cash rows.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New returns "<prefix>-<unixnano>-<random hex>". The timestamp keeps IDs
// roughly sortable by creation; the random tail makes collisions within the
// same nanosecond a non-issue.
func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}
