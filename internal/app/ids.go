package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

func newUUID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}

	// Set version (4) and variant bits per RFC 4122.
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80

	return fmt.Sprintf(
		"%s-%s-%s-%s-%s",
		hex.EncodeToString(b[0:4]),
		hex.EncodeToString(b[4:6]),
		hex.EncodeToString(b[6:8]),
		hex.EncodeToString(b[8:10]),
		hex.EncodeToString(b[10:16]),
	)
}

// newInvoiceNumber builds a human-facing invoice number like
// INV-20250110-3F2A9C. Uniqueness is enforced by the database.
func newInvoiceNumber(now time.Time) string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "INV-" + now.UTC().Format("20060102")
	}
	return fmt.Sprintf("INV-%s-%s", now.UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(b)))
}
