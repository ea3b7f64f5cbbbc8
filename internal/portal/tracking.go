package portal

import (
	"crypto/rand"
	"fmt"
)

// Tracking codes skip ambiguous characters (0/O, 1/I) since customers
// read them over the phone.
const trackingAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewTrackingCode returns a fresh "VP-XXXXXXXX" code.
func NewTrackingCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate tracking code: %w", err)
	}
	for i, b := range buf {
		buf[i] = trackingAlphabet[int(b)%len(trackingAlphabet)]
	}
	return "VP-" + string(buf), nil
}
