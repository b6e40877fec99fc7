// Package webhook verifies signed change-notification envelopes from the
// identity provider. The wire contract is the svix one: three transport
// headers and an HMAC-SHA256 signature over "<id>.<timestamp>.<body>".
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Transport headers carried by every envelope.
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

// DefaultTolerance bounds the accepted clock drift of the envelope
// timestamp in either direction.
const DefaultTolerance = 5 * time.Minute

const secretPrefix = "whsec_"

var (
	ErrMissingHeaders    = errors.New("missing signature headers")
	ErrBadTimestamp      = errors.New("malformed signature timestamp")
	ErrStaleTimestamp    = errors.New("signature timestamp outside tolerance")
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// Verifier checks envelope signatures against the shared secret.
type Verifier struct {
	key       []byte
	tolerance time.Duration
}

// NewVerifier builds a Verifier from a "whsec_<base64>" secret. A zero
// tolerance falls back to DefaultTolerance.
func NewVerifier(secret string, tolerance time.Duration) (*Verifier, error) {
	raw := strings.TrimPrefix(secret, secretPrefix)
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode webhook secret: %w", err)
	}
	if len(key) == 0 {
		return nil, errors.New("empty webhook secret")
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Verifier{key: key, tolerance: tolerance}, nil
}

// Verify checks the three transport header values and the raw body
// against the secret. It returns nil only when the timestamp is within
// tolerance of now and at least one signature entry matches.
func (v *Verifier) Verify(payload []byte, msgID, timestamp, sigHeader string, now time.Time) error {
	if msgID == "" || timestamp == "" || sigHeader == "" {
		return ErrMissingHeaders
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrBadTimestamp
	}
	drift := now.Sub(time.Unix(ts, 0))
	if drift > v.tolerance || drift < -v.tolerance {
		return ErrStaleTimestamp
	}

	expected := v.sign(msgID, timestamp, payload)

	// The header may carry several space-separated "v1,<base64>"
	// entries (secret rotation); any match passes.
	for _, entry := range strings.Fields(sigHeader) {
		parts := strings.SplitN(entry, ",", 2)
		if len(parts) != 2 || parts[0] != "v1" {
			continue
		}
		sig, err := base64.StdEncoding.DecodeString(parts[1])
		if err != nil {
			continue
		}
		if hmac.Equal(sig, expected) {
			return nil
		}
	}
	return ErrSignatureMismatch
}

// Sign produces the "v1,<base64>" signature entry for an envelope. Used
// by tests and local delivery tooling.
func (v *Verifier) Sign(msgID, timestamp string, payload []byte) string {
	return "v1," + base64.StdEncoding.EncodeToString(v.sign(msgID, timestamp, payload))
}

func (v *Verifier) sign(msgID, timestamp string, payload []byte) []byte {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(msgID))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}
