// Package otp derives the rotating 6-digit attendance codes. Both the
// lecturer display and the validation path derive codes independently
// from wall-clock time and the per-session shared secret; no counter
// state is shared between them.
package otp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

const (
	// StepSeconds is the length of one time step
	StepSeconds = 30
	// Digits is the code length; leading zeros are preserved
	Digits = 6
	// DefaultWindow is how many steps either side of now a submitted
	// code is accepted for, tolerating clock and submission skew
	DefaultWindow = 1
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Derive computes the code for one time step: HMAC-SHA1 of the 8-byte
// big-endian step index keyed by the decoded secret, dynamically
// truncated to 31 bits and reduced mod 10^6. Deterministic and pure.
func Derive(secret string, step int64) (string, error) {
	key, err := encoding.DecodeString(strings.ToUpper(secret))
	if err != nil {
		return "", fmt.Errorf("invalid secret: %w", err)
	}

	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], uint64(step))

	mac := hmac.New(sha1.New, key)
	mac.Write(counter[:])
	digest := mac.Sum(nil)

	offset := digest[len(digest)-1] & 0xf
	code := (uint32(digest[offset]&0x7f)<<24 |
		uint32(digest[offset+1])<<16 |
		uint32(digest[offset+2])<<8 |
		uint32(digest[offset+3])) % 1000000

	return fmt.Sprintf("%0*d", Digits, code), nil
}

// Deriver binds code derivation to a time source. The clock is a
// field so step-boundary behavior is testable without sleeping.
type Deriver struct {
	Now func() time.Time
}

// NewDeriver creates a Deriver on the system clock
func NewDeriver() *Deriver {
	return &Deriver{Now: time.Now}
}

// StepIndex returns the current time step index
func (d *Deriver) StepIndex() int64 {
	return d.Now().Unix() / StepSeconds
}

// Current derives the code for the current step
func (d *Deriver) Current(secret string) (string, error) {
	return Derive(secret, d.StepIndex())
}

// Remaining returns how long until the current code rotates
func (d *Deriver) Remaining() time.Duration {
	now := d.Now()
	elapsed := now.Unix() % StepSeconds
	return time.Duration(StepSeconds-elapsed) * time.Second
}

// Validate reports whether the submitted code matches any step within
// the window around now. window 1 accepts the previous, current and
// next steps. It does not reveal which step matched.
func (d *Deriver) Validate(secret, code string, window int) bool {
	if len(code) != Digits {
		return false
	}
	step := d.StepIndex()
	for i := -int64(window); i <= int64(window); i++ {
		derived, err := Derive(secret, step+i)
		if err != nil {
			return false
		}
		if derived == code {
			return true
		}
	}
	return false
}
