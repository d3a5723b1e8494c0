package order

import "time"

const (
	// MaxVerifyAttempts is how many wrong codes a challenge tolerates before it must be
	// re-issued.
	MaxVerifyAttempts = 3
	// ChallengeTTL is the lifetime of a delivery code and its QR payload.
	ChallengeTTL = 10 * time.Minute
)

// Challenge is an outstanding delivery verification: a hashed one-time code plus the
// nonce of the QR payload issued alongside it. Both share the same expiry.
type Challenge struct {
	codeHash  string
	qrNonce   string
	issuedAt  time.Time
	expiresAt time.Time
	attempts  int
}

func RestoreChallenge(codeHash, qrNonce string, issuedAt, expiresAt time.Time, attempts int) *Challenge {
	return &Challenge{
		codeHash:  codeHash,
		qrNonce:   qrNonce,
		issuedAt:  issuedAt,
		expiresAt: expiresAt,
		attempts:  attempts,
	}
}

func (c Challenge) CodeHash() string     { return c.codeHash }
func (c Challenge) QRNonce() string      { return c.qrNonce }
func (c Challenge) IssuedAt() time.Time  { return c.issuedAt }
func (c Challenge) ExpiresAt() time.Time { return c.expiresAt }
func (c Challenge) Attempts() int        { return c.attempts }

func (c Challenge) IsExpiredAt(now time.Time) bool {
	return now.After(c.expiresAt)
}

// IsLocked reports whether the attempt budget is spent.
func (c Challenge) IsLocked() bool {
	return c.attempts >= MaxVerifyAttempts
}
