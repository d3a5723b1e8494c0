package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

const codeDigits = 6

var codeSpace = big.NewInt(1_000_000)

// IssuedChallenge is what the issuer hands out. Code goes to the customer; the QR
// payload is rendered on the customer's device for the agent to scan.
type IssuedChallenge struct {
	Code      string
	ExpiresAt time.Time
	QRPayload string
}

type qrClaims struct {
	OrderID           string `json:"orderId"`
	AgentID           string `json:"agentId"`
	CustomerPhoneHash string `json:"customerPhoneHash"`
	IssuedAt          int64  `json:"issuedAt"`
	Nonce             string `json:"nonce"`
}

// DeliveryVerifier issues and checks delivery challenges. Codes are stored as bcrypt
// hashes; QR payloads are HMAC-SHA256 signed with a server secret.
type DeliveryVerifier struct {
	secret     []byte
	bcryptCost int
	clock      kernel.Clock
	random     io.Reader
}

func NewDeliveryVerifier(secret []byte, bcryptCost int, clock kernel.Clock) (*DeliveryVerifier, error) {
	if len(secret) < 16 {
		return nil, errs.NewValueIsOutOfRangeError("qrSecret length", len(secret), 16, "∞")
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, errs.NewValueIsOutOfRangeError("bcryptCost", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &DeliveryVerifier{
		secret:     append([]byte(nil), secret...),
		bcryptCost: bcryptCost,
		clock:      clock,
		random:     rand.Reader,
	}, nil
}

func (v *DeliveryVerifier) Now() time.Time {
	return v.clock.Now()
}

// Issue replaces the order's challenge with a fresh code and QR payload bound to the
// assigned agent.
func (v *DeliveryVerifier) Issue(o *order.Order) (IssuedChallenge, error) {
	agentID := o.Delivery().AgentID()
	if agentID == nil {
		return IssuedChallenge{}, fmt.Errorf("%w: order %s has no delivery agent", order.ErrInvalidDeliveryTransition, o.Number())
	}

	n, err := rand.Int(v.random, codeSpace)
	if err != nil {
		return IssuedChallenge{}, fmt.Errorf("generate delivery code: %w", err)
	}
	code := fmt.Sprintf("%0*d", codeDigits, n.Int64())

	hash, err := bcrypt.GenerateFromPassword([]byte(code), v.bcryptCost)
	if err != nil {
		return IssuedChallenge{}, fmt.Errorf("hash delivery code: %w", err)
	}

	nonceBytes := make([]byte, 16)
	if _, err = io.ReadFull(v.random, nonceBytes); err != nil {
		return IssuedChallenge{}, fmt.Errorf("generate qr nonce: %w", err)
	}
	nonce := base64.RawURLEncoding.EncodeToString(nonceBytes)

	now := v.clock.Now()
	if err = o.IssueChallenge(string(hash), nonce, now); err != nil {
		return IssuedChallenge{}, err
	}

	payload, err := v.sign(qrClaims{
		OrderID:           o.ID().String(),
		AgentID:           agentID.String(),
		CustomerPhoneHash: v.phoneHash(o.Address().Phone()),
		IssuedAt:          now.Unix(),
		Nonce:             nonce,
	})
	if err != nil {
		return IssuedChallenge{}, err
	}

	return IssuedChallenge{
		Code:      code,
		ExpiresAt: o.Challenge().ExpiresAt(),
		QRPayload: payload,
	}, nil
}

// VerifyCode checks a typed code against the outstanding challenge. Failures update
// the challenge bookkeeping on o (attempt counter, expiry clear) and nothing else.
func (v *DeliveryVerifier) VerifyCode(o *order.Order, code string) error {
	c, err := v.outstanding(o)
	if err != nil {
		return err
	}

	if c.CodeHash() == "" || bcrypt.CompareHashAndPassword([]byte(c.CodeHash()), []byte(strings.TrimSpace(code))) != nil {
		o.RecordFailedAttempt()
		return fmt.Errorf("%w: order %s", order.ErrInvalidCode, o.Number())
	}

	return nil
}

// VerifyQR checks a scanned QR payload presented by agentID. A valid payload is
// consumed.
func (v *DeliveryVerifier) VerifyQR(o *order.Order, payload string, agentID kernel.UUID) error {
	c, err := v.outstanding(o)
	if err != nil {
		return err
	}

	claims, err := v.parse(payload)
	if err != nil {
		o.RecordFailedAttempt()
		return fmt.Errorf("%w: %w", order.ErrInvalidCode, err)
	}

	if claims.OrderID != o.ID().String() ||
		claims.AgentID != agentID.String() ||
		!hmac.Equal([]byte(claims.CustomerPhoneHash), []byte(v.phoneHash(o.Address().Phone()))) {
		o.RecordFailedAttempt()
		return fmt.Errorf("%w: qr payload does not match order %s", order.ErrInvalidCode, o.Number())
	}

	if v.clock.Now().After(time.Unix(claims.IssuedAt, 0).Add(order.ChallengeTTL)) {
		return fmt.Errorf("%w: qr payload of order %s", order.ErrChallengeExpired, o.Number())
	}

	if c.QRNonce() == "" || !hmac.Equal([]byte(claims.Nonce), []byte(c.QRNonce())) {
		o.RecordFailedAttempt()
		return fmt.Errorf("%w: qr payload of order %s was consumed or replaced", order.ErrInvalidCode, o.Number())
	}

	o.ConsumeQRNonce()
	return nil
}

func (v *DeliveryVerifier) outstanding(o *order.Order) (*order.Challenge, error) {
	c := o.Challenge()
	if c == nil {
		return nil, fmt.Errorf("%w: order %s has no outstanding challenge", order.ErrChallengeExpired, o.Number())
	}
	if c.IsLocked() {
		return nil, fmt.Errorf("%w: order %s", order.ErrTooManyAttempts, o.Number())
	}
	if c.IsExpiredAt(v.clock.Now()) {
		o.ClearChallenge()
		return nil, fmt.Errorf("%w: order %s", order.ErrChallengeExpired, o.Number())
	}
	return c, nil
}

func (v *DeliveryVerifier) sign(claims qrClaims) (string, error) {
	body, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("encode qr payload: %w", err)
	}
	encoded := base64.RawURLEncoding.EncodeToString(body)
	return encoded + "." + base64.RawURLEncoding.EncodeToString(v.mac([]byte(encoded))), nil
}

func (v *DeliveryVerifier) parse(payload string) (qrClaims, error) {
	encoded, sig, ok := strings.Cut(strings.TrimSpace(payload), ".")
	if !ok {
		return qrClaims{}, errs.NewValueIsInvalidError("qr payload format")
	}

	gotSig, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(gotSig, v.mac([]byte(encoded))) {
		return qrClaims{}, errs.NewValueIsInvalidError("qr payload signature")
	}

	body, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return qrClaims{}, errs.NewValueIsInvalidErrorWithCause("qr payload body", err)
	}

	var claims qrClaims
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err = dec.Decode(&claims); err != nil {
		return qrClaims{}, errs.NewValueIsInvalidErrorWithCause("qr payload body", err)
	}
	return claims, nil
}

func (v *DeliveryVerifier) mac(data []byte) []byte {
	h := hmac.New(sha256.New, v.secret)
	h.Write(data)
	return h.Sum(nil)
}

func (v *DeliveryVerifier) phoneHash(phone string) string {
	h := hmac.New(sha256.New, v.secret)
	h.Write([]byte("phone:" + strings.TrimSpace(phone)))
	return hex.EncodeToString(h.Sum(nil))[:32]
}
