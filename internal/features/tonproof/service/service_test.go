package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/contract/contracttest"
	"geev-escrow/internal/features/tonproof/models"
)

// payloads is an in-memory repository double.
type payloads struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (p *payloads) SavePayload(ctx context.Context, payload string, ttl time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys[payload] = true
	return nil
}

func (p *payloads) ConsumePayload(ctx context.Context, payload string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ok := p.keys[payload]
	delete(p.keys, payload)
	return ok, nil
}

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newService() *Service {
	svc := NewService(&payloads{keys: map[string]bool{}}, Config{
		Secret:     []byte("test-secret"),
		Domain:     "app.example",
		PayloadTTL: 15 * time.Minute,
		SessionTTL: time.Hour,
	}, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc
}

func proofFor(payload string) *models.TONProofRequest {
	return &models.TONProofRequest{
		Address: contracttest.Addr("alice").String(),
		Network: NetworkMainnet,
		Proof: models.TONProof{
			Timestamp: now.Unix(),
			Domain:    models.TONProofDomain{LengthBytes: 11, Value: "app.example"},
			Payload:   payload,
			Signature: "c2ln",
		},
	}
}

func TestVerifyIssuesSession(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	payload, err := svc.GeneratePayload(ctx)
	require.NoError(t, err)
	assert.Len(t, payload.Payload, 43)
	assert.Equal(t, now.Add(15*time.Minute), payload.ExpiresAt)

	session, err := svc.VerifyProof(ctx, proofFor(payload.Payload))
	require.NoError(t, err)
	assert.Equal(t, contracttest.Addr("alice").String(), session.Address)
	assert.Equal(t, now.Add(time.Hour), session.ExpiresAt)

	addr, err := svc.Authenticate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, contracttest.Addr("alice"), addr)

	_, err = svc.VerifyProof(ctx, proofFor(payload.Payload))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnauthorized), "payload is single use")
}

func TestVerifyRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.TONProofRequest)
		code   apperrors.ErrorCode
	}{
		{"unknown network", func(r *models.TONProofRequest) { r.Network = "1" }, apperrors.ErrCodeValidation},
		{"bad address", func(r *models.TONProofRequest) { r.Address = "nope" }, apperrors.ErrCodeValidation},
		{"foreign domain", func(r *models.TONProofRequest) { r.Proof.Domain.Value = "evil.example" }, apperrors.ErrCodeUnauthorized},
		{"length mismatch", func(r *models.TONProofRequest) { r.Proof.Domain.LengthBytes = 3 }, apperrors.ErrCodeUnauthorized},
		{"stale proof", func(r *models.TONProofRequest) { r.Proof.Timestamp = now.Add(-time.Hour).Unix() }, apperrors.ErrCodeUnauthorized},
		{"future proof", func(r *models.TONProofRequest) { r.Proof.Timestamp = now.Add(time.Hour).Unix() }, apperrors.ErrCodeUnauthorized},
		{"unknown payload", func(r *models.TONProofRequest) { r.Proof.Payload = "forged" }, apperrors.ErrCodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService()
			payload, err := svc.GeneratePayload(context.Background())
			require.NoError(t, err)

			req := proofFor(payload.Payload)
			tt.mutate(req)
			_, err = svc.VerifyProof(context.Background(), req)
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
		})
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	svc := newService()
	token, _, err := svc.issue(contracttest.Addr("alice"), now)
	require.NoError(t, err)

	other := newService()
	other.cfg.Secret = []byte("other-secret")
	_, err = other.Authenticate(token)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnauthorized))

	svc.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = svc.Authenticate(token)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnauthorized), "expired")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "x"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = newService().Authenticate(none)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnauthorized))
}
