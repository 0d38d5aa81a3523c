package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/features/tonproof/models"
	"geev-escrow/internal/features/tonproof/repository"
)

const (
	issuer = "geev-escrow"

	NetworkMainnet = "-239"
	NetworkTestnet = "-3"

	payloadBytes = 32
	// Допустимое расхождение часов кошелька и сервера
	clockSkew = time.Minute
)

type Config struct {
	Secret     []byte
	Domain     string
	PayloadTTL time.Duration
	SessionTTL time.Duration
}

// Service issues ton_proof challenges and turns accepted proofs into
// wallet sessions. Signature checks are delegated to the wallet bridge.
type Service struct {
	repo   repository.Repository
	cfg    Config
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(repo repository.Repository, cfg Config, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

func (s *Service) GeneratePayload(ctx context.Context) (*models.PayloadResponse, error) {
	buf := make([]byte, payloadBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to generate payload")
	}
	payload := base64.RawURLEncoding.EncodeToString(buf)

	if err := s.repo.SavePayload(ctx, payload, s.cfg.PayloadTTL); err != nil {
		return nil, apperrors.NewStorageError("save payload", err)
	}

	return &models.PayloadResponse{
		Payload:   payload,
		ExpiresAt: s.now().Add(s.cfg.PayloadTTL),
	}, nil
}

func (s *Service) VerifyProof(ctx context.Context, req *models.TONProofRequest) (*models.SessionResponse, error) {
	if req.Network != NetworkMainnet && req.Network != NetworkTestnet {
		return nil, apperrors.NewValidationError("network", "must be -239 or -3")
	}
	addr, err := account.ParseAddress(req.Address)
	if err != nil {
		return nil, err
	}

	domain := req.Proof.Domain
	if domain.Value != s.cfg.Domain || (domain.LengthBytes != 0 && int(domain.LengthBytes) != len(domain.Value)) {
		return nil, apperrors.NewUnauthorizedError("proof was issued for another domain").
			WithDetail("domain", domain.Value)
	}

	now := s.now()
	signedAt := time.Unix(req.Proof.Timestamp, 0)
	if signedAt.Before(now.Add(-2*s.cfg.PayloadTTL)) || signedAt.After(now.Add(clockSkew)) {
		return nil, apperrors.NewUnauthorizedError("proof timestamp is out of range").
			WithDetail("timestamp", req.Proof.Timestamp)
	}

	ok, err := s.repo.ConsumePayload(ctx, req.Proof.Payload)
	if err != nil {
		return nil, apperrors.NewStorageError("consume payload", err)
	}
	if !ok {
		return nil, apperrors.NewUnauthorizedError("payload expired or already used")
	}

	token, expiresAt, err := s.issue(addr, now)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("address", addr.String()).Str("network", req.Network).Msg("Wallet session issued")
	return &models.SessionResponse{
		Token:     token,
		Address:   addr.String(),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) issue(addr account.Address, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.cfg.SessionTTL)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   addr.String(),
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to sign session token")
	}
	return token, expiresAt, nil
}

// Authenticate returns the wallet a session token was issued to.
func (s *Service) Authenticate(token string) (account.Address, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return s.cfg.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "invalid session token")
	}

	addr, err := account.ParseAddress(claims.Subject)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "invalid session subject")
	}
	return addr, nil
}
