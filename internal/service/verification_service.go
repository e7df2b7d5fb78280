package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"fact-registration/internal/notify"
	"fact-registration/internal/store"

	"go.uber.org/zap"
)

const verificationCodeLen = 6

// VerificationService one-time email codes kept in Redis until they expire or are used.
type VerificationService struct {
	kv     store.KV
	mailer notify.Notifier
	ttl    time.Duration
	random io.Reader
	logger *zap.Logger
}

func NewVerificationService(kv store.KV, mailer notify.Notifier, ttl time.Duration, logger *zap.Logger) *VerificationService {
	return &VerificationService{kv: kv, mailer: mailer, ttl: ttl, random: rand.Reader, logger: logger}
}

// RequestVerificationRequest request body
type RequestVerificationRequest struct {
	Email        string `json:"email"`
	EmailSubject string `json:"email_subject"`
}

// VerifyRequest verify body
type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func verificationKey(email string) string {
	return "verification:" + strings.ToLower(strings.TrimSpace(email))
}

func (s *VerificationService) newCode() (string, error) {
	var b strings.Builder
	ten := big.NewInt(10)
	for i := 0; i < verificationCodeLen; i++ {
		d, err := rand.Int(s.random, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

// RequestVerification replaces any earlier code for the email and mails a new one.
func (s *VerificationService) RequestVerification(ctx context.Context, req RequestVerificationRequest) error {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return invalid("must include email")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid("invalid email")
	}
	if strings.TrimSpace(req.EmailSubject) == "" {
		return invalid("must include email_subject")
	}

	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}
	if err := s.kv.Set(ctx, verificationKey(email), code, s.ttl); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	minutes := int(s.ttl / time.Minute)
	err = s.mailer.Notify(ctx, &notify.Message{
		Subject: req.EmailSubject,
		Body: fmt.Sprintf("%s\nYour one-time verification code is %s. It will expire in %d minutes. Do not share this code.",
			req.EmailSubject, code, minutes),
		To:   []string{email},
		Kind: "verification",
	})
	if err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}
	s.logger.Debug("verification code sent", zap.String("email", email))
	return nil
}

// Verify consumes the code. A wrong, expired or unknown code is a conflict.
func (s *VerificationService) Verify(ctx context.Context, req VerifyRequest) error {
	if strings.TrimSpace(req.Email) == "" {
		return invalid("must provide email")
	}
	if strings.TrimSpace(req.Code) == "" {
		return invalid("must provide code")
	}

	key := verificationKey(req.Email)
	stored, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return fmt.Errorf("email and code do not match: %w", ErrConflict)
		}
		return fmt.Errorf("failed to read verification code: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(req.Code))) != 1 {
		return fmt.Errorf("email and code do not match: %w", ErrConflict)
	}
	if err := s.kv.Del(ctx, key); err != nil {
		return fmt.Errorf("failed to delete verification code: %w", err)
	}
	return nil
}
