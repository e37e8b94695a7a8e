// Package verification implements the CAPTCHA and SMS code lifecycle:
// issue an image challenge, trade a solved challenge for an SMS code,
// and check a submitted SMS code.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/lanblog/apiserver/internal/captcha"
	"github.com/lanblog/apiserver/internal/codes"
	"github.com/lanblog/apiserver/internal/sms"
)

const (
	// codeTTL bounds both the stored image answer and the SMS code.
	codeTTL = 300 * time.Second
	// smsValidityMinutes is what the SMS text tells the user.
	smsValidityMinutes = 5
)

var (
	ErrMissingParameter  = errors.New("missing required parameter")
	ErrImageCodeExpired  = errors.New("image code expired or not issued")
	ErrImageCodeMismatch = errors.New("image code mismatch")
	ErrSmsCodeExpired    = errors.New("sms code expired or not issued")
)

// Workflow orchestrates CAPTCHA issuance and SMS code delivery against
// the code store.
type Workflow struct {
	store     codes.Store
	generator captcha.Generator
	gateway   sms.Gateway
	logger    *slog.Logger
}

func NewWorkflow(store codes.Store, generator captcha.Generator, gateway sms.Gateway, logger *slog.Logger) *Workflow {
	return &Workflow{
		store:     store,
		generator: generator,
		gateway:   gateway,
		logger:    logger,
	}
}

// IssueImageCode generates a fresh challenge for the client token and
// stores its answer, overwriting any prior pending answer for that
// token. The returned bytes are the PNG to show the user.
func (w *Workflow) IssueImageCode(ctx context.Context, token string) ([]byte, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingParameter
	}

	answer, image, err := w.generator.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate captcha: %w", err)
	}

	if err := w.store.Set(ctx, codes.ImagePrefix+token, answer, codeTTL); err != nil {
		return nil, fmt.Errorf("store image code: %w", err)
	}

	return image, nil
}

// RequestSmsCode validates the submitted CAPTCHA answer and, on
// success, stores and dispatches a fresh 6-digit code for the phone
// number. The stored answer is deleted on first read no matter the
// outcome, so every attempt needs a fresh challenge. A newer code for
// the same number replaces the old one. Gateway failures are logged
// and swallowed: the stored code stays valid even if delivery failed.
func (w *Workflow) RequestSmsCode(ctx context.Context, phone, submittedAnswer, token string) error {
	if phone == "" || submittedAnswer == "" || token == "" {
		return ErrMissingParameter
	}

	answer, err := w.store.Get(ctx, codes.ImagePrefix+token)
	if err != nil {
		if errors.Is(err, codes.ErrNotFound) {
			return ErrImageCodeExpired
		}
		return fmt.Errorf("read image code: %w", err)
	}

	// One-time use. Delete before comparing so a wrong answer burns
	// the challenge too.
	if err := w.store.Delete(ctx, codes.ImagePrefix+token); err != nil {
		w.logger.Error("failed to delete image code", "error", err)
	}

	if !strings.EqualFold(answer, submittedAnswer) {
		return ErrImageCodeMismatch
	}

	code, err := newSmsCode()
	if err != nil {
		return fmt.Errorf("generate sms code: %w", err)
	}

	if err := w.store.Set(ctx, codes.SmsPrefix+phone, code, codeTTL); err != nil {
		return fmt.Errorf("store sms code: %w", err)
	}

	if err := w.gateway.Send(ctx, phone, code, smsValidityMinutes); err != nil {
		w.logger.Error("sms dispatch failed", "phone", phone, "error", err)
	}

	return nil
}

// VerifySmsCode reports whether the submitted code matches the stored
// one for the phone number. The comparison is exact. A mismatch does
// not delete the stored code; the user may retry until it expires.
func (w *Workflow) VerifySmsCode(ctx context.Context, phone, submittedCode string) (bool, error) {
	if phone == "" || submittedCode == "" {
		return false, ErrMissingParameter
	}

	stored, err := w.store.Get(ctx, codes.SmsPrefix+phone)
	if err != nil {
		if errors.Is(err, codes.ErrNotFound) {
			return false, ErrSmsCodeExpired
		}
		return false, fmt.Errorf("read sms code: %w", err)
	}

	return stored == submittedCode, nil
}

func newSmsCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
