// Package auth implements credential validation and account lifecycle:
// registration, login, and password reset over SMS verification.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/lanblog/apiserver/internal/store"
	"github.com/lanblog/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrValidation wraps a human-readable format complaint.
	ErrValidation = errors.New("validation failed")
	// ErrCodeMismatch means SMS verification did not pass.
	ErrCodeMismatch = errors.New("sms code mismatch")
	// ErrInvalidCredentials covers both unknown phone and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository defines the persistence operations the service needs.
type UserRepository interface {
	GetByMobile(ctx context.Context, mobile string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
}

// SmsVerifier checks a submitted SMS code for a phone number.
type SmsVerifier interface {
	VerifySmsCode(ctx context.Context, phone, code string) (bool, error)
}

// Service is the account authenticator.
type Service struct {
	users    UserRepository
	verifier SmsVerifier
}

func NewService(users UserRepository, verifier SmsVerifier) *Service {
	return &Service{users: users, verifier: verifier}
}

// Register validates the submitted form, checks the SMS code, and
// creates the account. The username defaults to the phone number.
func (s *Service) Register(ctx context.Context, mobile, password, passwordConfirm, smsCode string) (types.User, error) {
	if mobile == "" || password == "" || passwordConfirm == "" || smsCode == "" {
		return types.User{}, fmt.Errorf("%w: missing required fields", ErrValidation)
	}
	if err := validateCredentials(mobile, password, passwordConfirm); err != nil {
		return types.User{}, err
	}

	ok, err := s.verifier.VerifySmsCode(ctx, mobile, smsCode)
	if err != nil {
		return types.User{}, err
	}
	if !ok {
		return types.User{}, ErrCodeMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.users.Create(ctx, types.User{
		Mobile:       mobile,
		Username:     mobile,
		PasswordHash: string(hash),
	})
	if err != nil {
		return types.User{}, err
	}
	return user, nil
}

// Login authenticates the phone/password pair. The remember flag is
// the caller's concern; login itself only validates and resolves the
// account.
func (s *Service) Login(ctx context.Context, mobile, password string) (types.User, error) {
	if !ValidMobile(mobile) {
		return types.User{}, fmt.Errorf("%w: invalid phone number", ErrValidation)
	}
	if !ValidPassword(password) {
		return types.User{}, fmt.Errorf("%w: password must be 8-20 letters or digits", ErrValidation)
	}

	user, err := s.users.GetByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// ResetPassword verifies the SMS code and replaces the account's
// password hash. A phone number with no account gets one created with
// the supplied password; the original flow treats forgot-password for
// an unknown number as registration, and that policy is kept.
func (s *Service) ResetPassword(ctx context.Context, mobile, password, passwordConfirm, smsCode string) (types.User, error) {
	if mobile == "" || password == "" || passwordConfirm == "" || smsCode == "" {
		return types.User{}, fmt.Errorf("%w: missing required fields", ErrValidation)
	}
	if err := validateCredentials(mobile, password, passwordConfirm); err != nil {
		return types.User{}, err
	}

	ok, err := s.verifier.VerifySmsCode(ctx, mobile, smsCode)
	if err != nil {
		return types.User{}, err
	}
	if !ok {
		return types.User{}, ErrCodeMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.users.GetByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.users.Create(ctx, types.User{
				Mobile:       mobile,
				Username:     mobile,
				PasswordHash: string(hash),
			})
		}
		return types.User{}, err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return types.User{}, err
	}
	user.PasswordHash = string(hash)
	return user, nil
}

func validateCredentials(mobile, password, passwordConfirm string) error {
	if !ValidMobile(mobile) {
		return fmt.Errorf("%w: invalid phone number", ErrValidation)
	}
	if !ValidPassword(password) {
		return fmt.Errorf("%w: password must be 8-20 letters or digits", ErrValidation)
	}
	if password != passwordConfirm {
		return fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	return nil
}
