package service

import (
	"fmt"
	"time"

	apperrors "github.com/aaronnicolas/CSSECDV-Machine-Project/internal/errors"
	"github.com/golang-jwt/jwt/v5"
)

// RecoveryClaims is the payload of a recovery grant: proof that the holder
// just re-confirmed their identity through the security questions.
type RecoveryClaims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
	Method    string `json:"method"`
}

// RecoveryTokenService issues and verifies the short-lived grants that gate
// the security-question password-change path.
type RecoveryTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewRecoveryTokenService(secret string, ttl time.Duration) *RecoveryTokenService {
	return &RecoveryTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *RecoveryTokenService) Issue(accountID string) (string, error) {
	now := s.now()
	claims := RecoveryClaims{
		AccountID: accountID,
		Method:    string(ReconfirmSecurityQuestions),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign recovery grant: %w", err)
	}
	return token, nil
}

// Verify parses and validates a grant, rejecting anything not signed here
// or past its expiry.
func (s *RecoveryTokenService) Verify(tokenString string) (*RecoveryClaims, error) {
	claims := &RecoveryClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return nil, apperrors.ErrRecoveryGrant
	}
	if !token.Valid {
		return nil, apperrors.ErrRecoveryGrant
	}
	return claims, nil
}
