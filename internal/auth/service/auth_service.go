package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/audit"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/domain"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/dto"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/password"
	apperrors "github.com/aaronnicolas/CSSECDV-Machine-Project/internal/errors"
	"github.com/google/uuid"
)

// ReconfirmMethod tags how a password change re-confirmed the caller's
// identity. Both methods share the same age and history checks.
type ReconfirmMethod string

const (
	ReconfirmCurrentPassword   ReconfirmMethod = "current-password"
	ReconfirmSecurityQuestions ReconfirmMethod = "security-questions"
)

type AuthService struct {
	repo           domain.AccountRepository
	auditor        domain.AuditRecorder
	tracker        *Tracker
	recovery       *RecoveryTokenService
	minPasswordAge time.Duration
	now            func() time.Time
}

func NewAuthService(repo domain.AccountRepository, auditor domain.AuditRecorder, tracker *Tracker,
	recovery *RecoveryTokenService, minPasswordAge time.Duration) *AuthService {
	return &AuthService{
		repo:           repo,
		auditor:        auditor,
		tracker:        tracker,
		recovery:       recovery,
		minPasswordAge: minPasswordAge,
		now:            time.Now,
	}
}

// Login authenticates a username/password pair. A locked account is rejected
// before the credential check and does not consume a login attempt. Failure
// reporting never distinguishes an unknown username from a wrong password.
func (s *AuthService) Login(ctx context.Context, in dto.LoginInput, client domain.ClientInfo) (*dto.LoginResult, error) {
	if in.Username == "" || in.Password == "" {
		return nil, apperrors.ErrMissingFields
	}

	acc, err := s.repo.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if acc != nil && acc.LockedAt(now) {
		return nil, &apperrors.LockedError{MinutesLeft: ceilMinutes(acc.LockRemaining(now))}
	}

	if acc == nil || !CompareSecret(acc.PasswordHash, in.Password, acc.PasswordSalt) {
		if acc != nil {
			s.tracker.RecordAttempt(ctx, acc, false, client)
			s.tracker.ApplyLockPolicy(ctx, acc, false)
			if err := s.repo.Save(ctx, acc); err != nil {
				return nil, err
			}
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	// The summary must describe the attempt before this one, so capture it
	// before the tracker pushes the ring.
	summary := lastLoginSummary(acc.Attempts.Last)

	s.tracker.ApplyLockPolicy(ctx, acc, true)
	s.tracker.RecordAttempt(ctx, acc, true, client)
	if err := s.repo.Save(ctx, acc); err != nil {
		return nil, err
	}

	return &dto.LoginResult{
		AccountID:        acc.ID,
		Username:         acc.Username,
		LastLoginSummary: summary,
	}, nil
}

// Register creates a new user-role account. The new account is never
// auto-authenticated.
func (s *AuthService) Register(ctx context.Context, in dto.RegisterInput) (*domain.Account, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" || in.ConfirmPassword == "" ||
		in.SecurityAnswer1 == "" || in.SecurityAnswer2 == "" {
		s.auditor.Record(ctx, audit.EventRegistrationFailed, "Missing required registration fields", "")
		return nil, apperrors.ErrMissingFields
	}

	if in.Password != in.ConfirmPassword {
		return nil, apperrors.ErrPasswordMismatch
	}

	if result := password.Validate(in.Password); !result.IsValid {
		return nil, &apperrors.PolicyError{Violations: result.Errors}
	}

	q1, q2 := in.SecurityQuestion1, in.SecurityQuestion2
	if q1 == "" {
		q1 = domain.SecurityQuestions[0]
	}
	if q2 == "" {
		q2 = domain.SecurityQuestions[1]
	}
	if !domain.ValidSecurityQuestion(q1) || !domain.ValidSecurityQuestion(q2) {
		return nil, apperrors.ErrMissingFields
	}

	existing, err := s.repo.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrAccountExists
	}

	now := s.now()
	acc := &domain.Account{
		ID:                uuid.NewString(),
		Username:          in.Username,
		Email:             in.Email,
		Role:              domain.RoleUser,
		PasswordChangedAt: now,
		CreatedAt:         now,
		SecurityQuestion1: q1,
		SecurityQuestion2: q2,
	}

	if acc.PasswordSalt, err = NewSalt(); err != nil {
		return nil, err
	}
	if acc.PasswordHash, err = HashSecret(in.Password, acc.PasswordSalt); err != nil {
		return nil, err
	}

	if acc.SecurityAnswerSalt1, err = NewSalt(); err != nil {
		return nil, err
	}
	if acc.SecurityAnswerHash1, err = HashSecret(NormalizeAnswer(in.SecurityAnswer1), acc.SecurityAnswerSalt1); err != nil {
		return nil, err
	}
	if acc.SecurityAnswerSalt2, err = NewSalt(); err != nil {
		return nil, err
	}
	if acc.SecurityAnswerHash2, err = HashSecret(NormalizeAnswer(in.SecurityAnswer2), acc.SecurityAnswerSalt2); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.EventRegistration, fmt.Sprintf("Account %q registered", acc.Username), acc.ID)
	return acc, nil
}

// ChangePassword runs the unified password-change state machine. The method
// tag says how identity was re-confirmed; the current-password comparison
// only runs on that path, while the age and one-generation history checks
// run on both.
func (s *AuthService) ChangePassword(ctx context.Context, accountID string, in dto.ChangePasswordInput, method ReconfirmMethod) error {
	if in.NewPassword == "" || in.ConfirmNewPassword == "" {
		return apperrors.ErrMissingFields
	}

	acc, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acc == nil {
		return apperrors.ErrAccountNotFound
	}

	switch method {
	case ReconfirmCurrentPassword:
		if in.CurrentPassword == "" {
			return apperrors.ErrMissingFields
		}
		if !CompareSecret(acc.PasswordHash, in.CurrentPassword, acc.PasswordSalt) {
			return apperrors.ErrInvalidCredentials
		}
	case ReconfirmSecurityQuestions:
		// Identity was re-confirmed by a recovery grant before we got here.
	default:
		return apperrors.ErrInvalidCredentials
	}

	if elapsed := s.now().Sub(acc.PasswordChangedAt); elapsed < s.minPasswordAge {
		return &apperrors.PasswordAgeError{HoursLeft: ceilHours(s.minPasswordAge - elapsed)}
	}

	if in.NewPassword != in.ConfirmNewPassword {
		return apperrors.ErrPasswordMismatch
	}

	if result := password.Validate(in.NewPassword); !result.IsValid {
		return &apperrors.PolicyError{Violations: result.Errors}
	}

	// One generation of history: the new password may not match the current
	// or the immediately previous one. Anything older is fair game.
	if CompareSecret(acc.PasswordHash, in.NewPassword, acc.PasswordSalt) {
		return apperrors.ErrPasswordReused
	}
	if acc.PreviousPasswordHash != "" &&
		CompareSecret(acc.PreviousPasswordHash, in.NewPassword, acc.PreviousPasswordSalt) {
		return apperrors.ErrPasswordReused
	}

	salt, err := NewSalt()
	if err != nil {
		return err
	}
	hash, err := HashSecret(in.NewPassword, salt)
	if err != nil {
		return err
	}

	acc.PreviousPasswordHash = acc.PasswordHash
	acc.PreviousPasswordSalt = acc.PasswordSalt
	acc.PasswordHash = hash
	acc.PasswordSalt = salt
	acc.PasswordChangedAt = s.now()

	if err := s.repo.Save(ctx, acc); err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.EventPasswordChanged,
		fmt.Sprintf("Password changed via %s", method), acc.ID)
	return nil
}

// ChangePasswordWithGrant is the security-question path: it checks the grant
// belongs to the caller, then runs the same state machine.
func (s *AuthService) ChangePasswordWithGrant(ctx context.Context, accountID string, in dto.RecoveryChangeInput) error {
	claims, err := s.recovery.Verify(in.GrantToken)
	if err != nil {
		return err
	}
	if claims.AccountID != accountID {
		return apperrors.ErrRecoveryGrant
	}

	return s.ChangePassword(ctx, accountID, dto.ChangePasswordInput{
		NewPassword:        in.NewPassword,
		ConfirmNewPassword: in.ConfirmNewPassword,
	}, ReconfirmSecurityQuestions)
}

// VerifySecurityAnswers checks both normalized answers independently; both
// must match. On success it issues a recovery grant for the password-change
// flow.
func (s *AuthService) VerifySecurityAnswers(ctx context.Context, accountID string, in dto.SecurityAnswersInput) (string, error) {
	if in.Answer1 == "" || in.Answer2 == "" {
		return "", apperrors.ErrMissingFields
	}

	acc, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	if acc == nil {
		return "", apperrors.ErrAccountNotFound
	}

	ok1 := CompareSecret(acc.SecurityAnswerHash1, NormalizeAnswer(in.Answer1), acc.SecurityAnswerSalt1)
	ok2 := CompareSecret(acc.SecurityAnswerHash2, NormalizeAnswer(in.Answer2), acc.SecurityAnswerSalt2)
	if !ok1 || !ok2 {
		s.auditor.Record(ctx, audit.EventSecurityFailed, "Security answer verification failed", acc.ID)
		return "", apperrors.ErrSecurityAnswers
	}

	grant, err := s.recovery.Issue(acc.ID)
	if err != nil {
		return "", err
	}

	s.auditor.Record(ctx, audit.EventSecurityVerified, "Security answers verified, recovery grant issued", acc.ID)
	return grant, nil
}

// RecordLogout notes a session teardown in the audit log.
func (s *AuthService) RecordLogout(ctx context.Context, accountID string) {
	s.auditor.Record(ctx, audit.EventLogout, "Session terminated", accountID)
}

func lastLoginSummary(a *domain.LoginAttempt) string {
	if a == nil {
		return "This is your first login."
	}
	outcome := "failed"
	if a.Success {
		outcome = "successful"
	}
	return fmt.Sprintf("Last login attempt: %s from %s (%s on %s), %s",
		a.Timestamp.Format("Jan 2, 2006 15:04 MST"), a.IPAddress, a.Device.Browser, a.Device.OS, outcome)
}

func ceilMinutes(d time.Duration) int {
	return int((d + time.Minute - 1) / time.Minute)
}

func ceilHours(d time.Duration) int {
	return int((d + time.Hour - 1) / time.Hour)
}
