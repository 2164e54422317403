package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/pkg/apperror"
	"go-jobseeker-backend/pkg/auth"
	"go-jobseeker-backend/pkg/logger"
	"go-jobseeker-backend/pkg/security"

	"github.com/google/uuid"
)

// TokenIssuer signs and verifies access tokens.
type TokenIssuer interface {
	Issue(userID, email string) (string, time.Time, error)
	Parse(token string) (auth.Claims, error)
}

// LoginGuard tracks failed logins and blocks an account after too many.
type LoginGuard interface {
	IsBlocked(ctx context.Context, email string) (bool, error)
	RecordFailedAttempt(ctx context.Context, email, ip string) (bool, error)
	ClearAttempts(ctx context.Context, email string) error
}

type ResetCodeSender interface {
	SendResetCode(ctx context.Context, to, code string, ttl time.Duration, resetURL string) error
}

type AuthOptions struct {
	ResetCodeTTL time.Duration
	ResetURL     string
	// ResetMaxAttempts wrong codes discard the outstanding code.
	ResetMaxAttempts int
}

type authUsecase struct {
	users   domain.UserRepository
	tx      domain.Transactor
	tokens  TokenIssuer
	guard   LoginGuard
	mailer  ResetCodeSender
	secLog  *security.SecurityLogger
	options AuthOptions

	now   func() time.Time
	newID func() string
}

func NewAuthUsecase(
	users domain.UserRepository,
	tx domain.Transactor,
	tokens TokenIssuer,
	guard LoginGuard,
	mailer ResetCodeSender,
	secLog *security.SecurityLogger,
	options AuthOptions,
) domain.AuthUsecase {
	if secLog == nil {
		secLog = security.NopSecurityLogger()
	}
	if options.ResetCodeTTL <= 0 {
		options.ResetCodeTTL = 15 * time.Minute
	}
	if options.ResetMaxAttempts <= 0 {
		options.ResetMaxAttempts = 5
	}
	return &authUsecase{
		users:   users,
		tx:      tx,
		tokens:  tokens,
		guard:   guard,
		mailer:  mailer,
		secLog:  secLog,
		options: options,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (u *authUsecase) issue(user *domain.User) (*domain.AuthResult, error) {
	token, expiresAt, err := u.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("issue token: %w", err))
	}
	return &domain.AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (u *authUsecase) Register(ctx context.Context, email, password, name string) (*domain.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, apperror.Validation([]string{"email: is required"})
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return nil, apperror.Validation([]string{"password: " + err.Error()})
		}
		return nil, apperror.Internal(err)
	}

	now := u.now().UTC()
	user := &domain.User{
		ID:           u.newID(),
		Email:        email,
		PasswordHash: hash,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	user.Name = strings.TrimSpace(name)

	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	u.secLog.Log(ctx, security.SecurityEvent{
		Event:        security.EventUserRegistered,
		SubjectType:  "user_id",
		SubjectValue: user.ID,
	})
	return u.issue(user)
}

func (u *authUsecase) Login(ctx context.Context, email, password, ip string) (*domain.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	invalid := apperror.Unauthorized("Invalid email or password")

	if blocked, err := u.guard.IsBlocked(ctx, email); err != nil {
		logger.Log.Warn("login tracker unavailable", "error", err)
	} else if blocked {
		u.secLog.LogLoginBlocked(ctx, email, ip)
		return nil, apperror.TooManyRequests("Too many failed attempts, try again later")
	}

	user, err := u.users.GetByEmail(ctx, email)
	if err != nil && apperror.KindOf(err) != apperror.KindNotFound {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		reason := "bad_password"
		if user == nil {
			reason = "unknown_email"
		}
		u.secLog.LogLoginFailed(ctx, email, ip, reason)
		if _, err := u.guard.RecordFailedAttempt(ctx, email, ip); err != nil {
			logger.Log.Warn("failed to record login attempt", "error", err)
		}
		return nil, invalid
	}

	if err := u.guard.ClearAttempts(ctx, email); err != nil {
		logger.Log.Warn("failed to clear login attempts", "error", err)
	}
	u.secLog.LogLoginSuccess(ctx, user.ID, ip)
	return u.issue(user)
}

// ForgotPassword mails a one-time code. It succeeds for unknown addresses so
// callers cannot probe which emails are registered.
func (u *authUsecase) ForgotPassword(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	user, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil
		}
		return err
	}

	code, hash, err := auth.GenerateResetCode()
	if err != nil {
		return apperror.Internal(err)
	}
	ttl := u.options.ResetCodeTTL
	if err := u.users.SetResetCode(ctx, user.ID, hash, u.now().UTC().Add(ttl)); err != nil {
		return err
	}
	u.secLog.LogPasswordReset(ctx, security.EventPasswordResetRequested, email)

	if u.mailer == nil {
		logger.Log.Warn("reset code not sent, mailer not configured", "user_id", user.ID)
		return nil
	}
	if err := u.mailer.SendResetCode(ctx, user.Email, code, ttl, u.options.ResetURL); err != nil {
		logger.Log.Error("failed to send reset code", "user_id", user.ID, "error", err)
	}
	return nil
}

func (u *authUsecase) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = domain.NormalizeEmail(email)
	rejected := apperror.BadRequest("Invalid or expired reset code")

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return apperror.Validation([]string{"new_password: " + err.Error()})
		}
		return apperror.Internal(err)
	}

	// set when a live code was guessed wrong; recorded after the rollback
	var missedUserID string
	err = u.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := u.users.GetByEmail(ctx, email)
		if err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				return rejected
			}
			return err
		}
		if user.ResetCodeHash == "" || user.ResetCodeExpiresAt == nil || u.now().After(*user.ResetCodeExpiresAt) {
			return rejected
		}
		if err := auth.CheckResetCode(user.ResetCodeHash, code); err != nil {
			missedUserID = user.ID
			return rejected
		}
		if err := u.users.SetPassword(ctx, user.ID, hash); err != nil {
			return err
		}
		return u.users.ClearResetCode(ctx, user.ID)
	})
	if err != nil {
		if errors.Is(err, rejected) {
			u.secLog.LogPasswordReset(ctx, security.EventPasswordResetFailed, email)
		}
		if missedUserID != "" {
			exhausted, rerr := u.users.RecordResetFailure(ctx, missedUserID, u.options.ResetMaxAttempts)
			if rerr != nil {
				logger.Log.Error("failed to record reset attempt", "user_id", missedUserID, "error", rerr)
			} else if exhausted {
				logger.Log.Warn("reset code discarded after too many wrong guesses", "user_id", missedUserID)
			}
		}
		return err
	}

	u.secLog.LogPasswordReset(ctx, security.EventPasswordResetCompleted, email)
	if err := u.guard.ClearAttempts(ctx, email); err != nil {
		logger.Log.Warn("failed to clear login attempts", "error", err)
	}
	return nil
}

func (u *authUsecase) Me(ctx context.Context, actor domain.Identity) (*domain.User, error) {
	if actor.UserID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	return u.users.GetByID(ctx, actor.UserID)
}

// ResolveToken verifies a bearer token and loads the account it names. The
// returned identity carries the stored email, which may differ from the
// token's if the user changed it since login.
func (u *authUsecase) ResolveToken(ctx context.Context, token string) (domain.Identity, error) {
	claims, err := u.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return domain.Identity{}, apperror.Unauthorized("Token expired")
		}
		return domain.Identity{}, apperror.Unauthorized("Invalid token")
	}

	user, err := u.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return domain.Identity{}, apperror.Unauthorized("Account no longer exists")
		}
		return domain.Identity{}, err
	}
	return domain.Identity{UserID: user.ID, Email: user.Email}, nil
}
