// Package services contains server-side business logic. This file
// implements AuthService, which orchestrates account provisioning across
// the identity provider, the email-verification service and the local
// store, and issues session tokens for sign-in and password reset.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/crypto/bcrypt"

	"github.com/tripstack/identity/internal/common"
	"github.com/tripstack/identity/internal/logging"
	"github.com/tripstack/identity/internal/server/auth"
	"github.com/tripstack/identity/internal/server/idp"
	"github.com/tripstack/identity/internal/server/mailid"
	"github.com/tripstack/identity/internal/server/models"
	"github.com/tripstack/identity/internal/server/repositories/repomanager"
)

// signupState tracks progress through the provisioning workflow. States
// are strictly ordered; there are no backward transitions. The state at
// the point of failure is logged so the failure point is inspectable.
type signupState string

const (
	stateInit                     signupState = "Init"
	stateProviderAccountCreated   signupState = "ProviderAccountCreated"
	stateConfirmed                signupState = "Confirmed"
	stateGroupAssigned            signupState = "GroupAssigned"
	stateEmailVerificationChecked signupState = "EmailVerificationChecked"
	stateLocalUserSynced          signupState = "LocalUserSynced"
	stateComplete                 signupState = "Complete"
)

// Diagnostic principal minted by ServiceToken.
const (
	servicePrincipalID    = "default-user-id"
	servicePrincipalEmail = "default@example.com"
)

// SignUpRequest carries the provisioning inputs. Name is split on the
// first space into first/last name for the local row.
type SignUpRequest struct {
	Email       string
	Password    string
	Name        string
	PhoneNumber string
	Role        string
	AgencyID    int64
}

// SignInResult is returned on successful interactive sign-in.
type SignInResult struct {
	AccessToken string
	ID          string
	FirstName   string
	LastName    string
}

// AuthService composes the identity-provider client, the
// email-verification manager, the user repository and the token issuer
// into the sign-up, sign-in and password-reset workflows. It owns the
// partial-failure policy: enrichment steps never abort provisioning,
// account creation and the local sync do.
type AuthService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	provider idp.Client
	mail     mailid.Manager
	tokens   *auth.TokenIssuer
	logger   logging.Logger

	retryBase  time.Duration
	maxRetries uint64
}

func NewAuthService(db *sql.DB, repos repomanager.RepositoryManager, provider idp.Client,
	mail mailid.Manager, tokens *auth.TokenIssuer, logger logging.Logger) *AuthService {
	return &AuthService{
		db:         db,
		repos:      repos,
		provider:   provider,
		mail:       mail,
		tokens:     tokens,
		logger:     logger,
		retryBase:  500 * time.Millisecond,
		maxRetries: 2,
	}
}

// SignUp runs the provisioning workflow:
//
//	Init → ProviderAccountCreated → Confirmed → GroupAssigned →
//	EmailVerificationChecked → LocalUserSynced → Complete
//
// Failure creating the provider account aborts the whole workflow.
// Failures at Confirmed, GroupAssigned or EmailVerificationChecked are
// logged and skipped: a usable-but-under-enriched account beats rolling
// back a successful external side effect, so no compensation is run.
// Failure syncing the local row is fatal and leaves a known inconsistency
// window (provider account without a local row), which is logged loudly.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	state := stateInit
	log := s.logger.With("workflow", "signup", "email", req.Email)

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSignupFailed, err)
	}

	var subjectID string
	err = s.callProvider(ctx, func(ctx context.Context) error {
		var createErr error
		subjectID, createErr = s.provider.CreateAccount(ctx, req.Email, req.Password, map[string]string{
			"email":        req.Email,
			"name":         req.Name,
			"phone_number": req.PhoneNumber,
		})
		return createErr
	})
	if err != nil {
		log.Error(ctx, "provider account creation failed", "state", state, "error", err)
		if errors.Is(err, common.ErrDuplicateAccount) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrSignupFailed, err)
	}
	state = stateProviderAccountCreated
	log.Info(ctx, "signup step complete", "state", state, "subject_id", subjectID)

	if err := s.provider.ConfirmAccount(ctx, req.Email); err != nil {
		log.Warn(ctx, "account confirmation failed, continuing", "state", state, "error", err)
	} else {
		state = stateConfirmed
		log.Info(ctx, "signup step complete", "state", state)
	}

	if err := s.provider.AssignGroup(ctx, req.Email, req.Role); err != nil {
		log.Warn(ctx, "group assignment failed, continuing", "state", state, "role", req.Role, "error", err)
	} else {
		state = stateGroupAssigned
		log.Info(ctx, "signup step complete", "state", state, "role", req.Role)
	}

	emailVerified := s.checkEmailVerification(ctx, log, req.Email)
	state = stateEmailVerificationChecked
	log.Info(ctx, "signup step complete", "state", state, "email_verified", emailVerified)

	firstName, lastName := splitName(req.Name)
	user := &models.User{
		FirstName:         firstName,
		LastName:          lastName,
		Email:             req.Email,
		PasswordHash:      string(passwordHash),
		Phone:             req.PhoneNumber,
		Role:              req.Role,
		AgencyID:          req.AgencyID,
		Status:            models.StatusActive,
		EmailVerified:     emailVerified,
		ProviderSubjectID: subjectID,
		CreatedAt:         time.Now(),
	}

	created, err := s.repos.Users(s.db).Create(ctx, user)
	if err != nil {
		// The provider account exists but the local row does not; sign-in
		// is impossible until the row is reconciled.
		log.Error(ctx, "local user sync failed, provider account is orphaned",
			"state", state, "subject_id", subjectID, "error", err)
		if errors.Is(err, common.ErrDuplicateAccount) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}
	state = stateLocalUserSynced
	log.Info(ctx, "signup step complete", "state", state, "user_id", created.ID)

	state = stateComplete
	log.Info(ctx, "signup complete", "state", state, "user_id", created.ID)
	return created, nil
}

// checkEmailVerification observes the mail-identity status and registers
// the identity when it is unknown. Best effort throughout: verification
// outcome never blocks account creation.
func (s *AuthService) checkEmailVerification(ctx context.Context, log logging.Logger, email string) bool {
	status, err := s.mail.VerificationStatus(ctx, email)
	if err != nil {
		log.Warn(ctx, "email verification lookup failed, continuing", "error", err)
		return false
	}

	switch status {
	case mailid.StatusSucceeded:
		if err := s.provider.UpdateAttributes(ctx, email, map[string]string{"email_verified": "true"}); err != nil {
			log.Warn(ctx, "provider email_verified sync failed, continuing", "error", err)
		}
		return true
	case mailid.StatusNotFound:
		if err := s.mail.RegisterIdentity(ctx, email); err != nil {
			log.Warn(ctx, "email identity registration failed, continuing", "error", err)
		} else {
			log.Info(ctx, "email identity registered, verification pending")
		}
	default:
		log.Info(ctx, "email verification not concluded", "status", string(status))
	}
	return false
}

// SignIn authenticates against the local row: the account must exist, be
// active, and the password must match the stored hash. All three failures
// report the same authorization error so account existence does not leak.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrAuthorizationFailure
		}
		return nil, fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}

	if !user.Active() {
		s.logger.Info(ctx, "sign-in rejected for inactive account", "user_id", user.ID)
		return nil, common.ErrAuthorizationFailure
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrAuthorizationFailure
	}

	token, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	return &SignInResult{
		AccessToken: token,
		ID:          user.ID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
	}, nil
}

// RequestReset asks the provider to deliver a password-reset code
// out-of-band and returns the delivery metadata. Provider rejections come
// back as a bad request carrying the provider's reason; no local state
// changes.
func (s *AuthService) RequestReset(ctx context.Context, email string) (*idp.CodeDelivery, error) {
	var delivery *idp.CodeDelivery
	err := s.callProvider(ctx, func(ctx context.Context) error {
		var resetErr error
		delivery, resetErr = s.provider.InitiatePasswordReset(ctx, email)
		return resetErr
	})
	if err != nil {
		s.logger.Warn(ctx, "password reset initiation failed", "email", email, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrBadRequest, err)
	}
	return delivery, nil
}

// ConfirmReset completes a password reset with the delivered code.
func (s *AuthService) ConfirmReset(ctx context.Context, email, code, newPassword string) error {
	if err := s.provider.ConfirmPasswordReset(ctx, email, code, newPassword); err != nil {
		s.logger.Warn(ctx, "password reset confirmation failed", "email", email, "error", err)
		return fmt.Errorf("%w: %w", common.ErrBadRequest, err)
	}
	return nil
}

// RefreshEmailVerification re-observes the mail-identity status for an
// existing account and records the outcome on the local row. The observed
// status is informational: a failed lookup or a failed flag update leaves
// the account untouched and usable.
func (s *AuthService) RefreshEmailVerification(ctx context.Context, email string) (bool, error) {
	repo := s.repos.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, err
		}
		return false, fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}

	status, err := s.mail.VerificationStatus(ctx, email)
	if err != nil {
		s.logger.Warn(ctx, "email verification lookup failed", "email", email, "error", err)
		return user.EmailVerified, nil
	}

	verified := status == mailid.StatusSucceeded
	if verified != user.EmailVerified {
		if err := repo.SetVerificationFlags(ctx, user.ID, verified, user.PhoneVerified); err != nil {
			s.logger.Warn(ctx, "verification flag update failed", "user_id", user.ID, "error", err)
		}
	}
	return verified, nil
}

// ServiceToken mints a diagnostic token for the fixed legacy principal.
func (s *AuthService) ServiceToken() (string, error) {
	return s.tokens.IssueServiceToken(servicePrincipalID, servicePrincipalEmail)
}

// callProvider applies bounded exponential backoff, retrying only the
// provider-unavailable kind. Duplicate, policy and authorization errors
// are terminal by definition and pass through untouched.
func (s *AuthService) callProvider(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(s.maxRetries, retry.NewExponential(s.retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, common.ErrProviderUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
