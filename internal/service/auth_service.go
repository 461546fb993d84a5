package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/skyprep/aviation-exam-api/internal/models"
	appErrors "github.com/skyprep/aviation-exam-api/pkg/errors"
)

type accountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error
	RevokeAccountRefreshTokens(ctx context.Context, accountID string) error
}

type adminFlagReader interface {
	IsAdmin(ctx context.Context, accountID string) (bool, error)
}

type enrollmentRegistrar interface {
	Register(ctx context.Context, req RegisterEnrollmentRequest) (*models.Trainee, error)
}

type sessionRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) bool
}

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Issuer             string
}

// SignupRequest describes the trainee self-registration payload.
type SignupRequest struct {
	Email     string       `json:"email" validate:"required,email"`
	Password  string       `json:"password" validate:"required,min=6"`
	Group     models.Group `json:"group" validate:"required"`
	Period    string       `json:"period" validate:"required"`
	IP        string       `json:"-"`
	UserAgent string       `json:"-"`
}

// AuthService provides authentication use cases, including the admin gate.
type AuthService struct {
	accounts    accountRepository
	admins      adminFlagReader
	enrollments enrollmentRegistrar
	sessions    sessionRevoker
	audit       auditWriter
	validator   *validator.Validate
	logger      *zap.Logger
	config      AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(accounts accountRepository, admins adminFlagReader, enrollments enrollmentRegistrar, sessions sessionRevoker, audit auditWriter, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{
		accounts:    accounts,
		admins:      admins,
		enrollments: enrollments,
		sessions:    sessions,
		audit:       audit,
		validator:   validate,
		logger:      logger,
		config:      config,
	}
}

// Signup creates an account plus its empty enrollment record and signs the
// trainee in. Payload validation completes before the first store write so a
// rejected request leaves nothing behind.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, classifyValidation(err, "invalid signup payload")
	}
	if !models.ValidGroup(req.Group) {
		return nil, appErrors.Clone(appErrors.ErrInvalidGroup, "unknown training group")
	}
	if !models.ValidPeriod(req.Group, req.Period) {
		return nil, appErrors.Clone(appErrors.ErrInvalidPeriod, "period is not valid for the group")
	}

	if _, err := s.accounts.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	account := &models.Account{
		ID:            uuid.NewString(),
		Email:         req.Email,
		PasswordHash:  string(hash),
		EmailVerified: false,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}

	if _, err := s.enrollments.Register(ctx, RegisterEnrollmentRequest{
		AccountID: account.ID,
		Email:     account.Email,
		Group:     req.Group,
		Period:    req.Period,
	}); err != nil {
		return nil, err
	}

	s.writeAudit(ctx, &account.ID, models.AuditActionSignup, "auth", &account.ID, req.IP, req.UserAgent, `{"status":"created"}`)

	return s.issueSession(ctx, account, models.RoleTrainee, req.IP, req.UserAgent)
}

// Login authenticates a trainee and returns issued tokens.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	account, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.UpdateLastLogin(ctx, account.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}
	s.writeAudit(ctx, &account.ID, models.AuditActionLogin, "auth", &account.ID, req.IP, req.UserAgent, `{"surface":"trainee"}`)

	return s.issueSession(ctx, account, models.RoleTrainee, req.IP, req.UserAgent)
}

// AdminLogin runs the privilege-gated authentication protocol: a successful
// credential check is not sufficient, the admin flag decides entry. On a
// missing or false flag every live session for the account is revoked before
// the rejection is returned.
func (s *AuthService) AdminLogin(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	account, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	isAdmin, err := s.admins.IsAdmin(ctx, account.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check admin flag")
	}
	if !isAdmin {
		if err := s.accounts.RevokeAccountRefreshTokens(ctx, account.ID); err != nil {
			s.logger.Warn("failed to revoke sessions on gate rejection", zap.Error(err))
		}
		s.writeAudit(ctx, &account.ID, models.AuditActionLoginDenied, "auth", &account.ID, req.IP, req.UserAgent, `{"reason":"not_admin"}`)
		return nil, appErrors.Clone(appErrors.ErrNotAuthorized, "account is not an administrator")
	}

	if err := s.accounts.UpdateLastLogin(ctx, account.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}
	s.writeAudit(ctx, &account.ID, models.AuditActionLogin, "auth", &account.ID, req.IP, req.UserAgent, `{"surface":"admin"}`)

	return s.issueSession(ctx, account, models.RoleAdmin, req.IP, req.UserAgent)
}

// RefreshToken exchanges a refresh token for a new access token pair. The
// role is re-derived from the admin flag so a revoked privilege does not
// survive rotation.
func (s *AuthService) RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid refresh payload")
	}

	storedToken, err := s.accounts.FindRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch refresh token")
	}

	if storedToken.Revoked || time.Now().UTC().After(storedToken.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token is expired or revoked")
	}

	account, err := s.accounts.FindByID(ctx, storedToken.AccountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "associated account no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	if err := s.accounts.RevokeRefreshToken(ctx, storedToken.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to revoke used refresh token", zap.Error(err))
	}

	role := models.RoleTrainee
	if isAdmin, err := s.admins.IsAdmin(ctx, account.ID); err == nil && isAdmin {
		role = models.RoleAdmin
	}

	session, err := s.issueSession(ctx, account, role, req.IP, req.UserAgent)
	if err != nil {
		return nil, err
	}

	return &models.RefreshTokenResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
		IssuedAt:     session.IssuedAt,
	}, nil
}

// Logout revokes the refresh token and denylists the presented access token
// for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *models.JWTClaims, refreshToken string, ip, userAgent string) error {
	storedToken, err := s.accounts.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUnauthorized, "refresh token not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load refresh token")
	}

	if storedToken.AccountID != claims.AccountID {
		return appErrors.Clone(appErrors.ErrForbidden, "token does not belong to account")
	}

	if err := s.accounts.RevokeRefreshToken(ctx, storedToken.ID, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke refresh token")
	}

	if claims.ExpiresAt != nil {
		if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
			if err := s.sessions.Revoke(ctx, claims.ID, ttl); err != nil {
				s.logger.Warn("failed to denylist access token", zap.Error(err))
			}
		}
	}

	s.writeAudit(ctx, &claims.AccountID, models.AuditActionLogout, "auth", &claims.AccountID, ip, userAgent, `{"status":"logout"}`)

	return nil
}

// ValidateToken parses an access token, verifies its signature and rejects
// denylisted sessions.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	if s.sessions.IsRevoked(ctx, claims.ID) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session has been revoked")
	}

	return claims, nil
}

// authenticate runs the credential check shared by both login surfaces and
// maps failures onto the fixed classification; nothing from the underlying
// store leaks past it.
func (s *AuthService) authenticate(ctx context.Context, req models.LoginRequest) (*models.Account, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, classifyValidation(err, "invalid login payload")
	}

	account, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnknownAccount, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	return account, nil
}

func (s *AuthService) issueSession(ctx context.Context, account *models.Account, role models.Role, ip, userAgent string) (*models.LoginResponse, error) {
	accessToken, _, err := s.generateAccessToken(account, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	refreshTokenValue, err := generateRefreshTokenString()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create refresh token")
	}

	refreshToken := &models.RefreshToken{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		Token:     refreshTokenValue,
		ExpiresAt: time.Now().UTC().Add(s.config.RefreshTokenExpiry),
		CreatedAt: time.Now().UTC(),
		Revoked:   false,
		IPAddress: ip,
		UserAgent: userAgent,
	}

	if err := s.accounts.CreateRefreshToken(ctx, refreshToken); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist refresh token")
	}

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		ExpiresIn:    int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:     time.Now().UTC(),
		Account: models.AccountInfo{
			ID:            account.ID,
			Email:         account.Email,
			EmailVerified: account.EmailVerified,
			Role:          role,
		},
	}, nil
}

func (s *AuthService) generateAccessToken(account *models.Account, role models.Role) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   account.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) writeAudit(ctx context.Context, accountID *string, action, resource string, resourceID *string, ip, userAgent, detail string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Create(ctx, &models.AuditLog{
		AccountID:  accountID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Detail:     []byte(detail),
		IPAddress:  ip,
		UserAgent:  userAgent,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

// classifyValidation maps a struct validation failure onto the user-facing
// reasons; a bad email address gets its own classification.
func classifyValidation(err error, fallback string) *appErrors.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "email" {
				return appErrors.Clone(appErrors.ErrInvalidEmail, "invalid email address")
			}
		}
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fallback)
}

func generateRefreshTokenString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
