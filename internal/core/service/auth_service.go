package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	minPasswordLen   = 8
)

// TokenConfig holds the signing secrets and lifetimes of issued tokens.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// AuthService implements registration, login and refresh-token rotation.
type AuthService struct {
	store  ports.Store
	tokens ports.RefreshTokenStore
	cfg    TokenConfig
	log    zerolog.Logger
}

func NewAuthService(store ports.Store, tokens ports.RefreshTokenStore, cfg TokenConfig, log zerolog.Logger) *AuthService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = cfg.AccessSecret
	}
	return &AuthService{store: store, tokens: tokens, cfg: cfg, log: log}
}

// Register creates the user and an empty profile of the matching kind.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || len(in.Password) < minPasswordLen {
		return nil, domain.ErrValidation.WithMessage("email and a password of at least %d characters are required", minPasswordLen)
	}
	if in.Role != domain.RolePsychologist && in.Role != domain.RoleConsultant {
		return nil, domain.ErrValidation.WithMessage("role must be PSYCHOLOGIST or CONSULTANT")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Name:         in.Name,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	err = s.store.WithinTx(ctx, func(tx ports.Repositories) error {
		if _, err := tx.Users.FindByEmail(ctx, email); err == nil {
			return domain.ErrEmailAlreadyRegistered
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		if err := tx.Users.Create(ctx, user); err != nil {
			return err
		}
		if in.Role == domain.RolePsychologist {
			return tx.Psychologists.Create(ctx, &domain.PsychologistProfile{UserID: user.ID})
		}
		return tx.Consultants.Create(ctx, domain.NewConsultantProfile(user.ID))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.store.Repos().Users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

// Refresh rotates a refresh token: the presented token is consumed and a new
// pair is issued. Reusing a consumed token fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	claims, err := s.parse(refreshToken, s.cfg.RefreshSecret, tokenTypeRefresh)
	if err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}
	userID, err := s.tokens.Consume(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, err
	}
	if sub, _ := claims["sub"].(string); sub != userID {
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := s.store.Repos().Users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, hashToken(refreshToken))
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return domain.ErrValidation.WithMessage("new_password must be at least %d characters", minPasswordLen)
	}
	repos := s.store.Repos()
	user, err := repos.Users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return domain.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := repos.Users.UpdatePassword(ctx, userID, string(hash), false); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.Repos().Users.FindByID(ctx, userID)
}

func (s *AuthService) MustChangePassword(ctx context.Context, userID string) (bool, error) {
	user, err := s.store.Repos().Users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.MustChangePassword, nil
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*ports.TokenPair, error) {
	now := time.Now()

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"typ":  tokenTypeAccess,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.AccessTTL).Unix(),
	}).SignedString([]byte(s.cfg.AccessSecret))
	if err != nil {
		return nil, err
	}

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID,
		"typ": tokenTypeRefresh,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(s.cfg.RefreshTTL).Unix(),
	}).SignedString([]byte(s.cfg.RefreshSecret))
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(ctx, hashToken(refresh), user.ID, s.cfg.RefreshTTL); err != nil {
		return nil, err
	}

	return &ports.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.AccessTTL.Seconds()),
		User:         user,
	}, nil
}

func (s *AuthService) parse(token, secret, typ string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidRefreshToken
	}
	if claims["typ"] != typ {
		return nil, domain.ErrInvalidRefreshToken
	}
	return claims, nil
}

// hashToken is the storage key of a refresh token; raw tokens are never
// persisted.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
