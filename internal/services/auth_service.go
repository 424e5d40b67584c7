package services

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"tasktrack/internal/models"
	"tasktrack/internal/repositories"
	"tasktrack/internal/security"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// DefaultTokenTTL is how long an issued token stays valid unless the caller
// requests a different lifetime.
const DefaultTokenTTL = 30 * time.Minute

// MinPasswordLength is the minimum accepted password length in characters.
const MinPasswordLength = 6

// AuthService handles registration, login, and bearer-token issuance and
// verification. The signing secret lives for the process lifetime; losing
// it invalidates every outstanding token.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService. A tokenTTL of zero or less
// selects DefaultTokenTTL.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// validatePassword enforces the password policy before anything reaches the
// hasher. Oversize inputs are rejected outright: bcrypt silently truncates
// past 72 bytes, so letting them through would weaken the stored hash.
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > security.MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// RegisterUser registers a new user, hashes their password, and persists
// them. The plaintext password is never stored or logged.
func (s *AuthService) RegisterUser(username, email, password string) (*models.User, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// LoginUser authenticates a user and returns a signed token on success.
// Every failure mode collapses into ErrInvalidCredentials so the response
// does not reveal whether the username exists.
func (s *AuthService) LoginUser(username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !security.VerifyPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.IssueToken(user.Username, s.tokenTTL)
}

// IssueToken signs a token asserting subject until now+ttl. A ttl of zero
// or less produces an already-expired token.
func (s *AuthService) IssueToken(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
		"jti": uuid.New().String(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken verifies the signature and expiry of a token and returns
// its subject. A token that verifies but carries no usable subject claim
// is treated the same as a bad signature.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			if ve.Errors&jwt.ValidationErrorMalformed != 0 {
				return "", ErrMalformedToken
			}
			if ve.Errors&jwt.ValidationErrorExpired != 0 {
				return "", ErrTokenExpired
			}
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}

// ResolveUser maps a token back to a live user record. Cryptographic
// validity is checked first, then existence: a valid token whose subject
// has since disappeared must not resolve to an identity.
func (s *AuthService) ResolveUser(tokenString string) (*models.User, error) {
	subject, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(subject)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	return user, nil
}
