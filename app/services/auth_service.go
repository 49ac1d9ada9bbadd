package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"quill/app/models"
	"quill/app/repositories"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload identifying a principal.
type Claims struct {
	UserID  int  `json:"uid"`
	IsAdmin bool `json:"adm"`
	jwt.RegisteredClaims
}

// AuthService handles registration, login and token verification
type AuthService struct {
	users  repositories.UserRepository
	secret []byte
	ttl    time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(users repositories.UserRepository, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{users: users, secret: []byte(secret), ttl: ttl}
}

// Register creates a non-admin user with a hashed password
func (s *AuthService) Register(in models.RegisterInput) (*models.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: in.Username, Password: hash, FullName: in.FullName}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("register %q: %w", in.Username, err)
	}
	return user, nil
}

// Login checks the credentials and returns a signed token
func (s *AuthService) Login(in models.LoginInput) (string, *models.User, error) {
	if err := validateInput(in); err != nil {
		return "", nil, err
	}

	user, err := s.users.GetByUsername(in.Username)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", nil, ErrUnauthorized
	}
	if err != nil {
		return "", nil, err
	}
	if err := ComparePassword(user.Password, in.Password); err != nil {
		return "", nil, ErrUnauthorized
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken signs an access token for user
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify parses token and returns the principal it carries
func (s *AuthService) Verify(token string) (*models.Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrUnauthorized
	}
	return &models.Principal{UserID: claims.UserID, IsAdmin: claims.IsAdmin}, nil
}
