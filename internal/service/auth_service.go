package service

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer       = "getsfit"
	minPasswordLength = 8
)

var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

// SettingsStatus tells the settings page which integrations are linked.
type SettingsStatus struct {
	FitbitLinked   bool   `json:"fitbitLinked"`
	TelegramLinked bool   `json:"telegramLinked"`
	Email          string `json:"email"`
}

type AuthService interface {
	// Register creates an account. The first account becomes the admin.
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	Me(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	SettingsStatus(ctx context.Context, userID primitive.ObjectID) (*SettingsStatus, error)
	GetJWTSecret() string
}

type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
	now           Clock
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiration time.Duration, now Clock) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 7 * 24 * time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		now:           now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	// 1. Validate input
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidationFailed)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidationFailed)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidationFailed, minPasswordLength)
	}

	// 2. Check the email is free
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// 3. Decide the role
	existing, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	role := domain.RoleUser
	if len(existing) == 0 {
		role = domain.RoleAdmin
	}

	// 4. Hash the password
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	// 5. Save
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
	}
	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = id
	user.PasswordHash = ""

	log.WithFields(log.Fields{"userId": id.Hex(), "role": role}).Info("user registered")
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		err = fmt.Errorf("%w: email and password are required", ErrValidationFailed)
		return
	}

	user, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
		}
		user = nil
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

func (s *authService) Me(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) SettingsStatus(ctx context.Context, userID primitive.ObjectID) (*SettingsStatus, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &SettingsStatus{
		FitbitLinked:   user.FitbitLinked(),
		TelegramLinked: user.TelegramLinked(),
		Email:          user.Email,
	}, nil
}

// jwtClaims is the session token payload; the API middleware parses the same shape.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := s.now()
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}

func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
