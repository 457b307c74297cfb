package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/quizhub/quiz-go-api/internal/dto"
	"github.com/quizhub/quiz-go-api/internal/models"
	"github.com/quizhub/quiz-go-api/internal/repository"
)

// ErrNameTaken indicates the requested user name already exists.
var ErrNameTaken = errors.New("user name already taken")

// ErrInvalidCredentials indicates a failed login attempt.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService registers users and issues JWTs.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.TokenResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.TokenResponse, error)
}

// AuthConfig carries token-issuing settings.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	// AdminName names the account that is granted the admin role on
	// registration.
	AdminName string
}

type authService struct {
	users     repository.UserRepository
	cfg       AuthConfig
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(users repository.UserRepository, cfg AuthConfig, validate *validator.Validate, logger zerolog.Logger) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.AdminName == "" {
		cfg.AdminName = "admin"
	}
	return &authService{
		users:     users,
		cfg:       cfg,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.TokenResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenResponse{}, err
	}

	if _, err := s.users.GetByName(ctx, payload.Name); err == nil {
		return dto.TokenResponse{}, ErrNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.TokenResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	role := models.RoleUser
	if payload.Name == s.cfg.AdminName {
		role = models.RoleAdmin
	}

	user := models.User{Name: payload.Name, PasswordHash: string(hash), Role: role}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.TokenResponse{}, err
	}

	return s.issueToken(user)
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.TokenResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenResponse{}, err
	}

	user, err := s.users.GetByName(ctx, payload.Name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TokenResponse{}, ErrInvalidCredentials
		}
		return dto.TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.TokenResponse{}, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

func (s *authService) issueToken(user models.User) (dto.TokenResponse, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     user.ID,
		"user_id": user.ID,
		"role":    user.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.TokenTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return dto.TokenResponse{}, err
	}

	return dto.TokenResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}
