package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stylemate/platform/internal/api/middleware"
	"github.com/stylemate/platform/internal/config"
	"github.com/stylemate/platform/internal/errors"
	"github.com/stylemate/platform/internal/models"
	repository "github.com/stylemate/platform/internal/repositories"
	"github.com/stylemate/platform/pkg/email"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	RequestOTP(ctx context.Context, req *models.OTPRequest) error
	VerifyOTP(ctx context.Context, req *models.OTPVerifyRequest) (bool, error)
}

type userService struct {
	repo      repository.UserRepository
	rateLimit repository.RateLimitRepository
	otp       repository.OTPRepository
	mail      email.Service
	security  *config.Security
	otpTTL    time.Duration
}

func NewUserService(repo repository.UserRepository, rateLimit repository.RateLimitRepository, otp repository.OTPRepository, mail email.Service, cfg *config.Config) UserService {
	return &userService{
		repo:      repo,
		rateLimit: rateLimit,
		otp:       otp,
		mail:      mail,
		security:  &cfg.Security,
		otpTTL:    cfg.OTP.TTL,
	}
}

func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {

	existingUser, _ := s.repo.GetUserByEmail(ctx, req.Email)
	if existingUser != nil {
		return nil, errors.DuplicateEntryError("Email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.InternalError("Failed to secure password").WithError(err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Roles:    []string{models.RoleCustomer},
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, errors.DatabaseError("Failed to create user").WithError(err)
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {

	allowed, remaining, retryAfter, err := s.rateLimit.CheckLoginRateLimit(ctx, req.Email)
	if err != nil {
		return nil, errors.ThirdPartyError("Rate limit check failed").WithError(err)
	}

	if !allowed {
		return &models.LoginResponse{
			Success:    false,
			Message:    "Too many login attempts. Please try again later.",
			RetryAfter: retryAfter,
		}, nil
	}

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return &models.LoginResponse{
			Success:        false,
			Message:        "Invalid email or password",
			RemainingTries: remaining,
		}, nil
	}

	claims := &models.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.security.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.security.JWTKey))
	if err != nil {
		return nil, errors.InternalError("Failed to generate authentication token").WithError(err)
	}

	return &models.LoginResponse{
		Success:   true,
		Token:     tokenString,
		ExpiresIn: int(time.Until(claims.ExpiresAt.Time).Seconds()),
	}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("User not found").WithError(err)
	}

	return user, nil
}

// RequestOTP issues a 6-digit single-use code with a bounded lifetime. The
// code lives in Redis so it survives restarts and works across instances.
func (s *userService) RequestOTP(ctx context.Context, req *models.OTPRequest) error {

	logger := middleware.LoggerFromContext(ctx)

	code, err := generateOTPCode()
	if err != nil {
		return errors.InternalError("Failed to generate verification code").WithError(err)
	}

	if err := s.otp.StoreCode(ctx, req.Email, code, s.otpTTL); err != nil {
		return errors.ThirdPartyError("Failed to store verification code").WithError(err)
	}

	msg := &email.Message{
		To:      req.Email,
		Subject: "Your Stylemate verification code",
		Content: fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.otpTTL.Minutes())),
	}

	if err := s.mail.Send(ctx, msg); err != nil {
		logger.Error("Failed to send OTP email", "error", err.Error())
		return errors.ThirdPartyError("Failed to send verification code").WithError(err)
	}

	return nil
}

func (s *userService) VerifyOTP(ctx context.Context, req *models.OTPVerifyRequest) (bool, error) {

	ok, err := s.otp.ConsumeCode(ctx, req.Email, req.Code)
	if err != nil {
		return false, errors.ThirdPartyError("Failed to verify code").WithError(err)
	}

	return ok, nil
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
