// Package auth signs in back office staff and guards their routes with JWTs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/scooter-rental/internal/apperror"
	"github.com/ukydev/scooter-rental/internal/db"
	"github.com/ukydev/scooter-rental/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
)

var validate = validator.New()

// DefaultSecret is only acceptable outside production.
const DefaultSecret = "default-secret-key-change-in-production"

// Service handles authentication operations
type Service struct {
	jwtSecret []byte
	tokenExp  time.Duration
	users     db.UserCollection
	logger    *logrus.Logger
}

// NewService creates a new authentication service
func NewService(secret string, exp time.Duration, users db.UserCollection, logger *logrus.Logger) *Service {
	if secret == "" {
		secret = DefaultSecret
	}
	if exp <= 0 {
		exp = 24 * time.Hour
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{jwtSecret: []byte(secret), tokenExp: exp, users: users, logger: logger}
}

// HashPassword hashes a password using bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword checks if a password matches a hash
func (s *Service) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken generates a JWT token for a user
func (s *Service) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID.Hex(),
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     now.Add(s.tokenExp).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a JWT token and returns the claims
func (s *Service) ValidateToken(tokenString string) (*models.Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	roleStr, ok := claims["role"].(string)
	if !ok || !models.IsValidRole(models.Role(roleStr)) {
		return nil, ErrInvalidToken
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &models.Claims{
		UserID: userID,
		Email:  email,
		Role:   models.Role(roleStr),
		Exp:    int64(exp),
	}, nil
}

// ExtractTokenFromHeader extracts token from Authorization header
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}

// ValidatePassword validates password strength
func (s *Service) ValidatePassword(password string) error {
	if len(password) < 8 {
		return apperror.Validation("password", "password must be at least 8 characters long")
	}
	return nil
}

// ValidateEmail validates email format
func (s *Service) ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return apperror.Validation("email", "invalid email format")
	}
	return nil
}

// Login checks credentials and issues an access token.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperror.Validation("email", "email and password are required")
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperror.Persistence("find user", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !s.CheckPassword(req.Password, user.PasswordHash) {
		s.logger.WithField("email", email).Warn("failed login")
		return nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID.Hex()); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID.Hex()).Warn("failed to update last login")
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID.Hex(), "role": user.Role}).Info("staff signed in")
	return &models.LoginResponse{Token: token, User: *user}, nil
}

// Register creates a staff account.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if strings.TrimSpace(req.FullName) == "" {
		return nil, apperror.Validation("full_name", "full name is required")
	}
	if err := s.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := s.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleStaff
	}
	if !models.IsValidRole(role) {
		return nil, apperror.Validation("role", "role must be admin or staff")
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.InsertUser(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			return nil, apperror.Conflict("email already exists")
		}
		return nil, apperror.Persistence("insert user", err)
	}
	s.logger.WithFields(logrus.Fields{"user_id": user.ID.Hex(), "role": role}).Info("staff account created")
	return user, nil
}

// Profile returns the account behind a token.
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperror.NotFound("user", userID)
	}
	if err != nil {
		return nil, apperror.Persistence("find user", err)
	}
	return user, nil
}

// DeleteUser removes a staff account. Nobody can remove their own account.
func (s *Service) DeleteUser(ctx context.Context, callerID, userID string) error {
	if _, err := models.ParseID("user_id", userID); err != nil {
		return err
	}
	if callerID == userID {
		return apperror.Validation("user_id", "you cannot delete your own account")
	}
	err := s.users.DeleteUser(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return apperror.NotFound("user", userID)
	}
	if err != nil {
		return apperror.Persistence("delete user", err)
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID, "deleted_by": callerID}).Info("staff account deleted")
	return nil
}

// EnsureAdmin creates the first admin when the user collection is empty.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	n, err := s.users.CountUsers(ctx)
	if err != nil {
		return false, apperror.Persistence("count users", err)
	}
	if n > 0 {
		return false, nil
	}
	_, err = s.Register(ctx, models.RegisterRequest{
		FullName: "Administrator",
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
	return err == nil, err
}
