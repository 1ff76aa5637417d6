package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/labellens/backend/internal/models"
	"github.com/labellens/backend/internal/types"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserExists = errors.New("user already exists")

type AuthService struct {
	db        *gorm.DB
	profiles  *DietaryProfileService
	jwtSecret string
}

func NewAuthService(db *gorm.DB, profiles *DietaryProfileService, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		profiles:  profiles,
		jwtSecret: jwtSecret,
	}
}

// Register creates a user with a profile and the default dietary
// preference catalog (all inactive), then returns a signed token.
func (s *AuthService) Register(ctx context.Context, name, email, password, username string) (string, error) {
	var existingUser models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existingUser).Error; err == nil {
		return "", ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user := models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         "user",
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return "", err
	}

	profile := models.UserProfile{
		ID:       uuid.New(),
		UserID:   user.ID,
		Username: username,
		Email:    email,
	}
	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		return "", err
	}

	if err := s.profiles.SeedDefaults(ctx, user.ID); err != nil {
		// The catalog is lazily recreated on toggle; registration still
		// succeeds.
		log.Printf("[AuthService] Failed to seed dietary preferences for %s: %v", user.ID, err)
	}

	return s.generateToken(user.ID, username, user.Role)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	var profile models.UserProfile
	username := ""
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&profile).Error; err == nil {
		username = profile.Username
	}

	role := user.Role
	if role == "" {
		role = "user"
	}
	return s.generateToken(user.ID, username, role)
}

func (s *AuthService) generateToken(userID uuid.UUID, username, role string) (string, error) {
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   userID.String(),
		},
		UserID:   userID,
		Username: username,
		Role:     role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &types.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*types.TokenClaims); ok && token.Valid {
		if claims.UserID == uuid.Nil {
			return nil, errors.New("invalid token claims")
		}
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
