package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ecofix/backend/go/internal/models"
	"ecofix/backend/go/internal/tracker_service/store"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer       = "ecofix_tracker_service"
	minPasswordLength = 8
)

// Claims 是访问令牌中携带的声明。
type Claims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	jwt.StandardClaims
}

// RegisterUser 创建新账户，密码以 bcrypt 哈希保存。
func (s *Service) RegisterUser(username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, invalid("username", "username is required")
	}
	if !strings.Contains(email, "@") {
		return nil, invalid("email", "a valid email address is required")
	}
	if len(password) < minPasswordLength {
		return nil, invalid("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	exists, err := s.store.UserExists(username, email)
	if err != nil {
		return nil, fmt.Errorf("检查用户是否存在失败: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码哈希失败: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		Status:   models.StatusActive,
	}
	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 校验用户名和密码并签发访问令牌。
func (s *Service) Login(username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	if user.Status != models.StatusActive {
		return "", ErrAccountDisabled
	}

	now := s.now()
	if err := s.store.TouchLastLogin(user.ID, now.UTC()); err != nil {
		s.log.WithField("user_id", user.ID).Warn("failed to record last login")
	}
	return s.generateJWT(user, now)
}

// Authenticate 校验令牌签名、有效期以及是否已注销。
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	// 有效期按服务自身的时钟校验
	parser := &jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		if len(s.jwtSecret) == 0 {
			return nil, ErrMissingSigningKey
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(s.now().Unix(), true) {
		return nil, ErrInvalidToken
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.Id)
	if err != nil {
		return nil, fmt.Errorf("检查令牌状态失败: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Logout 注销令牌，注销记录保留到令牌原本的过期时间。
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	ttl := time.Unix(claims.ExpiresAt, 0).Sub(s.now())
	return s.revoker.Revoke(ctx, claims.Id, ttl)
}

// generateJWT 为指定用户生成一个新的 JWT。
func (s *Service) generateJWT(user *models.User, now time.Time) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", ErrMissingSigningKey
	}
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    tokenIssuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
