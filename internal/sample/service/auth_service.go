package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/greenfordkang-boop/ssep/internal/config"
	"github.com/greenfordkang-boop/ssep/internal/sample/entity"
	"github.com/greenfordkang-boop/ssep/internal/sample/repository"
)

const refreshKeyPrefix = "token:refresh:"

// AuthService 인증 서비스
type AuthService struct {
	userRepo *repository.UserRepository
	rdb      *redis.Client
	cfg      *config.Config
	logger   *zap.Logger
}

// NewAuthService 인증 서비스 생성
func NewAuthService(userRepo *repository.UserRepository, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		rdb:      rdb,
		cfg:      cfg,
		logger:   logger,
	}
}

// TokenPair Token 쌍
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RegisterInput 고객사 계정 가입 입력
type RegisterInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Company  string `json:"company" binding:"required"`
}

// Login 아이디/비밀번호 검증 후 토큰 쌍을 발급한다.
func (s *AuthService) Login(ctx context.Context, username, password string) (*entity.User, *TokenPair, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	if user.Status != "active" {
		return nil, nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("로그인 시각 기록 실패", zap.String("user_id", user.ID), zap.Error(err))
	}
	user.LastLoginAt = &now

	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate token: %w", err)
	}
	return user, pair, nil
}

// Register 고객사 계정을 만든다. 역할은 항상 client로 고정된다.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	username := strings.TrimSpace(in.Username)
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: username already taken", ErrValidation)
	} else if err != repository.ErrNotFound {
		return nil, fmt.Errorf("find user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		ID:           generateID(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         entity.RoleClient,
		Company:      strings.TrimSpace(in.Company),
		Name:         strings.TrimSpace(in.Name),
		Status:       "active",
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("고객사 계정 생성", zap.String("username", username), zap.String("company", user.Company))
	return user, nil
}

// generateTokenPair Token 쌍 생성. refresh jti는 Redis에 저장해 1회성으로 관리한다.
func (s *AuthService) generateTokenPair(ctx context.Context, user *entity.User) (*TokenPair, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"sub":     user.ID,
		"uid":     user.ID,
		"name":    user.Name,
		"role":    user.Role,
		"company": user.Company,
		"iss":     s.cfg.JWT.Issuer,
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.JWT.AccessTokenExpire).Unix(),
		"jti":     uuid.New().String(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshJti := uuid.New().String()
	refreshClaims := jwt.MapClaims{
		"sub":  user.ID,
		"type": "refresh",
		"iss":  s.cfg.JWT.Issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.JWT.RefreshTokenExpire).Unix(),
		"jti":  refreshJti,
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if s.rdb != nil {
		s.rdb.Set(ctx, refreshKeyPrefix+refreshJti, user.ID, s.cfg.JWT.RefreshTokenExpire)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.JWT.AccessTokenExpire.Seconds()),
	}, nil
}

// RefreshToken refresh 토큰을 검증하고 새 토큰 쌍으로 교체한다.
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*TokenPair, error) {
	token, err := jwt.Parse(refreshTokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims["type"] != "refresh" {
		return nil, fmt.Errorf("invalid token type")
	}

	jti, _ := claims["jti"].(string)
	var userID string
	if s.rdb != nil {
		userID, err = s.rdb.Get(ctx, refreshKeyPrefix+jti).Result()
		if err != nil {
			return nil, fmt.Errorf("refresh token expired or invalid")
		}
	} else {
		userID, _ = claims["sub"].(string)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	// 교체된 refresh 토큰은 즉시 폐기한다.
	if s.rdb != nil {
		s.rdb.Del(ctx, refreshKeyPrefix+jti)
	}
	return s.generateTokenPair(ctx, user)
}

// Logout refresh 토큰을 폐기한다. access 토큰은 만료로 소멸한다.
func (s *AuthService) Logout(ctx context.Context, refreshTokenString string) error {
	if refreshTokenString == "" || s.rdb == nil {
		return nil
	}
	token, err := jwt.Parse(refreshTokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		if jti, ok := claims["jti"].(string); ok {
			s.rdb.Del(ctx, refreshKeyPrefix+jti)
		}
	}
	return nil
}

// ChangePassword 비밀번호 변경. 기존 비밀번호를 재확인한다.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password too short", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return s.userRepo.Update(ctx, user)
}

// GetCurrentUser 현재 사용자 조회
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// SeedDefaultUsers 계정 테이블이 비어 있으면 기본 계정을 넣는다.
func (s *AuthService) SeedDefaultUsers(ctx context.Context) error {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := []struct {
		username, password, role, company, name string
	}{
		{"admin", "admin123", entity.RoleAdmin, "신성EP", "관리자"},
		{"client", "client123", entity.RoleClient, "Client A", "고객사 담당자"},
		{"infac", "infac123", entity.RoleClient, "INFAC", "인팩 담당자"},
	}
	for _, d := range defaults {
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user := &entity.User{
			ID:           generateID(),
			Username:     d.username,
			PasswordHash: string(hash),
			Role:         d.role,
			Company:      d.company,
			Name:         d.name,
			Status:       "active",
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", d.username, err)
		}
	}
	s.logger.Info("기본 계정 시드 완료", zap.Int("count", len(defaults)))
	return nil
}

func generateID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
