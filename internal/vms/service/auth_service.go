package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/vms/internal/config"
	"github.com/bitfantasy/vms/internal/vms/entity"
	"github.com/bitfantasy/vms/internal/vms/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRefresh     = errors.New("refresh token expired or invalid")
)

// AuthService 认证服务
type AuthService struct {
	userRepo   *repository.UserRepository
	vendorRepo *repository.VendorRepository
	buyerRepo  *repository.BuyerRepository
	rdb        *redis.Client
	cfg        *config.Config
	db         *gorm.DB
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo *repository.UserRepository, vendorRepo *repository.VendorRepository, buyerRepo *repository.BuyerRepository, rdb *redis.Client, cfg *config.Config, db *gorm.DB) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		vendorRepo: vendorRepo,
		buyerRepo:  buyerRepo,
		rdb:        rdb,
		cfg:        cfg,
		db:         db,
	}
}

// TokenPair Token对
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Type           string `json:"type" binding:"required,oneof=buyer vendor"`
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Address        string `json:"address"`
	ContactDetails string `json:"contact_details"`

	// 仅type=buyer时有效
	PreferredPaymentMethod string `json:"preferred_payment_method"`
}

// Register 注册用户并建立对应档案（供应商或采购方），用户与档案在同一事务内创建
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*entity.User, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		ID:             uuid.New().String()[:32],
		Type:           req.Type,
		Name:           req.Name,
		Email:          req.Email,
		Password:       string(hashed),
		Address:        req.Address,
		ContactDetails: req.ContactDetails,
		IsActive:       true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		switch req.Type {
		case entity.UserTypeVendor:
			code, err := s.vendorRepo.GenerateCode(ctx)
			if err != nil {
				return fmt.Errorf("生成供应商编码失败: %w", err)
			}
			vendor := &entity.Vendor{
				ID:     uuid.New().String()[:32],
				Code:   code,
				UserID: user.ID,
			}
			return tx.Create(vendor).Error

		case entity.UserTypeBuyer:
			code, err := s.buyerRepo.GenerateCode(ctx)
			if err != nil {
				return fmt.Errorf("生成采购方编码失败: %w", err)
			}
			buyer := &entity.Buyer{
				ID:                     uuid.New().String()[:32],
				Code:                   code,
				UserID:                 user.ID,
				PreferredPaymentMethod: req.PreferredPaymentMethod,
			}
			return tx.Create(buyer).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Login 邮箱密码登录
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, *TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate token: %w", err)
	}
	return user, pair, nil
}

// generateTokenPair 生成Token对，Refresh Token登记到Redis
func (s *AuthService) generateTokenPair(ctx context.Context, user *entity.User) (*TokenPair, error) {
	now := time.Now()
	jti := uuid.New().String()

	accessClaims := jwt.MapClaims{
		"sub":       user.ID,
		"uid":       user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"user_type": user.Type,
		"iss":       s.cfg.JWT.Issuer,
		"iat":       now.Unix(),
		"exp":       now.Add(s.cfg.JWT.AccessTokenExpire).Unix(),
		"jti":       jti,
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWT.Secret))
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

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	s.rdb.Set(ctx, "token:refresh:"+refreshJti, user.ID, s.cfg.JWT.RefreshTokenExpire)

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(s.cfg.JWT.AccessTokenExpire.Seconds()),
	}, nil
}

// RefreshToken 刷新Token，旧的Refresh Token一次性作废
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*TokenPair, error) {
	token, err := jwt.Parse(refreshTokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidRefresh
	}
	if claims["type"] != "refresh" {
		return nil, ErrInvalidRefresh
	}

	jti, _ := claims["jti"].(string)
	userID, err := s.rdb.Get(ctx, "token:refresh:"+jti).Result()
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	s.rdb.Del(ctx, "token:refresh:"+jti)

	return s.generateTokenPair(ctx, user)
}

// Logout 登出，吊销指定的Refresh Token
func (s *AuthService) Logout(ctx context.Context, refreshTokenString string) error {
	token, err := jwt.Parse(refreshTokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil {
		// 已过期或非法的Token视为登出成功
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	if jti, _ := claims["jti"].(string); jti != "" {
		s.rdb.Del(ctx, "token:refresh:"+jti)
	}
	return nil
}

// GetCurrentUser 获取当前用户
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}
