// internal/domain/operator/service.go
package operator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Authorization failures distinguish wrong credentials from a valid
// account that simply lacks the privilege for the requested action.
var (
	ErrBadCredentials        = errors.New("invalid username or password")
	ErrInsufficientPrivilege = errors.New("operator lacks privilege for this action")
)

// Service handles operator accounts and elevated authorization
type Service struct {
	db         *gorm.DB
	config     *config.Config
	jwtManager *auth.JWTManager
	logger     *logrus.Logger
}

// NewService creates a new operator service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:         db,
		config:     cfg,
		jwtManager: auth.NewJWTManager(cfg),
		logger:     logger,
	}
}

// LoginRequest represents operator login data
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Operator     *Operator `json:"operator"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

// AuthorizeRequest represents a supervisor override request
type AuthorizeRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

// Login authenticates an operator and issues session tokens
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	op, err := s.findActive(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.Password), []byte(req.Password)); err != nil {
		return nil, ErrBadCredentials
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(op.ID, op.Username, string(op.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(op.ID, op.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now().UTC()
	s.db.WithContext(ctx).Model(op).Update("last_login_at", now)

	s.logger.WithFields(logrus.Fields{
		"operator": op.Username,
		"role":     op.Role,
	}).Info("Operator logged in")

	return &LoginResponse{
		Operator:     op,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshToken exchanges a refresh token for a new access token
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	op, err := s.GetOperator(ctx, claims.OperatorID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(op.ID, op.Username, string(op.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &LoginResponse{
		Operator:    op,
		AccessToken: accessToken,
	}, nil
}

// Authorize validates elevated credentials for a privileged action,
// such as approving an over-limit discount. Supervisor or higher is
// required. Bad credentials and insufficient privilege are reported as
// distinct errors.
func (s *Service) Authorize(ctx context.Context, req *AuthorizeRequest) (*Operator, error) {
	op, err := s.findActive(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.Password), []byte(req.Password)); err != nil {
		s.logger.WithFields(logrus.Fields{
			"operator": req.Username,
			"action":   req.Action,
		}).Warn("Authorization attempt with bad credentials")
		return nil, ErrBadCredentials
	}

	if !op.Role.AtLeast(RoleSupervisor) {
		s.logger.WithFields(logrus.Fields{
			"operator": op.Username,
			"role":     op.Role,
			"action":   req.Action,
		}).Warn("Authorization attempt without privilege")
		return nil, ErrInsufficientPrivilege
	}

	s.logger.WithFields(logrus.Fields{
		"operator": op.Username,
		"action":   req.Action,
	}).Info("Elevated action authorized")

	return op, nil
}

// GetOperator retrieves a single active operator by ID
func (s *Service) GetOperator(ctx context.Context, id uint) (*Operator, error) {
	var op Operator
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&op).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("operator not found")
		}
		return nil, fmt.Errorf("failed to retrieve operator: %w", err)
	}
	return &op, nil
}

// DiscountLimitFor returns the operator's personal discount limit,
// falling back to the store-wide default when none is configured.
func (s *Service) DiscountLimitFor(op *Operator) float64 {
	if op.DiscountLimitPercent > 0 {
		return op.DiscountLimitPercent
	}
	return s.config.POS.DefaultDiscountLimitPercent
}

func (s *Service) findActive(ctx context.Context, username string) (*Operator, error) {
	var op Operator
	err := s.db.WithContext(ctx).Where("username = ? AND is_active = ?", username, true).First(&op).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("failed to retrieve operator: %w", err)
	}
	return &op, nil
}
