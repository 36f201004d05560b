// Package application 认证应用服务：登录、质询处理、会话生命周期
package application

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/wyfcoding/alphaview/internal/auth/domain"
	"github.com/wyfcoding/alphaview/pkg/logger"
)

// 质询会话的有效期，在此之内必须完成新密码设置
const challengeSessionTTL = 10 * time.Minute

var (
	// ErrNoChallengeSession 当前会话不处于质询状态
	ErrNoChallengeSession = errors.New("no password challenge in progress")
	// ErrPasswordMismatch 两次输入的密码不一致
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrPasswordTooShort 密码长度不足
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
)

// AuthService 认证应用服务
type AuthService struct {
	provider   domain.IdentityProvider
	sessions   domain.SessionRepository
	sessionTTL time.Duration
}

// NewAuthService 创建认证应用服务实例
func NewAuthService(provider domain.IdentityProvider, sessions domain.SessionRepository, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	return &AuthService{
		provider:   provider,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// LoginResult 登录结果：已认证会话或新密码质询
type LoginResult struct {
	Session           *domain.Session
	ChallengeRequired bool
}

// Login 处理用户登录
// 身份服务返回 NEW_PASSWORD_REQUIRED 时创建质询状态会话而非失败；
// 其余错误按原样透传。
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	outcome, err := s.provider.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if outcome.ChallengeRequired() {
		session := &domain.Session{
			Token:           uuid.New().String(),
			Username:        username,
			Role:            domain.RoleNone,
			State:           domain.StatePasswordChallengeRequired,
			ProviderSession: outcome.ProviderSession,
			CreatedAt:       time.Now(),
			ExpiresAt:       time.Now().Add(challengeSessionTTL),
		}
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, err
		}
		logger.Info(ctx, "Login requires new password", "username", username)
		return &LoginResult{Session: session, ChallengeRequired: true}, nil
	}

	session, err := s.createAuthenticatedSession(ctx, username, outcome.Tokens)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Session: session}, nil
}

// CompleteNewPassword 响应新密码质询，成功后将会话推进到已认证状态
func (s *AuthService) CompleteNewPassword(ctx context.Context, sessionToken, newPassword, confirmPassword string) (*domain.Session, error) {
	if newPassword != confirmPassword {
		return nil, ErrPasswordMismatch
	}
	if len(newPassword) < 8 {
		return nil, ErrPasswordTooShort
	}

	challenge, err := s.sessions.Get(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	if challenge == nil || challenge.State != domain.StatePasswordChallengeRequired || challenge.IsExpired() {
		return nil, ErrNoChallengeSession
	}

	outcome, err := s.provider.CompleteNewPassword(ctx, challenge.Username, newPassword, challenge.ProviderSession)
	if err != nil {
		return nil, err
	}

	// 质询会话作废，签发新的已认证会话
	_ = s.sessions.Delete(ctx, challenge.Token)

	session, err := s.createAuthenticatedSession(ctx, challenge.Username, outcome.Tokens)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Password challenge completed", "username", challenge.Username)
	return session, nil
}

// Logout 登出并删除服务端会话（Authenticated -> Anonymous）
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// SessionFromToken 根据会话令牌取回会话；未找到或已过期返回 nil
func (s *AuthService) SessionFromToken(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, nil
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil || session.IsExpired() {
		return nil, nil
	}
	return session, nil
}

// RoleFor 查询用户的组成员关系并映射角色；查询失败按无角色处理
func (s *AuthService) RoleFor(ctx context.Context, username string) domain.Role {
	groups, err := s.provider.GroupsForUser(ctx, username)
	if err != nil {
		logger.Warn(ctx, "Group lookup failed", "username", username, "error", err)
		return domain.RoleNone
	}
	return domain.RoleFromGroups(groups)
}

func (s *AuthService) createAuthenticatedSession(ctx context.Context, username string, tokens *domain.Tokens) (*domain.Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.sessionTTL)

	// 会话有效期不超过访问令牌的有效期
	if tokenExp := accessTokenExpiry(tokens); !tokenExp.IsZero() && tokenExp.Before(expiresAt) {
		expiresAt = tokenExp
	}

	session := &domain.Session{
		Token:       uuid.New().String(),
		Username:    username,
		Role:        s.RoleFor(ctx, username),
		AccessToken: tokens.AccessToken,
		State:       domain.StateAuthenticated,
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// accessTokenExpiry 解码访问令牌的 exp 声明。签发方即身份服务本身，
// 这里不做签名校验，仅用于限定会话 TTL。
func accessTokenExpiry(tokens *domain.Tokens) time.Time {
	if tokens == nil {
		return time.Time{}
	}
	if !tokens.ExpiresAt.IsZero() {
		return tokens.ExpiresAt
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokens.AccessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
