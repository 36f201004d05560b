// Package domain 认证上下文的领域模型：角色、会话与会话状态机
package domain

import (
	"context"
	"time"
)

// Role 用户角色，由身份服务的组成员关系映射而来
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
	RoleNone   Role = "none"
)

// RoleFromGroups 由组成员关系映射角色，admin 优先
func RoleFromGroups(groups []string) Role {
	role := RoleNone
	for _, g := range groups {
		switch g {
		case "admin":
			return RoleAdmin
		case "viewer":
			role = RoleViewer
		}
	}
	return role
}

// CanExecuteTrades 仅 admin 可执行交易和刷新价格
func (r Role) CanExecuteTrades() bool {
	return r == RoleAdmin
}

// SessionState 会话状态机
// Anonymous -> PasswordChallengeRequired（收到质询）
// Anonymous / PasswordChallengeRequired -> Authenticated（认证成功）
// Authenticated -> Anonymous（登出）
type SessionState string

const (
	StateAnonymous                 SessionState = "ANONYMOUS"
	StatePasswordChallengeRequired SessionState = "PASSWORD_CHALLENGE_REQUIRED"
	StateAuthenticated             SessionState = "AUTHENTICATED"
)

// Session 服务端会话，生命周期绑定登录/登出
type Session struct {
	Token       string       `json:"token"`
	Username    string       `json:"username"`
	Role        Role         `json:"role"`
	AccessToken string       `json:"access_token"`
	State       SessionState `json:"state"`
	// 质询阶段由身份服务返回的临时会话令牌
	ProviderSession string    `json:"provider_session,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// IsExpired 会话是否已过期
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsAuthenticated 会话是否处于已认证状态
func (s *Session) IsAuthenticated() bool {
	return s.State == StateAuthenticated && !s.IsExpired()
}

// SessionRepository 会话仓储接口（Redis 实现）
type SessionRepository interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
