package domain

import (
	"context"
	"time"
)

// ChallengeNewPasswordRequired 身份服务要求设置新密码后才能签发令牌
const ChallengeNewPasswordRequired = "NEW_PASSWORD_REQUIRED"

// Tokens 身份服务签发的令牌
type Tokens struct {
	AccessToken string
	IDToken     string
	// 令牌过期时间，零值表示身份服务未返回
	ExpiresAt time.Time
}

// AuthOutcome 一次认证调用的结果：要么签发令牌，要么返回质询
type AuthOutcome struct {
	// 质询名称，空串表示认证成功
	Challenge string
	// 质询阶段身份服务返回的临时会话令牌
	ProviderSession string
	// 认证成功时的令牌
	Tokens *Tokens
}

// ChallengeRequired 是否需要先完成质询
func (o *AuthOutcome) ChallengeRequired() bool {
	return o.Challenge != ""
}

// IdentityProvider 托管身份服务适配器接口
// 所有错误按原样透传给调用方，不做重试
type IdentityProvider interface {
	// Authenticate 用户名密码认证；NEW_PASSWORD_REQUIRED 时返回质询而非失败
	Authenticate(ctx context.Context, username, password string) (*AuthOutcome, error)
	// CompleteNewPassword 响应新密码质询
	CompleteNewPassword(ctx context.Context, username, newPassword, providerSession string) (*AuthOutcome, error)
	// GroupsForUser 查询用户的组成员关系
	GroupsForUser(ctx context.Context, username string) ([]string, error)
}
