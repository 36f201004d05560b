// Package cognito 实现 domain.IdentityProvider，封装托管身份服务的
// 密码认证、新密码质询与组成员查询调用。协议层工作全部由身份服务完成，
// 本包只负责调用与 SECRET_HASH 计算。
package cognito

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wyfcoding/alphaview/internal/auth/domain"
)

const (
	contentType = "application/x-amz-json-1.1"

	targetInitiateAuth           = "AWSCognitoIdentityProviderService.InitiateAuth"
	targetRespondToAuthChallenge = "AWSCognitoIdentityProviderService.RespondToAuthChallenge"
	targetAdminListGroups        = "AWSCognitoIdentityProviderService.AdminListGroupsForUser"
)

// Config 身份服务配置
type Config struct {
	Endpoint     string
	UserPoolID   string
	ClientID     string
	ClientSecret string
	Timeout      int
}

// Client 身份服务客户端
type Client struct {
	http *resty.Client
	cfg  Config
}

// NewClient 创建身份服务客户端
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10
	}
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.Endpoint).
			SetTimeout(time.Duration(timeout) * time.Second),
		cfg: cfg,
	}
}

type authenticationResult struct {
	AccessToken string `json:"AccessToken"`
	IDToken     string `json:"IdToken"`
	ExpiresIn   int    `json:"ExpiresIn"`
}

type authResponse struct {
	ChallengeName        string                `json:"ChallengeName"`
	Session              string                `json:"Session"`
	AuthenticationResult *authenticationResult `json:"AuthenticationResult"`
}

type serviceError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

// Authenticate 实现 domain.IdentityProvider.Authenticate
func (c *Client) Authenticate(ctx context.Context, username, password string) (*domain.AuthOutcome, error) {
	body := map[string]interface{}{
		"AuthFlow": "USER_PASSWORD_AUTH",
		"ClientId": c.cfg.ClientID,
		"AuthParameters": map[string]string{
			"USERNAME":    username,
			"PASSWORD":    password,
			"SECRET_HASH": c.secretHash(username),
		},
	}

	var out authResponse
	if err := c.call(ctx, targetInitiateAuth, body, &out); err != nil {
		return nil, err
	}
	return c.toOutcome(&out)
}

// CompleteNewPassword 实现 domain.IdentityProvider.CompleteNewPassword
func (c *Client) CompleteNewPassword(ctx context.Context, username, newPassword, providerSession string) (*domain.AuthOutcome, error) {
	body := map[string]interface{}{
		"ChallengeName": domain.ChallengeNewPasswordRequired,
		"ClientId":      c.cfg.ClientID,
		"Session":       providerSession,
		"ChallengeResponses": map[string]string{
			"USERNAME":     username,
			"NEW_PASSWORD": newPassword,
			"SECRET_HASH":  c.secretHash(username),
		},
	}

	var out authResponse
	if err := c.call(ctx, targetRespondToAuthChallenge, body, &out); err != nil {
		return nil, err
	}

	outcome, err := c.toOutcome(&out)
	if err != nil {
		return nil, err
	}
	if outcome.ChallengeRequired() {
		return nil, errors.New("password change failed")
	}
	return outcome, nil
}

// GroupsForUser 实现 domain.IdentityProvider.GroupsForUser
func (c *Client) GroupsForUser(ctx context.Context, username string) ([]string, error) {
	body := map[string]interface{}{
		"Username":   username,
		"UserPoolId": c.cfg.UserPoolID,
	}

	var out struct {
		Groups []struct {
			GroupName string `json:"GroupName"`
		} `json:"Groups"`
	}
	if err := c.call(ctx, targetAdminListGroups, body, &out); err != nil {
		return nil, err
	}

	groups := make([]string, 0, len(out.Groups))
	for _, g := range out.Groups {
		groups = append(groups, g.GroupName)
	}
	return groups, nil
}

// call 发送一次身份服务调用，失败时按原样透传服务端错误消息
func (c *Client) call(ctx context.Context, target string, body, result interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("X-Amz-Target", target).
		SetBody(body).
		Post("/")
	if err != nil {
		return fmt.Errorf("identity service request failed: %w", err)
	}

	if resp.IsError() {
		var svcErr serviceError
		if jsonErr := json.Unmarshal(resp.Body(), &svcErr); jsonErr == nil && svcErr.Message != "" {
			return errors.New(svcErr.Message)
		}
		return fmt.Errorf("identity service returned %s", resp.Status())
	}

	return json.Unmarshal(resp.Body(), result)
}

func (c *Client) toOutcome(out *authResponse) (*domain.AuthOutcome, error) {
	if out.ChallengeName != "" {
		return &domain.AuthOutcome{
			Challenge:       out.ChallengeName,
			ProviderSession: out.Session,
		}, nil
	}

	if out.AuthenticationResult == nil {
		return nil, errors.New("authentication failed - no result")
	}

	tokens := &domain.Tokens{
		AccessToken: out.AuthenticationResult.AccessToken,
		IDToken:     out.AuthenticationResult.IDToken,
	}
	if out.AuthenticationResult.ExpiresIn > 0 {
		tokens.ExpiresAt = time.Now().Add(time.Duration(out.AuthenticationResult.ExpiresIn) * time.Second)
	}
	return &domain.AuthOutcome{Tokens: tokens}, nil
}

// secretHash 计算 base64(HMAC-SHA256(clientSecret, username+clientID))
func (c *Client) secretHash(username string) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.ClientSecret))
	mac.Write([]byte(username + c.cfg.ClientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
