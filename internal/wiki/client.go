// Package wiki MediaWiki API 客户端与组合摘要页渲染
package wiki

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/wyfcoding/alphaview/pkg/logger"
)

// Client MediaWiki API 客户端，走机器人账号登录 + CSRF 令牌编辑
type Client struct {
	http     *resty.Client
	apiURL   string
	username string
	password string
}

// NewClient 创建 MediaWiki 客户端
// apiURL 形如 https://wiki.example.com/api.php
func NewClient(apiURL, username, password string) *Client {
	return &Client{
		http:     resty.New(),
		apiURL:   apiURL,
		username: username,
		password: password,
	}
}

type tokenResponse struct {
	Query struct {
		Tokens struct {
			LoginToken string `json:"logintoken"`
			CSRFToken  string `json:"csrftoken"`
		} `json:"tokens"`
	} `json:"query"`
}

type loginResponse struct {
	Login struct {
		Result string `json:"result"`
		Reason string `json:"reason"`
	} `json:"login"`
}

type editResponse struct {
	Edit struct {
		Result string `json:"result"`
	} `json:"edit"`
	Error struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

type queryResponse struct {
	Query struct {
		Pages map[string]struct {
			Missing *string `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

// Login 获取登录令牌并以机器人账号登录，后续请求复用会话 cookie
func (c *Client) Login(ctx context.Context) error {
	token, err := c.fetchToken(ctx, "login")
	if err != nil {
		return fmt.Errorf("failed to fetch login token: %w", err)
	}

	var result loginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"action":     "login",
			"lgname":     c.username,
			"lgpassword": c.password,
			"lgtoken":    token,
			"format":     "json",
		}).
		SetResult(&result).
		Post(c.apiURL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("wiki login failed with status %d", resp.StatusCode())
	}
	if result.Login.Result != "Success" {
		return fmt.Errorf("wiki login rejected: %s %s", result.Login.Result, result.Login.Reason)
	}

	logger.Info(ctx, "wiki login succeeded", "username", c.username)
	return nil
}

// PageExists 页面是否存在
func (c *Client) PageExists(ctx context.Context, title string) (bool, error) {
	var result queryResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action": "query",
			"titles": title,
			"format": "json",
		}).
		SetResult(&result).
		Get(c.apiURL)
	if err != nil {
		return false, err
	}
	if resp.IsError() {
		return false, fmt.Errorf("wiki query failed with status %d", resp.StatusCode())
	}

	for _, page := range result.Query.Pages {
		if page.Missing != nil {
			return false, nil
		}
	}
	return len(result.Query.Pages) > 0, nil
}

// SavePage 创建或更新页面内容
func (c *Client) SavePage(ctx context.Context, title, text, summary string) error {
	token, err := c.fetchToken(ctx, "csrf")
	if err != nil {
		return fmt.Errorf("failed to fetch csrf token: %w", err)
	}

	var result editResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"action":  "edit",
			"title":   title,
			"text":    text,
			"summary": summary,
			"token":   token,
			"format":  "json",
			"bot":     "1",
		}).
		SetResult(&result).
		Post(c.apiURL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("wiki edit failed with status %d", resp.StatusCode())
	}
	if result.Error.Code != "" {
		return fmt.Errorf("wiki edit rejected: %s %s", result.Error.Code, result.Error.Info)
	}
	if result.Edit.Result != "Success" {
		return errors.New("wiki edit did not succeed")
	}

	logger.Info(ctx, "wiki page saved", "title", title)
	return nil
}

func (c *Client) fetchToken(ctx context.Context, tokenType string) (string, error) {
	var result tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action": "query",
			"meta":   "tokens",
			"type":   tokenType,
			"format": "json",
		}).
		SetResult(&result).
		Get(c.apiURL)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("token request failed with status %d", resp.StatusCode())
	}

	var token string
	if tokenType == "login" {
		token = result.Query.Tokens.LoginToken
	} else {
		token = result.Query.Tokens.CSRFToken
	}
	if token == "" {
		return "", fmt.Errorf("empty %s token in response", tokenType)
	}
	return token, nil
}
