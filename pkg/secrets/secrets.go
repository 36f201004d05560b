// Package secrets 提供启动时从密钥存储拉取数据库凭证的客户端（KV 风格 JSON 接口）
package secrets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Config 密钥存储配置
type Config struct {
	Addr    string
	Token   string
	Path    string
	Timeout int
}

// DatabaseCredentials 数据库凭证
type DatabaseCredentials struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	DBName   string `json:"dbname"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// DSN 组装 MySQL 数据源名称
func (c DatabaseCredentials) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.DBName)
}

// Client 密钥存储客户端
type Client struct {
	http *resty.Client
	cfg  Config
}

// NewClient 创建密钥存储客户端
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5
	}
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(cfg.Addr, "/")).
			SetTimeout(time.Duration(timeout) * time.Second),
		cfg: cfg,
	}
}

type secretEnvelope struct {
	Data DatabaseCredentials `json:"data"`
}

// FetchDatabaseCredentials 拉取数据库凭证，启动时调用一次
func (c *Client) FetchDatabaseCredentials(ctx context.Context) (*DatabaseCredentials, error) {
	if c.cfg.Addr == "" {
		return nil, fmt.Errorf("secrets store address is not configured")
	}
	if c.cfg.Token == "" {
		return nil, fmt.Errorf("secrets store token is not configured")
	}

	var envelope secretEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Vault-Token", c.cfg.Token).
		SetResult(&envelope).
		Get("/v1/" + strings.TrimLeft(c.cfg.Path, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch secret: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("secrets store returned %s: %s", resp.Status(), resp.String())
	}

	creds := envelope.Data
	if creds.Host == "" || creds.Username == "" {
		return nil, fmt.Errorf("secret %s is missing database credentials", c.cfg.Path)
	}
	return &creds, nil
}
