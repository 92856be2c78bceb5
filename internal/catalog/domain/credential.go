package domain

import (
	"crypto/subtle"
	"strings"
)

const bearerPrefix = "Bearer "

// 鉴权失败原因
const (
	ReasonSecretNotConfigured = "secret_not_configured"
	ReasonBearerMismatch      = "bearer_mismatch"
	ReasonTokenMismatch       = "token_mismatch"
	ReasonMissingCredentials  = "missing_credentials"
)

// Credentials 请求携带的管理员凭证
type Credentials struct {
	Authorization string
	AdminToken    string
}

// AuthDecision 鉴权结果，Reason 仅在未通过时有值
type AuthDecision struct {
	Authorized bool
	Reason     string
}

// CredentialVerifier 用配置的共享密钥校验管理员凭证
type CredentialVerifier struct {
	secret string
}

// NewCredentialVerifier 创建凭证校验器，secret 为空时所有请求均被拒绝
func NewCredentialVerifier(secret string) *CredentialVerifier {
	return &CredentialVerifier{secret: secret}
}

// Configured 是否配置了密钥
func (v *CredentialVerifier) Configured() bool { return v.secret != "" }

// Verify 校验凭证。Authorization 以 "Bearer " 开头时只比较其余部分，
// 否则比较 X-Admin-Token
func (v *CredentialVerifier) Verify(c Credentials) AuthDecision {
	if v.secret == "" {
		return AuthDecision{Reason: ReasonSecretNotConfigured}
	}
	if strings.HasPrefix(c.Authorization, bearerPrefix) {
		if v.equal(strings.TrimPrefix(c.Authorization, bearerPrefix)) {
			return AuthDecision{Authorized: true}
		}
		return AuthDecision{Reason: ReasonBearerMismatch}
	}
	if c.AdminToken != "" {
		if v.equal(c.AdminToken) {
			return AuthDecision{Authorized: true}
		}
		return AuthDecision{Reason: ReasonTokenMismatch}
	}
	return AuthDecision{Reason: ReasonMissingCredentials}
}

func (v *CredentialVerifier) equal(token string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(v.secret)) == 1
}
