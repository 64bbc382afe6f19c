package service

import (
	"errors"

	"legal-nav-go/internal/config"
	"legal-nav-go/pkg/log"
	"legal-nav-go/pkg/token"
)

// ErrInvalidCredentials 表示客户端凭据校验失败。
var ErrInvalidCredentials = errors.New("invalid client credentials")

// AuthService 定义了服务令牌签发的操作接口。
type AuthService interface {
	IssueToken(clientID, clientSecret string) (string, error)
}

type authService struct {
	jwtManager *token.JWTManager
	authCfg    config.AuthConfig
}

// NewAuthService 创建一个新的 AuthService 实例。
func NewAuthService(jwtManager *token.JWTManager, authCfg config.AuthConfig) AuthService {
	return &authService{jwtManager: jwtManager, authCfg: authCfg}
}

// IssueToken 校验客户端凭据并签发服务令牌。
// 密钥以 bcrypt 哈希形式存放在配置中，不保存明文。
func (s *authService) IssueToken(clientID, clientSecret string) (string, error) {
	if clientID != s.authCfg.ClientID || !token.CheckClientSecret(clientSecret, s.authCfg.ClientSecretHash) {
		log.Warnf("[AuthService] 凭据校验失败, clientID: %s", clientID)
		return "", ErrInvalidCredentials
	}
	return s.jwtManager.GenerateToken(clientID)
}
