package service

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/samber/lo"

	"project-tracker/internal/dto"
	"project-tracker/internal/pkg/config"
	"project-tracker/pkg/constants"
	pkgErrors "project-tracker/pkg/errors"
)

const ldapDialTimeout = 5 * time.Second

// LDAPService 目录登录, 只负责校验身份, 本地账号同步由 AuthService 完成
type LDAPService interface {
	Authenticate(ctx context.Context, username, password string) (*dto.UserInfo, error)
}

type ldapService struct {
	cfg *config.LDAPConfig
}

func NewLDAPService(cfg *config.LDAPConfig) LDAPService {
	return &ldapService{cfg: cfg}
}

func (s *ldapService) Authenticate(ctx context.Context, username, password string) (*dto.UserInfo, error) {
	if !s.cfg.Enabled {
		return nil, pkgErrors.New(pkgErrors.CodeAuthError, "LDAP认证未启用")
	}
	// 空密码会被目录当作匿名绑定并返回成功
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	conn, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	entry, err := s.findAdmin(conn, username)
	if err != nil {
		return nil, err
	}

	if err := conn.Bind(entry.DN, password); err != nil {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	attrs := s.cfg.Attributes
	return &dto.UserInfo{
		Username:    lo.CoalesceOrEmpty(entry.GetAttributeValue(attrs.Username), username),
		Email:       entry.GetAttributeValue(attrs.Email),
		DisplayName: entry.GetAttributeValue(attrs.DisplayName),
		AuthType:    constants.AuthTypeLDAP,
	}, nil
}

// connect 建立连接并以服务账号绑定, ctx 的截止时间同时作为读写超时
func (s *ldapService) connect(ctx context.Context) (*ldap.Conn, error) {
	scheme := lo.Ternary(s.cfg.UseSSL, "ldaps", "ldap")
	url := fmt.Sprintf("%s://%s:%d", scheme, s.cfg.Host, s.cfg.Port)

	conn, err := ldap.DialURL(url, ldap.DialWithDialer(&net.Dialer{Timeout: ldapDialTimeout}))
	if err != nil {
		return nil, pkgErrors.WrapAs(pkgErrors.ErrLDAPConnectionFailed, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetTimeout(time.Until(deadline))
	}

	if s.cfg.BindDN != "" {
		if err := conn.Bind(s.cfg.BindDN, s.cfg.BindPassword); err != nil {
			conn.Close()
			return nil, pkgErrors.Wrap(pkgErrors.CodeAuthError, "LDAP绑定失败", err)
		}
	}
	return conn, nil
}

// findAdmin 按过滤器查找唯一条目
func (s *ldapService) findAdmin(conn *ldap.Conn, username string) (*ldap.Entry, error) {
	attrs := s.cfg.Attributes
	req := ldap.NewSearchRequest(
		s.cfg.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		2, // 多于一条即视为配置错误
		int(ldapDialTimeout/time.Second),
		false,
		fmt.Sprintf(s.cfg.UserFilter, ldap.EscapeFilter(username)),
		lo.Compact([]string{attrs.Username, attrs.Email, attrs.DisplayName}),
		nil,
	)

	result, err := conn.Search(req)
	if err != nil && !ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) {
		return nil, pkgErrors.Wrap(pkgErrors.CodeAuthError, "LDAP搜索失败", err)
	}

	switch {
	case result == nil || len(result.Entries) == 0:
		return nil, pkgErrors.ErrInvalidCredentials
	case len(result.Entries) > 1:
		return nil, pkgErrors.New(pkgErrors.CodeAuthError, "找到多个匹配的用户")
	}
	return result.Entries[0], nil
}
