package service

import (
	"context"
	"errors"

	"github.com/samber/lo"

	"project-tracker/internal/dto"
	"project-tracker/internal/model"
	"project-tracker/internal/pkg/config"
	"project-tracker/internal/pkg/crypto"
	"project-tracker/internal/pkg/jwt"
	"project-tracker/internal/repository"
	"project-tracker/pkg/constants"
	pkgErrors "project-tracker/pkg/errors"
)

type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	Me(claims *jwt.UserClaims) *dto.UserInfo
}

type authService struct {
	cfg         *config.AuthConfig
	userRepo    repository.UserRepository
	ldapService LDAPService
	issuer      *jwt.Issuer
}

func NewAuthService(
	cfg *config.AuthConfig,
	userRepo repository.UserRepository,
	ldapService LDAPService,
	issuer *jwt.Issuer,
) AuthService {
	return &authService{
		cfg:         cfg,
		userRepo:    userRepo,
		ldapService: ldapService,
		issuer:      issuer,
	}
}

// Login 未指定认证方式时先本地后 LDAP
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	var userInfo *dto.UserInfo
	var err error

	switch req.AuthType {
	case constants.AuthTypeLDAP:
		userInfo, err = s.loginLDAP(ctx, req.Username, req.Password)
	case constants.AuthTypeLocal:
		if !s.cfg.Local.Enabled {
			return nil, pkgErrors.New(pkgErrors.CodeAuthError, "本地认证未启用")
		}
		userInfo, err = s.authenticateLocal(ctx, req.Username, req.Password)
	case "":
		if s.cfg.Local.Enabled {
			userInfo, err = s.authenticateLocal(ctx, req.Username, req.Password)
		} else {
			err = pkgErrors.ErrInvalidCredentials
		}
		if err != nil && s.cfg.LDAP.Enabled && errors.Is(err, pkgErrors.ErrInvalidCredentials) {
			userInfo, err = s.loginLDAP(ctx, req.Username, req.Password)
		}
	default:
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "不支持的认证类型")
	}
	if err != nil {
		return nil, err
	}

	return s.issue(userInfo)
}

func (s *authService) loginLDAP(ctx context.Context, username, password string) (*dto.UserInfo, error) {
	if !s.cfg.LDAP.Enabled {
		return nil, pkgErrors.New(pkgErrors.CodeAuthError, "LDAP认证未启用")
	}
	userInfo, err := s.ldapService.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.syncLDAPUser(ctx, userInfo); err != nil {
		return nil, err
	}
	return userInfo, nil
}

func (s *authService) authenticateLocal(ctx context.Context, username, password string) (*dto.UserInfo, error) {
	// 查询用户
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.AuthProvider != constants.AuthTypeLocal {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	// 检查状态
	if user.Status != constants.StatusEnabled {
		return nil, pkgErrors.ErrUserDisabled
	}

	// 验证密码
	if !crypto.CheckPassword(password, user.Password) {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	// 更新最后登录时间
	_ = s.userRepo.UpdateLastLogin(ctx, user.ID)

	return &dto.UserInfo{
		Username:    user.Username,
		Email:       lo.FromPtr(user.Email),
		DisplayName: lo.FromPtrOr(user.DisplayName, user.Username),
		AuthType:    constants.AuthTypeLocal,
	}, nil
}

func (s *authService) syncLDAPUser(ctx context.Context, userInfo *dto.UserInfo) error {
	user, err := s.userRepo.FindByUsername(ctx, userInfo.Username)
	if err != nil {
		if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return err
		}
		user = &model.User{
			AuthProvider: constants.AuthTypeLDAP,
			Username:     userInfo.Username,
			DisplayName:  lo.EmptyableToPtr(userInfo.DisplayName),
			Email:        lo.EmptyableToPtr(userInfo.Email),
			BaseStatus:   model.BaseStatus{Status: constants.StatusEnabled},
		}
		if err = s.userRepo.Create(ctx, user); err != nil {
			return err
		}
	}
	if user.Status != constants.StatusEnabled {
		return pkgErrors.ErrUserDisabled
	}
	if user.AuthProvider != constants.AuthTypeLDAP {
		return pkgErrors.ErrInvalidCredentials
	}

	return s.userRepo.SyncProfile(ctx, user.ID, userInfo.Email, userInfo.DisplayName)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := s.issuer.ValidateToken(refreshToken, constants.JWTTypeRefresh)
	if err != nil {
		return nil, err
	}

	// 用户被禁用或删除后不再续期
	user, err := s.userRepo.FindByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.ErrInvalidToken
		}
		return nil, err
	}
	if user.Status != constants.StatusEnabled {
		return nil, pkgErrors.ErrUserDisabled
	}

	return s.issue(s.Me(claims))
}

func (s *authService) Me(claims *jwt.UserClaims) *dto.UserInfo {
	return &dto.UserInfo{
		Username:    claims.Username,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		AuthType:    claims.AuthType,
	}
}

func (s *authService) issue(userInfo *dto.UserInfo) (*dto.LoginResponse, error) {
	identity := jwt.Identity{
		Username:    userInfo.Username,
		Email:       userInfo.Email,
		DisplayName: userInfo.DisplayName,
		AuthType:    userInfo.AuthType,
	}

	accessToken, err := s.issuer.GenerateAccessToken(identity)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "生成AccessToken失败", err)
	}
	refreshToken, err := s.issuer.GenerateRefreshToken(identity)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "生成RefreshToken失败", err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.issuer.AccessTokenTTL(),
		User:         userInfo,
	}, nil
}
