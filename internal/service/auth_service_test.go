package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/stustanet/sprechstundensystem-ng/config"
	"github.com/stustanet/sprechstundensystem-ng/internal/dto"
	"github.com/stustanet/sprechstundensystem-ng/internal/model"
	"github.com/stustanet/sprechstundensystem-ng/internal/repository"
	"github.com/stustanet/sprechstundensystem-ng/pkg/jwt"
)

func setupTestAuthService() (AuthService, *repository.Repository) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-test-secret",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
		},
		App: *testAppConfig(),
	}
	repo := newTestRepo()
	svc := NewAuthService(cfg, repo, jwt.NewManager(&cfg.Auth), nil, zap.NewNop())
	return svc, repo
}

func seedStaffUser(t *testing.T, repo *repository.Repository, username, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	user := &model.StaffUser{
		Username:     username,
		Email:        username + "@stusta.net",
		PasswordHash: string(hash),
	}
	repo.StaffUser.Create(context.Background(), user)
	return user.StaffUserID
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, repo := setupTestAuthService()
	seedStaffUser(t, repo, "vorstand", "geheim123")

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "vorstand", Password: "geheim123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("Token 对不应为空")
	}
	if resp.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("期望 ExpiresIn=900，实际=%d", resp.ExpiresIn)
	}
	if resp.User.Username != "vorstand" {
		t.Errorf("期望用户名 vorstand，实际=%s", resp.User.Username)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, repo := setupTestAuthService()
	seedStaffUser(t, repo, "vorstand", "geheim123")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "vorstand", Password: "falsch",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "niemand", Password: "egal",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Refresh_Success(t *testing.T) {
	svc, repo := setupTestAuthService()
	seedStaffUser(t, repo, "vorstand", "geheim123")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "vorstand", Password: "geheim123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("新的 AccessToken 不应为空")
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	svc, repo := setupTestAuthService()
	seedStaffUser(t, repo, "vorstand", "geheim123")

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "vorstand", Password: "geheim123",
	})

	if _, err := svc.Refresh(context.Background(), login.AccessToken); !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("用 AccessToken 换发应被拒绝，实际: %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, repo := setupTestAuthService()
	userID := seedStaffUser(t, repo, "vorstand", "geheim123")

	err := svc.ChangePassword(context.Background(), userID, &dto.ChangePasswordRequest{
		OldPassword: "geheim123", NewPassword: "nochgeheimer",
	})
	if err != nil {
		t.Fatalf("ChangePassword 应成功: %v", err)
	}

	// 旧密码失效，新密码生效
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "vorstand", Password: "geheim123",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("旧密码应失效，实际: %v", err)
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "vorstand", Password: "nochgeheimer",
	}); err != nil {
		t.Errorf("新密码应生效: %v", err)
	}
}

func TestAuthService_ChangePassword_WrongOld(t *testing.T) {
	svc, repo := setupTestAuthService()
	userID := seedStaffUser(t, repo, "vorstand", "geheim123")

	err := svc.ChangePassword(context.Background(), userID, &dto.ChangePasswordRequest{
		OldPassword: "falsch", NewPassword: "nochgeheimer",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}
