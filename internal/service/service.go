package service

import (
	"go.uber.org/zap"

	"github.com/stustanet/sprechstundensystem-ng/config"
	"github.com/stustanet/sprechstundensystem-ng/internal/repository"
	"github.com/stustanet/sprechstundensystem-ng/pkg/jwt"
	"github.com/stustanet/sprechstundensystem-ng/pkg/mailer"
	"github.com/stustanet/sprechstundensystem-ng/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	Admin        AdminService
	Appointment  AppointmentService
	Setting      SettingService
	Notification NotificationService
	Export       ExportService
}

// NewService 创建 Service 聚合
// rdb 可为 nil（Redis 不可用时登出黑名单静默降级）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	mail mailer.Mailer,
	logger *zap.Logger,
) *Service {
	settings := NewSettingService(cfg.App.SettingDefaults, repo, logger)
	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Admin:        NewAdminService(&cfg.App, repo, logger),
		Appointment:  NewAppointmentService(&cfg.App, repo, logger),
		Setting:      settings,
		Notification: NewNotificationService(&cfg.App, repo, settings, mail, logger),
		Export:       NewExportService(&cfg.App, repo, settings, logger),
	}
}
