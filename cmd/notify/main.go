package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/stustanet/sprechstundensystem-ng/config"
	"github.com/stustanet/sprechstundensystem-ng/internal/repository"
	"github.com/stustanet/sprechstundensystem-ng/internal/service"
	"github.com/stustanet/sprechstundensystem-ng/pkg/database"
	applogger "github.com/stustanet/sprechstundensystem-ng/pkg/logger"
	"github.com/stustanet/sprechstundensystem-ng/pkg/mailer"
)

// 一次性批处理：扫描待提醒时段并检查排班前瞻，由 cron 周期调用。
// 失败以非零退出码结束，下一轮重跑（提醒标记保证不重复发信）。
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	}()

	repo := repository.NewRepository(db)
	settings := service.NewSettingService(cfg.App.SettingDefaults, repo, logger)
	mail := mailer.NewSMTPMailer(&cfg.Mail, logger)
	notify := service.NewNotificationService(&cfg.App, repo, settings, mail, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := notify.Run(ctx); err != nil {
		logger.Error("通知批处理失败", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("通知批处理完成")
}
