package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/stustanet/sprechstundensystem-ng/config"
	"github.com/stustanet/sprechstundensystem-ng/internal/model"
	"github.com/stustanet/sprechstundensystem-ng/internal/repository"
	"github.com/stustanet/sprechstundensystem-ng/pkg/database"
	applogger "github.com/stustanet/sprechstundensystem-ng/pkg/logger"
)

const usage = `用法: staffctl <命令> [参数]

命令:
  add <用户名> <邮箱>   交互式输入密码，创建后台用户
  list                  列出所有后台用户
  delete <用户名>       删除后台用户
`

// 后台用户管理 CLI。值班系统没有自助注册，账号全部由这里发放。
func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "add":
		if len(os.Args) != 4 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		runAdd(ctx, repo, os.Args[2], os.Args[3])
	case "list":
		runList(ctx, repo)
	case "delete":
		if len(os.Args) != 3 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		runDelete(ctx, repo, os.Args[2])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runAdd(ctx context.Context, repo *repository.Repository, username, email string) {
	if _, err := repo.StaffUser.GetByUsername(ctx, username); err == nil {
		fmt.Fprintf(os.Stderr, "用户 %s 已存在\n", username)
		os.Exit(1)
	}

	fmt.Printf("用户 %s 的密码: ", username)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取密码失败: %v\n", err)
		os.Exit(1)
	}
	if len(password) < 8 {
		fmt.Fprintln(os.Stderr, "密码至少 8 个字符")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "生成密码哈希失败: %v\n", err)
		os.Exit(1)
	}

	user := &model.StaffUser{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := repo.StaffUser.Create(ctx, user); err != nil {
		fmt.Fprintf(os.Stderr, "创建用户失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("已创建用户 %s (%s)\n", username, user.StaffUserID)
}

func runList(ctx context.Context, repo *repository.Repository) {
	users, err := repo.StaffUser.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "查询用户失败: %v\n", err)
		os.Exit(1)
	}

	for _, u := range users {
		fmt.Printf("%-20s %s\n", u.Username, u.Email)
	}
}

func runDelete(ctx context.Context, repo *repository.Repository, username string) {
	if _, err := repo.StaffUser.GetByUsername(ctx, username); err != nil {
		fmt.Fprintf(os.Stderr, "用户 %s 不存在\n", username)
		os.Exit(1)
	}

	if err := repo.StaffUser.DeleteByUsername(ctx, username); err != nil {
		fmt.Fprintf(os.Stderr, "删除用户失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("已删除用户 %s\n", username)
}
