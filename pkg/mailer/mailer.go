package mailer

import (
	"context"
	"fmt"

	mail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/stustanet/sprechstundensystem-ng/config"
)

// Message 一封待发的纯文本邮件
type Message struct {
	Subject string
	Body    string
	From    string
	To      []string
}

// Mailer 邮件发送接口
// Service 层只依赖该接口；批处理测试用内存实现替换
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPMailer 基于 go-mail 的 SMTP 实现
type SMTPMailer struct {
	cfg    *config.MailConfig
	logger *zap.Logger
}

// NewSMTPMailer 创建 SMTPMailer
func NewSMTPMailer(cfg *config.MailConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// Send 发送一封邮件；每次发送建立独立 SMTP 会话
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	mm := mail.NewMsg()
	if err := mm.From(msg.From); err != nil {
		return fmt.Errorf("无效的发件人 %q: %w", msg.From, err)
	}
	if err := mm.To(msg.To...); err != nil {
		return fmt.Errorf("无效的收件人 %v: %w", msg.To, err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, msg.Body)

	opts := []mail.Option{
		mail.WithPort(m.cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.SMTPHost, opts...)
	if err != nil {
		return fmt.Errorf("创建 SMTP 客户端失败: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	m.logger.Info("邮件已发送",
		zap.String("subject", msg.Subject),
		zap.Strings("to", msg.To),
	)
	return nil
}
