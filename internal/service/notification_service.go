package service

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/stustanet/sprechstundensystem-ng/config"
	"github.com/stustanet/sprechstundensystem-ng/internal/model"
	"github.com/stustanet/sprechstundensystem-ng/internal/repository"
	"github.com/stustanet/sprechstundensystem-ng/pkg/mailer"
)

// 提醒窗口：开始前 24 小时内的时段进入提醒扫描
const reminderWindow = 24 * time.Hour

// 邮件正文模板。收件人语境不同：提醒发给报名者本人，
// 人手不足告警发到邮件列表，排班告警发给负责人。
var (
	reminderTmpl = template.Must(template.New("reminder").Parse(`Hallo {{.Recipient}},

hiermit erinnern wir dich an deine Sprechstunde am {{.StartTime}} ({{.Location}}).

Eingetragen sind:
{{range .Admins}} - {{.}}
{{end}}{{if .Note}}
{{.Note}}
{{end}}
Viele Grüße
Das Sprechstundensystem
`))

	understaffedTmpl = template.Must(template.New("understaffed").Parse(`Hallo zusammen,

für die Sprechstunde am {{.StartTime}} ({{.Location}}) {{if eq .Count 0}}hat sich bisher niemand eingetragen{{else}}sind bisher nur {{.Count}} Admins eingetragen{{end}}.

Bitte tragt euch noch ein!

Viele Grüße
Das Sprechstundensystem
`))

	lookaheadTmpl = template.Must(template.New("lookahead").Parse(`Hallo,

für die nächsten {{.Weeks}} Wochen sind keine Sprechstundentermine mehr eingetragen.

Bitte lege neue Termine an, damit sich die Admins eintragen können.

Viele Grüße
Das Sprechstundensystem
`))
)

// NotificationService 邮件通知业务接口
//
// ProcessReminders 与 CheckLookahead 设计为幂等的定时批处理，
// 由 cmd/notify 周期性调用。
type NotificationService interface {
	// ProcessReminders 扫描未来 24 小时内未提醒的时段：
	// 人手不足先向邮件列表告警（失败即中止），再逐个给报名者发提醒
	// （单封失败只记日志），最后落盘已提醒标记。
	ProcessReminders(ctx context.Context) error
	// CheckLookahead 检查排班前瞻窗口之后是否还有时段，没有则告警负责人
	CheckLookahead(ctx context.Context) error
	// Run 依序执行两个批处理
	Run(ctx context.Context) error
}

type notificationService struct {
	appCfg   *config.AppConfig
	repo     *repository.Repository
	settings SettingService
	mail     mailer.Mailer
	logger   *zap.Logger
	now      func() time.Time
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(
	appCfg *config.AppConfig,
	repo *repository.Repository,
	settings SettingService,
	mail mailer.Mailer,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		appCfg:   appCfg,
		repo:     repo,
		settings: settings,
		mail:     mail,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *notificationService) Run(ctx context.Context) error {
	if err := s.ProcessReminders(ctx); err != nil {
		return err
	}
	return s.CheckLookahead(ctx)
}

// ────────────────────── ProcessReminders ──────────────────────

func (s *notificationService) ProcessReminders(ctx context.Context) error {
	now := s.now()

	appointments, err := s.repo.Appointment.ListDueReminders(ctx, now, now.Add(reminderWindow))
	if err != nil {
		s.logger.Error("扫描待提醒时段失败", zap.Error(err))
		return err
	}
	if len(appointments) == 0 {
		return nil
	}

	sender, err := s.settings.Resolve(ctx, model.SettingSender)
	if err != nil {
		return err
	}
	mailingList, err := s.settings.Resolve(ctx, model.SettingMailingList)
	if err != nil {
		return err
	}
	location, err := s.settings.Resolve(ctx, model.SettingAppointmentLocation)
	if err != nil {
		return err
	}
	note, err := s.settings.Resolve(ctx, model.SettingReminderNote)
	if err != nil {
		return err
	}

	for i := range appointments {
		appointment := &appointments[i]
		startStr := s.formatStart(appointment.StartTime)

		// 人手不足告警发不出去说明邮件链路坏了，整批中止，下一轮重试
		if len(appointment.Admins) < s.appCfg.UnderstaffedThreshold {
			if err := s.sendUnderstaffed(ctx, appointment, sender, mailingList, location, startStr); err != nil {
				s.logger.Error("人手不足告警发送失败",
					zap.String("appointment_id", appointment.AppointmentID),
					zap.Error(err))
				return err
			}
		}

		// 个人提醒尽力而为：单封失败不影响其他收件人，也不影响落盘
		for _, admin := range appointment.Admins {
			if err := s.sendReminder(ctx, appointment, &admin, sender, location, note, startStr); err != nil {
				s.logger.Warn("个人提醒发送失败",
					zap.String("appointment_id", appointment.AppointmentID),
					zap.String("admin_id", admin.AdminID),
					zap.Error(err))
			}
		}

		appointment.ReminderSent = true
		if err := s.repo.Appointment.Update(ctx, appointment); err != nil {
			s.logger.Error("落盘已提醒标记失败",
				zap.String("appointment_id", appointment.AppointmentID),
				zap.Error(err))
			return err
		}

		s.logger.Info("时段提醒处理完成",
			zap.String("appointment_id", appointment.AppointmentID),
			zap.Int("admins", len(appointment.Admins)))
	}

	return nil
}

func (s *notificationService) sendUnderstaffed(
	ctx context.Context,
	appointment *model.Appointment,
	sender, mailingList, location, startStr string,
) error {
	var body bytes.Buffer
	err := understaffedTmpl.Execute(&body, struct {
		StartTime string
		Location  string
		Count     int
	}{
		StartTime: startStr,
		Location:  location,
		Count:     len(appointment.Admins),
	})
	if err != nil {
		return err
	}

	return s.mail.Send(ctx, &mailer.Message{
		Subject: fmt.Sprintf("Sprechstunde %s", startStr),
		Body:    body.String(),
		From:    sender,
		To:      []string{mailingList},
	})
}

func (s *notificationService) sendReminder(
	ctx context.Context,
	appointment *model.Appointment,
	admin *model.Admin,
	sender, location, note, startStr string,
) error {
	names := make([]string, 0, len(appointment.Admins))
	for _, a := range appointment.Admins {
		names = append(names, a.Name())
	}

	var body bytes.Buffer
	err := reminderTmpl.Execute(&body, struct {
		Recipient string
		StartTime string
		Location  string
		Admins    []string
		Note      string
	}{
		Recipient: admin.FirstName,
		StartTime: startStr,
		Location:  location,
		Admins:    names,
		Note:      note,
	})
	if err != nil {
		return err
	}

	return s.mail.Send(ctx, &mailer.Message{
		Subject: fmt.Sprintf("Erinnerung: Sprechstunde %s", startStr),
		Body:    body.String(),
		From:    sender,
		To:      []string{admin.Email},
	})
}

// ────────────────────── CheckLookahead ──────────────────────

func (s *notificationService) CheckLookahead(ctx context.Context) error {
	deadline := s.now().Add(time.Duration(s.appCfg.LookaheadWeeks) * 7 * 24 * time.Hour)

	exists, err := s.repo.Appointment.ExistsStartingAfter(ctx, deadline)
	if err != nil {
		s.logger.Error("检查排班前瞻失败", zap.Error(err))
		return err
	}
	if exists {
		return nil
	}

	sender, err := s.settings.Resolve(ctx, model.SettingSender)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	if err := lookaheadTmpl.Execute(&body, struct{ Weeks int }{Weeks: s.appCfg.LookaheadWeeks}); err != nil {
		return err
	}

	if err := s.mail.Send(ctx, &mailer.Message{
		Subject: "Neue Sprechstundentermine eintragen",
		Body:    body.String(),
		From:    sender,
		To:      []string{s.appCfg.OrganizerEmail},
	}); err != nil {
		s.logger.Error("排班告警发送失败", zap.Error(err))
		return err
	}

	s.logger.Info("排班前瞻告警已发送",
		zap.Int("lookahead_weeks", s.appCfg.LookaheadWeeks),
		zap.String("organizer", s.appCfg.OrganizerEmail))
	return nil
}

func (s *notificationService) formatStart(t time.Time) string {
	return t.In(s.appCfg.Location()).Format("02.01.2006 15:04")
}
