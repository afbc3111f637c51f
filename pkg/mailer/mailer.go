package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/d60-Lab/unmask/config"
	"github.com/d60-Lab/unmask/pkg/logger"
)

// Mailer 事务邮件发送（外部协作方，保持薄封装）
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New 按配置选择实现；默认只写日志（本地开发）
func New(cfg config.MailConfig) Mailer {
	if cfg.Mode == "smtp" {
		return &smtpMailer{addr: cfg.Addr, from: cfg.From}
	}
	return &logMailer{}
}

type smtpMailer struct {
	addr string
	from string
}

func (m *smtpMailer) Send(_ context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
	return smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg))
}

type logMailer struct{}

func (m *logMailer) Send(_ context.Context, to, subject, body string) error {
	logger.Info("mail (dev mode)", zap.String("to", to), zap.String("subject", subject), zap.String("body", body))
	return nil
}
