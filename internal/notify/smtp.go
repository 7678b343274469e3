package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"mtfscanner/internal/model"
	"mtfscanner/internal/timeutil"
)

// SMTP sends plain-text email alerts. The teacher repo has no mail
// transport of its own, so this uses net/smtp directly (see DESIGN.md).
type SMTP struct {
	Server   string
	Port     int
	User     string
	Password string
	From     string
	To       string
	UseSSL   bool
	TZ       *timeutil.Converter
}

func NewSMTP(server string, port int, user, password, from, to string, useSSL bool, tz *timeutil.Converter) *SMTP {
	return &SMTP{Server: server, Port: port, User: user, Password: password, From: from, To: to, UseSSL: useSSL, TZ: tz}
}

func (s *SMTP) SignalAlert(ctx context.Context, sig model.Signal) error {
	subject := fmt.Sprintf("Signal: %s %s", sig.Alias, sig.Direction)
	body := fmt.Sprintf("Entry: %s\nSL: %s\nTP: %s\nRR: %s\nStrategy: %s",
		sig.EntryPrice, sig.InitialSL, sig.InitialTP, sig.EstimatedRR, sig.StrategyName)
	return s.sendMail(subject, body)
}

func (s *SMTP) UpdateAlert(ctx context.Context, t model.Trade, reason string) error {
	subject := fmt.Sprintf("Trade #%d update", t.ID)
	body := fmt.Sprintf("%s\nSL: %s\nTP: %s", reason, t.StopLoss, t.TakeProfit)
	return s.sendMail(subject, body)
}

func (s *SMTP) CloseAlert(ctx context.Context, t model.Trade, closeType string) error {
	subject := fmt.Sprintf("Trade #%d closed: %s", t.ID, closeType)
	body := fmt.Sprintf("Alias: %s\nClose type: %s", t.Alias, closeType)
	return s.sendMail(subject, body)
}

func (s *SMTP) Heartbeat(ctx context.Context, at time.Time) error {
	return s.sendMail("Heartbeat", fmt.Sprintf("Scanner alive at %s", s.TZ.Format(at, time.RFC3339)))
}

func (s *SMTP) ErrorAlert(ctx context.Context, severity, component, message string) error {
	subject := fmt.Sprintf("[%s] %s error", severity, component)
	return s.sendMail(subject, message)
}

// SendSummary emails the periodic digest compiled by scanner.SummaryReporter.
func (s *SMTP) SendSummary(ctx context.Context, periodStart, periodEnd time.Time, signalCount, closedCount, errorCount int) error {
	subject := fmt.Sprintf("Scanner summary %s - %s", s.TZ.Format(periodStart, time.RFC3339), s.TZ.Format(periodEnd, time.RFC3339))
	body := fmt.Sprintf("Signals generated: %d\nTrades closed: %d\nErrors logged: %d",
		signalCount, closedCount, errorCount)
	return s.sendMail(subject, body)
}

func (s *SMTP) sendMail(subject, body string) error {
	addr := net.JoinHostPort(s.Server, fmt.Sprintf("%d", s.Port))
	msg := s.buildMessage(subject, body)
	auth := smtp.PlainAuth("", s.User, s.Password, s.Server)

	if !s.UseSSL {
		return smtp.SendMail(addr, auth, s.From, []string{s.To}, msg)
	}
	return s.sendMailTLS(addr, auth, msg)
}

func (s *SMTP) sendMailTLS(addr string, auth smtp.Auth, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.Server})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.Server)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(s.From); err != nil {
		return err
	}
	if err := client.Rcpt(s.To); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

func (s *SMTP) buildMessage(subject, body string) []byte {
	headers := []string{
		fmt.Sprintf("From: %s", s.From),
		fmt.Sprintf("To: %s", s.To),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body)
}
