package services

import (
	"fmt"
	"html"
	"strings"

	"fintrack/config"
	"fintrack/models"
	"fintrack/utils"

	"gopkg.in/gomail.v2"
)

// Mailer отправляет письма; внедряется в сервисы, которым нужна почта
type Mailer interface {
	Send(to, subject, body string) error
}

// EmailService отправляет письма через SMTP
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
	}
}

// Send отправляет HTML-письмо
func (s *EmailService) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("ошибка отправки email: %v", err)
	}

	return nil
}

// LogMailer пишет письма в лог вместо отправки (SMTP выключен)
type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	utils.LogInfo("Письмо для %s: %s", to, subject)
	utils.LogDebug("Тело письма: %s", body)
	return nil
}

// NewMailer выбирает реализацию по конфигурации
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SMTP.Enabled {
		return NewEmailService(cfg)
	}
	return LogMailer{}
}

func verificationEmail(baseURL, token string) (string, string) {
	link := strings.TrimRight(baseURL, "/") + "/auth/verify/" + token
	body := fmt.Sprintf(`
		<h2>Подтверждение email</h2>
		<p>Чтобы подтвердить адрес, перейдите по ссылке:</p>
		<p><a href="%s">%s</a></p>
	`, link, link)
	return "Подтвердите email", body
}

func resetPasswordEmail(token string) (string, string) {
	body := fmt.Sprintf(`
		<h2>Сброс пароля</h2>
		<p>Код для сброса пароля: <b>%s</b></p>
		<p>Если вы не запрашивали сброс, просто проигнорируйте письмо.</p>
	`, token)
	return "Сброс пароля", body
}

func monthlyReportEmail(name string, report *models.MonthlyReport) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Отчет за %s</h2>\n", html.EscapeString(report.Month))
	fmt.Fprintf(&b, "<p>Здравствуйте, %s!</p>\n", html.EscapeString(name))
	fmt.Fprintf(&b, "<p>Доходы: %s</p>\n", report.TotalIncome.StringFixed(2))
	fmt.Fprintf(&b, "<p>Расходы: %s</p>\n", report.TotalExpenses.StringFixed(2))
	fmt.Fprintf(&b, "<p>Сбережения: %s</p>\n", report.NetSavings.StringFixed(2))
	fmt.Fprintf(&b, "<p>Динамика доходов: %s, расходов: %s</p>\n",
		html.EscapeString(report.Trends.IncomeTrend),
		html.EscapeString(report.Trends.ExpenseTrend))

	if len(report.ExpenseDetails) > 0 {
		b.WriteString("<ul>\n")
		for _, d := range report.ExpenseDetails {
			fmt.Fprintf(&b, "<li>%s: %s</li>\n", html.EscapeString(d.Category), d.Amount.StringFixed(2))
		}
		b.WriteString("</ul>\n")
	}

	return "Месячный отчет: " + report.Month, b.String()
}
