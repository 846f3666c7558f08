package services

import (
	"context"
	"sync"
	"time"

	"fintrack/utils"
)

// ReportSchedulerService фоновая рассылка месячных отчетов и очистка просроченных кодов сброса
type ReportSchedulerService struct {
	users           UserStore
	reports         *ReportService
	mailer          Mailer
	reportInterval  time.Duration
	cleanupInterval time.Duration
	now             func() time.Time

	mu       sync.Mutex
	lastSent [2]int // год и месяц последней рассылки
	wg       sync.WaitGroup
}

// NewReportSchedulerService создает новый экземпляр ReportSchedulerService
func NewReportSchedulerService(users UserStore, reports *ReportService, mailer Mailer, reportInterval, cleanupInterval time.Duration) *ReportSchedulerService {
	return &ReportSchedulerService{
		users:           users,
		reports:         reports,
		mailer:          mailer,
		reportInterval:  reportInterval,
		cleanupInterval: cleanupInterval,
		now:             time.Now,
	}
}

// Start запускает планировщик; работа прекращается при отмене ctx.
// Отчет за уже закончившийся месяц на момент запуска считается отправленным.
func (s *ReportSchedulerService) Start(ctx context.Context) {
	year, month := s.reports.PreviousMonth(s.now())
	s.mu.Lock()
	s.lastSent = [2]int{year, month}
	s.mu.Unlock()

	s.run(ctx, s.reportInterval, "рассылки отчетов", s.sendMonthlyReports)
	s.run(ctx, s.cleanupInterval, "очистки кодов сброса", s.processExpiredTokens)
}

// Wait ждет завершения фоновых горутин после отмены контекста
func (s *ReportSchedulerService) Wait() {
	s.wg.Wait()
}

func (s *ReportSchedulerService) run(ctx context.Context, interval time.Duration, name string, job func(context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := job(ctx); err != nil {
					utils.LogError("Ошибка %s: %v", name, err)
				}
			}
		}
	}()
}

// sendMonthlyReports один раз за месяц отправляет подтвержденным пользователям
// отчет за предыдущий месяц. Ошибка отправки одному пользователю не прерывает рассылку.
func (s *ReportSchedulerService) sendMonthlyReports(ctx context.Context) error {
	year, month := s.reports.PreviousMonth(s.now())

	s.mu.Lock()
	if s.lastSent == [2]int{year, month} {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	users, err := s.users.ListVerifiedUsers(ctx)
	if err != nil {
		return err
	}

	sent := 0
	for _, user := range users {
		report, err := s.reports.GetReport(ctx, user.ID, year, month)
		if err != nil {
			utils.LogError("Не удалось построить отчет для %s: %v", user.ID, err)
			continue
		}

		subject, body := monthlyReportEmail(user.Name, report)
		if err := s.mailer.Send(user.Email, subject, body); err != nil {
			utils.LogError("Не удалось отправить отчет %s: %v", user.Email, err)
			continue
		}
		sent++
	}

	s.mu.Lock()
	s.lastSent = [2]int{year, month}
	s.mu.Unlock()

	utils.LogInfo("Отправлено отчетов за %s: %d из %d", MonthLabel(year, time.Month(month)), sent, len(users))
	return nil
}

// processExpiredTokens стирает просроченные коды сброса пароля
func (s *ReportSchedulerService) processExpiredTokens(ctx context.Context) error {
	cleared, err := s.users.ClearExpiredResetTokens(ctx, s.now())
	if err != nil {
		return err
	}
	if cleared > 0 {
		utils.LogInfo("Очищено просроченных кодов сброса: %d", cleared)
	}
	return nil
}
