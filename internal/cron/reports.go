// Package cron runs the scheduled background jobs.
package cron

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/nalyk/shopbot/internal/pkg/telegram"
	"github.com/nalyk/shopbot/internal/repository"
)

// ReportScheduler sends the daily sales summary to the report channel
// shortly after midnight.
type ReportScheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	api     *telegram.BotAPI
	channel string
	symbol  string

	buys     *repository.BuyRepository
	users    *repository.UserRepository
	deposits *repository.DepositRepository
}

func NewReportScheduler(logger *zap.Logger, api *telegram.BotAPI, channel, currencySymbol string,
	buys *repository.BuyRepository, users *repository.UserRepository, deposits *repository.DepositRepository) *ReportScheduler {
	return &ReportScheduler{
		cron:     cron.New(),
		logger:   logger,
		api:      api,
		channel:  channel,
		symbol:   currencySymbol,
		buys:     buys,
		users:    users,
		deposits: deposits,
	}
}

// Start schedules the daily report. Without a report channel configured
// nothing is scheduled.
func (s *ReportScheduler) Start() error {
	if s.channel == "" {
		s.logger.Info("no report channel configured, daily report disabled")
		return nil
	}
	if _, err := s.cron.AddFunc("5 0 * * *", s.sendDailyReport); err != nil {
		return fmt.Errorf("scheduling daily report: %w", err)
	}
	s.cron.Start()
	s.logger.Info("daily report scheduled", zap.String("channel", s.channel))
	return nil
}

func (s *ReportScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *ReportScheduler) sendDailyReport() {
	text, err := s.composeDailyReport()
	if err != nil {
		s.logger.Error("composing daily report failed", zap.Error(err))
		return
	}
	if _, err := s.api.SendMessage(s.channel, text); err != nil {
		s.logger.Error("sending daily report failed", zap.Error(err))
		return
	}
	s.logger.Info("daily report sent")
}

func (s *ReportScheduler) composeDailyReport() (string, error) {
	buys, err := s.buys.GetByTimedelta(1)
	if err != nil {
		return "", err
	}
	var revenue float64
	items := 0
	for _, buy := range buys {
		revenue += buy.TotalPrice
		items += buy.Quantity
	}

	_, newUsers, err := s.users.GetByTimedelta(1, 0, 1)
	if err != nil {
		return "", err
	}
	deposits, err := s.deposits.GetByTimedelta(1)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"📊 Daily report\n\nOrders: %d\nItems sold: %d\nRevenue: %s%.2f\nNew users: %d\nDeposits: %d",
		len(buys), items, s.symbol, revenue, newUsers, len(deposits),
	), nil
}
