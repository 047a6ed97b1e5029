package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang-stock-tracker/internal/tracker/dto"
	"golang-stock-tracker/internal/tracker/repository"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/telegram"

	"github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"
)

// AlertService watches stored positions against the last known prices and notifies
// when a target or the stop-loss is reached.
type AlertService interface {
	Start(ctx context.Context) error
	Evaluate(ctx context.Context) ([]dto.AlertResult, error)
}

// AlertOptions configures an AlertService.
type AlertOptions struct {
	CronExpression string
	// CacheDuration suppresses repeated alerts for the same ticker and action.
	CacheDuration time.Duration
}

// NewAlertService creates a new alert service. A nil notifier only logs alerts.
func NewAlertService(
	positions PositionService,
	prices repository.PriceRepository,
	calc CalculationService,
	notifier telegram.Notifier,
	opts AlertOptions,
	log *logger.Logger,
) AlertService {
	if opts.CacheDuration <= 0 {
		opts.CacheDuration = time.Hour
	}
	return &alertService{
		positions: positions,
		prices:    prices,
		calc:      calc,
		notifier:  notifier,
		opts:      opts,
		logger:    log,
		sent:      cache.New(opts.CacheDuration, 2*opts.CacheDuration),
		now:       time.Now,
	}
}

type alertService struct {
	mu        sync.Mutex
	positions PositionService
	prices    repository.PriceRepository
	calc      CalculationService
	notifier  telegram.Notifier
	opts      AlertOptions
	logger    *logger.Logger
	sent      *cache.Cache
	now       func() time.Time
}

// Start schedules Evaluate on the cron expression and stops the scheduler when ctx is done.
func (s *alertService) Start(ctx context.Context) error {
	c := cron.New(cron.WithParser(cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)))

	_, err := c.AddFunc(s.opts.CronExpression, func() { s.run(ctx) })
	if err != nil {
		return fmt.Errorf("invalid alert cron expression %q: %w", s.opts.CronExpression, err)
	}

	c.Start()
	s.logger.Info("Alert scheduler started", logger.StringField("cron", s.opts.CronExpression))

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		s.logger.Info("Alert scheduler stopped")
	}()
	return nil
}

// run is one scheduled evaluation. A failed run is reported through the notifier.
func (s *alertService) run(ctx context.Context) {
	results, err := s.Evaluate(ctx)
	if err != nil {
		s.logger.Error("Alert evaluation failed", logger.ErrorField(err))
		message := telegram.FormatErrorAlertMessage(s.now(), "Alert evaluation failed", err.Error())
		if err := s.notify(ctx, message); err != nil {
			s.logger.Error("Failed to send error alert", logger.ErrorField(err))
		}
		return
	}
	s.logger.Debug("Alert evaluation finished", logger.IntField("positions", len(results)))
}

// Evaluate checks every open position once. Runs never overlap.
func (s *alertService) Evaluate(ctx context.Context) ([]dto.AlertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions, err := s.positions.GetAllPositions(ctx)
	if err != nil {
		return nil, err
	}

	tickers := make([]string, 0, len(positions))
	for _, p := range positions {
		if p.RemainingShares > 0 {
			tickers = append(tickers, p.Ticker)
		}
	}
	prices, err := s.prices.GetPrices(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}

	results := make([]dto.AlertResult, 0, len(tickers))
	for _, position := range positions {
		if position.RemainingShares == 0 {
			continue
		}

		result := dto.AlertResult{Ticker: position.Ticker}

		price, ok := prices[position.Ticker]
		if !ok {
			result.Status = dto.AlertStatusNoPrice
			results = append(results, result)
			continue
		}

		levels, err := s.calc.AnalyzeTriggeredLevels(position, price)
		if err != nil {
			result.Status = dto.AlertStatusFailed
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.Action = levels.RecommendedAction

		if levels.RecommendedAction == dto.ActionHold {
			result.Status = dto.AlertStatusHold
			results = append(results, result)
			continue
		}

		key := fmt.Sprintf("%s:%s:%s", position.ID, position.Ticker, levels.RecommendedAction)
		if _, found := s.sent.Get(key); found {
			s.logger.DebugContext(ctx, "Alert already sent", logger.StringField("key", key))
			result.Status = dto.AlertStatusSkipped
			results = append(results, result)
			continue
		}

		message := telegram.FormatTriggeredLevelAlert(position, price, levels, s.now())
		if err := s.notify(ctx, message); err != nil {
			s.logger.Error("Failed to send alert",
				logger.ErrorField(err),
				logger.StringField("ticker", position.Ticker),
				logger.StringField("action", string(levels.RecommendedAction)),
			)
			result.Status = dto.AlertStatusFailed
			result.Error = err.Error()
			results = append(results, result)
			continue
		}

		s.sent.SetDefault(key, true)
		s.logger.Info("Alert sent",
			logger.StringField("ticker", position.Ticker),
			logger.StringField("action", string(levels.RecommendedAction)),
			logger.StringField("price", price.String()),
		)
		result.Status = dto.AlertStatusSent
		results = append(results, result)
	}

	return results, nil
}

func (s *alertService) notify(ctx context.Context, message string) error {
	if s.notifier == nil {
		s.logger.Info("Telegram disabled, alert not delivered", logger.StringField("message", message))
		return nil
	}
	return s.notifier.SendMessage(ctx, message)
}
