package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/julianails/tg_booking_bot/pkg/booking/catalog"
	"github.com/julianails/tg_booking_bot/pkg/booking/ledger"
	"github.com/julianails/tg_booking_bot/pkg/booking/report"
	"github.com/julianails/tg_booking_bot/pkg/booking/schedule"
	"github.com/julianails/tg_booking_bot/pkg/config"
	"github.com/julianails/tg_booking_bot/pkg/domain/bot/receiver"
	"github.com/julianails/tg_booking_bot/pkg/domain/bot/sender"
	"github.com/julianails/tg_booking_bot/pkg/domain/reminder"
	"github.com/julianails/tg_booking_bot/pkg/repository/model"
	"github.com/julianails/tg_booking_bot/pkg/repository/store"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error().Err(err).Msg("config init")
		return
	}

	// Контекст, завершающийся по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("storage init")
		return
	}
	defer db.Close()

	services := make([]catalog.ServiceType, 0, len(cfg.Services))
	for _, s := range cfg.Services {
		services = append(services, catalog.ServiceType{
			Key:         s.Key,
			Name:        s.Name,
			Description: s.Description,
			DurationMin: s.DurationMin,
			Price:       s.Price,
		})
	}
	cat, err := catalog.New(services)
	if err != nil {
		logger.Error().Err(err).Msg("catalog init")
		return
	}
	grid, err := schedule.New(cfg.Slots)
	if err != nil {
		logger.Error().Err(err).Msg("slot grid init")
		return
	}

	ldg := ledger.New(db, cat, grid, logger)
	reporter := report.New(db)

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("create bot api")
		return
	}
	bot.Debug = false
	logger.Info().Str("bot", bot.Self.UserName).Msg("authorized")

	snd := sender.New(logger, bot)
	handler := receiver.NewHandler(bot, db, ldg, cat, grid, reporter, snd, cfg.AdminIDs, cfg.IsAdmin, logger)

	if cfg.ReminderCron != "" {
		rem := reminder.New(db, snd, logger)
		if err := rem.Start(cfg.ReminderCron); err != nil {
			logger.Error().Err(err).Msg("reminder init")
			return
		}
		defer rem.Stop()
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 10
	updates := bot.GetUpdatesChan(u)

	// Останавливаем лонг-поллинг по сигналу — канал updates закроется.
	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down bot")
		bot.StopReceivingUpdates()
	}()

	for update := range updates {
		if m := update.Message; m != nil {
			handler.HandleMessage(ctx, m)
			continue
		}
		if cq := update.CallbackQuery; cq != nil {
			handler.HandleCallback(ctx, cq)
		}
	}
	logger.Info().Msg("bot stopped")
}

func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (model.Store, error) {
	if cfg.PostgresDSN == "" {
		logger.Warn().Msg("no postgres dsn configured, using in-memory store")
		return store.NewMemory(), nil
	}
	pg, err := store.NewPG(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := pg.InitSchema(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}
