package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"interview-chatter/internal/analytics"
	"interview-chatter/internal/chat"
	"interview-chatter/internal/config"
	"interview-chatter/internal/generator"
	"interview-chatter/internal/logging"
	"interview-chatter/internal/metrics"
	"interview-chatter/internal/scheduler"
	"interview-chatter/internal/telegram"
	"interview-chatter/internal/web"
)

// webChatID keys the browser conversation in usage reports.
const webChatID = 0

func main() {
	envErr := godotenv.Load(".env")

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		logger.Debug().Err(envErr).Msg(".env file not loaded")
	}
	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("interview-chatter stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	gen := generator.NewHTTP(cfg.ServiceBaseURL, cfg.ServiceTimeout, logger)
	logger.Info().Str("service_url", cfg.ServiceBaseURL).Dur("timeout", cfg.ServiceTimeout).Msg("interview service configured")

	g, ctx := errgroup.WithContext(ctx)

	var bot *telegram.Bot
	if cfg.TelegramBotToken != "" {
		b, err := telegram.New(cfg.TelegramBotToken, cfg.MessageParseMode, gen, logger)
		if err != nil {
			return err
		}
		logger.Info().Str("token", logging.Redact(cfg.TelegramBotToken)).Msg("telegram surface enabled")
		bot = b
		g.Go(func() error { return bot.Start(ctx) })
	}

	var webChat *chat.Controller
	if cfg.WebAddr != "" {
		l := logger.With().Str("surface", "web").Logger()
		webChat = chat.NewController(gen, chat.WithLogger(&l))
		srv := web.NewServer(ctx, webChat, logger)
		g.Go(func() error { return srv.Run(ctx, cfg.WebAddr) })
	}

	sched := scheduler.New(cfg.ReportCron, logger)
	sched.SetReportFunction(func(ctx context.Context) error {
		logs := map[int64]chat.Log{}
		if bot != nil {
			logs = bot.Sessions().Transcripts()
		}
		if webChat != nil {
			logs[webChatID] = webChat.Transcript()
		}
		stats := analytics.AnalyzeDailyLogs(logs, time.Now().UTC())
		stats.Log(logger)

		if bot == nil || cfg.ReportChatID == 0 {
			return nil
		}
		return bot.SendText(cfg.ReportChatID, stats.GenerateReportSummary())
	})
	if err := sched.Start(); err != nil {
		return err
	}
	g.Go(func() error {
		<-ctx.Done()
		sched.Stop()
		return nil
	})

	return g.Wait()
}
