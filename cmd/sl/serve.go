package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/lanternworks/scopeline/internal/api"
	"github.com/lanternworks/scopeline/internal/auth"
	"github.com/lanternworks/scopeline/internal/config"
	"github.com/lanternworks/scopeline/internal/db"
	"github.com/lanternworks/scopeline/internal/llm"
	"github.com/lanternworks/scopeline/internal/negotiation"
	"github.com/lanternworks/scopeline/internal/notify"
	"github.com/lanternworks/scopeline/internal/ratelimit"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Scopeline API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "scopeline.yaml", "path to Scopeline config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port <= 0 {
		port = cfg.Server.Port
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	completer, err := llm.NewAnthropicClient(llm.AnthropicOpts{Config: cfg.Anthropic})
	if err != nil {
		return err
	}

	notifier, err := buildNotifier(cfg, out)
	if err != nil {
		return err
	}

	authSvc, err := auth.NewService(auth.ServiceOpts{
		DB:         gormDB,
		SessionTTL: time.Duration(cfg.Limits.SessionTTLHours) * time.Hour,
	})
	if err != nil {
		return err
	}

	negotiator, err := negotiation.NewService(negotiation.ServiceOpts{
		DB:        gormDB,
		Completer: completer,
		Notifier:  notifier,
	})
	if err != nil {
		return err
	}

	chatLimiter := ratelimit.NewWindow(cfg.Limits.ChatPerMinute, time.Minute)
	authLimiter := ratelimit.NewWindow(cfg.Limits.AuthPerQuarter, 15*time.Minute)

	// Background jobs: limiter cleanup, session pruning, pending digest.
	digester, err := notify.NewDigester(gormDB, notifier)
	if err != nil {
		return err
	}
	scheduler := cron.New()
	scheduler.AddFunc("* * * * *", func() {
		chatLimiter.Cleanup()
		authLimiter.Cleanup()
	})
	scheduler.AddFunc("@hourly", func() {
		if err := authSvc.PruneExpiredSessions(); err != nil {
			log.Printf("serve: %v", err)
		}
	})
	if _, err := scheduler.AddFunc(cfg.Notify.DigestSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := digester.Run(ctx); err != nil {
			log.Printf("serve: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("serve: digest schedule %q: %w", cfg.Notify.DigestSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	return api.Start(ctx, api.StartOpts{
		Deps: api.Deps{
			Cfg:         cfg,
			DB:          gormDB,
			Auth:        authSvc,
			Negotiator:  negotiator,
			Completer:   completer,
			Notifier:    notifier,
			ChatLimiter: chatLimiter,
			AuthLimiter: authLimiter,
		},
		Port: port,
		Out:  out,
	})
}

// buildNotifier assembles the notification fan-out from whichever channels
// the config enables.
func buildNotifier(cfg *config.Config, out io.Writer) (*notify.Notifier, error) {
	var adapters []notify.Adapter

	if cfg.Email.Host != "" {
		mail, err := notify.NewMailAdapter(cfg.Email)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, mail)
	}
	if cfg.Notify.SlackBotToken != "" {
		slack, err := notify.NewSlackAdapter(notify.SlackOpts{
			BotToken:  cfg.Notify.SlackBotToken,
			ChannelID: cfg.Notify.SlackChannelID,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, slack)
	}
	if cfg.Notify.DiscordBotToken != "" {
		discord, err := notify.NewDiscordAdapter(notify.DiscordOpts{
			BotToken:  cfg.Notify.DiscordBotToken,
			ChannelID: cfg.Notify.DiscordChannelID,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, discord)
	}

	names := make([]string, 0, len(adapters))
	for _, a := range adapters {
		names = append(names, a.Name())
	}
	if len(names) == 0 {
		fmt.Fprintf(out, "No notification channels configured; notices will be logged only\n")
	} else {
		fmt.Fprintf(out, "Notification channels: %v\n", names)
	}
	return notify.NewNotifier(adapters...), nil
}
