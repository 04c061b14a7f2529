package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"mentionbot/bot"
	"mentionbot/infrastructure/console"
	"mentionbot/internal"
	"mentionbot/repositories"
	"mentionbot/runtime/workers"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mentionbot terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes every component, manages the lifecycle, and centralizes
// error reporting so deferred cleanup (database close, index close) always
// executes before the program exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Mention history storage (BadgerDB + Bluge index)
	options := badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(options)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	if logger.Enabled(ctx, slog.LevelDebug) && config.DebugPort > 0 {
		endpoint := "/inspect"
		logger.Info("Debug mention inspector available",
			"url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		internal.StartDebugServer(db, config.DebugPort, endpoint, internal.DefaultMapper, nil)
	}

	// 3. Host & plugin wiring
	consoleCfg, err := console.LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("console config error: %w", err)
	}
	host := console.NewHost(consoleCfg, config.DataDir, config.Prefix(), logger)

	dataDir, err := host.DataDir(bot.PluginName)
	if err != nil {
		return exitRuntime, fmt.Errorf("plugin data dir: %w", err)
	}

	members := repositories.NewMemberRepository(dataDir, logger)
	history := repositories.NewHistoryRepository(db, blugeWriter, logger, config.LimitHistory)

	events := make(chan repositories.MentionRecord, config.Buffer())
	plugin := bot.New(logger, members, history, events, config.Triggers(), config.Prefix())
	plugin.Register(host)

	// 4. Supervised workers: console read loop + history sink
	sup := workers.NewSupervisor(logger)
	sup.Add(workers.NewHistorySinkWorker(events, history, logger), host)

	logger.Info("mentionbot ready",
		"members", members.Path(),
		"group", consoleCfg.Group,
		"prefix", config.Prefix())
	sup.Run(ctx)

	return exitOK, nil
}
