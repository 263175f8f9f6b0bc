// Command ingest runs one statement ingestion pass and prints the summary as
// JSON. Messages come from the stored IMAP configuration, or from an mbox
// file with -mbox. With -eval it instead scores the extraction rules against
// the built-in fixture mails and prints a table.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/castlemilk/cardkeeper/internal/app"
	"github.com/castlemilk/cardkeeper/internal/config"
	"github.com/castlemilk/cardkeeper/internal/extraction"
	"github.com/castlemilk/cardkeeper/internal/extraction/eval"
	"github.com/castlemilk/cardkeeper/internal/mailbox"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	mboxPath := flag.String("mbox", "", "read messages from this mbox file instead of IMAP")
	limit := flag.Int("limit", 0, "with -mbox, only the last N messages (0 uses mail.fetch_limit)")
	evalOnly := flag.Bool("eval", false, "score the extraction rules on the built-in fixtures and exit")
	flag.Parse()

	if *evalOnly {
		if err := runEval(*configPath); err != nil {
			slog.Error("eval failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configPath, *mboxPath, *limit); err != nil {
		slog.Error("ingest failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, mboxPath string, limit int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := cfg.Log.Logger(os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Ingest.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Ingest.Timeout)
		defer cancel()
	}

	st, err := app.OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	a, err := app.New(cfg, st, logger)
	if err != nil {
		return err
	}

	var src mailbox.Source = a.MailSource(cfg.Mail.DefaultHost)
	if mboxPath != "" {
		if limit <= 0 {
			limit = cfg.Mail.FetchLimit
		}
		src = &mailbox.MboxSource{Path: mboxPath, Limit: limit}
	}

	sum, err := a.Pipeline.Run(ctx, src)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}

func runEval(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	fixtures, err := eval.LoadFixtures()
	if err != nil {
		return err
	}
	strategies := map[string]*extraction.Extractor{
		"default":    extraction.NewExtractor(extraction.DefaultBankTable(), nil),
		"configured": extraction.NewExtractor(cfg.BankTable(), nil),
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	eval.PrintSummary(os.Stdout, eval.Run(extraction.NewDecoder(logger), strategies, fixtures))
	return nil
}
