// README: Command-line quote; prices one rental and prints the e-mail summary or the quote as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"alquipc/internal/config"
	"alquipc/internal/infra"
	"alquipc/internal/modules/pricing"
	"alquipc/internal/modules/summary"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}
	logger, err := infra.NewLogger(cfg.IsProduction(), cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}
	defer func() { _ = logger.Sync() }()

	catalog, err := cfg.TariffCatalog()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var store pricing.TariffStore
	if cfg.DB.DSN != "" {
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			logger.Warn("postgres unavailable, using configured tariffs", zap.Error(err))
		} else {
			defer pool.Close()
			store = pricing.NewStore(pool)
		}
	}

	svc := pricing.NewService(store, nil, catalog, logger)
	code := run(ctx, svc, os.Args[1:], os.Stdout, os.Stderr)
	_ = logger.Sync()
	os.Exit(code)
}

type quoteOutput struct {
	Total       float64           `json:"total"`
	Currency    string            `json:"currency"`
	AmountMinor int64             `json:"amount_minor"`
	Tariff      string            `json:"tariff"`
	Breakdown   pricing.Breakdown `json:"breakdown"`
	Summary     string            `json:"summary"`
}

func run(ctx context.Context, svc *pricing.Service, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	fs.SetOutput(stderr)
	equipment := fs.String("equipos", "", "number of computers to rent (minimum 2)")
	days := fs.String("dias", "", "initial rental days")
	extra := fs.String("adicionales", "0", "additional days")
	mode := fs.String("modo", "WithinCity", "WithinCity, OutsideCity or OnPremises")
	tariff := fs.String("tariff", "", "tariff code (configured default when empty)")
	asJSON := fs.Bool("json", false, "print the quote as JSON")
	if err := fs.Parse(args); err != nil {
		return exitValidation
	}

	q, err := svc.QuoteRaw(ctx, pricing.RawRental{
		EquipmentCount: flagNumber(*equipment),
		InitialDays:    flagNumber(*days),
		ExtraDays:      flagNumber(*extra),
		Mode:           *mode,
	}, *tariff)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		var ve *pricing.ValidationError
		if errors.As(err, &ve) {
			return exitValidation
		}
		return exitFailure
	}

	text := summary.Format(q.Request, q.Total)
	if !*asJSON {
		fmt.Fprintln(stdout, text)
		return exitOK
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(quoteOutput{
		Total:       q.Total.Float64(),
		Currency:    q.Total.Currency,
		AmountMinor: q.Total.Amount,
		Tariff:      q.TariffCode,
		Breakdown:   q.Breakdown,
		Summary:     text,
	}); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitFailure
	}
	return exitOK
}

// flagNumber turns flag text into an int64 when it is a whole number. Empty text is
// treated as absent and anything else is passed through for the validator to reject.
func flagNumber(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}
