package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/application"
	"github.com/RodolfoDevApp/eventshop-salability-go/internal/cli"
	"github.com/RodolfoDevApp/eventshop-salability-go/internal/config"
	"github.com/RodolfoDevApp/eventshop-salability-go/internal/infrastructure/db"
	"github.com/RodolfoDevApp/eventshop-salability-go/internal/platform/observability"
)

const usage = `Usage: inventory-reservation <command> [flags] [compensations...]

Commands:
  list-inconsistencies   show orders whose reservations do not net to zero
  create-compensations   append compensating reservations; reads
                         "<incrementId>:<sku>:<qty>:<stockId>" lines from the
                         arguments, from stdin with "-", or runs a full pass
                         when none are given
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	cfg := config.Load()
	var (
		bunchSize = fs.Int("bunch-size", cfg.OrderBunchSize, "Orders loaded per page")
		raw       = fs.Bool("raw", false, "Print compensations as <incrementId>:<sku>:<qty>:<stockId>")
	)
	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, command, *bunchSize, *raw, fs.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger, command string, bunchSize int, raw bool, args []string) error {
	dbConn, err := sql.Open("pgx", cfg.PgDsn)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	reservationRepo := db.NewPgReservationRepository(dbConn)
	orderRepo := db.NewPgOrderRepository(dbConn)
	configRepo := db.NewPgStockItemConfigurationRepository(dbConn)
	outboxRepo := db.NewPgOutboxRepository(dbConn)

	finder := application.NewSalableQuantityInconsistencies(reservationRepo, orderRepo, configRepo, logger)

	switch command {
	case "list-inconsistencies":
		_, err := cli.NewListInconsistencies(finder, os.Stdout).Execute(ctx, bunchSize, raw)
		return err
	case "create-compensations":
		lines, err := compensationArgs(args)
		if err != nil {
			return err
		}
		outboxWriter := application.NewOutboxWriter(outboxRepo)
		productRepo := db.NewPgProductRepository(dbConn)

		// No response cache lives here; the service purges its own on CleanCacheByTags.
		cacheEvents := application.NewCacheEventManager()
		cacheEvents.Subscribe(application.NewParentProductsCacheListener(productRepo))
		cacheEvents.Subscribe(application.NewOutboxCacheListener(outboxWriter))
		flush := application.NewFlushCacheByIDs(cfg.ProductCacheTag, cacheEvents, nil, logger)

		compensator := application.NewCreateCompensations(
			reservationRepo,
			outboxWriter,
			application.NewFlushCacheBySkus(productRepo, flush),
			logger,
		)
		n, err := cli.NewCreateCompensations(finder, compensator, orderRepo, os.Stdout).Execute(ctx, bunchSize, lines)
		if err != nil {
			return err
		}
		logger.Info("compensations created", zap.Int("count", n))
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// compensationArgs expands "-" into the non-empty lines of stdin.
func compensationArgs(args []string) ([]string, error) {
	var lines []string
	for _, a := range args {
		if a != "-" {
			lines = append(lines, a)
			continue
		}
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				lines = append(lines, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}
	return lines, nil
}
