// Command loanconsole is the interactive loan desk: patrons borrow, renew, return and pay,
// librarians review the full history and the journal activity.
//
// Configuration comes from LOANS_* environment variables, flags override the most common ones.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/softlib/loantracker/library/shell"
	"github.com/softlib/loantracker/library/shell/config"
	"github.com/softlib/loantracker/library/shell/session"
	"github.com/softlib/loantracker/library/shell/textstore"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("loanconsole: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	seed := parseFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := config.NewLogger(cfg, os.Stderr)
	ins := config.LocalInstrumentation(logger)

	if cfg.Observability {
		providers, err := config.NewObservabilityProviders(ctx, cfg)
		if err != nil {
			return err
		}

		defer func() {
			if err := providers.Shutdown(); err != nil {
				logger.Warn("observability shutdown failed", shell.LogAttrError, err.Error())
			}
		}()

		ins = providers.Instrumentation(cfg, logger)
		logger.Info(shell.LogMsgObservabilityInitialized, "service", cfg.ServiceName)
	}

	store := textstore.New(cfg.DataDir, textstore.WithLogger(logger))

	if seed {
		if err := writeSeed(ctx, store); err != nil {
			return err
		}

		fmt.Printf("Demo records written to %s\n", store.Dir())
	}

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	state, warnings, err := store.Load(ctx)
	if err != nil {
		return err
	}

	if len(warnings) > 0 {
		fmt.Fprintf(os.Stderr, "%d malformed record line(s) skipped\n", len(warnings))
	}

	library, err := shell.NewLibrary(policy, state)
	if err != nil {
		return err
	}

	logger.Info(shell.LogMsgLibraryLoaded,
		shell.LogAttrUsers, len(state.Users),
		shell.LogAttrBooks, len(state.Books),
		shell.LogAttrLoans, len(state.Loans),
	)

	journal, closeJournal, err := config.OpenJournal(ctx, cfg, ins)
	if err != nil {
		return err
	}

	defer func() {
		if err := closeJournal(); err != nil {
			logger.Warn("closing journal failed", shell.LogAttrError, err.Error())
		}
	}()

	logger.Info(shell.LogMsgJournalOpened, shell.LogAttrBackend, cfg.JournalDescription())

	persistence := shell.NewPersistence(shell.WithJournal(journal), shell.WithSnapshots(store))

	handlers, err := NewHandlers(library, persistence, journal, ins)
	if err != nil {
		return err
	}

	console := NewConsole(os.Stdin, os.Stdout, time.Now, session.NewAuthenticator(library.Users()), handlers, policy)

	if err := console.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// parseFlags applies the flag overrides to cfg and reports whether -seed was given.
func parseFlags(cfg *config.Config) bool {
	dataDir := flag.String("data", cfg.DataDir, "directory holding the record files")
	journal := flag.String("journal", cfg.Journal, "journal backend: memory, sqlite or postgres")
	seed := flag.Bool("seed", false, "write the demo records into an empty data directory first")
	flag.Parse()

	cfg.DataDir = *dataDir
	cfg.Journal = *journal

	return *seed
}
