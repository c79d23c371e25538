package cmd

import (
	"errors"
	"fmt"

	"github.com/kintai-rec/kintai/internal/clock"
	"github.com/kintai-rec/kintai/internal/config"
	"github.com/kintai-rec/kintai/internal/export"
	"github.com/kintai-rec/kintai/internal/ledger"
	"github.com/kintai-rec/kintai/internal/storage"
)

// appClock is replaced in tests.
var appClock clock.Clock = clock.Real{}

// app bundles what every command needs: the loaded config, the ledger and
// a closer for the backing store.
type app struct {
	cfg    config.Config
	ledger *ledger.Ledger
	close  func() error
}

// openApp loads the config, opens the configured store and restores the
// ledger from it. Callers must call close when done.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	store, closer, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	l, err := ledger.New(store, appClock, cfg.BreakMinutes())
	if err != nil {
		_ = closer()
		return nil, err
	}
	return &app{cfg: cfg, ledger: l, close: closer}, nil
}

func openStore(cfg config.Config) (storage.Store, func() error, error) {
	path := cfg.StorePath()
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := storage.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return storage.NewFile(path), func() error { return nil }, nil
	}
}

// userError reports whether err was caused by the user's input or the
// current clock state rather than by the store.
func userError(err error) bool {
	for _, target := range []error{
		ledger.ErrInvalidRange,
		ledger.ErrInvalidBreak,
		ledger.ErrInvalidState,
		ledger.ErrNotFound,
		export.ErrNoRecords,
		errUsage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var errUsage = errors.New("invalid usage")

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// exitCode maps an error to the process exit status: 1 for user errors and
// 2 for everything else.
func exitCode(err error) int {
	if userError(err) {
		return 1
	}
	return 2
}
