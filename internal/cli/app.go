package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/spendkeeper/internal/backup"
	"github.com/dmitrijs2005/spendkeeper/internal/common"
	"github.com/dmitrijs2005/spendkeeper/internal/config"
	"github.com/dmitrijs2005/spendkeeper/internal/filex"
	"github.com/dmitrijs2005/spendkeeper/internal/logging"
	"github.com/dmitrijs2005/spendkeeper/internal/report"
	"github.com/dmitrijs2005/spendkeeper/internal/tracker"
	"github.com/shopspring/decimal"
)

type App struct {
	config   *config.Config
	tracker  *tracker.Tracker
	backup   *backup.Service
	store    *filex.Store
	logger   logging.Logger
	userName string
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(c *config.Config, t *tracker.Tracker, b *backup.Service, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config:  c,
		tracker: t,
		backup:  b,
		store:   filex.NewStore(logger),
		logger:  logger,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run starts the interactive shell and returns when the user exits or
// input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Personal Finance Tracker. Type help for commands.")
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) status() string {
	if !a.isLoggedIn() {
		return "guest"
	}
	return a.userName
}

func (a *App) money(v decimal.Decimal) string {
	return report.FormatCurrency(v, a.config.Currency)
}

// userMessage turns an error into something to show at the prompt.
func userMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		return "Invalid username or password"
	case errors.Is(err, common.ErrAlreadyExists):
		return "Username already exists"
	case errors.Is(err, common.ErrNotFound):
		return "User not found. Please log in again or create an account."
	case errors.Is(err, common.ErrInsufficientBalance):
		return "Expense exceeds your current balance"
	case errors.Is(err, common.ErrWriteFailure):
		return "Failed to save: " + err.Error()
	case errors.Is(err, backup.ErrDisabled):
		return "Backups are not configured (set a bucket with -b)"
	case errors.Is(err, report.ErrNoExportEngine):
		return err.Error()
	}
	return err.Error()
}
