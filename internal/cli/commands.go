package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/dmitrijs2005/spendkeeper/internal/models"
	"github.com/dmitrijs2005/spendkeeper/internal/report"
	"github.com/google/subcommands"
)

// Commands returns the subcommands backed by a. The shell is the default
// when no subcommand is named.
func Commands(a *App) []subcommands.Command {
	return []subcommands.Command{
		&shellCmd{app: a},
		&reportCmd{app: a},
		&exportCmd{app: a},
		&backupCmd{app: a},
		&healCmd{app: a},
	}
}

// fail prints err for the user and maps it to an exit status.
func (a *App) fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(a.out, "Error:", userMessage(err))
	return subcommands.ExitFailure
}

type shellCmd struct{ app *App }

func (*shellCmd) Name() string     { return "shell" }
func (*shellCmd) Synopsis() string { return "start the interactive shell (default)" }
func (*shellCmd) Usage() string {
	return `spendkeeper shell

  Interactive session: register, login, then add expenses, view reports
  and manage the balance. Type help at the prompt for commands.
`
}
func (*shellCmd) SetFlags(*flag.FlagSet) {}

func (c *shellCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.app.Run(ctx)
	return subcommands.ExitSuccess
}

type reportCmd struct {
	app  *App
	user string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print the spending dashboard for a user" }
func (*reportCmd) Usage() string {
	return `spendkeeper report -u <username>

  Prompts for the password, then prints the dashboard as markdown.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "Username.")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if err := c.app.loginAs(ctx, c.user); err != nil {
		return c.app.fail(err)
	}
	if err := c.app.Report(ctx); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}

type exportCmd struct {
	app      *App
	user     string
	output   string
	from     string
	to       string
	category string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export a user's expenses to a file" }
func (*exportCmd) Usage() string {
	return `spendkeeper [-f csv|xlsx] export -u <username> [-o <file>] [-from <date>] [-to <date>] [-category <name>]

  Writes the journal, optionally filtered, in the configured export format.
  The default file name is <username>_expenses_<YYYYMMDD>.<ext>.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "Username.")
	f.StringVar(&c.output, "o", "", "Output file.")
	f.StringVar(&c.from, "from", "", "Earliest date to include (YYYY-MM-DD).")
	f.StringVar(&c.to, "to", "", "Latest date to include (YYYY-MM-DD).")
	f.StringVar(&c.category, "category", report.AllCategories, "Only this category.")
}

func optionalDate(s string) (*models.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *exportCmd) filter() (f report.Filter, err error) {
	f.Category = c.category
	if f.From, err = optionalDate(c.from); err != nil {
		return f, err
	}
	f.To, err = optionalDate(c.to)
	return f, err
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	filter, err := c.filter()
	if err != nil {
		fmt.Fprintln(c.app.out, err)
		return subcommands.ExitUsageError
	}

	a := c.app
	if err := a.loginAs(ctx, c.user); err != nil {
		return a.fail(err)
	}
	s, err := a.tracker.Snapshot(ctx, c.user)
	if err != nil {
		return a.fail(err)
	}

	format := a.config.ExportFormat
	path := c.output
	if path == "" {
		path = report.DownloadFilename(c.user, format, models.Today())
		if !filter.IsZero() {
			path = "filtered_" + path
		}
	}

	n, err := a.exportTo(ctx, path, format, filter.Apply(s.Entries))
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Exported %d expenses to %s\n", n, path)
	return subcommands.ExitSuccess
}

type backupCmd struct {
	app  *App
	user string
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "upload a user's files to S3" }
func (*backupCmd) Usage() string {
	return `spendkeeper -b <bucket> backup -u <username>

  Copies the user's journal, categories and balance files to the bucket
  under backups/<username>/<timestamp>/.
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "Username.")
}

func (c *backupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if err := c.app.loginAs(ctx, c.user); err != nil {
		return c.app.fail(err)
	}
	if err := c.app.Backup(ctx); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}

type healCmd struct{ app *App }

func (*healCmd) Name() string     { return "heal" }
func (*healCmd) Synopsis() string { return "recreate missing account files" }
func (*healCmd) Usage() string {
	return `spendkeeper heal

  Fills missing file references in the registry and recreates any account
  file that is gone, with default contents.
`
}
func (*healCmd) SetFlags(*flag.FlagSet) {}

func (c *healCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	n, err := c.app.tracker.Registry().Heal(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.out, "Recreated %d files.\n", n)
	return subcommands.ExitSuccess
}
