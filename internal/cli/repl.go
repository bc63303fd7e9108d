package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for prompt and dispatcher output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests use a recording stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Balance(ctx context.Context) error
	Deposit(ctx context.Context) error
	SetBalance(ctx context.Context) error
	AddExpense(ctx context.Context) error
	List(ctx context.Context) error
	Report(ctx context.Context) error
	Export(ctx context.Context) error
	Categories(ctx context.Context) error
	Wipe(ctx context.Context) error
	Close(ctx context.Context) error
	Backup(ctx context.Context) error
}

const (
	guestHelp = "Available commands: register, login, help, exit"
	userHelp  = "Available commands: (b)alance, deposit, setbalance, (a)dd, (l)ist, (r)eport, export, categories, wipe, close, backup, logout, help, exit"
)

// runREPL reads one command per line from reader and dispatches it to a.
// The prompt shows statusFn. Commands that need a session are refused
// while logged out. Handler errors are printed and the loop goes on; it
// returns on "exit", "quit" or end of input.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("spendkeeper (%s) > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])

		var handler func(context.Context) error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(userHelp)
			} else {
				printlnFn(guestHelp)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "register":
			handler = a.Register
		case "login":
			handler = a.Login
		default:
			handler = userCommand(a, cmd)
			if handler == nil {
				printlnFn("Unknown command:", cmd)
				continue
			}
			if !a.isLoggedIn() {
				printlnFn("Please login first")
				continue
			}
		}

		if err := handler(ctx); err != nil {
			printlnFn("Error:", userMessage(err))
		}
	}
}

// userCommand maps a command name to its handler, nil if there is none.
func userCommand(a execIface, cmd string) func(context.Context) error {
	switch cmd {
	case "b", "balance":
		return a.Balance
	case "deposit":
		return a.Deposit
	case "setbalance":
		return a.SetBalance
	case "a", "add":
		return a.AddExpense
	case "l", "list":
		return a.List
	case "r", "report":
		return a.Report
	case "export":
		return a.Export
	case "categories":
		return a.Categories
	case "wipe":
		return a.Wipe
	case "close":
		return a.Close
	case "backup":
		return a.Backup
	case "logout":
		return a.Logout
	}
	return nil
}
