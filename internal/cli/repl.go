package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/patrimonio/internal/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Recover(ctx context.Context) error
	Guest(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	ToggleRemember(ctx context.Context) error
	ToggleReport(ctx context.Context) error
	Set(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Discover(ctx context.Context) error
	Advise(ctx context.Context) error
	Briefing(ctx context.Context) error
	Challenge(ctx context.Context, args []string) error
	Export(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the PatrimônioPro terminal.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF, when ctx is done, or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Signed out:
//	  - register       create an account
//	  - login          sign in
//	  - recover        replace email and password of an account
//	  - guest          enter as a guest
//	  - remember       toggle remember-this-device
//	  - report         toggle the welcome e-mail report
//
//	Signed in:
//	  - whoami                      show the signed-in account
//	  - stats                       show balances and totals
//	  - set <bucket> <amount>       update a balance
//	  - discover | advise           advisory texts
//	  - briefing                    both advisory texts at once
//	  - challenge <amount> <choice> answer an investment challenge
//	  - export                      upload a snapshot to object storage
//	  - logout                      sign out
//
// Handler errors are not handled here; handlers print their own messages.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("patrimonio %s > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, stats, set, discover, advise, briefing, challenge, export, logout, exit")
				printlnFn("Buckets:", strings.Join(models.BucketNames(), ", "))
			} else {
				printlnFn("Available commands: register, login, recover, guest, remember, report, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "recover":
			_ = a.Recover(ctx)

		case "guest":
			_ = a.Guest(ctx)

		case "remember":
			_ = a.ToggleRemember(ctx)

		case "report":
			_ = a.ToggleReport(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "set":
			if len(args) != 2 {
				printlnFn("Usage: set <bucket> <amount>")
				continue
			}
			_ = a.Set(ctx, args)

		case "stats":
			_ = a.Stats(ctx)

		case "discover":
			_ = a.Discover(ctx)

		case "advise":
			_ = a.Advise(ctx)

		case "briefing":
			_ = a.Briefing(ctx)

		case "challenge":
			if len(args) < 2 {
				printlnFn("Usage: challenge <amount> <choice...>")
				continue
			}
			_ = a.Challenge(ctx, args)

		case "export":
			_ = a.Export(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
