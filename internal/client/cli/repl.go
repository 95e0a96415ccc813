package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	EditProfile(ctx context.Context) error
	Avatar(ctx context.Context, args []string) error
	Feed(ctx context.Context) error
	Post(ctx context.Context) error
	Like(ctx context.Context, args []string) error
	Unlike(ctx context.Context, args []string) error
	Report(ctx context.Context) error
	Users(ctx context.Context) error
}

// runREPL starts a read–eval–print loop for the Cidade em Foco CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Command errors are printed here; handlers return them instead of printing,
// so the loop stays resilient and the output stays uniform.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	report := func(err error) {
		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}

	for {
		printlnFn(fmt.Sprintf("cf> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: feed, post, like <id>, unlike <id>, report, me, profile, avatar <path>, users, logout, exit")
			} else {
				printlnFn("Available commands: register, login, feed, exit")
			}

		case "register":
			report(a.Register(ctx))

		case "login":
			report(a.Login(ctx))

		case "logout":
			report(a.Logout(ctx))

		case "me":
			report(a.Me(ctx))

		case "profile":
			report(a.EditProfile(ctx))

		case "avatar":
			report(a.Avatar(ctx, args))

		case "f", "feed":
			report(a.Feed(ctx))

		case "post":
			report(a.Post(ctx))

		case "like":
			report(a.Like(ctx, args))

		case "unlike":
			report(a.Unlike(ctx, args))

		case "report":
			report(a.Report(ctx))

		case "users":
			report(a.Users(ctx))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
