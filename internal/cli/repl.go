package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it
// with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context) error
	Delete(ctx context.Context) error
	Generate(ctx context.Context) error
	RequestReset(ctx context.Context) error
	ResetPassword(ctx context.Context) error
}

// runREPL reads a line from the scanner, parses the first token as the
// command, and dispatches to methods on a. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit". Errors returned by command handlers are ignored here;
// handlers print their own messages, keeping the loop focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	printlnFn("PassVault (type 'help' for commands)")

	for {
		printlnFn(fmt.Sprintf("pv %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Commands: add, list, show, delete, generate, logout, exit")
			} else {
				printlnFn("Commands: register, login, generate, reset-request, reset, exit")
			}
		case "register":
			a.Register(ctx)
		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "add":
			a.Add(ctx)
		case "list":
			a.List(ctx)
		case "show":
			a.Show(ctx)
		case "delete":
			a.Delete(ctx)
		case "generate":
			a.Generate(ctx)
		case "reset-request":
			a.RequestReset(ctx)
		case "reset":
			a.ResetPassword(ctx)
		case "exit", "quit":
			return
		default:
			printlnFn(fmt.Sprintf("unknown command: %s", parts[0]))
		}
	}
}
