package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
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
	WhoAmI(ctx context.Context) error
	Search(ctx context.Context, query string) error
	History(ctx context.Context) error
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The first token is the command, the rest are its arguments. The loop ends
// on EOF or when the user types "exit" or "quit".
//
//	Signed out:  help, register, login, whoami, exit
//	Signed in:   help, search <query...>, history, remove <id>, clear,
//	             whoami, logout, exit
//
// Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("shopsage %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: search <query>, history, remove <id>, clear, whoami, logout, exit")
			} else {
				printlnFn("Available commands: register, login, whoami, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "search", "s":
			cmdErr = a.Search(ctx, strings.Join(args, " "))

		case "history", "h":
			cmdErr = a.History(ctx)

		case "remove", "rm":
			if len(args) != 1 {
				printlnFn("Usage: remove <id>")
				continue
			}
			cmdErr = a.Remove(ctx, args[0])

		case "clear":
			cmdErr = a.Clear(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
		if err != nil {
			// last line had no newline
			return
		}
	}
}
