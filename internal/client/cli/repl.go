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
	Status(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Open(ctx context.Context, view string) error
	Dashboard(ctx context.Context) error
	Stock(ctx context.Context, symbol, timeframe string) error
	Search(ctx context.Context, query string) error
	Popular(ctx context.Context) error
	Analysis(ctx context.Context, symbol string) error
	Recommend(ctx context.Context, symbol string) error
	Sector(ctx context.Context, sector string) error
	News(ctx context.Context, args []string) error
	Saved(ctx context.Context) error
	Save(ctx context.Context, symbol string) error
	Delete(ctx context.Context, id string) error
	Notes(ctx context.Context, symbol string) error
	Note(ctx context.Context, id string) error
}

const (
	helpLoggedOut = "Available commands: register, login, status, open <view>, exit"
	helpLoggedIn  = "Available commands: dashboard, stock <sym> [timeframe], search <q>, popular, " +
		"analysis <sym>, recommend <sym>, sector <name>, news [sym|market|sector <name>], " +
		"saved, save <sym>, delete <id>, notes <sym>, note <id>, whoami, status, open <view>, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the stock advisor CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Commands that need an argument print their
// usage when it is missing. Errors returned by handlers are printed and the
// loop continues. The loop exits on EOF or when the user types "exit" or
// "quit".
//
// Prompts issued by handlers read from the same reader, so input typed
// ahead is never lost between the loop and a handler.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("sa %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		usage := func(u string) bool {
			if len(args) == 0 {
				printlnFn("Usage:", u)
				return true
			}
			return false
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "status":
			cmdErr = a.Status(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "open":
			if usage("open <view>") {
				continue
			}
			cmdErr = a.Open(ctx, args[0])

		case "d", "dashboard":
			cmdErr = a.Dashboard(ctx)

		case "stock":
			if usage("stock <symbol> [timeframe]") {
				continue
			}
			timeframe := ""
			if len(args) > 1 {
				timeframe = args[1]
			}
			cmdErr = a.Stock(ctx, args[0], timeframe)

		case "search":
			if usage("search <query>") {
				continue
			}
			cmdErr = a.Search(ctx, strings.Join(args, " "))

		case "popular":
			cmdErr = a.Popular(ctx)

		case "analysis":
			if usage("analysis <symbol>") {
				continue
			}
			cmdErr = a.Analysis(ctx, args[0])

		case "recommend":
			if usage("recommend <symbol>") {
				continue
			}
			cmdErr = a.Recommend(ctx, args[0])

		case "sector":
			if usage("sector <name>") {
				continue
			}
			cmdErr = a.Sector(ctx, strings.Join(args, " "))

		case "news":
			cmdErr = a.News(ctx, args)

		case "saved":
			cmdErr = a.Saved(ctx)

		case "save":
			if usage("save <symbol>") {
				continue
			}
			cmdErr = a.Save(ctx, args[0])

		case "delete":
			if usage("delete <id>") {
				continue
			}
			cmdErr = a.Delete(ctx, args[0])

		case "notes":
			if usage("notes <symbol>") {
				continue
			}
			cmdErr = a.Notes(ctx, args[0])

		case "note":
			if usage("note <id>") {
				continue
			}
			cmdErr = a.Note(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("error:", cmdErr)
		}
	}
}
