package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

const onlineCheckInterval = 30 * time.Second

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Preview(ctx context.Context) error
	Apply(ctx context.Context) error
	Install(ctx context.Context, kind, id string) error
	Installed(ctx context.Context) error
	Lessons(ctx context.Context) error
	Adapt(ctx context.Context, lessonID, mode string) error
	Dupes(ctx context.Context, apply, assumeYes bool) error
}

const replHelp = "Available commands: preview, (s)ync, install <kind> <id>, installed, (l)essons, adapt <lesson_id> <beginner|advance>, dupes, exit"

// runREPL reads commands from scanner until EOF, "exit" or "quit". Command
// errors are printed and the loop goes on.
//
//	preview                      show what a sync would do
//	sync | apply                 run a sync now
//	install <kind> <id>          fetch one item
//	installed                    list installed records
//	l | lessons                  list installed lessons
//	adapt <lesson_id> <mode>     generate a beginner or advanced variant
//	dupes                        list duplicate concepts (apply from the CLI)
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("bs %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(replHelp)

		case "preview":
			err = a.Preview(ctx)

		case "s", "sync", "apply":
			err = a.Apply(ctx)

		case "install":
			if len(args) != 2 {
				printlnFn("Usage: install <kind> <id>")
				continue
			}
			err = a.Install(ctx, args[0], args[1])

		case "installed":
			err = a.Installed(ctx)

		case "l", "lessons":
			err = a.Lessons(ctx)

		case "adapt":
			if len(args) != 2 {
				printlnFn("Usage: adapt <lesson_id> <beginner|advance>")
				continue
			}
			err = a.Adapt(ctx, args[0], args[1])

		case "dupes":
			err = a.Dupes(ctx, false, false)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}

func (a *App) status() string {
	return fmt.Sprintf("(%s)", a.Mode)
}

// StartOnlineStatusWatcher pings the remote every interval until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunREPL is the interactive shell behind the repl command.
func (a *App) RunREPL(ctx context.Context) {
	printlnFn("Welcome to brightstudy (type 'help' for commands)")
	a.checkOnline(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}
