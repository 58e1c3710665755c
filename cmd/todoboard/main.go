package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/todoboard/internal/app"
	"github.com/five82/todoboard/internal/todo"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	prefsPath := flag.String("prefs", "", "override preferences path (optional)")
	openID := flag.String("open", "", "open the list with this id on start (optional)")
	filter := flag.String("state", "all", "initial item filter: all, active, finished or missed")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		OpenTodo:   todo.ID(*openID),
		Filter:     *filter,
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "todoboard: %v\n", err)
		return 1
	}
	return 0
}
