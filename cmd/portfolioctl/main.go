package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&migrateCmd{}, "database")
	commander.Register(&seedCmd{}, "database")
	commander.Register(&backfillCmd{}, "history")
	commander.Register(&backupCmd{}, "history")
	commander.Register(&overviewCmd{}, "report")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
