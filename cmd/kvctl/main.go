// Command kvctl inspects and edits the FitGym Pro key-value store.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"fitgympro/internal/adapters/storage/kv"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

var app *cli.App

func init() {
	app = &cli.App{
		Name:    "kvctl",
		Usage:   "inspect and edit the FitGym Pro store",
		Version: version,
		Flags: []cli.Flag{
			backendFlag,
			pathFlag,
		},
		Commands: []*cli.Command{
			commandGet,
			commandSet,
			commandDelete,
			commandKeys,
			commandUserKeys,
			commandSeed,
			commandRoute,
		},
	}
}

// Commonly used command line flags.
var (
	backendFlag = &cli.StringFlag{
		Name:    "backend",
		Usage:   "store backend (sqlite or leveldb)",
		Value:   kv.BackendSQLite,
		EnvVars: []string{"FITGYM_STORE_BACKEND"},
	}
	pathFlag = &cli.StringFlag{
		Name:    "path",
		Usage:   "store file or directory",
		Value:   "fitgympro.db",
		EnvVars: []string{"FITGYM_STORE_PATH"},
	}
)

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore opens the store named by the global flags.
func openStore(c *cli.Context) (*kv.Store, error) {
	opener, err := kv.NewOpener(c.String(backendFlag.Name), c.String(pathFlag.Name))
	if err != nil {
		return nil, err
	}
	return kv.NewStore(opener), nil
}
