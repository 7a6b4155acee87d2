package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	web "fitgympro/internal/adapters/http"
	accountStore "fitgympro/internal/adapters/storage/account"
	activityStore "fitgympro/internal/adapters/storage/activitylog"
	cmsStore "fitgympro/internal/adapters/storage/cms"
	"fitgympro/internal/adapters/storage/keyspace"
	magazineStore "fitgympro/internal/adapters/storage/magazine"
	"fitgympro/internal/adapters/storage/session"
	"fitgympro/internal/application/orchestrators"
	"fitgympro/internal/navigation"
)

var commandGet = &cli.Command{
	Name:      "get",
	Usage:     "print the JSON document stored under a key",
	ArgsUsage: "<key>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return errors.New("get takes exactly one key")
		}
		store, err := openStore(c)
		if err != nil {
			return err
		}
		defer store.Close()

		raw, ok, err := store.Get(c.Context, c.Args().First())
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s: no such key", c.Args().First())
		}
		return printJSON(c.App.Writer, raw)
	},
}

var commandSet = &cli.Command{
	Name:      "set",
	Usage:     "store a JSON document under a key",
	ArgsUsage: "<key> <json>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return errors.New("set takes a key and a JSON document")
		}
		value := json.RawMessage(c.Args().Get(1))
		if !json.Valid(value) {
			return errors.New("value is not valid JSON")
		}
		store, err := openStore(c)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Set(c.Context, c.Args().First(), value)
	},
}

var commandDelete = &cli.Command{
	Name:      "delete",
	Usage:     "remove a key; removing a missing key is not an error",
	ArgsUsage: "<key>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return errors.New("delete takes exactly one key")
		}
		store, err := openStore(c)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Delete(c.Context, c.Args().First())
	},
}

var commandKeys = &cli.Command{
	Name:      "keys",
	Usage:     "list stored keys, optionally under a prefix",
	ArgsUsage: "[prefix]",
	Action: func(c *cli.Context) error {
		prefix := c.Args().First()
		if prefix == "" {
			prefix = keyspace.Prefix
		}
		store, err := openStore(c)
		if err != nil {
			return err
		}
		defer store.Close()

		keys, err := store.Keys(c.Context, prefix)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(c.App.Writer, k)
		}
		return nil
	},
}

var commandUserKeys = &cli.Command{
	Name:      "user-keys",
	Usage:     "show which per-user keys exist for a username",
	ArgsUsage: "<username>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "delete", Usage: "remove every per-user key of the user"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return errors.New("user-keys takes exactly one username")
		}
		keys, err := keyspace.UserKeys(c.Args().First())
		if err != nil {
			return err
		}
		store, err := openStore(c)
		if err != nil {
			return err
		}
		defer store.Close()

		for _, k := range keys {
			_, ok, err := store.Get(c.Context, k.String())
			if err != nil {
				return err
			}
			state := "absent"
			if ok {
				state = "present"
			}
			if ok && c.Bool("delete") {
				if err := store.Delete(c.Context, k.String()); err != nil {
					return err
				}
				state = "deleted"
			}
			fmt.Fprintf(c.App.Writer, "%-40s %s\n", k, state)
		}
		return nil
	},
}

var commandSeed = &cli.Command{
	Name:  "seed",
	Usage: "sync the built-in CMS catalogues and create the admin when none exists",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "admin-username", Value: "admin", EnvVars: []string{"FITGYM_ADMIN_USERNAME"}},
		&cli.StringFlag{Name: "admin-email", Value: "admin@fitgympro.com", EnvVars: []string{"FITGYM_ADMIN_EMAIL"}},
		&cli.StringFlag{Name: "admin-password", EnvVars: []string{"FITGYM_ADMIN_PASSWORD"}},
	},
	Action: func(c *cli.Context) error {
		store, err := openStore(c)
		if err != nil {
			return err
		}
		defer store.Close()

		res, err := orchestrators.ExecuteSeedCMS(c.Context, orchestrators.SeedCMSDeps{
			Catalog:  cmsStore.NewKVStore(store),
			Articles: magazineStore.NewKVStore(store),
			Activity: activityStore.NewKVStore(store),
			Now:      time.Now,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "exercises synced: %t\nsupplements synced: %t\narticles seeded: %t\n",
			res.ExercisesSynced, res.SupplementsSynced, res.ArticlesSeeded)

		if c.String("admin-password") == "" {
			return nil
		}
		created, err := orchestrators.ExecuteSeedAdmin(c.Context, orchestrators.SeedAdminInput{
			Username: c.String("admin-username"),
			Email:    c.String("admin-email"),
			Password: c.String("admin-password"),
		}, orchestrators.SeedAdminDeps{
			AccountStore: accountStore.NewKVStore(store),
			Now:          time.Now,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "admin created: %t\n", created)
		return nil
	},
}

var commandRoute = &cli.Command{
	Name:      "route",
	Usage:     "trace how the page router resolves a location",
	ArgsUsage: "<path>",
	Description: "Without --signed-in the signed-in state is read from the session\n" +
		"marker in the store, as the router does on every navigation.",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "signed-in", Usage: "dispatch as signed in (true) or signed out (false) instead of reading the store"},
		&cli.StringSliceFlag{Name: "fail", Usage: "page paths whose handler should fail"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return errors.New("route takes exactly one path")
		}
		var sessions navigation.SessionChecker
		if c.IsSet("signed-in") {
			signedIn := c.Bool("signed-in")
			sessions = navigation.SessionFunc(func(context.Context) (bool, error) { return signedIn, nil })
		} else {
			store, err := openStore(c)
			if err != nil {
				return err
			}
			defer store.Close()
			sessionStore := session.NewKVStore(store)
			if m, ok, err := sessionStore.Current(c.Context); err == nil && ok {
				fmt.Fprintf(c.App.Writer, "marker:   %s (%s)\n", m.Username, m.Role)
			}
			sessions = session.CurrentChecker{Store: sessionStore}
		}
		trace := traceRoute(c.Context, c.Args().First(), sessions, c.StringSlice("fail"))
		fmt.Fprintln(c.App.Writer, trace)
		return nil
	},
}

// routeTrace is the outcome of one simulated navigation.
type routeTrace struct {
	Rendered []string // pages whose handler ran, in order
	Final    string   // history path after every redirect
	Last     navigation.Result
}

func (t routeTrace) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rendered: %s\n", strings.Join(t.Rendered, " -> "))
	fmt.Fprintf(&b, "final:    %s (%s)", t.Final, t.Last.Outcome)
	if t.Last.Err != nil {
		fmt.Fprintf(&b, "\nerror:    %v", t.Last.Err)
	}
	return b.String()
}

// traceRoute runs a navigator over the real page table with stub handlers.
func traceRoute(ctx context.Context, path string, sessions navigation.SessionChecker, failing []string) routeTrace {
	fail := make(map[string]bool, len(failing))
	for _, p := range failing {
		fail[p] = true
	}

	var trace routeTrace
	routes := navigation.Routes{}
	for _, p := range web.PagePaths() {
		routes[p] = func(context.Context) error {
			trace.Rendered = append(trace.Rendered, p)
			if fail[p] {
				return errors.New("simulated failure")
			}
			return nil
		}
	}

	history := navigation.NewHistory(navigation.PathOf(path))
	nav := navigation.NewNavigator(history, sessions)
	defer nav.Close()

	trace.Last = nav.Init(ctx, routes)
	trace.Final = history.Path()
	return trace
}

func printJSON(w io.Writer, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
