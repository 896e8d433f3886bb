package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/campusshelf/library-system/internal/app"
	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
	"github.com/campusshelf/library-system/internal/infrastructure/config"
	"github.com/campusshelf/library-system/internal/infrastructure/seed"
	"github.com/campusshelf/library-system/pkg/logger"
)

// cli is the state shared by every subcommand.
type cli struct {
	out     io.Writer
	lookup  envconfig.Lookuper
	store   string
	as      string
	seed    bool
	verbose bool

	app *app.App
	log zerolog.Logger
}

// run executes one command line. The app opened for it is always closed,
// including when the command fails.
func run(ctx context.Context, out io.Writer, lookup envconfig.Lookuper, args []string) error {
	c := &cli{out: out, lookup: lookup}
	defer func() {
		if err := c.close(ctx); err != nil {
			c.log.Error().Err(err).Msg("close")
		}
	}()

	root := c.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "library-admin",
		Short:        "Back-office tasks for the library store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd.Context())
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.out)

	flags := root.PersistentFlags()
	flags.StringVar(&c.store, "store", "", "store backend (memory or mongo); overrides STORE_BACKEND")
	flags.StringVar(&c.as, "as", "admin@test.com", "email of the account the command acts as")
	flags.BoolVar(&c.seed, "seed", false, "load the demo data before running the command")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newSeedCmd(c),
		newBooksCmd(c),
		newUsersCmd(c),
		newRequestsCmd(c),
		newLoansCmd(c),
		newRemindersCmd(c),
	)
	return root
}

func (c *cli) open(ctx context.Context) error {
	cfg, err := config.LoadFrom(ctx, c.lookup)
	if err != nil {
		return err
	}
	switch c.store {
	case "":
	case config.BackendMemory, config.BackendMongo:
		cfg.StoreBackend = c.store
	default:
		return fmt.Errorf("--store must be %q or %q", config.BackendMemory, config.BackendMongo)
	}

	level := "warn"
	if c.verbose {
		level = "debug"
	}
	logger.Reset()
	c.log = logger.Init(logger.Options{Level: level, Pretty: true, Service: "library-admin", Output: os.Stderr})

	c.app, err = app.New(ctx, cfg, c.log)
	if err != nil {
		return err
	}
	if c.seed {
		if _, err := seed.NewSeeder(c.app.Store, c.app.Executor, c.log).Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *cli) close(ctx context.Context) error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close(context.WithoutCancel(ctx))
	c.app = nil
	return err
}

// actor resolves --as to the account commands run under.
func (c *cli) actor(ctx context.Context) (ports.Actor, error) {
	u, err := c.app.Store.Users().FindByEmail(ctx, domain.NormalizeEmail(c.as))
	if err != nil {
		return ports.Actor{}, fmt.Errorf("--as %s: %w", c.as, err)
	}
	return ports.Actor{UserID: u.ID, Role: u.Role}, nil
}

func (c *cli) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
}
