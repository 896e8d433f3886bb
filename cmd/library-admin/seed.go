package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campusshelf/library-system/internal/infrastructure/seed"
)

func newSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo accounts, genres and books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := seed.NewSeeder(c.app.Store, c.app.Executor, c.log).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "created %d users, %d genres, %d books (password %q)\n",
				res.Users, res.Genres, res.Books, seed.DemoPassword)
			return nil
		},
	}
}
