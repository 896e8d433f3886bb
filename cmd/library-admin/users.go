package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUsersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and manage accounts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the accounts visible to --as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor, err := c.actor(cmd.Context())
			if err != nil {
				return err
			}
			users, err := c.app.Users.ListUsers(cmd.Context(), actor)
			if err != nil {
				return err
			}
			w := c.table()
			fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tACTIVE")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.Email, u.Name, u.Role, u.IsActive)
			}
			return w.Flush()
		},
	}

	var remark string
	deactivate := &cobra.Command{
		Use:   "deactivate USER_ID",
		Short: "Deactivate an account, recording why",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.setActive(cmd, args[0], false, remark)
		},
	}
	deactivate.Flags().StringVar(&remark, "remark", "", "reason shown to the user")
	_ = deactivate.MarkFlagRequired("remark")

	activate := &cobra.Command{
		Use:   "activate USER_ID",
		Short: "Reactivate an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.setActive(cmd, args[0], true, "")
		},
	}

	cmd.AddCommand(list, deactivate, activate)
	return cmd
}

func (c *cli) setActive(cmd *cobra.Command, userID string, active bool, remark string) error {
	actor, err := c.actor(cmd.Context())
	if err != nil {
		return err
	}
	u, err := c.app.Users.SetUserActiveStatus(cmd.Context(), actor, userID, active, remark)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s active=%t\n", u.Email, u.IsActive)
	return nil
}
