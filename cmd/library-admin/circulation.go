package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
)

func newRequestsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Review borrow requests",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List borrow requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor, err := c.actor(cmd.Context())
			if err != nil {
				return err
			}
			filter := ports.RequestFilter{Status: domain.RequestStatus(status)}
			if status != "" && !filter.Status.Valid() {
				return domain.Invalid("unknown request status %q", status)
			}
			requests, err := c.app.Circulation.ListBorrowRequests(cmd.Context(), actor, filter)
			if err != nil {
				return err
			}
			w := c.table()
			fmt.Fprintln(w, "ID\tUSER\tBOOK\tREQUESTED\tSTATUS")
			for _, r := range requests {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.UserName, r.BookTitle, r.RequestDate.Format("2006-01-02"), r.Status)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&status, "status", "", "pending, approved or rejected")

	var note string
	review := func(decision domain.RequestStatus) *cobra.Command {
		verb := "approve"
		if decision == domain.RequestRejected {
			verb = "reject"
		}
		sub := &cobra.Command{
			Use:   verb + " REQUEST_ID",
			Short: "Mark a pending request " + string(decision),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				actor, err := c.actor(cmd.Context())
				if err != nil {
					return err
				}
				r, err := c.app.Circulation.ReviewBorrowRequest(cmd.Context(), actor, ports.ReviewInput{
					RequestID: args[0],
					Decision:  decision,
					Note:      note,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "request %s %s\n", r.ID, r.Status)
				return nil
			},
		}
		sub.Flags().StringVar(&note, "note", "", "note stored with the decision")
		return sub
	}

	cmd.AddCommand(list, review(domain.RequestApproved), review(domain.RequestRejected))
	return cmd
}

func newLoansCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "Inspect loans and process returns",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every open loan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor, err := c.actor(cmd.Context())
			if err != nil {
				return err
			}
			loans, err := c.app.Circulation.ListActiveLoans(cmd.Context(), actor)
			if err != nil {
				return err
			}
			w := c.table()
			fmt.Fprintln(w, "ID\tUSER\tBOOK\tDUE")
			for _, l := range loans {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.ID, l.UserName, l.BookTitle, l.DueDate.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}

	ret := &cobra.Command{
		Use:   "return LOAN_ID",
		Short: "Check a copy back in and fix its fine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := c.actor(cmd.Context())
			if err != nil {
				return err
			}
			l, err := c.app.Circulation.ReturnLoan(cmd.Context(), actor, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "loan %s returned, fine %d\n", l.ID, l.Fine)
			return nil
		},
	}

	cmd.AddCommand(list, ret)
	return cmd
}

func newRemindersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Due-date reminders",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "send",
		Short: "Notify borrowers of loans due soon or overdue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := c.app.Notifications.SendDueReminders(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "sent %d reminders\n", n)
			return nil
		},
	})
	return cmd
}
