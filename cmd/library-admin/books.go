package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/campusshelf/library-system/internal/core/ports"
)

func newBooksCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Inspect and manage the catalog",
	}

	var filter ports.BookFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List books, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor, err := c.actor(cmd.Context())
			if err != nil {
				return err
			}
			books, err := c.app.Catalog.ListBooks(cmd.Context(), actor, filter)
			if err != nil {
				return err
			}
			w := c.table()
			fmt.Fprintln(w, "ID\tISBN\tTITLE\tAUTHOR\tGENRE\tAVAILABLE")
			for _, b := range books {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d/%d\n", b.ID, b.ISBN, b.Title, b.Author, b.Genre, b.AvailableQuantity, b.TotalQuantity)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVarP(&filter.Query, "query", "q", "", "title contains")
	list.Flags().StringVar(&filter.Author, "author", "", "author contains")
	list.Flags().StringVar(&filter.Genre, "genre", "", "genre name")

	var in ports.AddBookInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor, err := c.actor(cmd.Context())
			if err != nil {
				return err
			}
			b, err := c.app.Catalog.AddBook(cmd.Context(), actor, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "added %s (%s)\n", b.Title, b.ID)
			return nil
		},
	}
	add.Flags().StringVar(&in.Title, "title", "", "title")
	add.Flags().StringVar(&in.Author, "author", "", "author")
	add.Flags().StringVar(&in.Genre, "genre", "", "genre name")
	add.Flags().StringVar(&in.ISBN, "isbn", "", "ISBN")
	add.Flags().IntVar(&in.Quantity, "quantity", 1, "number of copies")

	resize := &cobra.Command{
		Use:   "resize BOOK_ID TOTAL",
		Short: "Change the number of owned copies",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("TOTAL must be a number: %w", err)
			}
			actor, err := c.actor(cmd.Context())
			if err != nil {
				return err
			}
			b, err := c.app.Catalog.ResizeBookQuantity(cmd.Context(), actor, args[0], total)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s now has %d/%d copies available\n", b.Title, b.AvailableQuantity, b.TotalQuantity)
			return nil
		},
	}

	cmd.AddCommand(list, add, resize)
	return cmd
}
