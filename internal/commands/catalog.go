package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCategoryCommand(e *env) *cobra.Command {
	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}

	var parent string
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				parentID, err := a.resolveCategory(cmd.Context(), parent)
				if err != nil {
					return err
				}
				c, err := a.books.CreateCategory(cmd.Context(), args[0], parentID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created category %s (%s)\n", c.Name, c.ID)
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&parent, "parent", "", "parent category name or ID")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				cats, err := a.books.ListCategories(cmd.Context())
				if err != nil {
					return err
				}
				names := make(map[string]string, len(cats))
				for _, c := range cats {
					names[c.ID] = c.Name
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "NAME\tPARENT\tID")
				for _, c := range cats {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, orDash(names[c.ParentID]), c.ID)
				}
				return tw.Flush()
			})
		},
	}

	categoryCmd.AddCommand(createCmd, listCmd)
	return categoryCmd
}

func newPayeeCommand(e *env) *cobra.Command {
	payeeCmd := &cobra.Command{
		Use:   "payee",
		Short: "Manage payees",
	}

	var category string
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Add a payee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				categoryID, err := a.resolveCategory(cmd.Context(), category)
				if err != nil {
					return err
				}
				p, err := a.books.CreatePayee(cmd.Context(), args[0], categoryID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created payee %s (%s)\n", p.Name, p.ID)
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&category, "category", "", "default category name or ID")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List payees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				payees, err := a.books.ListPayees(cmd.Context())
				if err != nil {
					return err
				}
				cats, err := a.books.ListCategories(cmd.Context())
				if err != nil {
					return err
				}
				names := make(map[string]string, len(cats))
				for _, c := range cats {
					names[c.ID] = c.Name
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "NAME\tDEFAULT CATEGORY\tID")
				for _, p := range payees {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, orDash(names[p.DefaultCategoryID]), p.ID)
				}
				return tw.Flush()
			})
		},
	}

	payeeCmd.AddCommand(createCmd, listCmd)
	return payeeCmd
}
