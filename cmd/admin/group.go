package main

import (
	"errors"
	"fmt"
	"regexp"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"yatube/internal/model"
	"yatube/internal/repository/sqldb"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage groups",
}

var groupDescription string

var createGroupCmd = &cobra.Command{
	Use:   "create [slug] [title]",
	Short: "Create a group",
	Args:  cobra.ExactArgs(2),
	RunE:  createGroup,
}

var listGroupsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all groups",
	Args:  cobra.NoArgs,
	RunE:  listGroups,
}

var deleteGroupCmd = &cobra.Command{
	Use:   "delete [slug]",
	Short: "Delete a group that has no posts",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteGroup,
}

func init() {
	rootCmd.AddCommand(groupCmd)
	groupCmd.AddCommand(createGroupCmd)
	groupCmd.AddCommand(listGroupsCmd)
	groupCmd.AddCommand(deleteGroupCmd)
	createGroupCmd.Flags().StringVarP(&groupDescription, "description", "d", "", "group description")
}

func createGroup(cmd *cobra.Command, args []string) error {
	slug, title := args[0], args[1]
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("slug %q may contain only lowercase letters, digits, '-' and '_'", slug)
	}
	repo := &sqldb.GroupRepository{DB: db}
	g := &model.Group{Slug: slug, Title: title, Description: groupDescription}
	if err := repo.Create(cmd.Context(), g); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("group %q already exists", slug)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created group %s (id %d).\n", g.Slug, g.ID)
	return nil
}

func listGroups(cmd *cobra.Command, args []string) error {
	groups, err := (&sqldb.GroupRepository{DB: db}).List(cmd.Context())
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No groups yet.")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSLUG\tTITLE")
	lo.ForEach(groups, func(g model.Group, _ int) {
		fmt.Fprintf(w, "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
	})
	return w.Flush()
}

func deleteGroup(cmd *cobra.Command, args []string) error {
	n, err := (&sqldb.GroupRepository{DB: db}).DeleteBySlug(cmd.Context(), args[0])
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("group %q still has posts", args[0])
	}
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("group %q not found", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted group %s.\n", args[0])
	return nil
}
