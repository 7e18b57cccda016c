package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"yatube/internal/form"
	"yatube/internal/repository/sqldb"
	"yatube/internal/service"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userEmail, userPassword string

var createUserCmd = &cobra.Command{
	Use:   "create [username]",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(1),
	RunE:  createUser,
}

var deleteUserCmd = &cobra.Command{
	Use:   "delete [username]",
	Short: "Delete a user with their posts, comments and follows",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteUser,
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(createUserCmd)
	userCmd.AddCommand(deleteUserCmd)
	createUserCmd.Flags().StringVar(&userEmail, "email", "", "email address (required)")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "password (required)")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")
}

func createUser(cmd *cobra.Command, args []string) error {
	svc := service.NewUserService(db, nil, nil, nil)
	user, err := svc.Register(cmd.Context(), &form.SignupInput{
		Username:  args[0],
		Email:     userEmail,
		Password1: userPassword,
		Password2: userPassword,
	})
	var errs form.Errors
	if errors.As(err, &errs) {
		return errs
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d).\n", user.Username, user.ID)
	return nil
}

func deleteUser(cmd *cobra.Command, args []string) error {
	repo := &sqldb.UserRepository{DB: db}
	user, err := repo.FindByUsername(cmd.Context(), args[0])
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("user %q not found", args[0])
	}
	if err != nil {
		return err
	}
	if err := repo.Delete(cmd.Context(), user.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s.\n", user.Username)
	return nil
}
