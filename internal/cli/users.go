package cli

import (
	"context"
	"fmt"
	"os"

	"voting/internal/app"
	"voting/internal/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// CreateSuperuserCmd creates a staff superuser. The password may come from
// VOTECTL_PASSWORD so it stays out of shell history.
func CreateSuperuserCmd(open Opener) *cobra.Command {
	var req dto.RegisterRequest
	var email string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("VOTECTL_PASSWORD")
			}
			if email != "" {
				req.Email = &email
			}
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				u, err := a.Auth.CreateSuperuser(ctx, req)
				if err != nil {
					return describe(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s superuser #%d (%s)\n",
					color.New(color.FgGreen).Sprint("created"), u.ID, u.CPF)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.CPF, "cpf", "", "CPF, punctuation allowed")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (default $VOTECTL_PASSWORD)")
	cmd.Flags().StringVar(&email, "email", "", "optional email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("cpf")
	return cmd
}

func DeactivateUserCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <cpf>",
		Short: "Disable a user and revoke their refresh tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				if err := a.Auth.Deactivate(ctx, args[0]); err != nil {
					return describe(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.New(color.FgRed).Sprint("deactivated"), args[0])
				return nil
			})
		},
	}
}
