// Package cli holds the votectl operator commands.
package cli

import (
	"context"
	"fmt"
	"strconv"

	"voting/internal/app"
	"voting/internal/domain"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Opener builds the application graph for a command run. The returned App is
// closed by the command when it finishes.
type Opener func(ctx context.Context) (*app.App, error)

func NewRootCmd(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "votectl",
		Short:         "Operator tool for the voting service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(MigrateCmd(open))
	root.AddCommand(CreateSuperuserCmd(open))
	root.AddCommand(DeactivateUserCmd(open))
	root.AddCommand(TopicsCmd(open))
	root.AddCommand(ResultCmd(open))
	return root
}

func withApp(cmd *cobra.Command, open Opener, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func statusLabel(s domain.TopicStatus) string {
	switch s {
	case domain.StatusOpen:
		return color.New(color.FgGreen).Sprint(s.Display())
	case domain.StatusClosed:
		return color.New(color.FgRed).Sprint(s.Display())
	default:
		return color.New(color.FgYellow).Sprint(s.Display())
	}
}

func parseTopicID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid topic id %q", raw)
	}
	return uint(id), nil
}
