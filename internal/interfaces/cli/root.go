package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tap-rating-bot/internal/application/usecases"
)

// UsersProvider opens the user store on demand. The returned closer is
// called once the command has finished.
type UsersProvider func(ctx context.Context) (*usecases.UserUseCase, io.Closer, error)

// NewRootCommand assembles the tapctl command tree
func NewRootCommand(provider UsersProvider, version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "tapctl",
		Short:         "CLI для управления Telegram ботом",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newUsersCommand(provider))
	root.AddCommand(newVersionCommand(version))

	return root
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tapctl %s\n", version)
		},
	}
}
