package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Reap expired challenges and dead session tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			challenges, err := appCtx.Auth.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			tokens, err := appCtx.Sessions.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("swept %d challenges, %d tokens\n", challenges, tokens)
			return nil
		},
	}
}
