package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"keygate/internal/domain"
)

// List management always acts on the local identity's own lists; owners
// manage their lists, nobody else's.

func allowCmd() *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "allow <aid>",
		Short: "Add an AID to your allow list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loadIdentity()
			if err != nil {
				return err
			}
			return appCtx.Access.Allow(cmd.Context(), id.AID, domain.AID(args[0]), note)
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "why this entry exists")
	return cmd
}

func unallowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unallow <aid>",
		Short: "Remove an AID from your allow list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loadIdentity()
			if err != nil {
				return err
			}
			return appCtx.Access.Unallow(cmd.Context(), id.AID, domain.AID(args[0]))
		},
	}
}

func denyCmd() *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "deny <aid>",
		Short: "Add an AID to your deny list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loadIdentity()
			if err != nil {
				return err
			}
			return appCtx.Access.Deny(cmd.Context(), id.AID, domain.AID(args[0]), note)
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "why this entry exists")
	return cmd
}

func undenyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undeny <aid>",
		Short: "Remove an AID from your deny list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loadIdentity()
			if err != nil {
				return err
			}
			return appCtx.Access.Undeny(cmd.Context(), id.AID, domain.AID(args[0]))
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <sender-aid>",
		Short: "Check whether a sender may message you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loadIdentity()
			if err != nil {
				return err
			}
			d, err := appCtx.Access.CanMessage(cmd.Context(), domain.AID(args[0]), id.AID)
			if err != nil {
				return err
			}
			if d.Allowed {
				fmt.Println("allowed")
			} else {
				fmt.Printf("blocked: %s\n", d.Reason)
			}
			return nil
		},
	}
}
