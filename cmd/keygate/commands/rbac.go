package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"keygate/internal/domain"
)

func roleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Administer roles and their assignments",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := appCtx.Claims.CreateRole(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Role %q (id %d)\n", role.Name, role.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "grant <role> <permission>",
		Short: "Attach a permission to a role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return appCtx.Claims.GrantPermission(cmd.Context(), args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "assign <aid> <role>",
		Short: "Assign a role to an AID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return appCtx.Claims.AssignRole(cmd.Context(), domain.AID(args[0]), args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unassign <aid> <role>",
		Short: "Remove a role from an AID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return appCtx.Claims.UnassignRole(cmd.Context(), domain.AID(args[0]), args[1])
		},
	})

	return cmd
}

func permissionCmd() *cobra.Command {
	var ids []string
	var unrestricted bool

	cmd := &cobra.Command{
		Use:   "permission create <key>",
		Short: "Create a permission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] != "create" {
				return fmt.Errorf("unknown permission subcommand %q", args[0])
			}
			scope := domain.ClaimScope{Unrestricted: unrestricted, IDs: ids}
			perm, err := appCtx.Claims.CreatePermission(cmd.Context(), args[1], scope)
			if err != nil {
				return err
			}
			fmt.Printf("Permission %q (id %d)\n", perm.Key, perm.ID)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "resource ids the permission covers")
	cmd.Flags().BoolVar(&unrestricted, "unrestricted", false, "permission covers every resource")
	return cmd
}
