package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"keygate/internal/domain"
	"keygate/internal/services/session"
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Open, validate, and revoke session tokens",
	}
	cmd.AddCommand(sessionOpenCmd(), sessionValidateCmd(), sessionRevokeCmd())
	return cmd
}

func sessionOpenCmd() *cobra.Command {
	var scopes []string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a session and print the bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := loadIdentity()
			if err != nil {
				return err
			}
			if ttl == 0 {
				ttl = cfg.SessionTTL
			}
			requested := make([]domain.Scope, len(scopes))
			for i, s := range scopes {
				requested[i] = domain.Scope(s)
			}

			proof, err := proveSelf(ctx, id, session.PurposeOpen, struct {
				Scopes []domain.Scope `json:"scopes"`
				TTLMs  int64          `json:"ttlMs"`
			}{requested, ttl.Milliseconds()})
			if err != nil {
				return err
			}
			opened, err := appCtx.Sessions.Open(ctx, id.AID, requested, ttl, proof)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", opened.Token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", opened.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&scopes, "scopes", []string{string(domain.ScopeSend)}, "scopes to grant the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "session lifetime (default from config)")
	return cmd
}

func sessionValidateCmd() *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "validate <token>",
		Short: "Validate a token for one scoped use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sid, err := appCtx.Sessions.Validate(cmd.Context(), args[0], domain.Scope(scope))
			if err != nil {
				return err
			}
			fmt.Printf("AID: %s\nKSN: %d\nClaims: %d\n", sid.AID, sid.KSN, len(sid.Claims))
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", string(domain.ScopeSend), "scope to validate for")
	return cmd
}

func sessionRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke [aid]",
		Short: "Revoke all sessions for an AID (your own without an argument)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := loadIdentity()
			if err != nil {
				return err
			}
			target := id.AID
			if len(args) == 1 {
				target = domain.AID(args[0])
			}

			proof, err := proveSelf(ctx, id, session.PurposeRevoke, struct {
				AID domain.AID `json:"aid"`
			}{target})
			if err != nil {
				return err
			}
			n, err := appCtx.Sessions.RevokeForAID(ctx, target, proof)
			if err != nil {
				return err
			}
			fmt.Printf("revoked %d sessions\n", n)
			return nil
		},
	}
}
