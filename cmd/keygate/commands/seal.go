package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"keygate/internal/crypto"
	"keygate/internal/domain"
	"keygate/internal/protocol/groupmsg"
)

func sealCmd() *cobra.Command {
	var to []string
	cmd := &cobra.Command{
		Use:   "seal <group-id> <message>",
		Short: "Encrypt a message for a group of AIDs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := loadIdentity()
			if err != nil {
				return err
			}
			if len(to) == 0 {
				return fmt.Errorf("at least one recipient required (--to)")
			}

			// Resolve each member's current signing key from the registry.
			members := make(map[domain.AID]domain.Ed25519Public, len(to))
			for _, raw := range to {
				aid := domain.AID(raw)
				ks, err := appCtx.Keys.Get(ctx, aid)
				if err != nil {
					return err
				}
				pub, err := crypto.DecodeKey(ks.Keys[0])
				if err != nil {
					return err
				}
				members[aid] = pub
			}

			msg, err := groupmsg.Encrypt([]byte(args[1]), members, id.Priv, args[0], id.AID)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(msg)
		},
	}
	cmd.Flags().StringSliceVar(&to, "to", nil, "recipient AIDs")
	return cmd
}

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open [file]",
		Short: "Decrypt a sealed group message (reads stdin without a file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := loadIdentity()
			if err != nil {
				return err
			}

			var raw []byte
			if len(args) == 1 {
				raw, err = os.ReadFile(args[0])
			} else {
				raw, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return err
			}
			var msg domain.GroupMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				return err
			}

			// Attribution checks against the sender's registered key, not
			// whatever the envelope claims.
			ks, err := appCtx.Keys.Get(ctx, msg.SenderAID)
			if err != nil {
				return err
			}
			senderPub, err := crypto.DecodeKey(ks.Keys[0])
			if err != nil {
				return err
			}

			pt, err := groupmsg.Decrypt(msg, id.Priv, id.AID, senderPub)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", pt)
			return nil
		},
	}
}
