package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"keygate/internal/crypto"
	"keygate/internal/services/keystate"
)

func rotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Rotate to a fresh signing key, voiding outstanding sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := loadIdentity()
			if err != nil {
				return err
			}
			newPriv, newPub, err := crypto.GenerateEd25519()
			if err != nil {
				return err
			}
			newKeys := []string{crypto.EncodeKey(newPub)}

			proof, err := proveSelf(ctx, id, keystate.PurposeRotate, struct {
				Keys      []string `json:"keys"`
				Threshold int      `json:"threshold"`
			}{newKeys, 1})
			if err != nil {
				return err
			}
			ks, err := appCtx.Keys.Rotate(ctx, id.AID, newKeys, 1, "", proof)
			if err != nil {
				return err
			}

			// Only persist the new key once the registry accepted it.
			id.Priv, id.Pub = newPriv, newPub
			if err := appCtx.Vault.SaveIdentity(passphrase, id); err != nil {
				return err
			}
			fmt.Printf("Rotated to KSN %d.\nFingerprint: %s\n", ks.KSN, crypto.Fingerprint(newPub))
			return nil
		},
	}
}
