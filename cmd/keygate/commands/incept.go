package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"keygate/internal/crypto"
	"keygate/internal/domain"
)

func inceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "incept",
		Short: "Generate a signing key and register its AID",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			priv, pub, err := crypto.GenerateEd25519()
			if err != nil {
				return err
			}
			ks, err := appCtx.Keys.Incept(cmd.Context(), []string{crypto.EncodeKey(pub)}, 1, "")
			if err != nil {
				return err
			}
			id := domain.Identity{AID: ks.AID, Priv: priv, Pub: pub}
			if err := appCtx.Vault.SaveIdentity(passphrase, id); err != nil {
				return err
			}
			fmt.Printf("Identity created.\nAID: %s\nFingerprint: %s\n", ks.AID, crypto.Fingerprint(pub))
			return nil
		},
	}
}
