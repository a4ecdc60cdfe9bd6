package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"keygate/internal/crypto"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the local AID and key fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loadIdentity()
			if err != nil {
				return err
			}
			fmt.Printf("AID: %s\nFingerprint: %s\n", id.AID, crypto.Fingerprint(id.Pub))
			return nil
		},
	}
}
