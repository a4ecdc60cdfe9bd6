package commands

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"keygate/internal/app"
	"keygate/internal/domain"
)

var (
	home       string
	configPath string
	passphrase string

	cfg    app.Config
	appCtx *app.App
)

func Execute() error {
	root := &cobra.Command{
		Use:   "keygate",
		Short: "Key-state bound authentication and group message encryption",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".keygate")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			if configPath == "" {
				configPath = filepath.Join(home, "config.yaml")
			}

			var err error
			cfg, err = app.LoadConfig(home, configPath)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.VaultDir, 0o700); err != nil {
				return err
			}
			appCtx, err = app.NewWire(cfg)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appCtx == nil {
				return nil
			}
			return appCtx.Close()
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.keygate)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <home>/config.yaml)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the local identity")

	root.AddCommand(
		inceptCmd(), rotateCmd(), fingerprintCmd(),
		roleCmd(), permissionCmd(),
		allowCmd(), unallowCmd(), denyCmd(), undenyCmd(), checkCmd(),
		sealCmd(), openCmd(),
		sessionCmd(),
		sweepCmd(),
	)
	return root.Execute()
}

// proveSelf runs the challenge half of the ceremony: issue a challenge for
// the local identity and sign its payload with the vault key.
func proveSelf(ctx context.Context, id domain.Identity, purpose string, args any) (domain.AuthProof, error) {
	issued, err := appCtx.Auth.Issue(ctx, id.AID, purpose, args, cfg.ChallengeTTL)
	if err != nil {
		return domain.AuthProof{}, err
	}
	ks, err := appCtx.Keys.Get(ctx, id.AID)
	if err != nil {
		return domain.AuthProof{}, err
	}
	return signProof(id, issued, ks.KSN), nil
}
