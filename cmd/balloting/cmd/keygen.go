package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"balloting-backend/encryption"
)

var (
	flagKeyOutput string
	flagKeyFormat string
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a key pair",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		var creds *encryption.Credentials

		if len(flagKeyOutput) > 0 {
			key, generated, err := encryption.LoadOrGenerateKey(flagKeyOutput)
			if err != nil {
				return err
			}
			if !generated {
				return fmt.Errorf("%s already exists", flagKeyOutput)
			}
			creds = encryption.NewCredentials(key)
		} else {
			key, err := encryption.NewCryptoService().GenerateKeyPair()
			if err != nil {
				return err
			}
			creds = encryption.NewCredentials(key)
		}

		return encode(flagKeyFormat, creds, c.OutOrStdout())
	},
}

func init() {
	keygenCmd.Flags().StringVar(&flagKeyOutput, "output", "", "also store the credentials in this file")
	keygenCmd.Flags().StringVar(&flagKeyFormat, "format", "prettyjson", "format={json, prettyjson, yaml}")

	rootCmd.AddCommand(keygenCmd)
}
