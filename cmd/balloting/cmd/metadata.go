package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"balloting-backend/metadata"
)

var (
	flagMetaDescription string
	flagMetaTraitType   string
	flagMetaValue       string
)

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Token metadata collection",
	Run: func(c *cobra.Command, args []string) {
		if len(args) < 1 {
			c.Usage()
		}
	},
}

var metadataGenerateCmd = &cobra.Command{
	Use:   "generate <name> <image cid>",
	Short: "Append a token to the metadata collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		description := flagMetaDescription
		if len(description) < 1 {
			description = metadata.Description(args[0])
		}

		path, err := metadata.NewGenerator(cfg.Metadata.Path).Generate(
			args[0], description, args[1], flagMetaTraitType, flagMetaValue,
		)
		if err != nil {
			return err
		}

		fmt.Fprintln(c.OutOrStdout(), path)
		return nil
	},
}

var metadataListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the metadata collection",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		collection, err := metadata.NewGenerator(cfg.Metadata.Path).Load()
		if err != nil {
			return err
		}
		return jsonEncode(collection, c.OutOrStdout(), true)
	},
}

func init() {
	metadataGenerateCmd.Flags().StringVar(&flagMetaDescription, "description", "", "token description; '<name> description' when empty")
	metadataGenerateCmd.Flags().StringVar(&flagMetaTraitType, "trait-type", metadata.DefaultTraitType, "attribute trait type")
	metadataGenerateCmd.Flags().StringVar(&flagMetaValue, "value", metadata.DefaultValue, "attribute value")

	metadataCmd.AddCommand(metadataGenerateCmd, metadataListCmd)
	rootCmd.AddCommand(metadataCmd)
}
