package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"balloting-backend/common"
	"balloting-backend/metadata"
	"balloting-backend/pinning"
)

var (
	flagPinTraitType string
	flagPinValue     string
)

var pinCmd = &cobra.Command{
	Use:   "pin [images dir]",
	Short: "Pin every image and its metadata to IPFS",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		imagesDir := cfg.Metadata.Images
		if len(args) > 0 {
			imagesDir = args[0]
		}

		client, err := pinning.NewClient(
			cfg.Pinata.Endpoint,
			pinning.Credentials{
				JWT:       cfg.Pinata.JWT,
				APIKey:    cfg.Pinata.APIKey,
				APISecret: cfg.Pinata.APISecret,
			},
			cfg.Pinata.MaxRetries,
			nil,
		)
		if err != nil {
			return err
		}

		uploader := pinning.NewBatchUploader(client, metadata.NewGenerator(cfg.Metadata.Path))
		uploader.TraitType = flagPinTraitType
		uploader.Value = flagPinValue

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		stop := make(chan struct{})
		defer close(stop)
		go func() {
			common.Interrupt(stop)
			cancel()
		}()

		results, err := uploader.Run(ctx, imagesDir)
		if err != nil {
			return err
		}

		var failed int
		for _, result := range results {
			if result.Err != nil {
				failed++
			}
		}

		if err := jsonEncode(results, c.OutOrStdout(), true); err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d uploads failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	pinCmd.Flags().StringVar(&flagPinTraitType, "trait-type", metadata.DefaultTraitType, "attribute trait type")
	pinCmd.Flags().StringVar(&flagPinValue, "value", metadata.DefaultValue, "attribute value")

	rootCmd.AddCommand(pinCmd)
}
