package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"balloting-backend/registry"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Members registered when the node boots",
	Run: func(c *cobra.Command, args []string) {
		if len(args) < 1 {
			c.Usage()
		}
	},
}

var rosterAddCmd = &cobra.Command{
	Use:   "add <address> [name]",
	Short: "Add a member to the roster file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(c *cobra.Command, args []string) error {
		path, err := rosterPath()
		if err != nil {
			return err
		}
		if !common.IsHexAddress(args[0]) {
			return fmt.Errorf("invalid address: %q", args[0])
		}

		entry := registry.Entry{Address: common.HexToAddress(args[0])}
		if len(args) > 1 {
			entry.Name = args[1]
		}

		roster, err := registry.LoadRoster(path)
		if err != nil {
			return err
		}
		if name, listed := roster.Name(entry.Address); listed {
			return fmt.Errorf("%s is already on the roster as %q", entry.Address.Hex(), name)
		}
		if err := roster.Add(entry); err != nil {
			return err
		}
		if err := roster.Save(path); err != nil {
			return err
		}

		fmt.Fprintln(c.OutOrStdout(), entry.Address.Hex())
		return nil
	},
}

var rosterListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the roster",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		path, err := rosterPath()
		if err != nil {
			return err
		}

		roster, err := registry.LoadRoster(path)
		if err != nil {
			return err
		}
		return jsonEncode(roster.Entries(), c.OutOrStdout(), true)
	},
}

func rosterPath() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if len(cfg.Roster) < 1 {
		return "", fmt.Errorf("no roster file configured")
	}
	return cfg.Roster, nil
}

func init() {
	rosterCmd.AddCommand(rosterAddCmd, rosterListCmd)
	rootCmd.AddCommand(rosterCmd)
}
