package cmd

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"balloting-backend/encryption"
	"balloting-backend/models"
)

var (
	flagSignKey   string
	flagSignNonce uint64
)

var signCmd = &cobra.Command{
	Use:   "sign <operation type> [target address]",
	Short: "Sign an operation for the HTTP API",
	Long: `Sign an operation for the HTTP API and print it as JSON.

Operation types: register_member, nominate_member, vote, start_voting, end_voting.
register_member, nominate_member and vote need a target address.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(c *cobra.Command, args []string) error {
		key, err := readKey(flagSignKey)
		if err != nil {
			return err
		}

		op, err := buildOperation(args, flagSignNonce, time.Now())
		if err != nil {
			return err
		}

		signed, err := encryption.NewCryptoService().SignOperation(op, key)
		if err != nil {
			return err
		}

		return jsonEncode(signed, c.OutOrStdout(), true)
	},
}

func init() {
	signCmd.Flags().StringVar(&flagSignKey, "key", "", "credentials file of the caller")
	signCmd.Flags().Uint64Var(&flagSignNonce, "nonce", 0, "request nonce; a random one when 0")
	signCmd.MarkFlagRequired("key")

	rootCmd.AddCommand(signCmd)
}

func readKey(path string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key: %w", err)
	}

	var creds encryption.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse key: %w", err)
	}
	return encryption.ParsePrivateKey(creds.PrivateKey)
}

func buildOperation(args []string, nonce uint64, now time.Time) (models.Operation, error) {
	op := models.Operation{
		Type:      models.OperationType(args[0]),
		Nonce:     nonce,
		Timestamp: now.Unix(),
	}
	if !op.Type.IsValid() {
		return op, fmt.Errorf("unknown operation type %q", args[0])
	}

	if op.Type.HasTarget() != (len(args) == 2) {
		if op.Type.HasTarget() {
			return op, fmt.Errorf("%s needs a target address", op.Type)
		}
		return op, fmt.Errorf("%s takes no target address", op.Type)
	}

	if op.Type.HasTarget() {
		if !common.IsHexAddress(args[1]) {
			return op, fmt.Errorf("invalid target address %q", args[1])
		}
		op.Target = common.HexToAddress(args[1])
	}

	if op.Nonce == 0 {
		op.Nonce = uint64(now.UnixNano())
	}

	return op, nil
}
