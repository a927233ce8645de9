package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/band-manager/internal/utils"
)

var recoveryCost int

var recoveryKeyCmd = &cobra.Command{
	Use:   "recovery-key",
	Short: "Manage the emergency recovery key",
}

var recoveryHashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Hash a recovery key read from stdin",
	Long: `Reads the recovery key from the first line of stdin and prints its
bcrypt hash.  Put the hash in RECOVERY_KEY_HASH to enable
POST /api/auth/emergency-reset.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := readSecret(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if len(key) < 16 {
			return errors.New("recovery key must be at least 16 characters")
		}
		hash, err := utils.HashPassword(key, recoveryCost)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
		return err
	},
}

func init() {
	recoveryHashCmd.Flags().IntVar(&recoveryCost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	recoveryKeyCmd.AddCommand(recoveryHashCmd)
}
