package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-realty/internal/apps/brokerage"
	"github.com/pgEdge/pgedge-realty/internal/logging"
	"github.com/pgEdge/pgedge-realty/internal/realty"
)

var (
	termsTransaction int64
	termsSet         string
)

var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "Change the terms of a transaction",
	Long: `Set the terms of one transaction. The listing status of the property is
updated in the same database transaction: terms of 'sold' mark the listing
sold, and moving a sold transaction to any other terms puts the listing
back on the market as available. Other changes leave the listing alone.

Example:
  pgedge-realty terms --transaction 1042 --set sold
  pgedge-realty terms --transaction 1042 --set pending`,
	RunE: runTerms,
}

func init() {
	termsCmd.Flags().Int64Var(&termsTransaction, "transaction", 0,
		"transaction id")
	termsCmd.Flags().StringVar(&termsSet, "set", "",
		"new terms (e.g., sold, pending, lease)")
	_ = termsCmd.MarkFlagRequired("transaction")
	_ = termsCmd.MarkFlagRequired("set")
}

func runTerms(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if termsTransaction <= 0 {
		return fmt.Errorf("transaction id must be positive")
	}
	if strings.TrimSpace(termsSet) == "" {
		return fmt.Errorf("terms must not be empty")
	}

	ctx := context.Background()
	pool, err := connectInitialized(ctx, 1)
	if err != nil {
		return err
	}
	defer pool.Close()

	result, err := brokerage.NewStore(pool).UpdateTransactionTerms(ctx, termsTransaction, realty.Terms(termsSet))
	if err != nil {
		return err
	}

	logging.Info().
		Int64("transaction_id", termsTransaction).
		Str("terms", strings.TrimSpace(termsSet)).
		Int64("property_id", result.PropertyID).
		Bool("status_applied", result.Applied).
		Str("status", result.Status.String()).
		Msg("Terms updated")

	switch {
	case !result.Applied:
		cmd.Printf("transaction %d updated; listing %d unchanged\n", termsTransaction, result.PropertyID)
	case result.RowsAffected == 0:
		cmd.Printf("transaction %d updated; property %d has no listing\n", termsTransaction, result.PropertyID)
	default:
		cmd.Printf("transaction %d updated; listing %d is now %s\n",
			termsTransaction, result.PropertyID, result.Status)
	}
	return nil
}
