package cmd

import (
	"errors"
	"fmt"
	"strings"

	"catalog-sync/core/models"
	"catalog-sync/core/resolve"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <sku>...",
	Short: "Resolve SKUs to backend record IDs",
	Long: `Resolves one or more SKUs cache-first and prints the matches as JSON.
With --manufacturer-sku the keys are matched on the manufacturer SKU, which is
useful to diagnose duplicates before a sync run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		byManufacturer, _ := cmd.Flags().GetBool("manufacturer-sku")
		duplicates, _ := cmd.Flags().GetString("duplicate-strategy")

		policy, err := resolve.ParseDuplicatePolicy(duplicates)
		if err != nil {
			return err
		}

		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		resolver, err := a.openResolver(ctx, 0)
		if err != nil {
			return err
		}

		retailLookup, ecomLookup := lookups(a.retailBackend(), a.ecomBackend())
		if retailLookup == nil && ecomLookup == nil {
			return models.ErrNoCredentials
		}

		batch, err := resolver.Resolve(ctx, resolve.Request{
			Keys:              args,
			Retail:            retailLookup,
			Ecom:              ecomLookup,
			ByManufacturerSKU: byManufacturer,
			Policy:            policy,
		})
		var dup *resolve.DuplicateKeyError
		if errors.As(err, &dup) {
			return fmt.Errorf("%s matches %d %s records: %s",
				dup.Key, len(dup.Candidates), dup.Backend, strings.Join(dup.Candidates, ", "))
		}
		if batch == nil {
			return err
		}

		out, err := json.MarshalIndent(batch.Matches, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		for _, w := range batch.Warnings {
			a.log.Warn(w)
		}
		for sku, ferr := range batch.Failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", sku, ferr)
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().Bool("manufacturer-sku", false, "Match on manufacturer SKU")
	resolveCmd.Flags().String("duplicate-strategy", string(resolve.PolicyFirstFound), "Duplicates: first_found, skip or error")
	RootCmd.AddCommand(resolveCmd)
}
