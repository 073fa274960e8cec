package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the identity cache",
}

// cacheInfoCmd prints cache statistics
var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show identity cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		resolver, err := a.openResolver(cmd.Context(), 0)
		if err != nil {
			return err
		}

		s := resolver.Stats()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "\n--- Identity Cache ---")
		fmt.Fprintf(out, "Location:       %s\n", resolver.Location())
		fmt.Fprintf(out, "Total entries:  %d\n", s.Total)
		fmt.Fprintln(out, "----------------------")
		fmt.Fprintf(out, "Retail matches: %d\n", s.Retail)
		fmt.Fprintf(out, "eCom matches:   %d\n", s.Ecom)
		fmt.Fprintf(out, "Both:           %d\n", s.Both)
		fmt.Fprintf(out, "Retail only:    %d\n", s.RetailOnly)
		fmt.Fprintf(out, "eCom only:      %d\n", s.EcomOnly)
		fmt.Fprintf(out, "No match:       %d\n", s.None)
		return nil
	},
}

// cacheClearCmd removes the persisted cache
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached match",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		resolver, err := a.openResolver(cmd.Context(), 0)
		if err != nil {
			return err
		}
		return resolver.Clear(cmd.Context())
	},
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	RootCmd.AddCommand(cacheCmd)
}
