package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	page     int
	pageSize int
)

// chainCmd represents the chain command
var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Query a page of the chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(fmt.Sprintf("%s/api/chain?page=%d&page_size=%d", url, page, pageSize))
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		var result struct {
			Count    int               `json:"count"`
			Page     int               `json:"page"`
			PageSize int               `json:"page_size"`
			Chain    []json.RawMessage `json:"chain"`
		}
		if err := decodeResponse(resp, &result); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "blocks: %d  page: %d  page_size: %d\n", result.Count, result.Page, result.PageSize)
		for _, block := range result.Chain {
			if err := printJSON(out, block); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(chainCmd)
	chainCmd.Flags().IntVarP(&page, "page", "p", 1, "Page to return, starting at 1.")
	chainCmd.Flags().IntVarP(&pageSize, "page-size", "s", 50, "Number of blocks per page.")
}
