// Package cmd contains the ledgerctl commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var url string

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:3000", "Url of the node.")
}

var rootCmd = &cobra.Command{
	Use:          "ledgerctl",
	Short:        "Operator tooling for a ledger node",
	SilenceUsage: true,
}

// Execute runs the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// decodeResponse reads a node response into v. A status outside of 2xx is
// reported with the message the node returned.
func decodeResponse(resp *http.Response, v any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var nok struct {
			Message string            `json:"message"`
			Fields  map[string]string `json:"fields"`
		}
		if err := json.Unmarshal(body, &nok); err != nil || nok.Message == "" {
			return fmt.Errorf("node returned %s", resp.Status)
		}
		if len(nok.Fields) > 0 {
			return fmt.Errorf("node returned %s: %s: %v", resp.Status, nok.Message, nok.Fields)
		}
		return fmt.Errorf("node returned %s: %s", resp.Status, nok.Message)
	}

	return json.Unmarshal(body, v)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}
