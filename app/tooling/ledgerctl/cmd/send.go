package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	from   string
	to     string
	amount float64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Submit a transaction to the node",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := struct {
			Amount float64 `json:"amount"`
			From   string  `json:"from"`
			To     string  `json:"to"`
		}{
			Amount: amount,
			From:   from,
			To:     to,
		}

		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}

		resp, err := http.Post(fmt.Sprintf("%s/api/new_transaction", url), "application/json", bytes.NewBuffer(data))
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		var status struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		if err := decodeResponse(resp, &status); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), status.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&from, "from", "f", "", "Sending party.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Receiving party.")
	sendCmd.Flags().Float64VarP(&amount, "amount", "a", 0, "Amount to send.")
	sendCmd.MarkFlagRequired("from")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}
