package cmd

import (
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var maxBlocks int

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow newly sealed blocks over the websocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		wsURL := "ws" + strings.TrimPrefix(url, "http") + "/ws/chain"

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			return fmt.Errorf("dial %s: %w", wsURL, err)
		}
		defer conn.Close()

		out := cmd.OutOrStdout()
		for n := 0; maxBlocks == 0 || n < maxBlocks; n++ {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return nil
				}
				return err
			}

			fmt.Fprintln(out, string(msg))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().IntVarP(&maxBlocks, "count", "n", 0, "Stop after this many blocks, 0 follows forever.")
}
