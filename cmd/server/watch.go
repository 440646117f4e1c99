package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"relay/pkg/hub"
	"relay/pkg/models"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Connect as a viewer and print every pushed status update",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := hub.NewWatchClient(url)
			client.OnMessage(printUpdate(cmd.OutOrStdout(), cmd.ErrOrStderr()))
			client.OnInvalid(func(raw []byte, err error) {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipping frame %q: %v\n", raw, err)
			})

			err := client.Run(ctx)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&url, "url", "ws://localhost:3000/ws", "relay socket URL")
	return cmd
}

// printUpdate writes each notification as one JSON line to out; failures go to errOut.
func printUpdate(out, errOut io.Writer) func(models.Notification) {
	enc := json.NewEncoder(out)
	return func(n models.Notification) {
		if err := enc.Encode(n); err != nil {
			fmt.Fprintf(errOut, "print update %v: %v\n", n.Messages, err)
		}
	}
}
