package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scrubarr/internal/daemonrun"
	"scrubarr/internal/logging"
	"scrubarr/internal/services"
)

func newPingCommand(ctx *commandContext) *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to each Sonarr instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			clients, err := daemonrun.Clients(cfg, logging.NewNop())
			if err != nil {
				return err
			}
			clients, err = selectClients(clients, index)
			if err != nil {
				return err
			}

			headers := []string{"Instance", "Status", "Version", "Latency"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}
			rows := make([][]string, 0, len(clients))
			var errs []error
			for _, client := range clients {
				started := time.Now()
				status, err := client.SystemStatus(cmd.Context())
				latency := time.Since(started).Round(time.Millisecond).String()
				if err != nil {
					errs = append(errs, err)
					rows = append(rows, []string{client.Name(), "error: " + services.Kind(err), "-", latency})
					continue
				}
				rows = append(rows, []string{client.Name(), "ok", fmt.Sprintf("%s %s", status.AppName, status.Version), latency})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
			return errors.Join(errs...)
		},
	}

	cmd.Flags().IntVarP(&index, "instance", "i", 0, "Only ping the sonarr instance with this index")
	return cmd
}
