package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/modoterra/catlog/pkg/core"
	"github.com/modoterra/catlog/pkg/pidcache"
)

var psJSON bool

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "Print the process table the viewer would use for names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, closer, err := setup(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closer.Close()

		src, err := processSource(cfg, logger)
		if err != nil {
			return err
		}
		cache := pidcache.New(src, pidcache.Options{Enabled: true}, logger)
		if _, err := cache.Refresh(cmd.Context()); err != nil {
			return err
		}
		records := cache.Snapshot()

		out := cmd.OutOrStdout()
		if psJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if records == nil {
				records = []core.ProcessRecord{}
			}
			return enc.Encode(records)
		}

		if len(records) == 0 {
			fmt.Fprintln(out, "no processes")
			return nil
		}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{
				strconv.FormatUint(uint64(r.PID), 10),
				strconv.FormatUint(uint64(r.PPID), 10),
				r.User,
				strconv.FormatUint(r.RSS, 10),
				r.PC,
				r.Name,
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"PID", "PPID", "USER", "RSS", "S", "NAME"},
			rows,
			[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignLeft, alignLeft},
		))
		return nil
	},
}

func init() {
	psCmd.Flags().BoolVar(&psJSON, "json", false, "output as JSON")
}
