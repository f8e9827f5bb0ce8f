package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/mt5bridge/event"
	"github.com/rustyeddy/mt5bridge/market"
	"github.com/rustyeddy/mt5bridge/mt5"
	"github.com/rustyeddy/mt5bridge/transport"
)

func newBarsCmd() *cobra.Command {
	var (
		cfgPath  string
		symbol   string
		interval string
		start    string
		end      string
	)

	cmd := &cobra.Command{
		Use:   "bars",
		Short: "Fetch history bars and print them as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}

			iv, ok := market.ParseInterval(interval)
			if !ok {
				return fmt.Errorf("unknown interval %q (use 1m, 1h or 1d)", interval)
			}
			from, err := time.Parse(time.RFC3339, start)
			if err != nil {
				return fmt.Errorf("parse start: %w", err)
			}
			to, err := time.Parse(time.RFC3339, end)
			if err != nil {
				return fmt.Errorf("parse end: %w", err)
			}

			log, err := newLogger("warn")
			if err != nil {
				return err
			}
			defer log.Sync()

			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			conn, err := transport.Dial(cmd.Context(), cfg.ReqAddr(), cfg.SubAddr(), log)
			if err != nil {
				return err
			}

			g := mt5.New(conn, event.Nop{}, loc, log)
			defer g.Close()

			bars, err := g.QueryHistory(market.HistoryRequest{
				Symbol:   symbol,
				Interval: iv,
				Start:    from,
				End:      to,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, "time,open,high,low,close,volume")
			for _, b := range bars {
				fmt.Fprintf(os.Stdout, "%s,%g,%g,%g,%g,%g\n",
					b.Time.Format(time.RFC3339), b.Open, b.High, b.Low, b.Close, b.Volume)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to YAML/JSON config")
	cmd.Flags().StringVar(&symbol, "symbol", "EURUSD", "symbol to query")
	cmd.Flags().StringVar(&interval, "interval", "1h", "bar interval: 1m, 1h or 1d")
	cmd.Flags().StringVar(&start, "start", "", "range start, RFC3339")
	cmd.Flags().StringVar(&end, "end", "", "range end, RFC3339")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
	return cmd
}
