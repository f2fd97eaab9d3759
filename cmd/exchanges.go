package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/smartie/internal/exchange"
)

var (
	exchangesOutcome string
	exchangesLimit   int
	pruneOlderThan   time.Duration
)

var exchangesCmd = &cobra.Command{
	Use:   "exchanges",
	Short: "List recent answer requests from the exchange log",
	Long:  `Lists the outcome of recent answer requests. Question and answer texts are never stored, only whether a request was answered or failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, store, err := openExchangeLog(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		list, err := store.Query(cmd.Context(), exchange.QueryFilter{
			Outcome: exchange.Outcome(exchangesOutcome),
			Limit:   exchangesLimit,
		})
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No exchanges recorded.")
			return nil
		}

		for _, ex := range list {
			line := fmt.Sprintf("%s  %-8s  %6dms  session=%s", ex.Timestamp.Format(time.DateTime), ex.Outcome, ex.DurationMS, ex.SessionID)
			if ex.Status != 0 {
				line += fmt.Sprintf("  status=%d", ex.Status)
			}
			if ex.Detail != "" {
				line += "  " + ex.Detail
			}
			fmt.Println(line)
		}
		return nil
	},
}

var exchangesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show answered and failed counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, store, err := openExchangeLog(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		st, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		total := st.Answered + st.Failed
		fmt.Printf("Answered: %d\n", st.Answered)
		fmt.Printf("Failed:   %d\n", st.Failed)
		if total > 0 {
			fmt.Printf("Success:  %.1f%%\n", float64(st.Answered)*100/float64(total))
		}
		return nil
	},
}

var exchangesPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete exchanges older than the given age",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, store, err := openExchangeLog(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		n, err := store.DeleteBefore(cmd.Context(), time.Now().Add(-pruneOlderThan))
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d exchanges.\n", n)
		return nil
	},
}

func init() {
	exchangesCmd.Flags().StringVar(&exchangesOutcome, "outcome", "", "filter by outcome (answered or failed)")
	exchangesCmd.Flags().IntVar(&exchangesLimit, "limit", 20, "maximum number of exchanges to list")
	exchangesPruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 30*24*time.Hour, "age of exchanges to delete")
	exchangesCmd.AddCommand(exchangesStatsCmd, exchangesPruneCmd)
	rootCmd.AddCommand(exchangesCmd)
}
