package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "taengine",
	Short: "taengine - TradingView-compatible technical indicator engine",
	Long: `taengine computes TradingView-compatible indicators (SMA, EMA, RMA, RSI,
STDEV, Bollinger Bands, true range and ATR) over exchange candle data.
It prints them from the command line, draws them as HTML charts and serves
them over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
