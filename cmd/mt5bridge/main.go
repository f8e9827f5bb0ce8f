package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Optional .env for host/port overrides; missing file is fine.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "mt5bridge",
		Short: "Bridge an MT5 terminal into a neutral trading event stream",
	}
	root.AddCommand(newRunCmd(), newBarsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
