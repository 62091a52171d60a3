package main

import (
	"fmt"
	"os"

	"wallet-connect-tui/config"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// -------------------- MAIN --------------------

var (
	configPath  string
	rpcURL      string
	pollSeconds int
)

var rootCmd = &cobra.Command{
	Use:   "wallet-connect",
	Short: "Connect a wallet provider from the terminal",
	Long: `wallet-connect connects to an Ethereum wallet provider over JSON-RPC,
shows the selected account, its network and balance, and keeps them in sync
as the wallet switches accounts or chains.

Example:
  wallet-connect --rpc http://127.0.0.1:8545
  ETH_RPC_URL=ws://localhost:8546 wallet-connect --poll 2`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.LoadOrCreate(configPath)
		cfg.ApplyEnv()
		if rpcURL != "" {
			cfg.SetActive("", rpcURL)
		}
		if cmd.Flags().Changed("poll") {
			cfg.PollSeconds = pollSeconds
		}

		m := newModel(cfg, configPath)
		defer m.shutdown()

		p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", config.DefaultPath(), "path to the config file")
	rootCmd.Flags().StringVar(&rpcURL, "rpc", "", "provider endpoint (http, https, ws, wss or ipc path)")
	rootCmd.Flags().IntVar(&pollSeconds, "poll", config.DefaultPollSeconds, "seconds between provider polls")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}
