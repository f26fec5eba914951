package infra

import (
	"fmt"
)

// ANSI Color Codes
const (
	ColorReset  = "\033[0m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// PrintBanner displays the startup banner with the active endpoints.
func PrintBanner(cfg *Config) {
	color := ColorGreen
	walletDesc := cfg.Wallet.BridgeURL
	if walletDesc == "" {
		color = ColorYellow
		walletDesc = "none (wallet will report not found)"
	}

	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#             Ordinals Marketplace Coordinator            #%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#   VERSION: %-43s #%s\n", color, cfg.App.Version, ColorReset)
	fmt.Printf("%s#   GATEWAY: %-43s #%s\n", color, cfg.Gateway.BaseURL, ColorReset)
	fmt.Printf("%s#   WALLET:  %-43s #%s\n", color, walletDesc, ColorReset)
	fmt.Printf("%s#   API:     %-43s #%s\n", color, cfg.API.ListenAddr, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Println()
}
