package wallet

import (
	"fmt"
	"strings"
	"time"

	"wallet-connect-tui/helpers"
	"wallet-connect-tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/mdp/qrterminal/v3"
)

// Panel is everything the wallet panel shows
type Panel struct {
	Endpoint     string
	Available    bool
	Connected    bool
	Loading      bool
	Address      string
	ShortAddress string
	ChainID      string
	NetworkName  string
	Badge        string
	Balance      string
	BalanceAt    time.Time
	Message      string
	Spinner      string
}

// Nav returns the navigation bar for the wallet view
func Nav(width int, connected, showQR bool) string {
	var keys []string
	if connected {
		keys = append(keys,
			styles.Key("y")+" copy address",
			styles.Key("d")+" disconnect",
			styles.Key("b")+" refresh balance",
		)
		if showQR {
			keys = append(keys, styles.Key("r")+" hide QR")
		} else {
			keys = append(keys, styles.Key("r")+" receive QR")
		}
	} else {
		keys = append(keys, styles.Key("c")+" connect")
	}
	keys = append(keys,
		styles.Key("e")+" endpoints",
		styles.Key("l")+" logger",
		styles.Key("q")+" quit",
	)

	return styles.NavStyle.Width(width).Render(strings.Join(keys, "   "))
}

// Render renders the wallet connection panel
func Render(p Panel) string {
	h := styles.TitleStyle.Render("Wallet")
	muted := lipgloss.NewStyle().Foreground(styles.CMuted)

	endpoint := muted.Render("No provider configured. Press ") + styles.Key("e") + muted.Render(" to set an RPC endpoint.")
	if p.Endpoint != "" {
		state := lipgloss.NewStyle().Foreground(styles.CAccent).Render("●")
		if !p.Available {
			state = lipgloss.NewStyle().Foreground(styles.CWarn).Render("●")
		}
		endpoint = state + " " + muted.Render(p.Endpoint)
	}

	lines := []string{h, endpoint, ""}

	switch {
	case p.Loading:
		lines = append(lines, p.Spinner+" waiting for the wallet to approve the connection…")
	case !p.Connected:
		lines = append(lines, muted.Render("Not connected. Press ")+styles.Key("c")+muted.Render(" to connect your wallet."))
	default:
		addr := helpers.FadeString(p.ShortAddress, "#F25D94", "#EDFF82")
		full := lipgloss.NewStyle().Foreground(styles.CMuted).Underline(true).Render(p.Address)
		lines = append(lines, addr+"  "+full)

		network := styles.Badge(p.Badge, "unknown network")
		if p.NetworkName != "" {
			network = styles.Badge(p.Badge, p.NetworkName) + " " + muted.Render(p.ChainID)
		}
		lines = append(lines, "", network)

		balance := p.Balance
		if balance == "" {
			balance = "…"
		}
		lines = append(lines, "", fmt.Sprintf("%s  %s  %s",
			lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Render("Balance"),
			lipgloss.NewStyle().Foreground(styles.CText).Render(balance+" ETH"),
			muted.Render("updated "+helpers.LoadedAt(p.BalanceAt, false)),
		))
	}

	if p.Message != "" {
		color := styles.CWarn
		if strings.HasPrefix(p.Message, "✓") {
			color = styles.CAccent
		}
		lines = append(lines, "", lipgloss.NewStyle().Foreground(color).Render(p.Message))
	}

	return strings.Join(lines, "\n")
}

// RenderQR renders an EIP-681 payment QR for the connected address
func RenderQR(address, chainID string) string {
	uri := helpers.PaymentURI(address, chainID)

	var b strings.Builder
	qrterminal.GenerateWithConfig(uri, qrterminal.Config{
		Level:          qrterminal.L,
		Writer:         &b,
		QuietZone:      1,
		HalfBlocks:     true,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
	})

	title := styles.TitleStyle.Render("Receive")
	caption := lipgloss.NewStyle().Foreground(styles.CMuted).Render(uri)
	return title + "\n\n" + b.String() + "\n" + caption
}
