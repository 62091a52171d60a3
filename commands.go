package main

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"wallet-connect-tui/rpc"
	"wallet-connect-tui/styles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// -------------------- COMMAND FUNCTIONS --------------------
// Functions that return tea.Cmd for async operations

// dialProvider connects to the provider endpoint
func dialProvider(url string, logger *log.Logger) tea.Cmd {
	return func() tea.Msg {
		result := rpc.Connect(url, logger)
		return providerDialedMsg{url: url, provider: result.Provider, err: result.Error}
	}
}

// watchProvider runs the provider's event loop until ctx is cancelled
func watchProvider(ctx context.Context, p *rpc.Provider, interval time.Duration) tea.Cmd {
	return func() tea.Msg {
		p.Watch(ctx, interval)
		if ctx.Err() != nil {
			return nil
		}
		return watchStoppedMsg{url: p.URL}
	}
}

// initLogViewport initializes the log viewport
func initLogViewport() tea.Cmd {
	return func() tea.Msg {
		return logInitMsg{}
	}
}

// -------------------- LOGGING --------------------

// maxLogBytes bounds the log buffer. Older lines are dropped first.
const maxLogBytes = 64 << 10

// logBuffer is the log sink shown in the log panel. The logger writes to it
// from command goroutines while View reads it.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, err := b.buf.Write(p)
	if b.buf.Len() > maxLogBytes {
		data := b.buf.Bytes()
		cut := len(data) - maxLogBytes/2
		if i := bytes.IndexByte(data[cut:], '\n'); i >= 0 {
			cut += i + 1
		}
		rest := append([]byte(nil), data[cut:]...)
		b.buf.Reset()
		b.buf.Write(rest)
	}
	return n, err
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *logBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// newLogger creates the styled logger that writes into w
func newLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "",
	})
	logger.SetLevel(log.DebugLevel)
	logger.SetStyles(&log.Styles{
		Timestamp: lipgloss.NewStyle().Foreground(styles.CMuted),
		Caller:    lipgloss.NewStyle().Faint(true),
		Prefix:    lipgloss.NewStyle().Bold(true).Foreground(styles.CAccent2),
		Message:   lipgloss.NewStyle().Foreground(styles.CText),
		Key:       lipgloss.NewStyle().Foreground(styles.CAccent),
		Value:     lipgloss.NewStyle().Foreground(styles.CText),
		Separator: lipgloss.NewStyle().Faint(true),
		Levels: map[log.Level]lipgloss.Style{
			log.DebugLevel: lipgloss.NewStyle().Foreground(styles.CMuted).SetString("DEBUG"),
			log.InfoLevel:  lipgloss.NewStyle().Foreground(styles.CAccent2).SetString("INFO"),
			log.WarnLevel:  lipgloss.NewStyle().Foreground(styles.CWarn).SetString("WARN"),
			log.ErrorLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).SetString("ERROR"),
		},
	})
	return logger
}

// -------------------- MODEL HELPER METHODS --------------------

// addLog adds a log entry with timestamp and type
func (m *model) addLog(logType, message string, keyvals ...any) {
	switch logType {
	case "success":
		m.logger.Info("✓ "+message, keyvals...)
	case "error":
		m.logger.Error(message, keyvals...)
	case "warning":
		m.logger.Warn(message, keyvals...)
	case "debug":
		m.logger.Debug(message, keyvals...)
	default:
		m.logger.Info(message, keyvals...)
	}

	m.updateLogViewport()
}

// updateLogViewport refreshes the viewport content with log output
func (m *model) updateLogViewport() {
	if !m.logEnabled || !m.logReady {
		return
	}

	content := m.logBuffer.String()
	atBottom := m.logViewport.AtBottom()
	m.logViewport.SetContent(content)
	// Follow new entries unless the user scrolled up
	if atBottom {
		m.logViewport.GotoBottom()
	}
}
