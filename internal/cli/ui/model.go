// Package ui is the cmd/cli "tui" subcommand's bubbletea dashboard: live
// key-depth/battery/profile events from the driver's event stream, plus a
// host CPU/mem status bar alongside the keyboard's own battery reading.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	psutilcpu "github.com/shirou/gopsutil/v3/cpu"
	psutilmem "github.com/shirou/gopsutil/v3/mem"

	"monsgeek-hid/internal/driver/host"
	"monsgeek-hid/internal/driver/rpc"
)

const historySize = 12

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type statsMsg struct {
	cpuPercent float64
	memPercent float64
}

type eventMsg *rpc.VendorEventMessage

type connErrMsg struct{ err error }

// Model is the bubbletea model driving the dashboard.
type Model struct {
	bridge *host.Bridge

	transport string
	profile   byte
	connected bool

	history []*rpc.VendorEventMessage
	lastErr error

	cpuPercent float64
	memPercent float64

	eventCh chan *rpc.VendorEventMessage
	quit    bool
}

// NewModel connects to the driver at addr and returns a ready-to-run model.
func NewModel(addr string) (Model, error) {
	bridge, err := host.Dial(addr)
	if err != nil {
		return Model{}, fmt.Errorf("connect to driver: %w", err)
	}

	m := Model{
		bridge:  bridge,
		eventCh: make(chan *rpc.VendorEventMessage, 64),
	}

	ctx := context.Background()
	if info, err := bridge.GetDeviceInfo(ctx); err == nil {
		m.transport = info.Transport
		m.connected = info.Connected
	}
	if state, err := bridge.GetState(ctx); err == nil {
		m.profile = state.Profile
	}

	go func() {
		_ = bridge.StreamEvents(context.Background(), m.eventCh)
	}()

	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(pollStats(), waitForEvent(m.eventCh))
}

func pollStats() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		cpuPct := 0.0
		if pcts, err := psutilcpu.Percent(0, false); err == nil && len(pcts) > 0 {
			cpuPct = pcts[0]
		}
		memPct := 0.0
		if vm, err := psutilmem.VirtualMemory(); err == nil {
			memPct = vm.UsedPercent
		}
		return statsMsg{cpuPercent: cpuPct, memPercent: memPct}
	})
}

func waitForEvent(ch chan *rpc.VendorEventMessage) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return connErrMsg{err: fmt.Errorf("event stream closed")}
		}
		return eventMsg(ev)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		case "c":
			if len(m.history) > 0 {
				_ = clipboard.WriteAll(m.history[len(m.history)-1].Kind)
			}
			return m, nil
		}
	case statsMsg:
		m.cpuPercent = msg.cpuPercent
		m.memPercent = msg.memPercent
		return m, pollStats()
	case eventMsg:
		m.history = append(m.history, msg)
		if len(m.history) > historySize {
			m.history = m.history[len(m.history)-historySize:]
		}
		if msg.Kind == "ProfileChange" {
			m.profile = msg.Profile
		}
		return m, waitForEvent(m.eventCh)
	case connErrMsg:
		m.lastErr = msg.err
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.quit {
		return ""
	}

	status := fmt.Sprintf("transport=%s profile=%d connected=%v", m.transport, m.profile, m.connected)
	header := headerStyle.Render("monsgeek keyboard monitor") + "  " + dimStyle.Render(status)

	var lines string
	for _, ev := range m.history {
		lines += formatEvent(ev) + "\n"
	}
	eventsBox := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, "events", dimStyle.Render(lines)))

	sysLine := fmt.Sprintf("cpu %.1f%%  mem %.1f%%", m.cpuPercent, m.memPercent)
	sysBox := boxStyle.Render(sysLine)

	footer := dimStyle.Render("q: quit   c: copy last event")
	if m.lastErr != nil {
		footer = errStyle.Render(m.lastErr.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, eventsBox, sysBox, footer)
}

func formatEvent(ev *rpc.VendorEventMessage) string {
	switch ev.Kind {
	case "KeyDepth":
		return fmt.Sprintf("key=%d depth=%d", ev.KeyIndex, ev.Depth)
	case "BatteryStatus":
		return fmt.Sprintf("battery=%d%% charging=%v online=%v", ev.BatteryLevel, ev.BatteryCharging, ev.BatteryOnline)
	case "ProfileChange":
		return fmt.Sprintf("profile -> %d", ev.Profile)
	default:
		return ev.Kind
	}
}
