package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"btclassic/internal/router"
	"btclassic/pkg/logging"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.view.Kind {
	case router.ConnectionView:
		body = m.renderConnection(m.view.Connection)
		body += "\n" + m.help.View(connectionKeys(m.keys))
	default:
		body = m.renderSelection(m.view.Selection)
		body += "\n" + m.help.View(selectionKeys(m.keys))
	}

	if line := m.renderLog(); line != "" {
		body += "\n" + line
	}
	return body + "\n"
}

func (m *Model) renderHeader(enabled bool) string {
	status := enabledStyle.Render("enabled")
	if !enabled {
		status = disabledStyle.Render("disabled")
	}
	return titleStyle.Render("Bluetooth Classic") + "  adapter: " + status
}

func (m *Model) renderSelection(props *router.SelectionProps) string {
	var b strings.Builder
	b.WriteString(m.renderHeader(props.AdapterEnabled))
	b.WriteString("\n\n")

	if !props.AdapterEnabled {
		b.WriteString(disabledStyle.Render("Bluetooth is turned off. Enable the adapter to select a device."))
		b.WriteString("\n")
	}

	switch {
	case m.scanning:
		b.WriteString(m.spinner.View() + " Scanning for SPP devices...\n")
	case m.scanErr != nil:
		b.WriteString(errorStyle.Render("Scan failed: "+m.scanErr.Error()) + "\n")
	case len(m.devices) == 0:
		b.WriteString(dimStyle.Render("No SPP devices found.") + "\n")
	}

	for i := range m.devices {
		d := &m.devices[i]
		line := fmt.Sprintf("%s  %s", d.DisplayName(), dimStyle.Render(d.Address))
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderConnection(props *router.ConnectionProps) string {
	d := props.Device
	var rows []string
	rows = append(rows, titleStyle.Render(d.DisplayName()))
	if d.Address != "" {
		rows = append(rows, "Address: "+d.Address)
	}
	if d.Name != "" && d.Name != d.DisplayName() {
		rows = append(rows, "Name:    "+d.Name)
	}
	if d.ServiceName != "" {
		rows = append(rows, "Service: "+d.ServiceName)
	}
	rows = append(rows, dimStyle.Render(d.ID))

	return m.renderHeader(m.snap.Enabled) + "\n\n" + panelStyle.Render(strings.Join(rows, "\n")) + "\n"
}

func (m *Model) renderLog() string {
	if m.lastLog == nil {
		return ""
	}
	e := m.lastLog
	line := fmt.Sprintf("[%s] %s: %s", e.Level, e.Subsystem, e.Message)
	if e.Err != nil {
		line += ": " + e.Err.Error()
	}
	if e.Level >= logging.LevelWarn {
		return errorStyle.Render(line)
	}
	return dimStyle.Render(line)
}
