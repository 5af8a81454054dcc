package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/pulse/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const sessionBarWidth = 24

func (f *Formatter) Session(status domain.SessionStatus) string {
	lines := []string{f.styles.title.Render("❄️  Snowflake Session")}

	switch status.State {
	case domain.SessionDisconnected:
		lines = append(lines, f.styles.empty.Render("status: disconnected"))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	case domain.SessionExpired:
		lines = append(lines,
			f.styles.warning.Render("status: expired"),
			f.styles.detail.Render(fmt.Sprintf("expired: %s", status.Session.ExpiresAt.Format(time.RFC3339))),
		)
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	case domain.SessionDegraded:
		lines = append(lines, f.styles.warning.Render("status: skipped (mock data likely)"))
	default:
		lines = append(lines, f.styles.header.Render("status: connected"))
	}

	session := status.Session
	lines = append(lines, f.styles.detail.Render(fmt.Sprintf("method: %s", session.Method)))
	if account := session.PayloadString("account"); account != "" {
		lines = append(lines, f.styles.detail.Render(fmt.Sprintf("account: %s", account)))
	}
	if user := session.PayloadString("user"); user != "" {
		lines = append(lines, f.styles.detail.Render(fmt.Sprintf("user: %s", user)))
	}

	lines = append(lines, lipgloss.JoinHorizontal(
		lipgloss.Top,
		f.styles.header.Render("ttl:"),
		" ",
		f.renderLifetimeBar(session, status.Now),
		" ",
		f.styles.detail.Render(fmt.Sprintf("(%s)", formatExpiryRelative(session.ExpiresAt, status.Now))),
	))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (f *Formatter) renderLifetimeBar(session domain.ExternalSession, now time.Time) string {
	lifetime := session.ExpiresAt.Sub(session.ConnectedAt)
	leftFraction := 0.0
	if lifetime > 0 {
		leftFraction = session.ExpiresAt.Sub(now).Seconds() / lifetime.Seconds()
	}
	leftFraction = math.Max(0, math.Min(1, leftFraction))

	filled := int(math.Round(float64(sessionBarWidth) * leftFraction))
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		f.styles.barBracket.Render("["),
		f.styles.barFill.Render(strings.Repeat("=", filled)),
		f.styles.barEmpty.Render(strings.Repeat("-", sessionBarWidth-filled)),
		f.styles.barBracket.Render("]"),
	)
}

func formatExpiryRelative(expiresAt, now time.Time) string {
	if !expiresAt.After(now) {
		return "expires now"
	}

	remaining := expiresAt.Sub(now)
	if remaining < time.Hour {
		minutes := int(math.Ceil(remaining.Minutes()))
		suffix := "minutes"
		if minutes == 1 {
			suffix = "minute"
		}
		return fmt.Sprintf("expires in %d %s (%s)", minutes, suffix, expiresAt.Format("15:04"))
	}

	hours := int(math.Ceil(remaining.Hours()))
	suffix := "hours"
	if hours == 1 {
		suffix = "hour"
	}

	return fmt.Sprintf("expires in %d %s (%s)", hours, suffix, expiresAt.Format("15:04"))
}
