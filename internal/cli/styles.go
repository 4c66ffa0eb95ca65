package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"

	"perfreview/internal/domain/scoring"
)

type printStyles struct {
	header lipgloss.Style
	label  lipgloss.Style
	good   lipgloss.Style
	warn   lipgloss.Style
	bad    lipgloss.Style
	dim    lipgloss.Style
}

func newPrintStyles(v *viper.Viper) printStyles {
	if v.GetBool("no-color") {
		plain := lipgloss.NewStyle()
		return printStyles{header: plain, label: plain, good: plain, warn: plain, bad: plain, dim: plain}
	}
	return printStyles{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:  lipgloss.NewStyle().Bold(true),
		good:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		bad:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (s printStyles) rating(r scoring.Rating) string {
	switch {
	case r.BucketIndex >= 3:
		return s.good.Render(r.Label)
	case r.BucketIndex == 2:
		return s.warn.Render(r.Label)
	default:
		return s.bad.Render(r.Label)
	}
}
