package report

import (
	"fmt"
	"strings"

	"github.com/seenimoa/newspulse/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width      int    // SVG width in pixels (default: 480)
	Height     int    // SVG height in pixels (default: 160)
	LabelWidth int    // space reserved for bar labels (default: 90)
	BgColor    string // background color (default: "#ffffff")
	TextColor  string // label color (default: "#333333")
	FontSize   int    // label font size (default: 12)
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      480,
		Height:     160,
		LabelWidth: 90,
		BgColor:    "#ffffff",
		TextColor:  "#333333",
		FontSize:   12,
	}
}

// sentimentColors maps each label to its bar color.
var sentimentColors = map[models.Sentiment]string{
	models.SentimentPositive: "#16a34a",
	models.SentimentNegative: "#dc2626",
	models.SentimentNeutral:  "#6b7280",
}

// DistributionChart draws one horizontal bar per sentiment label, scaled to
// the largest count.
func DistributionChart(d models.SentimentDistribution, cfg ChartConfig) string {
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if d.Total() == 0 {
		return emptySVG(cfg, "No articles")
	}

	labels := models.Sentiments()
	maxVal := 0
	for _, s := range labels {
		if n := d.Count(s); n > maxVal {
			maxVal = n
		}
	}

	plotW := float64(cfg.Width - cfg.LabelWidth - 40)
	rowH := float64(cfg.Height) / float64(len(labels))
	barH := rowH * 0.6

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))

	for i, s := range labels {
		n := d.Count(s)
		y := float64(i)*rowH + (rowH-barH)/2
		w := float64(n) / float64(maxVal) * plotW

		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			cfg.LabelWidth-8, y+barH/2+4, cfg.FontSize, cfg.TextColor, escapeXML(string(s))))
		sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="2"/>`,
			cfg.LabelWidth, y, w, barH, sentimentColors[s]))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="%d" fill="%s">%d</text>`,
			float64(cfg.LabelWidth)+w+6, y+barH/2+4, cfg.FontSize, cfg.TextColor, n))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
