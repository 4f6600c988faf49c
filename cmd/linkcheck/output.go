package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/wellsgz/linkcheck/internal/quality"
	"github.com/wellsgz/linkcheck/internal/runner"
	"gopkg.in/yaml.v3"
)

// writeResult prints a result as json, yaml or text
func writeResult(w io.Writer, res runner.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()

	case "text", "":
		_, err := io.WriteString(w, formatText(res))
		return err

	default:
		return fmt.Errorf("unknown output format %q (want json, yaml or text)", format)
	}
}

func formatText(res runner.Result) string {
	var b strings.Builder

	speed := func(mbps float64, measured bool) string {
		if measured {
			return fmt.Sprintf("%.0f Mbps", mbps)
		}
		return fmt.Sprintf("%.0f Mbps (estimated)", mbps)
	}

	label := quality.LabelFor(res.QualityPct)
	bars := strings.Repeat("▮", res.SignalBars) + strings.Repeat("▯", 4-res.SignalBars)

	fmt.Fprintf(&b, "Ping:      %.0f ms (mean %.1f ms)\n", res.PingMs, res.PingMeanMs)
	fmt.Fprintf(&b, "Download:  %s\n", speed(res.DownloadMbps, res.DownloadMeasured))
	fmt.Fprintf(&b, "Upload:    %s\n", speed(res.UploadMbps, res.UploadMeasured))
	fmt.Fprintf(&b, "Quality:   %s %s (%d%%)\n", bars, res.Quality, res.QualityPct)
	fmt.Fprintf(&b, "           %s\n", label.Advice())
	if res.ServerHost != "" {
		fmt.Fprintf(&b, "Server:    %s\n", res.ServerHost)
	}
	if res.Provider != "" {
		fmt.Fprintf(&b, "Provider:  %s", res.Provider)
		if res.IP != "" {
			fmt.Fprintf(&b, " (%s)", res.IP)
		}
		b.WriteString("\n")
	}
	if res.EffectiveType != "" {
		fmt.Fprintf(&b, "Hint:      %s\n", res.EffectiveType)
	}
	fmt.Fprintf(&b, "Finished:  %s\n", res.Timestamp)

	return b.String()
}
