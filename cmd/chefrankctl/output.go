package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MikeSquared-Agency/ChefRank/internal/ranking"
	"github.com/MikeSquared-Agency/ChefRank/internal/scoring"
	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	upStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	downStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderRanking(w io.Writer, res *ranking.Result, top int) error {
	chefs := res.Chefs
	if top > 0 && len(chefs) > top {
		chefs = chefs[:top]
	}
	if outputFormat == "json" {
		return writeJSON(w, chefs)
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%4s  %-28s %7s  %6s %6s %6s %6s",
		"RANK", "CHEF", "TOTAL", "ACCOL", "CAREER", "SIGNAL", "PEER")))
	for _, c := range chefs {
		fmt.Fprintf(w, "%4d  %-28s %7.1f  %6.1f %6.1f %6.1f %6.1f\n",
			c.Rank, truncate(c.Name, 28), c.TotalScore,
			c.Breakdown.FormalAccolades, c.Breakdown.CareerTrack,
			c.Breakdown.PublicSignals, c.Breakdown.PeerStanding)
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d of %d chefs, computed %s",
		len(chefs), len(res.Chefs), res.ComputedAt.Format("2006-01-02 15:04 MST"))))
	return nil
}

func renderWeights(w io.Writer, ws scoring.WeightSet) error {
	if outputFormat == "json" {
		return writeJSON(w, map[string]interface{}{
			"weights":  ws,
			"sum":      ws.Sum(),
			"warnings": ws.Warnings(),
		})
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-16s %7s", "CATEGORY", "WEIGHT")))
	for _, c := range scoring.Categories {
		v, _ := ws.Get(c)
		fmt.Fprintf(w, "%-16s %7.3f\n", c, v)
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%-16s %7.3f", "sum", ws.Sum())))
	for _, warning := range ws.Warnings() {
		fmt.Fprintln(w, warnStyle.Render("warning: "+warning))
	}
	return nil
}

func renderSnapshotResult(w io.Writer, res *ranking.SnapshotResult) error {
	if outputFormat == "json" {
		return writeJSON(w, res)
	}
	verb := "published"
	if res.Republished {
		verb = "republished"
	}
	prior := "none"
	if res.PriorMonth != "" {
		prior = res.PriorMonth
	}
	fmt.Fprintf(w, "%s snapshot %s with %d entries (deltas against %s)\n", verb, res.Month, res.Entries, prior)
	return nil
}

func renderSnapshots(w io.Writer, snaps []*store.MonthlySnapshot) error {
	if outputFormat == "json" {
		if snaps == nil {
			snaps = []*store.MonthlySnapshot{}
		}
		return writeJSON(w, snaps)
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-8s  %-20s  %s", "MONTH", "PUBLISHED", "NOTES")))
	for _, s := range snaps {
		published := "-"
		if s.PublishedAt != nil {
			published = s.PublishedAt.UTC().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-8s  %-20s  %s\n", s.Month, published, truncate(s.Notes, 50))
	}
	return nil
}

func renderSnapshotEntries(w io.Writer, snap *store.MonthlySnapshot) error {
	if outputFormat == "json" {
		return writeJSON(w, snap)
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s  %d entries", snap.Month, len(snap.Entries))))
	for _, e := range snap.Entries {
		fmt.Fprintf(w, "%4d  %s  %7.1f  %s\n", e.Rank, e.ChefID, e.TotalScore, formatDelta(e.Delta))
	}
	return nil
}

// formatDelta renders a rank movement; positive means the chef climbed.
func formatDelta(d *int) string {
	switch {
	case d == nil:
		return dimStyle.Render("new")
	case *d > 0:
		return upStyle.Render(fmt.Sprintf("+%d", *d))
	case *d < 0:
		return downStyle.Render(fmt.Sprintf("%d", *d))
	default:
		return dimStyle.Render("=")
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
