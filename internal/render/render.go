// Package render formats consensus responses for terminals.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/Harshitk-cp/concord/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	headerBox    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#5B8DEF")).Padding(0, 1)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CCCCCC"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
)

// Summary writes a human-readable report of resp. Orchestrate-only
// responses (no consensus yet) render the agent table alone.
func Summary(w io.Writer, resp *domain.ConsensusResponse) error {
	var b strings.Builder

	header := []string{titleStyle.Render("concord " + resp.Domain)}
	if resp.Consensus != nil {
		c := resp.Consensus
		header = append(header, fmt.Sprintf("%s  %s  method=%s",
			verdictStyle(c).Render(string(c.Verdict)),
			fmt.Sprintf("confidence=%.2f", c.Confidence),
			c.Method))
		var flags []string
		if c.EscalationTriggers > 0 {
			flags = append(flags, fmt.Sprintf("escalated by %d agent(s)", c.EscalationTriggers))
		}
		if c.QuorumPenalty {
			flags = append(flags, "quorum penalty")
		}
		if resp.Cancelled {
			flags = append(flags, "cancelled")
		}
		if len(flags) > 0 {
			header = append(header, warnStyle.Render(strings.Join(flags, ", ")))
		}
	}
	if resp.RunID != "" {
		header = append(header, mutedStyle.Render("run "+resp.RunID))
	}
	b.WriteString(headerBox.Render(lipgloss.JoinVertical(lipgloss.Left, header...)))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Agents"))
	b.WriteString("\n")
	for _, r := range resp.AgentResults {
		if !r.Valid() {
			fmt.Fprintf(&b, "  %-16s %s %s\n", r.AgentID, badStyle.Render("ERROR"), mutedStyle.Render(r.Error))
			continue
		}
		fmt.Fprintf(&b, "  %-16s %s %.2f %s\n", r.AgentID, string(r.Verdict), r.Confidence,
			mutedStyle.Render(fmt.Sprintf("(%s, %dms)", r.Provider, r.DurationMS)))
	}

	if resp.Consensus != nil && len(resp.Consensus.AgentVerdicts) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Perspectives"))
		b.WriteString("\n")
		for _, v := range resp.Consensus.AgentVerdicts {
			fmt.Fprintf(&b, "  %-16s %s %.2f\n", v.AgentID, v.Verdict, v.Confidence)
		}
	}

	if am := resp.AgreementMap; am != nil {
		writeClusters(&b, "Agreed", goodStyle, am.Agreed)
		writeClusters(&b, "Disputed", warnStyle, am.Disputed)
		writeClusters(&b, "Unique", mutedStyle, am.Unique)
	}

	if s := resp.Statistics; s != nil {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf(
			"%d agents, %d valid, %d errored, %d findings in %d clusters",
			s.TotalAgents, s.ValidVotes, s.ErrorAgents, s.TotalFindings, s.FindingClusters)))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeClusters(b *strings.Builder, title string, style lipgloss.Style, clusters []domain.FindingCluster) {
	if len(clusters) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(style.Render(fmt.Sprintf("%s (%d)", title, len(clusters))))
	b.WriteString("\n")
	for _, c := range clusters {
		fmt.Fprintf(b, "  - %s %s\n", c.CanonicalText,
			mutedStyle.Render(fmt.Sprintf("[%s]", strings.Join(c.AgentIDs(), ", "))))
	}
}

func verdictStyle(c *domain.ConsensusResult) lipgloss.Style {
	switch {
	case c.Verdict == domain.VerdictNoConsensus:
		return badStyle
	case c.Verdict == domain.VerdictNoForcedConsensus, c.EscalationTriggers > 0:
		return warnStyle
	default:
		return goodStyle
	}
}
