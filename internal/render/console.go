package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/thoughtline/thoughtline/internal/domain"
)

var stageColors = map[domain.Stage]lipgloss.Color{
	domain.StageProblemDefinition: lipgloss.Color("12"), // blue
	domain.StageAbstraction:       lipgloss.Color("12"),
	domain.StageConstraints:       lipgloss.Color("11"), // yellow
	domain.StageModel:             lipgloss.Color("13"), // magenta
	domain.StageProof:             lipgloss.Color("10"), // green
	domain.StageImplementation:    lipgloss.Color("14"), // cyan
}

// Console renders accepted thoughts for a human watching the process.
// It is a downstream consumer of the Summary, strictly outside the core:
// nothing here can affect whether a thought was accepted.
type Console struct {
	out io.Writer
	box lipgloss.Style
}

func NewConsole(out io.Writer) *Console {
	return &Console{
		out: out,
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(72),
	}
}

// RenderThought writes one accepted thought as a bordered block with a
// stage-colored header.
func (c *Console) RenderThought(th *domain.Thought, sum *domain.Summary) error {
	header := fmt.Sprintf("Thought %d/%d [%s]", sum.SequenceNumber, sum.EstimatedTotal, th.Stage)
	if sum.IsRevision {
		header += fmt.Sprintf("  (revises #%d)", sum.RevisionTarget)
	}

	headerStyle := lipgloss.NewStyle().Bold(true)
	if color, ok := stageColors[th.Stage]; ok {
		headerStyle = headerStyle.Foreground(color)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(th.Text)

	if len(th.Assumptions) > 0 {
		b.WriteString("\n\nAssumptions:")
		for _, a := range th.Assumptions {
			b.WriteString("\n  - " + a)
		}
	}

	if len(th.DependsOn) > 0 {
		b.WriteString(fmt.Sprintf("\n\nDepends on: %v", th.DependsOn))
	}

	if th.RecheckRequest != nil {
		b.WriteString(fmt.Sprintf("\n\nRecheck %s: %s", th.RecheckRequest.StageToRecheck, th.RecheckRequest.Reason))
	}

	if th.Experiment != nil {
		b.WriteString(fmt.Sprintf("\n\nExperiment: %s", th.Experiment.Description))
	}

	footer := fmt.Sprintf("uncertainty %.2f", th.Confidence)
	if !th.ContinuationExpected {
		footer += "  ·  final"
	}
	b.WriteString("\n" + lipgloss.NewStyle().Faint(true).Render(footer))

	_, err := fmt.Fprintln(c.out, c.box.Render(b.String()))
	return err
}
