package printer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
	faint  = color.New(color.Faint)
)

// Printer writes human readable CLI output
type Printer struct {
	out    io.Writer
	errOut io.Writer
}

// New creates a Printer. Nil writers default to stdout and stderr.
func New(out, errOut io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Printer{out: out, errOut: errOut}
}

// Success prints a green message with a checkmark prefix
func (p *Printer) Success(format string, a ...any) {
	green.Fprintf(p.out, "✓ %s\n", fmt.Sprintf(format, a...))
}

// Step prints a progress message for multi-step operations
func (p *Printer) Step(format string, a ...any) {
	cyan.Fprintf(p.out, "→ %s\n", fmt.Sprintf(format, a...))
}

// Warning prints a yellow message to stderr
func (p *Printer) Warning(format string, a ...any) {
	yellow.Fprintf(p.errOut, "! %s\n", fmt.Sprintf(format, a...))
}

// Error prints a titled error with an explanation and suggestions to stderr
// and returns a plain error for cobra
func (p *Printer) Error(title, explanation string, suggestions []string) error {
	red.Fprintf(p.errOut, "%s\n", title)
	if explanation != "" {
		fmt.Fprintf(p.errOut, "\n%s\n", explanation)
	}
	if len(suggestions) > 0 {
		fmt.Fprintln(p.errOut)
		for _, s := range suggestions {
			fmt.Fprintf(p.errOut, "  - %s\n", s)
		}
	}
	return fmt.Errorf("%s", title)
}

// Stories prints a numbered story list
func (p *Printer) Stories(stories []string) {
	bold.Fprintln(p.out, "User stories")
	for i, s := range stories {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, s)
	}
}

// Board prints every column and its tasks in board order
func (p *Printer) Board(board domain.Board) {
	for _, c := range board.Columns {
		bold.Fprintf(p.out, "\n%s", c.Name)
		faint.Fprintf(p.out, "  (%d pts)\n", c.StoryPoints())
		if c.Description != "" {
			faint.Fprintf(p.out, "  %s\n", c.Description)
		}
		if len(c.Tasks) == 0 {
			faint.Fprintln(p.out, "  no tasks")
			continue
		}
		for _, t := range c.Tasks {
			p.task(t, board)
		}
	}
}

func (p *Printer) task(t domain.Task, board domain.Board) {
	fmt.Fprintf(p.out, "  ")
	statusColor(t.Status).Fprintf(p.out, "[%-11s]", t.Status)
	fmt.Fprintf(p.out, " %s (%d)", t.Name, t.StoryPoints)
	if t.AssignedTo != "" {
		cyan.Fprintf(p.out, " @%s", t.AssignedTo)
	}
	fmt.Fprintln(p.out)

	if len(t.Dependencies) > 0 {
		names := make([]string, 0, len(t.Dependencies))
		for _, dep := range t.Dependencies {
			names = append(names, board.TaskName(dep))
		}
		faint.Fprintf(p.out, "      depends on: %s\n", strings.Join(names, ", "))
	}
}

// Summary prints board totals
func (p *Printer) Summary(s domain.BoardSummary) {
	bold.Fprintln(p.out, "\nSummary")
	fmt.Fprintf(p.out, "  %-14s %d\n", "Columns:", s.ColumnCount)
	fmt.Fprintf(p.out, "  %-14s %d\n", "Tasks:", s.TaskCount)
	fmt.Fprintf(p.out, "  %-14s %d\n", "Story points:", s.TotalStoryPoints)
	for _, status := range domain.AllTaskStatuses() {
		fmt.Fprintf(p.out, "    %-12s %d\n", string(status)+":", s.PointsByStatus[status])
	}

	assignees := make([]string, 0, len(s.TasksByAssignee))
	for name := range s.TasksByAssignee {
		assignees = append(assignees, name)
	}
	sort.Strings(assignees)
	for _, name := range assignees {
		label := name
		if label == "" {
			label = "unassigned"
		}
		fmt.Fprintf(p.out, "    @%-11s %d tasks\n", label, s.TasksByAssignee[name])
	}
}

// Tip prints an agile tip and its reasoning
func (p *Printer) Tip(tip, reasoning string) {
	green.Fprintf(p.out, "Tip: %s\n", tip)
	if reasoning != "" {
		faint.Fprintf(p.out, "%s\n", reasoning)
	}
}

func statusColor(status domain.TaskStatus) *color.Color {
	switch status {
	case domain.TaskStatusDone:
		return green
	case domain.TaskStatusInProgress:
		return cyan
	case domain.TaskStatusBlocked:
		return red
	default:
		return yellow
	}
}
