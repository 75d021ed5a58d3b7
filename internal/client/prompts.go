package client

import (
	"bytes"
	"encoding/json"
	"text/template"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
)

var storyPrompt = template.Must(template.New("stories").Parse(
	`You are an expert Scrum Master and product owner. Given the following project details, generate a list of 5 to 8 relevant user stories.
Each user story must follow the format: "As a [user type], I want [goal] so that [benefit]."
The stories should cover the most critical features needed for a minimum viable product based on the project name.

Project Name: {{.ProjectName}}
Team Members: {{.TeamMembers}}
Duration (weeks): {{.DurationWeeks}}

Respond with JSON of the form {"stories": ["..."]}.`))

var boardPrompt = template.Must(template.New("board").Parse(
	`You are an expert Scrum Master. Given the following project details and user stories, generate an initial Scrum board configuration.
The columns should represent high-level features or epics derived from the stories. Each column should contain a list of smaller, actionable tasks required to implement that feature.
For each column, set "description" to the primary user story it relates to.
For each task, estimate story points on the scale 1, 2, 3, 5, 8. A higher number means more complexity, effort or uncertainty.
Assign each task to one member of the team list. If the list is empty, leave "assignedTo" out.

Project Name: {{.ProjectName}}
Team Members: {{.TeamMembers}}
Duration (weeks): {{.DurationWeeks}}

User Stories:
{{range .Stories}}- {{.}}
{{end}}
Respond with JSON of the form {"columns": [{"name": "", "description": "", "tasks": [{"name": "", "description": "", "storyPoints": 1, "assignedTo": ""}]}]}.`))

var tipPrompt = template.Must(template.New("tip").Parse(
	`You are an AI-powered agile project management assistant. Provide a single, actionable agile best practice tip that is most relevant to the current project phase and recent user interaction. Also explain your reasoning behind the tip.

Project Phase: {{.ProjectPhase}}
User Interaction: {{.UserInteraction}}
{{if .Summary}}Board Summary: {{.Summary}}
{{end}}{{if .Board}}Board: {{.Board}}
{{end}}
Respond with JSON of the form {"tip": "", "reasoning": ""}.`))

type tipPromptData struct {
	ProjectPhase    string
	UserInteraction string
	Summary         string
	Board           string
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderTipPrompt(req TipRequest) (string, error) {
	data := tipPromptData{
		ProjectPhase:    req.ProjectPhase,
		UserInteraction: req.UserInteraction,
	}
	if req.Board != nil {
		summary, err := json.Marshal(req.Board.Summary())
		if err != nil {
			return "", err
		}
		board, err := json.Marshal(compactBoard(*req.Board))
		if err != nil {
			return "", err
		}
		data.Summary = string(summary)
		data.Board = string(board)
	}
	return render(tipPrompt, data)
}

type compactTask struct {
	Name        string `json:"name"`
	StoryPoints int    `json:"storyPoints"`
	Status      string `json:"status"`
	AssignedTo  string `json:"assignedTo,omitempty"`
	BlockedBy   int    `json:"blockedBy,omitempty"`
}

type compactColumn struct {
	Name  string        `json:"name"`
	Tasks []compactTask `json:"tasks"`
}

// compactBoard drops ids and descriptions to keep the prompt small
func compactBoard(board domain.Board) []compactColumn {
	out := make([]compactColumn, 0, len(board.Columns))
	for _, c := range board.Columns {
		col := compactColumn{Name: c.Name, Tasks: make([]compactTask, 0, len(c.Tasks))}
		for _, t := range c.Tasks {
			col.Tasks = append(col.Tasks, compactTask{
				Name:        t.Name,
				StoryPoints: t.StoryPoints,
				Status:      string(t.Status),
				AssignedTo:  t.AssignedTo,
				BlockedBy:   len(t.Dependencies),
			})
		}
		out = append(out, col)
	}
	return out
}
