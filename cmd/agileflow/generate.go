package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
	"github.com/notkshitijsingh/AgileFlowAI/internal/repository"
	"github.com/notkshitijsingh/AgileFlowAI/internal/response"
	"github.com/notkshitijsingh/AgileFlowAI/internal/service"
)

type generateOptions struct {
	name    string
	team    string
	weeks   int
	stories []string
	sorted  bool
	outPath string
}

func (a *app) generateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a board from project details",
		Long: `Generate runs the planning pipeline once:
- suggests user stories when none are given with --story
- generates columns and tasks from the stories
- prints the board and its summary, optionally saving it as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "project name")
	cmd.Flags().StringVarP(&opts.team, "team", "t", "", "comma-separated team members")
	cmd.Flags().IntVarP(&opts.weeks, "weeks", "w", 4, "project duration in weeks")
	cmd.Flags().StringArrayVarP(&opts.stories, "story", "s", nil, "user story (repeatable); skips suggestion")
	cmd.Flags().BoolVar(&opts.sorted, "sorted", false, "print tasks ordered by status")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "write the board as JSON to this file")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("team")

	return cmd
}

func (a *app) runGenerate(ctx context.Context, opts *generateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, ai, err := a.loadAI()
	if err != nil {
		return err
	}
	svc := service.NewSessionService(repository.NewMemorySessionRepository(), ai, nil, cfg.AI.TipsEnabled, nil, a.logger())

	session, err := svc.CreateSession(ctx)
	if err != nil {
		return a.failure(err)
	}

	details := domain.ProjectDetails{ProjectName: opts.name, TeamMembers: opts.team, DurationWeeks: opts.weeks}
	stories := opts.stories
	if len(stories) == 0 {
		a.printer.Step("Suggesting user stories for %s", opts.name)
		session, err = svc.SuggestStories(ctx, session.ID, details)
		if err != nil {
			return a.failure(err)
		}
		stories = session.Stories
		a.printer.Stories(stories)
	} else if _, err = svc.SetProjectDetails(ctx, session.ID, details); err != nil {
		return a.failure(err)
	}

	a.printer.Step("Generating board from %d stories", len(stories))
	if _, err = svc.GenerateBoard(ctx, session.ID, stories); err != nil {
		return a.failure(err)
	}

	stored, err := svc.Board(ctx, session.ID)
	if err != nil {
		return a.failure(err)
	}
	shown := stored
	if opts.sorted {
		if shown, err = svc.SortedBoard(ctx, session.ID); err != nil {
			return a.failure(err)
		}
	}

	a.printer.Success("Board generated: %d columns, %d tasks", len(stored.Columns), stored.TaskCount())
	a.printer.Board(shown)
	a.printer.Summary(stored.Summary())

	if opts.outPath != "" {
		if err := writeBoard(opts.outPath, stored); err != nil {
			return a.printer.Error("Failed to save board", err.Error(), nil)
		}
		a.printer.Success("Saved to %s", opts.outPath)
	}
	return nil
}

// failure turns a service error into a printed CLI error
func (a *app) failure(err error) error {
	var suggestions []string
	title := "Request failed"
	switch {
	case response.HasCode(err, response.ErrCodeInvalidInput):
		title = "Invalid input"
	case response.HasCode(err, response.ErrCodeServiceUnavailable):
		title = "AI service unavailable"
		suggestions = []string{"Try again in a moment", "Check GEMINI_API_KEY and ai.base_url"}
	}
	explanation := err.Error()
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		explanation = appErr.Message
		if appErr.Details != "" {
			explanation += ": " + appErr.Details
		}
	}
	return a.printer.Error(title, explanation, suggestions)
}

func writeBoard(path string, board domain.Board) error {
	data, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode board: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func readBoard(path string) (domain.Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Board{}, err
	}
	var board domain.Board
	if err := json.Unmarshal(data, &board); err != nil {
		return domain.Board{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if err := board.Validate(); err != nil {
		return domain.Board{}, fmt.Errorf("invalid board in %s: %w", path, err)
	}
	return board, nil
}
