package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/notkshitijsingh/AgileFlowAI/internal/client"
	"github.com/notkshitijsingh/AgileFlowAI/internal/service"
)

type tipOptions struct {
	boardPath   string
	phase       string
	interaction string
}

func (a *app) tipCmd() *cobra.Command {
	opts := &tipOptions{}

	cmd := &cobra.Command{
		Use:   "tip",
		Short: "Get an agile best practice tip for a saved board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTip(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.boardPath, "board", "b", "", "board JSON written by generate --out")
	cmd.Flags().StringVar(&opts.phase, "phase", "", "project phase (derived from the board when empty)")
	cmd.Flags().StringVar(&opts.interaction, "interaction", "viewing the project board", "what the team just did")
	_ = cmd.MarkFlagRequired("board")

	return cmd
}

func (a *app) runTip(ctx context.Context, opts *tipOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	board, err := readBoard(opts.boardPath)
	if err != nil {
		return a.printer.Error("Cannot read board", err.Error(), []string{"agileflow generate --out " + opts.boardPath})
	}

	cfg, ai, err := a.loadAI()
	if err != nil {
		return err
	}
	if !cfg.AI.TipsEnabled {
		a.printer.Warning("Agile tips are disabled (ai.tips_enabled)")
		return nil
	}

	phase := opts.phase
	if phase == "" {
		phase = service.ProjectPhase(&board)
	}

	tip, err := ai.Tip(ctx, client.TipRequest{
		ProjectPhase:    phase,
		UserInteraction: opts.interaction,
		Board:           &board,
	})
	if err != nil {
		return a.failure(err)
	}
	a.printer.Tip(tip.Tip, tip.Reasoning)
	return nil
}
