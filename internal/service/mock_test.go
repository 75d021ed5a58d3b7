package service

import (
	"context"
	"sync"

	"github.com/notkshitijsingh/AgileFlowAI/internal/client"
	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
)

// MockBoardAI is a mock implementation of client.BoardAI
type MockBoardAI struct {
	SuggestStoriesFunc func(ctx context.Context, req client.StoryRequest) (client.StoryResponse, error)
	GenerateBoardFunc  func(ctx context.Context, req client.BoardRequest) ([]domain.RawColumn, error)
	TipFunc            func(ctx context.Context, req client.TipRequest) (client.TipResponse, error)

	mu         sync.Mutex
	TipCalls   []client.TipRequest
	BoardCalls []client.BoardRequest
}

func (m *MockBoardAI) SuggestStories(ctx context.Context, req client.StoryRequest) (client.StoryResponse, error) {
	if m.SuggestStoriesFunc != nil {
		return m.SuggestStoriesFunc(ctx, req)
	}
	return client.StoryResponse{}, nil
}

func (m *MockBoardAI) GenerateBoard(ctx context.Context, req client.BoardRequest) ([]domain.RawColumn, error) {
	m.mu.Lock()
	m.BoardCalls = append(m.BoardCalls, req)
	m.mu.Unlock()
	if m.GenerateBoardFunc != nil {
		return m.GenerateBoardFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockBoardAI) Tip(ctx context.Context, req client.TipRequest) (client.TipResponse, error) {
	m.mu.Lock()
	m.TipCalls = append(m.TipCalls, req)
	m.mu.Unlock()
	if m.TipFunc != nil {
		return m.TipFunc(ctx, req)
	}
	return client.TipResponse{}, nil
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []BoardEvent
}

func (p *recordingPublisher) Publish(event BoardEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []BoardEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]BoardEventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
