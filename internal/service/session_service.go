package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notkshitijsingh/AgileFlowAI/internal/client"
	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
	"github.com/notkshitijsingh/AgileFlowAI/internal/metrics"
	"github.com/notkshitijsingh/AgileFlowAI/internal/repository"
	"github.com/notkshitijsingh/AgileFlowAI/internal/response"
)

// Task operation names used for metrics and logs
const (
	OpMoveTask         = "move_task"
	OpUpdateTask       = "update_task"
	OpDeleteTask       = "delete_task"
	OpAddTask          = "add_task"
	OpSetAssignee      = "set_assignee"
	OpAddDependency    = "add_dependency"
	OpRemoveDependency = "remove_dependency"
)

// TipHint carries optional context for a tip request
type TipHint struct {
	ProjectPhase    string
	UserInteraction string
}

// SessionService defines the interface for the setup pipeline and board operations
type SessionService interface {
	CreateSession(ctx context.Context) (*domain.Session, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error)
	SuggestStories(ctx context.Context, sessionID uuid.UUID, details domain.ProjectDetails) (*domain.Session, error)
	SetProjectDetails(ctx context.Context, sessionID uuid.UUID, details domain.ProjectDetails) (*domain.Session, error)
	BackToDetails(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error)
	GenerateBoard(ctx context.Context, sessionID uuid.UUID, stories []string) (*domain.Session, error)
	Reset(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error)

	Board(ctx context.Context, sessionID uuid.UUID) (domain.Board, error)
	SortedBoard(ctx context.Context, sessionID uuid.UUID) (domain.Board, error)
	MoveTask(ctx context.Context, sessionID, taskID, sourceColumnID, targetColumnID uuid.UUID) (domain.Board, error)
	UpdateTask(ctx context.Context, sessionID uuid.UUID, task domain.Task) (domain.Board, error)
	DeleteTask(ctx context.Context, sessionID, taskID, columnID uuid.UUID) (domain.Board, error)
	AddTask(ctx context.Context, sessionID, columnID uuid.UUID, input TaskInput) (domain.Board, domain.Task, error)
	SetAssignee(ctx context.Context, sessionID, taskID, columnID uuid.UUID, name string) (domain.Board, error)
	AddDependency(ctx context.Context, sessionID, taskID, columnID, dependsOnID uuid.UUID) (domain.Board, error)
	RemoveDependency(ctx context.Context, sessionID, taskID, columnID, dependsOnID uuid.UUID) (domain.Board, error)
	DependencyCandidates(ctx context.Context, sessionID, taskID uuid.UUID) ([]domain.Task, error)

	GetTip(ctx context.Context, sessionID uuid.UUID, hint TipHint) (client.TipResponse, error)
}

// sessionServiceImpl is the implementation of SessionService
type sessionServiceImpl struct {
	repo         repository.SessionRepository
	ai           client.BoardAI
	materializer *Materializer
	publisher    BoardEventPublisher
	tipsEnabled  bool
	locks        *sessionLocks
	newID        IDGenerator
	now          func() time.Time
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewSessionService creates a new instance of SessionService
func NewSessionService(
	repo repository.SessionRepository,
	ai client.BoardAI,
	publisher BoardEventPublisher,
	tipsEnabled bool,
	m *metrics.Metrics,
	logger *zap.Logger,
) SessionService {
	if publisher == nil {
		publisher = NoOpPublisher{}
	}
	return &sessionServiceImpl{
		repo:         repo,
		ai:           ai,
		materializer: NewMaterializer(uuid.New),
		publisher:    publisher,
		tipsEnabled:  tipsEnabled,
		locks:        newSessionLocks(),
		newID:        uuid.New,
		now:          func() time.Time { return time.Now().UTC() },
		metrics:      m,
		logger:       logger,
	}
}

// CreateSession starts a new session at the details step
func (s *sessionServiceImpl) CreateSession(ctx context.Context) (*domain.Session, error) {
	now := s.now()
	session := &domain.Session{
		ID:        s.newID(),
		Step:      domain.SetupStepDetails,
		Stories:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		s.logger.Error("Failed to create session", zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create session", err.Error())
	}

	s.logger.Info("Session created", zap.String("session_id", session.ID.String()))
	return session, nil
}

// GetSession returns the stored session
func (s *sessionServiceImpl) GetSession(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	return s.load(ctx, sessionID)
}

// SuggestStories stores the project details and the AI's story suggestions and
// moves the session to the stories step. On failure the session is unchanged.
func (s *sessionServiceImpl) SuggestStories(ctx context.Context, sessionID uuid.UUID, details domain.ProjectDetails) (*domain.Session, error) {
	details, err := validateProjectDetails(details)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := s.ai.SuggestStories(ctx, client.StoryRequest{
		ProjectName:   details.ProjectName,
		TeamMembers:   details.TeamMembers,
		DurationWeeks: details.DurationWeeks,
	})
	if err != nil {
		s.logger.Warn("Story suggestion failed",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
		return nil, asServiceUnavailable(err, "Story suggestion service is unavailable")
	}

	session.Project = &details
	session.Stories = out.Stories
	session.Step = domain.SetupStepStories
	session.UpdatedAt = s.now()
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	s.metrics.AddStoriesSuggested(len(out.Stories))
	s.logger.Info("Stories suggested",
		zap.String("session_id", sessionID.String()),
		zap.Int("count", len(out.Stories)),
		zap.Duration("duration", time.Since(start)),
	)
	return session, nil
}

// SetProjectDetails stores the project details without asking for story
// suggestions, for callers that bring their own stories
func (s *sessionServiceImpl) SetProjectDetails(ctx context.Context, sessionID uuid.UUID, details domain.ProjectDetails) (*domain.Session, error) {
	details, err := validateProjectDetails(details)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.Project = &details
	session.Step = domain.SetupStepStories
	session.UpdatedAt = s.now()
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// BackToDetails returns from story review to the details form, keeping what was entered
func (s *sessionServiceImpl) BackToDetails(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step != domain.SetupStepStories {
		return nil, response.NewConflictError("Can only go back from story review", string(session.Step))
	}

	session.Step = domain.SetupStepDetails
	session.UpdatedAt = s.now()
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GenerateBoard sends the project details and confirmed stories to the AI,
// materializes the response and installs it as the session's board. Nothing is
// installed unless every step succeeds.
func (s *sessionServiceImpl) GenerateBoard(ctx context.Context, sessionID uuid.UUID, stories []string) (*domain.Session, error) {
	stories, err := validateStories(stories)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Project == nil {
		return nil, response.NewConflictError("Project details are required before generating a board", "")
	}

	start := time.Now()
	raw, err := s.ai.GenerateBoard(ctx, client.BoardRequest{
		ProjectName:   session.Project.ProjectName,
		TeamMembers:   session.Project.TeamMembers,
		DurationWeeks: session.Project.DurationWeeks,
		Stories:       stories,
	})
	if err != nil {
		s.logger.Warn("Board generation failed",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
		return nil, asServiceUnavailable(err, "Board generation service is unavailable")
	}

	board, err := s.materializer.Materialize(raw)
	if err != nil {
		s.logger.Warn("Generated board rejected",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	session.Stories = stories
	session.Board = &board
	session.Step = domain.SetupStepBoard
	session.UpdatedAt = s.now()
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	s.metrics.IncrementBoardsGenerated()
	s.publish(EventBoardGenerated, sessionID, nil, &board)
	s.logger.Info("Board generated",
		zap.String("session_id", sessionID.String()),
		zap.Int("columns", len(board.Columns)),
		zap.Int("tasks", board.TaskCount()),
		zap.Duration("duration", time.Since(start)),
	)
	return session, nil
}

// Reset discards details, stories and board
func (s *sessionServiceImpl) Reset(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	hadBoard := session.HasBoard()

	session.Reset(s.now())
	session.Stories = []string{}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	if hadBoard {
		s.publish(EventBoardReset, sessionID, nil, nil)
	}
	s.logger.Info("Session reset", zap.String("session_id", sessionID.String()))
	return session, nil
}

// Board returns the current board snapshot
func (s *sessionServiceImpl) Board(ctx context.Context, sessionID uuid.UUID) (domain.Board, error) {
	session, err := s.loadWithBoard(ctx, sessionID)
	if err != nil {
		return domain.Board{}, err
	}
	return *session.Board, nil
}

// SortedBoard returns the status-sorted view of the current board
func (s *sessionServiceImpl) SortedBoard(ctx context.Context, sessionID uuid.UUID) (domain.Board, error) {
	board, err := s.Board(ctx, sessionID)
	if err != nil {
		return domain.Board{}, err
	}
	return SortByStatus(board), nil
}

func (s *sessionServiceImpl) MoveTask(ctx context.Context, sessionID, taskID, sourceColumnID, targetColumnID uuid.UUID) (domain.Board, error) {
	return s.mutate(ctx, sessionID, OpMoveTask, EventTaskMoved, &taskID, func(store *BoardStore) (domain.Board, error) {
		return store.MoveTask(taskID, sourceColumnID, targetColumnID)
	})
}

func (s *sessionServiceImpl) UpdateTask(ctx context.Context, sessionID uuid.UUID, task domain.Task) (domain.Board, error) {
	return s.mutate(ctx, sessionID, OpUpdateTask, EventTaskUpdated, &task.ID, func(store *BoardStore) (domain.Board, error) {
		return store.UpdateTask(task)
	})
}

func (s *sessionServiceImpl) DeleteTask(ctx context.Context, sessionID, taskID, columnID uuid.UUID) (domain.Board, error) {
	return s.mutate(ctx, sessionID, OpDeleteTask, EventTaskDeleted, &taskID, func(store *BoardStore) (domain.Board, error) {
		return store.DeleteTask(taskID, columnID), nil
	})
}

func (s *sessionServiceImpl) AddTask(ctx context.Context, sessionID, columnID uuid.UUID, input TaskInput) (domain.Board, domain.Task, error) {
	var added domain.Task
	taskID := new(uuid.UUID)
	board, err := s.mutate(ctx, sessionID, OpAddTask, EventTaskAdded, taskID, func(store *BoardStore) (domain.Board, error) {
		board, task, err := store.AddTask(columnID, input)
		if err != nil {
			return domain.Board{}, err
		}
		added = task
		*taskID = task.ID
		return board, nil
	})
	if err != nil {
		return domain.Board{}, domain.Task{}, err
	}
	return board, added, nil
}

func (s *sessionServiceImpl) SetAssignee(ctx context.Context, sessionID, taskID, columnID uuid.UUID, name string) (domain.Board, error) {
	return s.mutate(ctx, sessionID, OpSetAssignee, EventTaskUpdated, &taskID, func(store *BoardStore) (domain.Board, error) {
		return store.SetAssignee(taskID, columnID, name)
	})
}

func (s *sessionServiceImpl) AddDependency(ctx context.Context, sessionID, taskID, columnID, dependsOnID uuid.UUID) (domain.Board, error) {
	return s.mutate(ctx, sessionID, OpAddDependency, EventTaskUpdated, &taskID, func(store *BoardStore) (domain.Board, error) {
		return store.AddDependency(taskID, columnID, dependsOnID)
	})
}

func (s *sessionServiceImpl) RemoveDependency(ctx context.Context, sessionID, taskID, columnID, dependsOnID uuid.UUID) (domain.Board, error) {
	return s.mutate(ctx, sessionID, OpRemoveDependency, EventTaskUpdated, &taskID, func(store *BoardStore) (domain.Board, error) {
		return store.RemoveDependency(taskID, columnID, dependsOnID)
	})
}

// DependencyCandidates lists every task the given task could still depend on
func (s *sessionServiceImpl) DependencyCandidates(ctx context.Context, sessionID, taskID uuid.UUID) ([]domain.Task, error) {
	session, err := s.loadWithBoard(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return NewBoardStore(*session.Board, s.newID).DependencyCandidates(taskID)
}

// GetTip asks the AI for a tip about the session's current state. The board is
// never modified; any AI failure is SERVICE_UNAVAILABLE.
func (s *sessionServiceImpl) GetTip(ctx context.Context, sessionID uuid.UUID, hint TipHint) (client.TipResponse, error) {
	if !s.tipsEnabled {
		return client.TipResponse{}, response.NewServiceUnavailableError("Agile tips are disabled", nil)
	}

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return client.TipResponse{}, err
	}

	req := client.TipRequest{
		ProjectPhase:    hint.ProjectPhase,
		UserInteraction: hint.UserInteraction,
		Board:           session.Board,
	}
	if req.ProjectPhase == "" {
		req.ProjectPhase = projectPhase(session)
	}
	if req.UserInteraction == "" {
		req.UserInteraction = defaultInteraction(session)
	}

	tip, err := s.ai.Tip(ctx, req)
	if err != nil {
		s.logger.Warn("Tip request failed",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
		return client.TipResponse{}, asServiceUnavailable(err, "Tip service is unavailable")
	}

	s.metrics.IncrementTipsServed()
	return tip, nil
}

// mutate runs one board operation under the session lock and commits the
// resulting board only when the operation succeeds
func (s *sessionServiceImpl) mutate(
	ctx context.Context,
	sessionID uuid.UUID,
	operation string,
	eventType BoardEventType,
	taskID *uuid.UUID,
	fn func(store *BoardStore) (domain.Board, error),
) (domain.Board, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.loadWithBoard(ctx, sessionID)
	if err != nil {
		return domain.Board{}, err
	}

	store := NewBoardStore(*session.Board, s.newID)
	board, err := fn(store)
	s.metrics.RecordTaskOperation(operation, err)
	if err != nil {
		s.logger.Debug("Board operation rejected",
			zap.String("session_id", sessionID.String()),
			zap.String("operation", operation),
			zap.Error(err),
		)
		return domain.Board{}, err
	}

	session.Board = &board
	session.UpdatedAt = s.now()
	if err := s.save(ctx, session); err != nil {
		return domain.Board{}, err
	}

	snapshot := board.Clone()
	s.publish(eventType, sessionID, taskID, &snapshot)
	return board, nil
}

func (s *sessionServiceImpl) load(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, response.NewNotFoundError("Session not found", sessionID.String())
		}
		s.logger.Error("Failed to load session",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load session", err.Error())
	}
	return session, nil
}

func (s *sessionServiceImpl) loadWithBoard(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasBoard() {
		return nil, response.NewNotFoundError("Board has not been generated yet", sessionID.String())
	}
	return session, nil
}

func (s *sessionServiceImpl) save(ctx context.Context, session *domain.Session) error {
	if err := s.repo.Update(ctx, session); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return response.NewNotFoundError("Session not found", session.ID.String())
		}
		s.logger.Error("Failed to save session",
			zap.String("session_id", session.ID.String()),
			zap.Error(err),
		)
		return response.NewAppError(response.ErrCodeInternal, "Failed to save session", err.Error())
	}
	return nil
}

func (s *sessionServiceImpl) publish(eventType BoardEventType, sessionID uuid.UUID, taskID *uuid.UUID, board *domain.Board) {
	s.publisher.Publish(BoardEvent{
		Type:       eventType,
		SessionID:  sessionID,
		TaskID:     taskID,
		Board:      board,
		OccurredAt: s.now(),
	})
}

// asServiceUnavailable keeps AppErrors from the AI client and wraps anything else
func asServiceUnavailable(err error, message string) error {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return response.NewServiceUnavailableError(message, err)
}

// projectPhase derives a phase label from the setup step and task progress
func projectPhase(session *domain.Session) string {
	return ProjectPhase(session.Board)
}

// ProjectPhase names the phase a board is in: planning before a board exists,
// review once every story point is Done, execution otherwise
func ProjectPhase(board *domain.Board) string {
	if board == nil {
		return "planning"
	}
	summary := board.Summary()
	if summary.TaskCount > 0 && summary.PointsByStatus[domain.TaskStatusDone] == summary.TotalStoryPoints {
		return "review"
	}
	return "execution"
}

func defaultInteraction(session *domain.Session) string {
	switch session.Step {
	case domain.SetupStepStories:
		return "reviewing suggested user stories"
	case domain.SetupStepBoard:
		return "viewing the project board"
	default:
		return "entering project details"
	}
}
