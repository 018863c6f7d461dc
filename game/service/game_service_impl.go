package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/doorway/game/engine"
)

var (
	ErrEditorDisabled = errors.New("editor is disabled")
	ErrUnknownEditOp  = errors.New("unknown edit operation")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions     SessionManager
	levels       LevelManager
	records      RecordStore
	solverLimit  int
	maxBulkMoves int
	mu           sync.RWMutex
}

// Option configures a game service
type Option func(*gameServiceImpl)

// WithRecords stores a completion record the first time a session wins
func WithRecords(records RecordStore) Option {
	return func(s *gameServiceImpl) { s.records = records }
}

// WithSolverLimit bounds the states explored by Hint
func WithSolverLimit(limit int) Option {
	return func(s *gameServiceImpl) {
		if limit > 0 {
			s.solverLimit = limit
		}
	}
}

// WithMaxBulkMoves caps the moves executed by one BulkMove call
func WithMaxBulkMoves(limit int) Option {
	return func(s *gameServiceImpl) {
		if limit > 0 && limit <= engine.MaxBulkMoves {
			s.maxBulkMoves = limit
		}
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, levels LevelManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions:     sessions,
		levels:       levels,
		solverLimit:  engine.DefaultSolverLimit,
		maxBulkMoves: engine.MaxBulkMoves,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newSessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		LevelID:        sess.LevelID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		Level:          sess.Level,
	}
}

// loadLevel loads a level, listing the available ones when it does not exist
func (s *gameServiceImpl) loadLevel(levelName string) (*engine.Level, error) {
	level, err := s.levels.LoadLevel(levelName)
	if err == nil {
		return level, nil
	}
	if strings.Contains(err.Error(), "level not found") {
		available, listErr := s.levels.ListLevels()
		if listErr == nil && len(available) > 0 {
			var ids []string
			for _, l := range available {
				ids = append(ids, l.LevelID)
			}
			return nil, fmt.Errorf("level '%s' not found. Available levels: %v", levelName, ids)
		}
		return nil, fmt.Errorf("level '%s' not found. Use /api/levels to list available levels", levelName)
	}
	return nil, fmt.Errorf("failed to load level %s: %w", levelName, err)
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var level *engine.Level
	levelID := levelName
	if levelName != "" {
		var err error
		if level, err = s.loadLevel(levelName); err != nil {
			return nil, err
		}
	} else {
		level, levelID = s.levels.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", level, levelID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.WithFields(log.Fields{"session": sess.ID, "level": levelID}).Info("session created")
	return newSessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return newSessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, newSessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move executes a single move for a session. With the editor enabled it moves the cursor.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if reset && sess.Engine.Reset() {
		events = append(events, GameEvent{
			Type:      EventReset,
			Message:   "Level reset to its starting layout",
			Timestamp: time.Now(),
			Spots:     sess.Engine.GetMoving(),
		})
	}

	from := sess.Engine.GetMoving()
	success := sess.Engine.Move(direction)
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
		Turn:      state.LastTurn,
		Events:    events,
	}

	switch {
	case success && state.LastTurn == engine.TurnEditor.String():
		result.Events = append(result.Events, GameEvent{
			Type:      EventEditor,
			Message:   state.Message,
			Timestamp: time.Now(),
			Spots:     []engine.Spot{state.Cursor},
		})
	case success:
		moveEvents := s.extractMoveEvents(state, direction)
		result.Events = append(result.Events, moveEvents...)
		result.Step = &StepInfo{
			Idx:         1,
			Dir:         direction,
			From:        from,
			To:          state.Moving,
			ThroughDoor: throughDoor(state),
			Success:     true,
			Victory:     state.Won,
		}
	default:
		result.Events = append(result.Events, GameEvent{
			Type:      EventBlocked,
			Message:   state.Message,
			Timestamp: time.Now(),
			Spots:     from,
		})
	}

	log.WithFields(log.Fields{
		"session": sessionID,
		"dir":     direction,
		"turn":    result.Turn,
		"success": success,
	}).Debug("[MOVE]")

	s.maybeRecord(ctx, sess, state)

	// Auto-save session after move
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warnf("Failed to persist session %s after move: %v", sessionID, err)
	}

	return result, nil
}

// BulkMove executes multiple moves in sequence, stopping at the first rejected move or
// when the level is complete
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset && sess.Engine.Reset() {
		result.Events = append(result.Events, GameEvent{
			Type:      EventReset,
			Message:   "Level reset to its starting layout",
			Timestamp: time.Now(),
			Spots:     sess.Engine.GetMoving(),
		})
	}
	result.Start = sess.Engine.GetMoving()

	// Limit moves to prevent abuse
	if len(moves) > s.maxBulkMoves {
		result.Truncated = true
		result.Limit = s.maxBulkMoves
		moves = moves[:s.maxBulkMoves]
	}

	editing := sess.Engine.Editor().Enabled
	for i, move := range moves {
		if sess.Engine.IsVictory() && !editing {
			result.StoppedReason = "level complete"
			result.StopReasonCode = StopVictory
			result.StoppedOnMove = i + 1
			break
		}
		if _, ok := engine.DirectionToIntent(move); !ok {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d has unknown direction %q", i+1, move)
			result.StopReasonCode = StopInvalid
			result.StoppedOnMove = i + 1
			break
		}

		from := sess.Engine.GetMoving()
		if !sess.Engine.Move(move) {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, move)
			result.StopReasonCode = StopBlocked
			result.StoppedOnMove = i + 1
			break
		}
		result.MovesExecuted++

		state := sess.Engine.GetState()
		if editing {
			continue
		}
		result.Events = append(result.Events, s.extractMoveEvents(state, move)...)
		result.Steps = append(result.Steps, StepInfo{
			Idx:         i + 1,
			Dir:         move,
			From:        from,
			To:          state.Moving,
			ThroughDoor: throughDoor(state),
			Success:     true,
			Victory:     state.Won,
		})
	}

	endState := sess.Engine.GetState()
	result.GameState = endState
	result.End = endState.Moving
	result.Won = endState.Won
	result.Message = endState.Message
	if endState.Won && result.StopReasonCode == "" {
		result.StopReasonCode = StopVictory
	}

	// Decision aids
	result.PossibleMoves = sess.Engine.GetPossibleMoves()
	if result.PossibleMoves == nil {
		result.PossibleMoves = []string{}
	}

	s.maybeRecord(ctx, sess, endState)

	// Auto-save session after bulk moves
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warnf("Failed to persist session %s after bulk moves: %v", sessionID, err)
	}

	return result, nil
}

// Back undoes the last accepted move of a session
func (s *gameServiceImpl) Back(ctx context.Context, sessionID string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	from := sess.Engine.GetMoving()
	success := sess.Engine.Back()
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
		Turn:      state.LastTurn,
	}
	if success {
		result.Events = []GameEvent{{
			Type:      EventBack,
			Message:   state.Message,
			Timestamp: time.Now(),
			Spots:     state.Moving,
		}}
		result.Step = &StepInfo{Idx: 1, Dir: engine.ActionBack, From: from, To: state.Moving, Success: true}
	}

	s.maybeRecord(ctx, sess, state)

	if err := s.sessions.Save(sessionID); err != nil {
		log.Warnf("Failed to persist session %s after back: %v", sessionID, err)
	}

	return result, nil
}

// Reset restores a session's level to its starting layout
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	sess.Engine.Reset()
	state := sess.Engine.GetState()
	s.maybeRecord(ctx, sess, state)

	// Auto-save session after reset
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warnf("Failed to persist session %s after reset: %v", sessionID, err)
	}

	return state, nil
}

// Hint solves the session's level from its current layout
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	world := sess.Engine.World()
	solution, err := engine.Solve(world.Collections(), world.Moving(), s.solverLimit)
	if errors.Is(err, engine.ErrUnsolvable) {
		return &HintResult{
			Moves:    []string{},
			Explored: s.solverLimit,
			Message:  "No solution from here. Try going back or resetting",
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to solve level: %w", err)
	}

	hint := &HintResult{
		Solvable: true,
		Moves:    solution.Moves,
		Explored: solution.Explored,
	}
	if len(solution.Moves) == 0 {
		hint.Message = "Level already complete"
		return hint, nil
	}
	hint.Next = solution.Moves[0]
	hint.Message = fmt.Sprintf("Solvable in %d moves, try %s", len(solution.Moves), hint.Next)
	return hint, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// SetEditor toggles editor mode for a session
func (s *gameServiceImpl) SetEditor(ctx context.Context, sessionID string, enabled bool) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	sess.Engine.SetEditorEnabled(enabled)
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warnf("Failed to persist session %s after editor toggle: %v", sessionID, err)
	}
	return sess.Engine.GetState(), nil
}

// Edit applies one editor mutation to a session's world
func (s *gameServiceImpl) Edit(ctx context.Context, sessionID string, req EditRequest) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	editor := sess.Engine.Editor()
	if !editor.Enabled {
		return nil, ErrEditorDisabled
	}

	ok, err := applyEdit(editor, req)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	message := fmt.Sprintf("Edit %s applied", req.Op)
	if !ok {
		message = fmt.Sprintf("Edit %s had no effect", req.Op)
	}
	state.Message = message

	if err := s.sessions.Save(sessionID); err != nil {
		log.Warnf("Failed to persist session %s after edit: %v", sessionID, err)
	}

	return &MoveResult{
		Success:   ok,
		GameState: state,
		Message:   message,
		Turn:      engine.TurnEditor.String(),
		Events: []GameEvent{{
			Type:      EventEditor,
			Message:   message,
			Timestamp: time.Now(),
			Spots:     []engine.Spot{{X: req.X, Y: req.Y}},
		}},
	}, nil
}

func applyEdit(editor *engine.Editor, req EditRequest) (bool, error) {
	cell := engine.Spot{X: req.X, Y: req.Y}
	category := func() (engine.Category, error) {
		return engine.ParseCategory(req.Category)
	}

	switch req.Op {
	case EditCursor:
		return editor.MoveCursor(cell), nil
	case EditRemove:
		return editor.Remove(cell), nil
	case EditLink:
		return editor.LinkDoors(req.A, req.B), nil
	case EditPlace:
		cat, err := category()
		if err != nil {
			return false, err
		}
		return editor.Place(cat, engine.MappingCount(cat)), nil
	case EditAdd:
		cat, err := category()
		if err != nil {
			return false, err
		}
		mapping := engine.DefaultMapping(cat)
		if req.Mapping != nil {
			mapping = *req.Mapping
		}
		return editor.AddSpot(cat, cell, mapping), nil
	case EditCycle:
		cat, err := category()
		if err != nil {
			return false, err
		}
		return editor.CycleMapping(editor.FindIndex(cat, cell), cat, engine.MappingCount(cat)), nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownEditOp, req.Op)
}

// SaveSessionLevel writes the session's edited level. An empty name overwrites the
// session's own level.
func (s *gameServiceImpl) SaveSessionLevel(ctx context.Context, sessionID, levelName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return "", fmt.Errorf("session not found: %w", err)
	}

	level := sess.Engine.EditedLevel()
	if levelName == "" {
		levelName = sess.LevelID
	} else {
		level.Name = levelName
	}
	if err := s.levels.SaveLevel(levelName, level); err != nil {
		return "", err
	}
	log.WithFields(log.Fields{"session": sessionID, "level": levelName}).Info("level saved")
	return levelName, nil
}

// SwitchLevel loads another level into a session, discarding its progress
func (s *gameServiceImpl) SwitchLevel(ctx context.Context, sessionID, levelName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.switchLevel(sessionID, levelName)
}

// StepLevel moves a session to the level offset positions away in the level list
func (s *gameServiceImpl) StepLevel(ctx context.Context, sessionID string, offset int) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	next, err := s.levels.Neighbor(sess.LevelID, offset)
	if err != nil {
		return nil, fmt.Errorf("level '%s' is not in the level list: %w", sess.LevelID, err)
	}
	return s.switchLevel(sessionID, next)
}

func (s *gameServiceImpl) switchLevel(sessionID, levelName string) (*SessionInfo, error) {
	level, err := s.loadLevel(levelName)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.SwitchLevel(sessionID, level, levelName)
	if err != nil {
		return nil, fmt.Errorf("failed to switch level: %w", err)
	}
	log.WithFields(log.Fields{"session": sessionID, "level": levelName}).Info("level switched")
	return newSessionInfo(sess), nil
}

// ListLevels returns available levels
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.ListLevels()
}

// LoadLevel loads a specific level
func (s *gameServiceImpl) LoadLevel(ctx context.Context, levelName string) (*engine.Level, error) {
	return s.levels.LoadLevel(levelName)
}

// SaveLevel saves a level to disk
func (s *gameServiceImpl) SaveLevel(ctx context.Context, levelName string, level *engine.Level) error {
	return s.levels.SaveLevel(levelName, level)
}

// CloneLevel copies a level into a new entry right after it in the level list
func (s *gameServiceImpl) CloneLevel(ctx context.Context, levelName string) (string, error) {
	return s.levels.CloneLevel(levelName)
}

// RemoveLevel drops a level from the level list
func (s *gameServiceImpl) RemoveLevel(ctx context.Context, levelName string) (string, error) {
	return s.levels.RemoveLevel(levelName)
}

// MoveLevel reorders a level within the level list
func (s *gameServiceImpl) MoveLevel(ctx context.Context, levelName string, op IndexOp) (int, error) {
	return s.levels.MoveLevel(levelName, op)
}

// ListRecords returns stored completions of a level, best first
func (s *gameServiceImpl) ListRecords(ctx context.Context, levelName string, limit int) ([]*CompletionRecord, error) {
	if s.records == nil {
		return []*CompletionRecord{}, nil
	}
	return s.records.ListCompletions(ctx, levelName, limit)
}

// maybeRecord stores a completion the first time a session reaches a win. Leaving the
// won state arms the next record.
func (s *gameServiceImpl) maybeRecord(ctx context.Context, sess *Session, state *engine.GameState) {
	if !state.Won {
		sess.Recorded = false
		return
	}
	if sess.Recorded || s.records == nil {
		return
	}
	sess.Recorded = true
	_, err := s.records.RecordCompletion(ctx, CompletionRecord{
		LevelID:     sess.LevelID,
		SessionID:   sess.ID,
		Moves:       state.CurrentMovesCount,
		TotalMoves:  state.TotalMoves,
		CompletedAt: time.Now(),
	})
	if err != nil {
		log.Warnf("Failed to record completion of %s for session %s: %v", sess.LevelID, sess.ID, err)
	}
}

// extractMoveEvents generates events from an accepted move
func (s *gameServiceImpl) extractMoveEvents(state *engine.GameState, direction string) []GameEvent {
	events := []GameEvent{{
		Type:      EventMove,
		Message:   fmt.Sprintf("Moved %s to %v", direction, state.Moving),
		Timestamp: time.Now(),
		Spots:     state.Moving,
	}}

	if state.AnyThroughDoor {
		var transited []engine.Spot
		for i, through := range state.ThroughDoor {
			if through && i < len(state.Moving) {
				transited = append(transited, state.Moving[i])
			}
		}
		events = append(events, GameEvent{
			Type:      EventDoor,
			Message:   fmt.Sprintf("%d bodies went through a door", len(transited)),
			Timestamp: time.Now(),
			Spots:     transited,
		})
	}

	if state.Won {
		events = append(events, GameEvent{
			Type:      EventVictory,
			Message:   state.Message,
			Timestamp: time.Now(),
			Spots:     state.Winning,
		})
	}

	return events
}

func throughDoor(state *engine.GameState) []bool {
	if !state.AnyThroughDoor {
		return nil
	}
	return state.ThroughDoor
}
