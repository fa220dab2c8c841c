// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/rigrun-chat/internal/apierr"
	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/repository"
	"github.com/jeranaias/rigrun-chat/internal/stream"
)

// =============================================================================
// REPOSITORY INTERFACES
// =============================================================================

// ThreadSource is the subset of repository.ThreadRepository the store uses.
type ThreadSource interface {
	ListThreads(ctx context.Context, limit, offset int) ([]model.Thread, error)
	GetThread(ctx context.Context, id string) (model.Thread, error)
	InvalidateLists(ctx context.Context)
}

// MessageSource is the subset of repository.MessageRepository the store uses.
type MessageSource interface {
	ListMessages(ctx context.Context, threadID string) ([]model.Message, error)
	Invalidate(ctx context.Context, threadID string)
}

// ChatSource is the subset of repository.ChatRepository the store uses.
type ChatSource interface {
	SendMessage(ctx context.Context, req model.ChatRequest) <-chan repository.Result[stream.Chunk]
	ListModels(ctx context.Context) ([]model.ModelInfo, error)
}

// =============================================================================
// OPTIONS
// =============================================================================

const (
	// DefaultPageSize is the number of threads per page.
	DefaultPageSize = 20

	defaultEffectBuffer = 16
)

// Option configures a Store.
type Option func(*Store)

// WithPageSize sets the thread page size.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithDefaultModel preselects a model before the model list is loaded.
func WithDefaultModel(id string) Option {
	return func(s *Store) { s.state.SelectedModel = id }
}

// WithSystemPrompt sets the system prompt sent with every turn.
func WithSystemPrompt(prompt string) Option {
	return func(s *Store) { s.systemPrompt = prompt }
}

// WithLogger sets the store logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock sets the clock for local message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the generator for local message ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithEffectBuffer sets how many undelivered effects are kept.
func WithEffectBuffer(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.effectBuffer = n
		}
	}
}

// =============================================================================
// STORE
// =============================================================================

// Store owns ChatState and runs intents.
type Store struct {
	threads  ThreadSource
	messages MessageSource
	chat     ChatSource

	pageSize     int
	systemPrompt string
	effectBuffer int
	now          func() time.Time
	newID        func() string
	log          *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	state      ChatState
	closed     bool
	sendCancel context.CancelFunc
	sendSeq    uint64
	updates    chan ChatState
	effects    chan Effect
}

// New creates a Store. Call Close to stop in-flight work.
func New(threads ThreadSource, messages MessageSource, chat ChatSource, opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		threads:      threads,
		messages:     messages,
		chat:         chat,
		pageSize:     DefaultPageSize,
		effectBuffer: defaultEffectBuffer,
		now:          time.Now,
		newID:        uuid.NewString,
		log:          zap.NewNop(),
		ctx:          ctx,
		cancel:       cancel,
		updates:      make(chan ChatState, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.effects = make(chan Effect, s.effectBuffer)
	return s
}

// State returns a snapshot of the current state.
func (s *Store) State() ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Updates delivers the latest state after each reduction. Intermediate
// states are skipped for slow readers. Closed by Close.
func (s *Store) Updates() <-chan ChatState {
	return s.updates
}

// Effects delivers one-shot effects. Closed by Close.
func (s *Store) Effects() <-chan Effect {
	return s.effects
}

// Close cancels in-flight intents, waits for them and closes the channels.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	close(s.updates)
	close(s.effects)
	s.mu.Unlock()
}

// Dispatch submits an intent. It never blocks on I/O.
func (s *Store) Dispatch(in Intent) {
	switch in := in.(type) {
	case LoadThreads:
		s.run(func(ctx context.Context) { s.loadThreads(ctx, false) })
	case RefreshThreads:
		s.run(func(ctx context.Context) { s.loadThreads(ctx, true) })
	case LoadMoreThreads:
		s.run(s.loadMoreThreads)
	case SelectThread:
		s.run(func(ctx context.Context) { s.selectThread(ctx, in.ID) })
	case ClearThreadSelection:
		s.apply(ThreadSelectionCleared{})
	case LoadMessages:
		s.run(func(ctx context.Context) { s.loadMessages(ctx, in.ThreadID) })
	case LoadModels:
		s.run(s.loadModels)
	case SelectModel:
		s.apply(ModelSelected{ID: in.ID})
	case SendMessage:
		s.run(func(ctx context.Context) { s.sendMessage(ctx, in.Text) })
	case CancelSend:
		s.cancelSend()
	case ClearErrors:
		s.apply(ErrorsCleared{})
	default:
		s.log.Warn("unknown intent", zap.Any("intent", in))
	}
}

func (s *Store) run(fn func(ctx context.Context)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
}

// apply reduces m into the state and publishes the result.
func (s *Store) apply(m Msg) {
	s.applyIf(nil, m)
}

// applyIf reduces m only if cond holds for the current state. The check and
// the reduction are atomic.
func (s *Store) applyIf(cond func(ChatState) bool, m Msg) (ChatState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || (cond != nil && !cond(s.state)) {
		return s.state, false
	}
	s.reduceLocked(m)
	return s.state, true
}

// beginSend starts a turn unless one is in flight. cancel is published in the
// same critical section, so a CancelSend that observes IsSending can reach it.
func (s *Store) beginSend(m SendStarted, cancel context.CancelFunc) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state.IsSending {
		return 0, false
	}
	s.sendSeq++
	s.sendCancel = cancel
	s.reduceLocked(m)
	return s.sendSeq, true
}

// reduceLocked folds m into the state and publishes it. Callers hold s.mu.
func (s *Store) reduceLocked(m Msg) {
	s.state = Reduce(s.state, m)

	// Conflate: replace any unread update with the newest state
	select {
	case <-s.updates:
	default:
	}
	s.updates <- s.state
}

func (s *Store) emit(e Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.effects <- e:
	default:
		s.log.Warn("effect dropped, no observer", zap.Any("effect", e))
	}
}

// =============================================================================
// EXECUTORS
// =============================================================================

func (s *Store) loadThreads(ctx context.Context, refresh bool) {
	if refresh {
		s.threads.InvalidateLists(ctx)
	}
	s.apply(ThreadsLoadingStarted{})

	threads, err := s.threads.ListThreads(ctx, s.pageSize, 0)
	if err != nil {
		if s.canceled(ctx, err) {
			return
		}
		s.apply(ThreadsLoadFailed{Message: apierr.UserMessage(err)})
		return
	}
	s.apply(ThreadsLoaded{Threads: threads, HasMore: len(threads) >= s.pageSize})
}

func (s *Store) loadMoreThreads(ctx context.Context) {
	st, ok := s.applyIf(func(st ChatState) bool {
		return st.HasMoreThreads && !st.LoadingThreads && !st.LoadingMoreThreads
	}, ThreadsLoadingStarted{More: true})
	if !ok {
		return
	}

	threads, err := s.threads.ListThreads(ctx, s.pageSize, st.ThreadsOffset)
	if err != nil {
		if s.canceled(ctx, err) {
			return
		}
		s.apply(ThreadsLoadFailed{Message: apierr.UserMessage(err), More: true})
		return
	}
	s.apply(ThreadsLoaded{Threads: threads, Append: true, HasMore: len(threads) >= s.pageSize})
}

func (s *Store) selectThread(ctx context.Context, id string) {
	thread, ok := findThread(s.State().Threads, id)
	if !ok {
		var err error
		thread, err = s.threads.GetThread(ctx, id)
		if err != nil {
			if s.canceled(ctx, err) {
				return
			}
			msg := apierr.UserMessage(err)
			s.apply(ThreadSelectFailed{ThreadID: id, Message: msg})
			s.emit(ShowError{Message: msg, Severity: apierr.Classify(err).Severity})
			return
		}
	}
	s.apply(ThreadSelected{Thread: thread})
	s.loadMessages(ctx, thread.ID)
}

func (s *Store) loadMessages(ctx context.Context, threadID string) {
	if threadID == "" {
		threadID = s.State().SelectedThreadID()
	}
	if threadID == "" {
		s.log.Debug("load messages without a thread")
		return
	}
	s.apply(MessagesLoadingStarted{ThreadID: threadID})

	msgs, err := s.messages.ListMessages(ctx, threadID)
	if err != nil {
		if s.canceled(ctx, err) {
			return
		}
		s.apply(MessagesLoadFailed{ThreadID: threadID, Message: apierr.UserMessage(err)})
		return
	}
	s.apply(MessagesLoaded{ThreadID: threadID, Messages: msgs})
}

func (s *Store) loadModels(ctx context.Context) {
	s.apply(ModelsLoadingStarted{})
	models, err := s.chat.ListModels(ctx)
	if err != nil {
		if s.canceled(ctx, err) {
			return
		}
		s.apply(ModelsLoadFailed{Message: apierr.UserMessage(err)})
		return
	}
	s.apply(ModelsLoaded{Models: models})
}

func (s *Store) sendMessage(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		s.emit(ShowError{Message: "Message must not be empty", Severity: apierr.SeverityInfo})
		return
	}

	current := s.State()
	threadID := current.SelectedThreadID()
	now := s.now()
	user := model.Message{ID: s.newID(), ThreadID: threadID, Role: model.RoleUser, Content: text, CreatedAt: now}
	assistant := model.Message{ID: s.newID(), ThreadID: threadID, Role: model.RoleAssistant, CreatedAt: now}

	sendCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	seq, ok := s.beginSend(SendStarted{User: user, Assistant: assistant}, cancel)
	if !ok {
		s.emit(ShowError{Message: "A message is already being sent", Severity: apierr.SeverityInfo})
		return
	}
	defer s.endSend(seq)

	req := model.ChatRequest{
		Message:      text,
		ThreadID:     threadID,
		Model:        current.SelectedModel,
		SystemPrompt: s.systemPrompt,
	}

	var (
		done    stream.Done
		errored bool
	)
	for res := range s.chat.SendMessage(sendCtx, req) {
		if res.Err != nil {
			// The stream's closing failure after an error chunk repeats it
			if errored {
				continue
			}
			errored = true
			msg := apierr.UserMessage(res.Err)
			s.apply(SendFailed{MessageID: assistant.ID, Message: msg})
			s.emit(ShowError{Message: msg, Severity: apierr.Classify(res.Err).Severity})
			continue
		}

		switch c := res.Value.(type) {
		case stream.Delta:
			s.apply(AssistantDelta{MessageID: assistant.ID, Text: c.Text})
		case stream.ToolCall:
			s.apply(AssistantToolCall{
				MessageID: assistant.ID,
				Call:      model.ToolCall{ID: c.ID, Name: c.Name, Arguments: c.Arguments},
			})
		case stream.ErrorChunk:
			errored = true
			s.apply(SendFailed{MessageID: assistant.ID, Message: c.Message})
			s.emit(ShowError{Message: c.Message, Severity: apierr.SeverityError})
		case stream.Done:
			done = c
		}
	}

	if errored {
		return
	}
	if sendCtx.Err() != nil {
		s.apply(SendCanceled{MessageID: assistant.ID})
		return
	}

	cacheThread := threadID
	if cacheThread == "" {
		cacheThread = done.ThreadID
	}
	if cacheThread != "" {
		s.messages.Invalidate(ctx, cacheThread)
	}
	s.threads.InvalidateLists(ctx)

	s.apply(SendCompleted{MessageID: assistant.ID, ThreadID: done.ThreadID, ServerMessageID: done.MessageID})
	if threadID == "" && done.ThreadID != "" {
		s.emit(OpenThread{ThreadID: done.ThreadID})
	}
}

// endSend forgets the cancel func of turn seq unless a newer turn replaced it.
func (s *Store) endSend(seq uint64) {
	s.mu.Lock()
	if s.sendSeq == seq {
		s.sendCancel = nil
	}
	s.mu.Unlock()
}

func (s *Store) cancelSend() {
	s.mu.Lock()
	cancel := s.sendCancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// canceled reports whether err is the cancellation of ctx, which ends an
// intent without a state change.
func (s *Store) canceled(ctx context.Context, err error) bool {
	if ctx.Err() != nil || apierr.IsCanceled(err) {
		s.log.Debug("intent canceled", zap.Error(err))
		return true
	}
	return false
}
