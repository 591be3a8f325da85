package usecase

import (
	"context"
	_ "embed"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/hemlix/simkb/pkg/domain/interfaces"
	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
	"github.com/hemlix/simkb/pkg/utils/logging"
)

//go:embed prompt/navigator_system.md
var navigatorSystemPrompt string

// ChatUseCase runs the natural-language dialogue loop: one LLM call that may
// request tools, one round of tool execution, and one synthesis call.
// Function calls in the synthesis response are not executed; the loop is
// deliberately bounded at a single tool round per turn.
type ChatUseCase struct {
	repo        interfaces.Repository
	sessions    interfaces.SessionStore
	llm         gollem.LLMClient
	tools       []gollem.Tool
	toolsByName map[string]gollem.Tool
	llmTimeout  time.Duration

	mu          sync.Mutex
	sessionLock map[types.SessionID]*sync.Mutex
}

type Option func(*ChatUseCase)

// WithLLMTimeout bounds each outbound LLM call. Zero disables the bound.
func WithLLMTimeout(d time.Duration) Option {
	return func(uc *ChatUseCase) {
		uc.llmTimeout = d
	}
}

func NewChatUseCase(repo interfaces.Repository, sessions interfaces.SessionStore, llm gollem.LLMClient, tools []gollem.Tool, opts ...Option) *ChatUseCase {
	byName := make(map[string]gollem.Tool, len(tools))
	for _, t := range tools {
		byName[t.Spec().Name] = t
	}

	uc := &ChatUseCase{
		repo:        repo,
		sessions:    sessions,
		llm:         llm,
		tools:       tools,
		toolsByName: byName,
		sessionLock: make(map[types.SessionID]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// lockSession serializes turns within one session. Different sessions
// proceed concurrently.
func (uc *ChatUseCase) lockSession(id types.SessionID) func() {
	uc.mu.Lock()
	lock, ok := uc.sessionLock[id]
	if !ok {
		lock = &sync.Mutex{}
		uc.sessionLock[id] = lock
	}
	uc.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Chat processes one user turn for the given session. Commands (clear,
// stats, help) are answered locally without touching the LLM.
func (uc *ChatUseCase) Chat(ctx context.Context, sessionID types.SessionID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", goerr.New("message is empty")
	}

	if reply, handled, err := uc.runCommand(ctx, sessionID, message); handled {
		return reply, err
	}

	unlock := uc.lockSession(sessionID)
	defer unlock()

	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", goerr.Wrap(err, "failed to load session", goerr.V("sessionID", sessionID))
	}

	opts := []gollem.SessionOption{
		gollem.WithSessionSystemPrompt(navigatorSystemPrompt),
		gollem.WithSessionTools(uc.tools...),
	}
	if session != nil && session.History != nil {
		opts = append(opts, gollem.WithSessionHistory(session.History))
	}

	ssn, err := uc.llm.NewSession(ctx, opts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := uc.generate(ctx, ssn, []gollem.Input{gollem.Text(message)})
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate response")
	}

	if len(resp.FunctionCalls) > 0 {
		inputs := make([]gollem.Input, 0, len(resp.FunctionCalls))
		for _, call := range resp.FunctionCalls {
			inputs = append(inputs, uc.executeTool(ctx, call))
		}

		resp, err = uc.generate(ctx, ssn, inputs)
		if err != nil {
			return "", goerr.Wrap(err, "failed to generate final response")
		}
	}

	answer := strings.Join(resp.Texts, "\n")
	if answer == "" {
		answer = "I couldn't generate an answer for that. Try rephrasing the question."
	}

	// History is persisted only after the whole turn succeeded, so a failed
	// turn leaves the session as it was.
	history, err := ssn.History()
	if err != nil {
		return "", goerr.Wrap(err, "failed to extract session history")
	}

	if session == nil {
		session = &model.ChatSession{
			ID:        sessionID,
			CreatedAt: time.Now().UTC(),
		}
	}
	session.History = history
	session.Turns++

	if err := uc.sessions.Put(ctx, session); err != nil {
		return "", goerr.Wrap(err, "failed to store session", goerr.V("sessionID", sessionID))
	}

	return answer, nil
}

// generate runs one LLM call under the configured timeout.
func (uc *ChatUseCase) generate(ctx context.Context, ssn gollem.Session, inputs []gollem.Input) (*gollem.Response, error) {
	if uc.llmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.llmTimeout)
		defer cancel()
	}
	return ssn.Generate(ctx, inputs)
}

func (uc *ChatUseCase) executeTool(ctx context.Context, call *gollem.FunctionCall) gollem.FunctionResponse {
	logger := logging.From(ctx)

	t, ok := uc.toolsByName[call.Name]
	if !ok {
		logger.Warn("model requested unknown tool", "name", call.Name)
		return gollem.FunctionResponse{
			ID:   call.ID,
			Name: call.Name,
			Data: map[string]any{"error": "Unknown tool: " + call.Name},
		}
	}

	logger.Debug("executing tool", "name", call.Name)

	data, err := t.Run(ctx, call.Arguments)
	if err != nil {
		logger.Warn("tool execution failed", "name", call.Name, logging.ErrAttr(err))
		return gollem.FunctionResponse{
			ID:    call.ID,
			Name:  call.Name,
			Error: err,
		}
	}

	return gollem.FunctionResponse{
		ID:   call.ID,
		Name: call.Name,
		Data: data,
	}
}

// Stats returns entity counts for the stats command and the HTTP stats
// endpoint.
func (uc *ChatUseCase) Stats(ctx context.Context) (*model.Stats, error) {
	stats := &model.Stats{}
	var err error

	if stats.Organizations, err = uc.repo.Organization().Count(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to count organizations")
	}
	if stats.Products, err = uc.repo.Product().Count(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to count products")
	}
	if stats.Roles, err = uc.repo.Role().Count(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to count roles")
	}
	if stats.Documents, err = uc.repo.Document().Count(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to count documents")
	}
	if stats.Chunks, err = uc.repo.Chunk().Count(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to count chunks")
	}

	return stats, nil
}

// ClearSession drops a session's conversation history.
func (uc *ChatUseCase) ClearSession(ctx context.Context, sessionID types.SessionID) error {
	unlock := uc.lockSession(sessionID)
	defer unlock()

	return uc.sessions.Delete(ctx, sessionID)
}
