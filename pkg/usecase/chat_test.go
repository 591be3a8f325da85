package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/hemlix/simkb/pkg/agent/tool/kb"
	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
	"github.com/hemlix/simkb/pkg/repository/memory"
	"github.com/hemlix/simkb/pkg/service/semsearch"
	"github.com/hemlix/simkb/pkg/usecase"
)

type mockLLMSession struct {
	generateFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
	calls      int
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	s.calls++
	if s.generateFn != nil {
		return s.generateFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{"plain answer"}}, nil
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return s.Generate(ctx, input)
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return s.Stream(ctx, input)
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return &gollem.History{}, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
	sessions     int
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	c.sessions++
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	vecs := make([][]float64, len(input))
	for i := range input {
		vecs[i] = []float64{1, 0}
	}
	return vecs, nil
}

func seedRepo(t *testing.T) *memory.Memory {
	t.Helper()
	ctx := context.Background()
	repo := memory.New()

	org := gt.R1(repo.Organization().Create(ctx, &model.Organization{
		Name:        "protective_life",
		DisplayName: "Protective Life",
	})).NoError(t)
	product := gt.R1(repo.Product().Create(ctx, &model.Product{Name: "Annuity"})).NoError(t)

	gt.R1(repo.Document().Create(ctx, &model.Document{
		Title:           "Protective Life Annuity Scorecard 2026",
		Type:            types.DocumentTypeCarrierScorecard,
		Content:         `{"scores": {"n_score": 0.82, "rank_current": 3}}`,
		OrganizationIDs: []types.OrganizationID{org.ID},
		ProductIDs:      []types.ProductID{product.ID},
	})).NoError(t)

	return repo
}

func newChat(repo *memory.Memory, llm gollem.LLMClient) (*usecase.ChatUseCase, *memory.SessionStore) {
	sessions := memory.NewSessionStore()
	search := semsearch.New(repo, llm, semsearch.WithDimension(2))
	uc := usecase.NewChatUseCase(repo, sessions, llm, kb.New(repo, search))
	return uc, sessions
}

func TestChatPlainTurn(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	llm := &mockLLMClient{}
	uc, sessions := newChat(repo, llm)

	sessionID := types.NewSessionID()
	answer := gt.R1(uc.Chat(ctx, sessionID, "hello")).NoError(t)
	gt.V(t, answer).Equal("plain answer")
	gt.V(t, llm.sessions).Equal(1)

	stored := gt.R1(sessions.Get(ctx, sessionID)).NoError(t)
	gt.V(t, stored).NotNil()
	gt.V(t, stored.Turns).Equal(1)
	gt.V(t, stored.History).NotNil()
}

func TestChatToolRound(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)

	var toolResponses []gollem.FunctionResponse
	session := &mockLLMSession{}
	session.generateFn = func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
		if session.calls == 1 {
			return &gollem.Response{
				FunctionCalls: []*gollem.FunctionCall{{
					ID:   "call-1",
					Name: "get_scorecard",
					Arguments: map[string]any{
						"carrier_name": "Protective Life",
						"product_type": "Annuity",
					},
				}},
			}, nil
		}

		for _, in := range input {
			if fr, ok := in.(gollem.FunctionResponse); ok {
				toolResponses = append(toolResponses, fr)
			}
		}
		return &gollem.Response{Texts: []string{"Protective Life ranked 3rd with an n_score of 0.82."}}, nil
	}

	llm := &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return session, nil
		},
	}
	uc, sessions := newChat(repo, llm)

	sessionID := types.NewSessionID()
	answer := gt.R1(uc.Chat(ctx, sessionID, "How did Protective Life perform in Annuities?")).NoError(t)
	gt.V(t, answer).Equal("Protective Life ranked 3rd with an n_score of 0.82.")

	// one call requesting tools, one synthesis call
	gt.V(t, session.calls).Equal(2)

	gt.A(t, toolResponses).Length(1)
	gt.V(t, toolResponses[0].ID).Equal("call-1")
	gt.V(t, toolResponses[0].Name).Equal("get_scorecard")
	data := toolResponses[0].Data
	gt.V(t, data["carrier"]).Equal("Protective Life")

	stored := gt.R1(sessions.Get(ctx, sessionID)).NoError(t)
	gt.V(t, stored.Turns).Equal(1)
}

func TestChatUnknownToolRequested(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)

	session := &mockLLMSession{}
	var captured []gollem.FunctionResponse
	session.generateFn = func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
		if session.calls == 1 {
			return &gollem.Response{
				FunctionCalls: []*gollem.FunctionCall{{
					ID:   "call-x",
					Name: "drop_tables",
				}},
			}, nil
		}
		for _, in := range input {
			if fr, ok := in.(gollem.FunctionResponse); ok {
				captured = append(captured, fr)
			}
		}
		return &gollem.Response{Texts: []string{"I cannot do that."}}, nil
	}

	llm := &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return session, nil
		},
	}
	uc, _ := newChat(repo, llm)

	answer := gt.R1(uc.Chat(ctx, types.NewSessionID(), "do something weird")).NoError(t)
	gt.V(t, answer).Equal("I cannot do that.")
	gt.A(t, captured).Length(1)
	gt.V(t, captured[0].Data["error"]).Equal("Unknown tool: drop_tables")
}

func TestChatCommands(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	llm := &mockLLMClient{}
	uc, sessions := newChat(repo, llm)

	sessionID := types.NewSessionID()

	t.Run("help does not call the LLM", func(t *testing.T) {
		answer := gt.R1(uc.Chat(ctx, sessionID, "help")).NoError(t)
		gt.S(t, answer).Contains("Commands:")
		gt.V(t, llm.sessions).Equal(0)
	})

	t.Run("stats reports counts and search availability", func(t *testing.T) {
		answer := gt.R1(uc.Chat(ctx, sessionID, "stats")).NoError(t)
		gt.S(t, answer).Contains("Organizations: 1")
		gt.S(t, answer).Contains("Documents: 1")
		gt.S(t, answer).Contains("Semantic search not available")
		gt.V(t, llm.sessions).Equal(0)
	})

	t.Run("exit is handled locally", func(t *testing.T) {
		answer := gt.R1(uc.Chat(ctx, sessionID, "exit")).NoError(t)
		gt.V(t, answer).Equal("Goodbye!")
		gt.V(t, llm.sessions).Equal(0)
	})

	t.Run("clear removes the session", func(t *testing.T) {
		gt.R1(uc.Chat(ctx, sessionID, "a question")).NoError(t)
		gt.V(t, gt.R1(sessions.Get(ctx, sessionID)).NoError(t)).NotNil()

		answer := gt.R1(uc.Chat(ctx, sessionID, "clear")).NoError(t)
		gt.V(t, answer).Equal("Conversation history cleared")

		stored := gt.R1(sessions.Get(ctx, sessionID)).NoError(t)
		gt.V(t, stored).Nil()
	})
}

func TestChatFailureLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)

	fail := false
	session := &mockLLMSession{}
	session.generateFn = func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
		if fail {
			return nil, errors.New("model unavailable")
		}
		return &gollem.Response{Texts: []string{"first answer"}}, nil
	}
	llm := &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return session, nil
		},
	}
	uc, sessions := newChat(repo, llm)

	sessionID := types.NewSessionID()
	gt.R1(uc.Chat(ctx, sessionID, "first question")).NoError(t)

	fail = true
	_, err := uc.Chat(ctx, sessionID, "second question")
	gt.Error(t, err)

	stored := gt.R1(sessions.Get(ctx, sessionID)).NoError(t)
	gt.V(t, stored.Turns).Equal(1)
}

func TestChatSessionIsolation(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	llm := &mockLLMClient{}
	uc, sessions := newChat(repo, llm)

	first := types.NewSessionID()
	second := types.NewSessionID()

	gt.R1(uc.Chat(ctx, first, "question one")).NoError(t)
	gt.R1(uc.Chat(ctx, first, "question two")).NoError(t)
	gt.R1(uc.Chat(ctx, second, "other question")).NoError(t)

	a := gt.R1(sessions.Get(ctx, first)).NoError(t)
	b := gt.R1(sessions.Get(ctx, second)).NoError(t)
	gt.V(t, a.Turns).Equal(2)
	gt.V(t, b.Turns).Equal(1)
}
