package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	server "github.com/hemlix/simkb/pkg/controller/http"
	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
)

type mockChatUseCase struct {
	chatFn  func(ctx context.Context, sessionID types.SessionID, message string) (string, error)
	statsFn func(ctx context.Context) (*model.Stats, error)
}

func (m *mockChatUseCase) Chat(ctx context.Context, sessionID types.SessionID, message string) (string, error) {
	return m.chatFn(ctx, sessionID, message)
}

func (m *mockChatUseCase) Stats(ctx context.Context) (*model.Stats, error) {
	return m.statsFn(ctx)
}

func postChat(t *testing.T, srv *server.Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	data := gt.R1(json.Marshal(body)).NoError(t)
	req := httptest.NewRequest(http.MethodPost, "/sim/chat", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint(t *testing.T) {
	var gotSession types.SessionID
	var gotMessage string
	uc := &mockChatUseCase{
		chatFn: func(ctx context.Context, sessionID types.SessionID, message string) (string, error) {
			gotSession = sessionID
			gotMessage = message
			return "here is the answer", nil
		},
	}
	srv := server.New(uc)

	rec := postChat(t, srv, map[string]string{
		"message":    "How did Protective Life perform?",
		"session_id": "hmx_session_abc",
	})
	gt.V(t, rec.Code).Equal(http.StatusOK)

	var resp map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	gt.V(t, resp["success"]).Equal(true)
	gt.V(t, resp["response"]).Equal("here is the answer")
	gt.V(t, resp["session_id"]).Equal("hmx_session_abc")
	gt.V(t, gotSession).Equal(types.SessionID("hmx_session_abc"))
	gt.V(t, gotMessage).Equal("How did Protective Life perform?")
}

func TestChatEndpointGeneratesSessionID(t *testing.T) {
	uc := &mockChatUseCase{
		chatFn: func(ctx context.Context, sessionID types.SessionID, message string) (string, error) {
			return "ok", nil
		},
	}
	srv := server.New(uc)

	rec := postChat(t, srv, map[string]string{"message": "hello"})
	gt.V(t, rec.Code).Equal(http.StatusOK)

	var resp map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	id, ok := resp["session_id"].(string)
	gt.True(t, ok)
	gt.S(t, id).Contains("hmx_session_")
}

func TestChatEndpointMissingMessage(t *testing.T) {
	uc := &mockChatUseCase{
		chatFn: func(ctx context.Context, sessionID types.SessionID, message string) (string, error) {
			t.Fatal("chat should not be called")
			return "", nil
		},
	}
	srv := server.New(uc)

	rec := postChat(t, srv, map[string]string{"session_id": "hmx_session_abc"})
	gt.V(t, rec.Code).Equal(http.StatusBadRequest)

	var resp map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	gt.V(t, resp["success"]).Equal(false)
	gt.V(t, resp["error"]).Equal("message is required")
}

func TestChatEndpointHidesInternalErrors(t *testing.T) {
	uc := &mockChatUseCase{
		chatFn: func(ctx context.Context, sessionID types.SessionID, message string) (string, error) {
			return "", goerr.New("firestore connection refused at 10.0.0.5")
		},
	}
	srv := server.New(uc)

	rec := postChat(t, srv, map[string]string{"message": "hello"})
	gt.V(t, rec.Code).Equal(http.StatusInternalServerError)

	var resp map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	gt.V(t, resp["success"]).Equal(false)
	gt.V(t, resp["error"]).Equal("failed to process message")
	gt.S(t, rec.Body.String()).NotContains("10.0.0.5")
}

func TestStatsEndpoint(t *testing.T) {
	uc := &mockChatUseCase{
		statsFn: func(ctx context.Context) (*model.Stats, error) {
			return &model.Stats{
				Organizations: 12,
				Products:      4,
				Roles:         5,
				Documents:     63,
				Chunks:        210,
			}, nil
		},
	}
	srv := server.New(uc)

	req := httptest.NewRequest(http.MethodGet, "/sim/stats", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.V(t, rec.Code).Equal(http.StatusOK)

	var resp map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	gt.V(t, resp["organizations"]).Equal(float64(12))
	gt.V(t, resp["documents"]).Equal(float64(63))
	gt.V(t, resp["search_available"]).Equal(true)
}

func TestHealthEndpoint(t *testing.T) {
	srv := server.New(&mockChatUseCase{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.V(t, rec.Code).Equal(http.StatusOK)
	gt.S(t, rec.Body.String()).Contains(`"status":"ok"`)
}
