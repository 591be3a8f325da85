package usecase

import (
	"github.com/m-mizutani/gollem"

	"github.com/hemlix/simkb/pkg/agent/tool/kb"
	"github.com/hemlix/simkb/pkg/domain/interfaces"
	"github.com/hemlix/simkb/pkg/service/semsearch"
)

type UseCases struct {
	repo     interfaces.Repository
	sessions interfaces.SessionStore
	Chat     *ChatUseCase
}

func New(repo interfaces.Repository, sessions interfaces.SessionStore, llm gollem.LLMClient, search *semsearch.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		sessions: sessions,
	}

	uc.Chat = NewChatUseCase(repo, sessions, llm, kb.New(repo, search), opts...)

	return uc
}
