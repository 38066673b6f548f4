package cats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetCatRequestHandler serves one request's cat lookups. It is scoped: the
// request id is stable for the lifetime of the request scope.
type GetCatRequestHandler struct {
	repo      CatsRepository
	logger    *zap.Logger
	requestID uuid.UUID
}

func NewGetCatRequestHandler(repo CatsRepository, logger *zap.Logger) *GetCatRequestHandler {
	return &GetCatRequestHandler{repo: repo, logger: logger, requestID: uuid.New()}
}

// RequestID identifies the handler instance, one per request scope.
func (h *GetCatRequestHandler) RequestID() uuid.UUID { return h.requestID }

func (h *GetCatRequestHandler) Handle(ctx context.Context, id int) (*Cat, error) {
	cat, err := h.repo.GetByID(ctx, id)
	h.logger.Debug("get cat",
		zap.Int("id", id),
		zap.Stringer("handler", h.requestID),
		zap.Error(err),
	)
	return cat, err
}

// Stats is produced by an async factory: it counts the cats once per
// process, on first await.
type Stats struct {
	Count      int       `json:"count"`
	ComputedAt time.Time `json:"computed_at"`
}

func NewStats(ctx context.Context, repo CatsRepository) (*Stats, error) {
	cats, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{Count: len(cats), ComputedAt: time.Now()}, nil
}
