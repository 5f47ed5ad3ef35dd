package out

import (
	"context"

	"github.com/dingdongdog/supabase-activity-tracker/internal/core/domain"
)

type CachePort interface {
	// Кэширование снапшота сессии (ростер + расписание + слоты)
	GetSessionSnapshot(ctx context.Context, sessionCode string) (*domain.SessionSnapshot, bool)
	StoreSessionSnapshot(ctx context.Context, sessionCode string, snapshot domain.SessionSnapshot)
	InvalidateSessionSnapshot(ctx context.Context, sessionCode string)
	InvalidateAllSessions(ctx context.Context)
}
