package out

import (
	"context"

	"github.com/dingdongdog/supabase-activity-tracker/internal/core/domain"
)

// NotifierPort - пост-коммит хук, вызывается только после подтвержденной записи
type NotifierPort interface {
	Broadcast(ctx context.Context, notification domain.Notification) error
}
