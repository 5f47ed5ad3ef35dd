package out

import (
	"context"

	"github.com/google/uuid"

	"github.com/dingdongdog/supabase-activity-tracker/internal/core/domain"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/json_types"
)

type SupabasePort interface {
	// Методы для работы с профилями опекунов
	GetProfiles(ctx context.Context, sessionCode string) ([]domain.CaretakerProfile, error)

	// Методы для работы с расписанием
	GetSchedule(ctx context.Context, sessionCode string) (*domain.Schedule, error)
	UpdateSchedule(ctx context.Context, schedule domain.Schedule) (*domain.Schedule, error)
	GetScheduleSlots(ctx context.Context, scheduleID uuid.UUID) ([]domain.ScheduleSlot, error)
	ReplaceScheduleSlots(ctx context.Context, scheduleID uuid.UUID, slots []domain.ScheduleSlot) error

	// Методы для работы с записями активностей
	GetActivities(ctx context.Context, sessionCode string, date json_types.Date) ([]domain.Activity, error)
	GetActivitiesRange(ctx context.Context, sessionCode string, from, to json_types.Date) ([]domain.Activity, error)
	InsertActivity(ctx context.Context, activity domain.Activity) (*domain.Activity, error)
}
