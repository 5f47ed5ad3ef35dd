package in

import (
	"context"

	"github.com/google/uuid"

	"github.com/dingdongdog/supabase-activity-tracker/internal/core/domain"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/json_types"
)

type ActivityTrackerUseCase interface {
	// Сводка дня: статусы слотов, следующий слот, ростер и журнал за день
	DayOverview(ctx context.Context, sessionCode string, date *json_types.Date) (*domain.DayOverview, []domain.DebugInfo, error)

	// Создание записи активности с пост-коммит уведомлением
	RecordActivity(ctx context.Context, sessionCode string, newActivity domain.NewActivity) (*domain.Activity, error)

	// Журнал активностей, сгруппированный по датам
	ActivityLog(ctx context.Context, sessionCode string, from, to *json_types.Date) ([]domain.ActivityDayGroup, error)

	// Ростер сессии
	Profiles(ctx context.Context, sessionCode string) ([]domain.CaretakerProfile, error)

	// Чтение и администрирование расписания
	GetSchedule(ctx context.Context, sessionCode string) (*domain.ScheduleDetails, error)
	UpdateSchedule(ctx context.Context, sessionCode string, actorID uuid.UUID, update domain.ScheduleUpdate) (*domain.Schedule, error)
	ReplaceScheduleSlots(ctx context.Context, sessionCode string, actorID uuid.UUID, slots []domain.SlotRef) (*domain.ScheduleSlotConfig, error)

	// Инвалидация кэша сессии при изменении данных в бэкенде
	InvalidateSessionCache(ctx context.Context, sessionCode string)
	InvalidateAllSessionsCache(ctx context.Context)
}
