package services

import (
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/domain"
)

// ComputeSlotStatuses - чистая функция над уже загруженными данными
// Для каждого включенного слота определяет, закрыт ли он записью за день
// Порядок результата фиксированный: feed, walk, letout x morning, afternoon, evening
func ComputeSlotStatuses(config domain.ScheduleSlotConfig, todaysActivities []domain.Activity, profiles []domain.CaretakerProfile) []domain.SlotStatus {
	statuses := make([]domain.SlotStatus, 0, 9)

	for _, activityType := range domain.ActivityTypesOrdered {
		for _, timePeriod := range domain.TimePeriodsOrdered {
			// Выключенные слоты не попадают в результат вообще
			if !config.Enabled(activityType, timePeriod) {
				continue
			}

			status := domain.SlotStatus{
				Type:       activityType,
				TimePeriod: timePeriod,
				State:      domain.SlotStatePending,
			}

			// Слот закрыт, если есть хотя бы одна совпадающая запись
			// При нескольких записях атрибуция достается самой поздней по created_at
			if latest := latestActivityFor(todaysActivities, activityType, timePeriod); latest != nil {
				completedBy := domain.ResolveCaretaker(profiles, latest.CaretakerID)
				completedAt := latest.CreatedAt

				status.State = domain.SlotStateCompleted
				status.CompletedBy = &completedBy
				status.CompletedAt = &completedAt
			}

			statuses = append(statuses, status)
		}
	}

	return statuses
}

func latestActivityFor(activities []domain.Activity, activityType domain.ActivityType, timePeriod domain.TimePeriod) *domain.Activity {
	var latest *domain.Activity

	for i := range activities {
		activity := &activities[i]
		if activity.Type != activityType || activity.TimePeriod != timePeriod {
			continue
		}
		if latest == nil || activity.CreatedAt.Date.After(latest.CreatedAt.Date) {
			latest = activity
		}
	}

	return latest
}

// PickNextSlot выбирает первый незакрытый слот в фиксированном порядке
// nowPeriod - подсказка отображения: сначала смотрим слоты текущего периода и позже,
// потом доворачиваемся к незакрытым слотам раньше по дню. Слоты никогда не скрываются
func PickNextSlot(statuses []domain.SlotStatus, nowPeriod domain.TimePeriod) (domain.SlotRef, bool) {
	var firstPending *domain.SlotStatus

	for i := range statuses {
		status := &statuses[i]
		if status.State != domain.SlotStatePending {
			continue
		}
		if firstPending == nil {
			firstPending = status
		}
		if !timePeriodBefore(status.TimePeriod, nowPeriod) {
			return status.Ref(), true
		}
	}

	if firstPending != nil {
		return firstPending.Ref(), true
	}

	return domain.SlotRef{}, false
}

func timePeriodBefore(a, b domain.TimePeriod) bool {
	return timePeriodIndex(a) < timePeriodIndex(b)
}

func timePeriodIndex(p domain.TimePeriod) int {
	for i, period := range domain.TimePeriodsOrdered {
		if p == period {
			return i
		}
	}
	return len(domain.TimePeriodsOrdered)
}
