package services

import (
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/domain"
)

type ActivitySlice []domain.Activity

// quickSort - сортировка записей по created_at, свежие первыми
func (s ActivitySlice) quickSort() ActivitySlice {
	if len(s) < 2 {
		return s
	}

	// Выбираем опорный элемент
	pivot := s[len(s)/2]

	// Разделяем слайс на три части
	less := ActivitySlice{}
	equal := ActivitySlice{}
	greater := ActivitySlice{}

	for _, activity := range s {
		if activity.CreatedAt.Date.After(pivot.CreatedAt.Date) {
			less = append(less, activity)
		} else if activity.CreatedAt.Date.Equal(pivot.CreatedAt.Date) {
			equal = append(equal, activity)
		} else {
			greater = append(greater, activity)
		}
	}

	// Рекурсивно сортируем подмассивы и объединяем их
	return append(append(less.quickSort(), equal...), greater.quickSort()...)
}

// GroupActivitiesByDate группирует записи по календарным дням
// Дни идут от новых к старым, внутри дня записи тоже от новых к старым
func GroupActivitiesByDate(activities []domain.Activity) []domain.ActivityDayGroup {
	sorted := ActivitySlice(activities).quickSort()

	groups := make([]domain.ActivityDayGroup, 0)
	indexByDate := make(map[string]int)

	for _, activity := range sorted {
		key := activity.Date.String()
		index, exists := indexByDate[key]
		if !exists {
			groups = append(groups, domain.ActivityDayGroup{
				Date:       activity.Date,
				Activities: make([]domain.Activity, 0, 1),
			})
			index = len(groups) - 1
			indexByDate[key] = index
		}
		groups[index].Activities = append(groups[index].Activities, activity)
	}

	// Дни сортируем по дате группы, свежие первыми
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			if groups[j].Date.Date.After(groups[i].Date.Date) {
				groups[i], groups[j] = groups[j], groups[i]
			}
		}
	}

	return groups
}
