package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"time"

	"github.com/google/uuid"

	"github.com/dingdongdog/supabase-activity-tracker/internal/config"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/domain"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/json_types"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/ports/out"
)

type SupabaseAdapter struct {
	client     *http.Client
	baseURL    string
	serviceKey string
	logger     out.LoggerPort
}

func NewSupabaseAdapter(cfg *config.Config, logger out.LoggerPort) *SupabaseAdapter {
	return &SupabaseAdapter{
		client:     &http.Client{Timeout: 10 * time.Second},
		baseURL:    cfg.Supabase.URL,
		serviceKey: cfg.Supabase.ServiceKey,
		logger:     logger,
	}
}

// newRequest собирает запрос к PostgREST с сервисным ключом
func (a *SupabaseAdapter) newRequest(ctx context.Context, method, table string, query nurl.Values, body io.Reader) (*http.Request, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", a.baseURL, table)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	req.Header.Set("apikey", a.serviceKey)
	req.Header.Set("Authorization", "Bearer "+a.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (a *SupabaseAdapter) do(req *http.Request) (*http.Response, error) {
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp, nil
}

func (a *SupabaseAdapter) GetProfiles(ctx context.Context, sessionCode string) ([]domain.CaretakerProfile, error) {
	a.logger.Info("supabase.profiles.fetch", out.LogFields{
		"sessionCode": sessionCode,
	})

	query := nurl.Values{}
	query.Add("select", "*")
	query.Add("session_code", "eq."+sessionCode)
	query.Add("order", "name.asc")

	req, err := a.newRequest(ctx, http.MethodGet, "profiles", query, nil)
	if err != nil {
		a.logger.Error("supabase.profiles.fetch_failed", out.LogFields{
			"sessionCode": sessionCode,
			"error":       err.Error(),
		})
		return nil, err
	}

	resp, err := a.do(req)
	if err != nil {
		a.logger.Error("supabase.profiles.fetch_failed", out.LogFields{
			"sessionCode": sessionCode,
			"error":       err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	var profiles []domain.CaretakerProfile
	if err := json.NewDecoder(resp.Body).Decode(&profiles); err != nil {
		a.logger.Error("supabase.profiles.decode_failed", out.LogFields{
			"sessionCode": sessionCode,
			"error":       err.Error(),
		})
		return nil, err
	}

	a.logger.Debug("supabase.profiles.fetch_success", out.LogFields{
		"sessionCode": sessionCode,
		"count":       len(profiles),
	})

	return profiles, nil
}

func (a *SupabaseAdapter) GetSchedule(ctx context.Context, sessionCode string) (*domain.Schedule, error) {
	a.logger.Info("supabase.schedule.fetch", out.LogFields{
		"sessionCode": sessionCode,
	})

	query := nurl.Values{}
	query.Add("select", "*")
	query.Add("session_code", "eq."+sessionCode)
	query.Add("limit", "1")

	req, err := a.newRequest(ctx, http.MethodGet, "schedules", query, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.do(req)
	if err != nil {
		a.logger.Error("supabase.schedule.fetch_failed", out.LogFields{
			"sessionCode": sessionCode,
			"error":       err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	var schedules []domain.Schedule
	if err := json.NewDecoder(resp.Body).Decode(&schedules); err != nil {
		a.logger.Error("supabase.schedule.decode_failed", out.LogFields{
			"sessionCode": sessionCode,
			"error":       err.Error(),
		})
		return nil, err
	}

	if len(schedules) == 0 {
		a.logger.Warn("supabase.schedule.no_entry", out.LogFields{
			"sessionCode": sessionCode,
		})
		return nil, nil
	}

	return &schedules[0], nil
}

func (a *SupabaseAdapter) UpdateSchedule(ctx context.Context, schedule domain.Schedule) (*domain.Schedule, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"feeding_instruction": schedule.FeedingInstruction,
		"walking_instruction": schedule.WalkingInstruction,
		"letout_instruction":  schedule.LetoutInstruction,
		"letout_count":        schedule.LetoutCount,
	})
	if err != nil {
		return nil, err
	}

	query := nurl.Values{}
	query.Add("id", "eq."+schedule.ID.String())

	req, err := a.newRequest(ctx, http.MethodPatch, "schedules", query, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")

	resp, err := a.do(req)
	if err != nil {
		a.logger.Error("supabase.schedule.update_failed", out.LogFields{
			"scheduleId": schedule.ID,
			"error":      err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	var updated []domain.Schedule
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("schedule %s not found", schedule.ID)
	}

	a.logger.Debug("supabase.schedule.update_success", out.LogFields{
		"scheduleId": schedule.ID,
	})

	return &updated[0], nil
}

func (a *SupabaseAdapter) GetScheduleSlots(ctx context.Context, scheduleID uuid.UUID) ([]domain.ScheduleSlot, error) {
	query := nurl.Values{}
	query.Add("select", "*")
	query.Add("schedule_id", "eq."+scheduleID.String())

	req, err := a.newRequest(ctx, http.MethodGet, "schedule_times", query, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.do(req)
	if err != nil {
		a.logger.Error("supabase.schedule_times.fetch_failed", out.LogFields{
			"scheduleId": scheduleID,
			"error":      err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	var slots []domain.ScheduleSlot
	if err := json.NewDecoder(resp.Body).Decode(&slots); err != nil {
		return nil, err
	}

	a.logger.Debug("supabase.schedule_times.fetch_success", out.LogFields{
		"scheduleId": scheduleID,
		"count":      len(slots),
	})

	return slots, nil
}

// ReplaceScheduleSlots перезаписывает набор включенных слотов расписания
// PostgREST не умеет replace одним запросом, поэтому delete + insert
func (a *SupabaseAdapter) ReplaceScheduleSlots(ctx context.Context, scheduleID uuid.UUID, slots []domain.ScheduleSlot) error {
	query := nurl.Values{}
	query.Add("schedule_id", "eq."+scheduleID.String())

	req, err := a.newRequest(ctx, http.MethodDelete, "schedule_times", query, nil)
	if err != nil {
		return err
	}

	resp, err := a.do(req)
	if err != nil {
		a.logger.Error("supabase.schedule_times.delete_failed", out.LogFields{
			"scheduleId": scheduleID,
			"error":      err.Error(),
		})
		return err
	}
	resp.Body.Close()

	if len(slots) == 0 {
		return nil
	}

	payload, err := json.Marshal(slots)
	if err != nil {
		return err
	}

	req, err = a.newRequest(ctx, http.MethodPost, "schedule_times", nil, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	resp, err = a.do(req)
	if err != nil {
		a.logger.Error("supabase.schedule_times.insert_failed", out.LogFields{
			"scheduleId": scheduleID,
			"error":      err.Error(),
		})
		return err
	}
	resp.Body.Close()

	a.logger.Debug("supabase.schedule_times.replace_success", out.LogFields{
		"scheduleId": scheduleID,
		"count":      len(slots),
	})

	return nil
}

func (a *SupabaseAdapter) getActivities(ctx context.Context, sessionCode string, query nurl.Values) ([]domain.Activity, error) {
	// Сессия активности определяется через профиль опекуна,
	// поэтому фильтруем через inner join на profiles
	query.Add("select", "*,profiles!inner(session_code)")
	query.Add("profiles.session_code", "eq."+sessionCode)
	query.Add("order", "created_at.desc")

	req, err := a.newRequest(ctx, http.MethodGet, "activities", query, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.do(req)
	if err != nil {
		a.logger.Error("supabase.activities.fetch_failed", out.LogFields{
			"sessionCode": sessionCode,
			"error":       err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	var activities []domain.Activity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		a.logger.Error("supabase.activities.decode_failed", out.LogFields{
			"sessionCode": sessionCode,
			"error":       err.Error(),
		})
		return nil, err
	}

	// Строки из бэкенда всегда подтвержденные
	for i := range activities {
		activities[i].State = domain.ActivityStateConfirmed
	}

	a.logger.Debug("supabase.activities.fetch_success", out.LogFields{
		"sessionCode": sessionCode,
		"count":       len(activities),
	})

	return activities, nil
}

func (a *SupabaseAdapter) GetActivities(ctx context.Context, sessionCode string, date json_types.Date) ([]domain.Activity, error) {
	a.logger.Info("supabase.activities.fetch", out.LogFields{
		"sessionCode": sessionCode,
		"date":        date.String(),
	})

	query := nurl.Values{}
	query.Add("date", "eq."+date.String())

	return a.getActivities(ctx, sessionCode, query)
}

func (a *SupabaseAdapter) GetActivitiesRange(ctx context.Context, sessionCode string, from, to json_types.Date) ([]domain.Activity, error) {
	a.logger.Info("supabase.activities.fetch_range", out.LogFields{
		"sessionCode": sessionCode,
		"from":        from.String(),
		"to":          to.String(),
	})

	query := nurl.Values{}
	query.Add("date", "gte."+from.String())
	query.Add("date", "lte."+to.String())

	return a.getActivities(ctx, sessionCode, query)
}

func (a *SupabaseAdapter) InsertActivity(ctx context.Context, activity domain.Activity) (*domain.Activity, error) {
	a.logger.Info("supabase.activities.insert", out.LogFields{
		"activityId": activity.ID,
		"type":       activity.Type,
		"timePeriod": activity.TimePeriod,
		"date":       activity.Date.String(),
	})

	payload, err := json.Marshal(activity)
	if err != nil {
		return nil, err
	}

	req, err := a.newRequest(ctx, http.MethodPost, "activities", nil, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")

	resp, err := a.do(req)
	if err != nil {
		a.logger.Error("supabase.activities.insert_failed", out.LogFields{
			"activityId": activity.ID,
			"error":      err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	var inserted []domain.Activity
	if err := json.NewDecoder(resp.Body).Decode(&inserted); err != nil {
		a.logger.Error("supabase.activities.insert_decode_failed", out.LogFields{
			"activityId": activity.ID,
			"error":      err.Error(),
		})
		return nil, err
	}
	if len(inserted) == 0 {
		return nil, fmt.Errorf("insert returned no representation")
	}

	a.logger.Debug("supabase.activities.insert_success", out.LogFields{
		"activityId": inserted[0].ID,
	})

	return &inserted[0], nil
}
