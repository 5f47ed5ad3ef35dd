package http

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dingdongdog/supabase-activity-tracker/internal/config"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/domain"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/json_types"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/ports/in"
	"github.com/dingdongdog/supabase-activity-tracker/internal/utils"
)

// Заголовок, через который клиент передает id действующего опекуна
const caretakerHeader = "X-Caretaker-Id"

type ActivityTrackerController struct {
	useCase in.ActivityTrackerUseCase
	cfg     *config.Config
}

func NewActivityTrackerController(useCase in.ActivityTrackerUseCase, cfg *config.Config) *ActivityTrackerController {
	return &ActivityTrackerController{
		useCase: useCase,
		cfg:     cfg,
	}
}

func (c *ActivityTrackerController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	api.Use(c.basicAuth())
	{
		sessions := api.Group("/sessions/:sessionCode")
		{
			sessions.GET("/overview", c.dayOverview)
			sessions.POST("/activities", c.recordActivity)
			sessions.GET("/activities", c.activityLog)
			sessions.GET("/profiles", c.profiles)
			sessions.GET("/schedule", c.getSchedule)
			sessions.PATCH("/schedule", c.updateSchedule)
			sessions.PUT("/schedule/slots", c.replaceScheduleSlots)
		}
	}
}

type RecordActivityRequest struct {
	Type        domain.ActivityType `json:"type" binding:"required,oneof=feed walk letout"`
	TimePeriod  domain.TimePeriod   `json:"timePeriod" binding:"omitempty,oneof=morning afternoon evening"`
	CaretakerID uuid.UUID           `json:"caretakerId" binding:"required"`
	Notes       string              `json:"notes"`
	Date        string              `json:"date"`
}

type UpdateScheduleRequest struct {
	FeedingInstruction *string `json:"feedingInstruction"`
	WalkingInstruction *string `json:"walkingInstruction"`
	LetoutInstruction  *string `json:"letoutInstruction"`
	LetoutCount        *int    `json:"letoutCount"`
}

type ReplaceScheduleSlotsRequest struct {
	Slots []domain.SlotRef `json:"slots" binding:"required"`
}

func (c *ActivityTrackerController) dayOverview(ctx *gin.Context) {
	sessionCode := ctx.Param("sessionCode")

	var date *json_types.Date
	if dateParam := ctx.Query("date"); dateParam != "" {
		parsed, err := utils.ParseDay(dateParam)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
			return
		}
		date = &parsed
	}

	overview, debug, err := c.useCase.DayOverview(ctx.Request.Context(), sessionCode, date)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response := gin.H{"overview": overview}
	// Тайминги фаз отдаем только в локальном окружении
	if c.cfg.IsLocal() {
		response["debug"] = debug
	}

	ctx.JSON(http.StatusOK, response)
}

func (c *ActivityTrackerController) recordActivity(ctx *gin.Context) {
	sessionCode := ctx.Param("sessionCode")

	var req RecordActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newActivity := domain.NewActivity{
		Type:        req.Type,
		TimePeriod:  req.TimePeriod,
		CaretakerID: req.CaretakerID,
		Notes:       req.Notes,
	}

	if req.Date != "" {
		parsed, err := utils.ParseDay(req.Date)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
			return
		}
		newActivity.Date = &parsed
	}

	activity, err := c.useCase.RecordActivity(ctx.Request.Context(), sessionCode, newActivity)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"activity": activity})
}

func (c *ActivityTrackerController) activityLog(ctx *gin.Context) {
	sessionCode := ctx.Param("sessionCode")

	var from, to *json_types.Date

	// ?date= это журнал за один день
	if dateParam := ctx.Query("date"); dateParam != "" {
		parsed, err := utils.ParseDay(dateParam)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
			return
		}
		from = &parsed
		to = &parsed
	}

	if fromParam := ctx.Query("from"); fromParam != "" {
		parsed, err := utils.ParseDay(fromParam)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date format"})
			return
		}
		from = &parsed
	}
	if toParam := ctx.Query("to"); toParam != "" {
		parsed, err := utils.ParseDay(toParam)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date format"})
			return
		}
		to = &parsed
	}

	groups, err := c.useCase.ActivityLog(ctx.Request.Context(), sessionCode, from, to)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"days": groups})
}

func (c *ActivityTrackerController) profiles(ctx *gin.Context) {
	sessionCode := ctx.Param("sessionCode")

	profiles, err := c.useCase.Profiles(ctx.Request.Context(), sessionCode)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

func (c *ActivityTrackerController) getSchedule(ctx *gin.Context) {
	sessionCode := ctx.Param("sessionCode")

	details, err := c.useCase.GetSchedule(ctx.Request.Context(), sessionCode)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, details)
}

func (c *ActivityTrackerController) updateSchedule(ctx *gin.Context) {
	sessionCode := ctx.Param("sessionCode")

	actorID, err := c.actorID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing " + caretakerHeader + " header"})
		return
	}

	var req UpdateScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := domain.ScheduleUpdate{
		FeedingInstruction: req.FeedingInstruction,
		WalkingInstruction: req.WalkingInstruction,
		LetoutInstruction:  req.LetoutInstruction,
		LetoutCount:        req.LetoutCount,
	}

	schedule, err := c.useCase.UpdateSchedule(ctx.Request.Context(), sessionCode, actorID, update)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

func (c *ActivityTrackerController) replaceScheduleSlots(ctx *gin.Context) {
	sessionCode := ctx.Param("sessionCode")

	actorID, err := c.actorID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing " + caretakerHeader + " header"})
		return
	}

	var req ReplaceScheduleSlotsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slotConfig, err := c.useCase.ReplaceScheduleSlots(ctx.Request.Context(), sessionCode, actorID, req.Slots)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"slots": slotConfig})
}

func (c *ActivityTrackerController) actorID(ctx *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(ctx.GetHeader(caretakerHeader))
}

func (c *ActivityTrackerController) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrFetchFailed), errors.Is(err, domain.ErrWriteFailed):
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (c *ActivityTrackerController) basicAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		for _, client := range c.cfg.Auth.BasicClients {
			if subtle.ConstantTimeCompare([]byte(username), []byte(client.Username)) == 1 &&
				subtle.ConstantTimeCompare([]byte(password), []byte(client.Password)) == 1 {
				ctx.Next()
				return
			}
		}

		ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
		ctx.AbortWithStatus(http.StatusUnauthorized)
	}
}
