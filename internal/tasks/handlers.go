package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/eventra/eventra/internal/database/models"
	"github.com/eventra/eventra/internal/summary"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

type Handler struct {
	db             *gorm.DB
	logger         *slog.Logger
	summaryService *summary.Service
	client         *asynq.Client
}

func NewHandler(db *gorm.DB, logger *slog.Logger, client *asynq.Client) *Handler {
	return &Handler{
		db:             db,
		logger:         logger,
		summaryService: summary.NewService(db),
		client:         client,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeBudgetAlertScan, h.HandleBudgetAlertScan)
	mux.HandleFunc(TypeSchedulerTick, h.HandleSchedulerTick)
}

// HandleSchedulerTick fans out one alert scan per organization that has
// events on the books.
func (h *Handler) HandleSchedulerTick(ctx context.Context, t *asynq.Task) error {
	var orgs []string
	if err := h.db.WithContext(ctx).Model(&models.Event{}).
		Distinct("organization").
		Pluck("organization", &orgs).Error; err != nil {
		return fmt.Errorf("listing organizations: %w", err)
	}

	for _, org := range orgs {
		task, err := NewBudgetAlertScanTask(BudgetAlertScanPayload{Organization: org})
		if err != nil {
			return err
		}
		if _, err := h.client.EnqueueContext(ctx, task, asynq.Queue("low")); err != nil {
			h.logger.Error("failed to enqueue alert scan", "organization", org, "error", err)
		}
	}

	h.logger.Info("scheduled budget alert scans", "organizations", len(orgs))
	return nil
}

// HandleBudgetAlertScan recomputes alerts for every event of one
// organization and logs each at its level. The projection is read-only, so
// a scan never changes ledger state.
func (h *Handler) HandleBudgetAlertScan(ctx context.Context, t *asynq.Task) error {
	var payload BudgetAlertScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	var events []models.Event
	if err := h.db.WithContext(ctx).
		Where("organization = ?", payload.Organization).
		Find(&events).Error; err != nil {
		return fmt.Errorf("listing events: %w", err)
	}

	total := 0
	for i := range events {
		alerts, err := h.summaryService.AlertsForEvent(ctx, &events[i])
		if err != nil {
			h.logger.Error("alert scan failed", "event_id", events[i].ID, "error", err)
			continue
		}
		for _, a := range alerts {
			attrs := []any{
				"organization", payload.Organization,
				"event_id", events[i].ID,
				"type", a.Type,
				"message", a.Message,
			}
			if a.Level == summary.AlertCritical {
				h.logger.Error("budget alert", attrs...)
			} else {
				h.logger.Warn("budget alert", attrs...)
			}
		}
		total += len(alerts)
	}

	h.logger.Info("budget alert scan complete",
		"organization", payload.Organization,
		"events", len(events),
		"alerts", total,
	)
	return nil
}
