package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeBudgetAlertScan = "budget:alert_scan"
	TypeSchedulerTick   = "scheduler:tick"
)

// BudgetAlertScanPayload names the organization whose events get re-checked.
type BudgetAlertScanPayload struct {
	Organization string `json:"organization"`
}

func NewBudgetAlertScanTask(payload BudgetAlertScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBudgetAlertScan, data), nil
}

// SchedulerTickPayload is empty - the tick fans out over all organizations
func NewSchedulerTickTask() *asynq.Task {
	return asynq.NewTask(TypeSchedulerTick, nil)
}
