package event

import "eshop/mapper/internal/domain"

type RunCompletedEvent struct {
	RunID       string              `json:"run_id"`
	Stats       domain.MappingStats `json:"stats"`
	DurationSec float64             `json:"duration_sec"`
	Interrupted bool                `json:"interrupted"` // Run ended early on context cancellation
}

func (e *RunCompletedEvent) EventType() string {
	return "RunCompletedEvent"
}

func (e *RunCompletedEvent) EventValue() ([]byte, error) {
	return DefaultEventValue(e)
}
