package event

type RunProgressEvent struct {
	RunID     string `json:"run_id"`
	Processed int    `json:"processed"` // Products completed so far
	Total     int    `json:"total"`     // Products selected for this run
}

func (e *RunProgressEvent) EventType() string {
	return "RunProgressEvent"
}

func (e *RunProgressEvent) EventValue() ([]byte, error) {
	return DefaultEventValue(e)
}
