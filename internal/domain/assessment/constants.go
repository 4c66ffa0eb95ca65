package assessment

const (
	StatusDraft = "draft"
	StatusFinal = "final"
)
