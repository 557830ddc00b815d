package models

// StatusRequest is the query of GET /api/status.
type StatusRequest struct {
	TZ string `query:"tz" validate:"omitempty,timezone"`
}

// StatusView is the status API payload: the stored snapshot plus its instants rendered in TZ.
type StatusView struct {
	StatusSnapshot
	Timezone           string `json:"timezone"`
	WindowStartLocal   string `json:"window_start_local,omitempty"`
	LastAppliedToLocal string `json:"last_applied_to_local,omitempty"`
	UpdatedAtLocal     string `json:"updated_at_local"`
}
