package models

// DashboardStats is the admin dashboard summary, recomputed on every request.
type DashboardStats struct {
	TotalTrainees  int `json:"total_trainees"`
	PPLTrainees    int `json:"ppl_trainees"`
	ATPLTrainees   int `json:"atpl_trainees"`
	ActiveTrainees int `json:"active_trainees"`
}
