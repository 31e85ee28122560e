package domain

// ProductivityInsights is the dashboard aggregate served by the AI
// resource. Consumed read-only; nothing in it feeds back into the task
// state.
type ProductivityInsights struct {
	TotalTasks             int            `json:"total_tasks"`
	CompletedTasks         int            `json:"completed_tasks"`
	CompletionRate         float64        `json:"completion_rate"`
	CategoryDistribution   map[string]int `json:"category_distribution"`
	PriorityDistribution   map[string]int `json:"priority_distribution"`
	MostProductiveCategory string         `json:"most_productive_category"`
	ProductivityScore      float64        `json:"productivity_score"`
	Recommendations        []string       `json:"recommendations"`
}
