package models

// KnowledgeUpdate is one entry of the service's recent knowledge-update log.
type KnowledgeUpdate struct {
	Timestamp string   `json:"timestamp"`
	Updates   []string `json:"updates"`
}

// KnowledgeStatus is the read-mostly snapshot of the service's knowledge
// base, independent of any analysis session. LastUpdated is an ISO date or
// the literal "Never".
type KnowledgeStatus struct {
	LastUpdated         string            `json:"last_updated"`
	UpdateCount         int               `json:"update_count"`
	AnalysesCount       int               `json:"analyses_count"`
	LegislationCount    int               `json:"legislation_count"`
	IndustryTrendsCount int               `json:"industry_trends_count"`
	RecentUpdates       []KnowledgeUpdate `json:"recent_updates"`
}

// KnowledgeUpdateResult is the body of POST /api/knowledge/update.
type KnowledgeUpdateResult struct {
	Success      bool `json:"success"`
	UpdatesFound int  `json:"updates_found"`
}
