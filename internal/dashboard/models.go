package dashboard

type UserStats struct {
	Total    int            `json:"total"`
	ByRole   map[string]int `json:"byRole"`
	ByStatus map[string]int `json:"byStatus"`
}

type ResidentStats struct {
	Total    int            `json:"total"`
	Voters   int            `json:"voters"`
	ByStatus map[string]int `json:"byStatus"`
	ByGender map[string]int `json:"byGender"`
}

type RequestStats struct {
	Total      int            `json:"total"`
	Today      int            `json:"today"`
	ByStatus   map[string]int `json:"byStatus"`
	ByType     map[string]int `json:"byType"`
	ByPriority map[string]int `json:"byPriority"`
}

type Stats struct {
	Users      UserStats     `json:"users"`
	Residents  ResidentStats `json:"residents"`
	Requests   RequestStats  `json:"requests"`
	Activities int           `json:"activities"`
}

type activityInput struct {
	Type        string `json:"type"`
	Action      string `json:"action"`
	Description string `json:"description"`
	EntityType  string `json:"entityType"`
	EntityID    int    `json:"entityId"`
}
