package dto

// ValidateTokenRequest 校验跟踪令牌
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse 校验结果
type ValidateTokenResponse struct {
	Valid bool `json:"valid"`
}

// TrackProject 公开页面可见的项目信息, 不含内部 ID 与电话
type TrackProject struct {
	ClientName             string  `json:"clientName"`
	ProjectName            string  `json:"projectName"`
	Deadline               string  `json:"deadline"`
	Status                 string  `json:"status"`
	CurrentPhase           string  `json:"currentPhase"`
	DevelopmentProgress    int     `json:"developmentProgress"`
	MaintenanceProgress    int     `json:"maintenanceProgress"`
	OverallProgress        int     `json:"overallProgress"`
	StatusText             string  `json:"statusText"`
	DevelopmentCompletedAt *string `json:"developmentCompletedAt"`
}

// TrackResponse 客户跟踪页载荷
type TrackResponse struct {
	Project         *TrackProject             `json:"project"`
	Logs            []*LogResponse            `json:"logs"`
	ProgressUpdates []*ProgressUpdateResponse `json:"progressUpdates"`
	Artifacts       []*ArtifactResponse       `json:"artifacts"`
}
