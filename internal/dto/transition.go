package dto

// ── 阶段转换模块 DTO ──

// EligibilityResponse 转换资格
type EligibilityResponse struct {
	ProjectID int64  `json:"project_id"`
	Eligible  bool   `json:"eligible"`
	Reason    string `json:"reason,omitempty"`
}

// TransitionResponse 转换后的项目状态
type TransitionResponse struct {
	ProjectID              int64   `json:"project_id"`
	ProjectType            string  `json:"project_type"`
	TransitionedToProject2 bool    `json:"transitioned_to_project2"`
	TransitionedAt         *string `json:"transitioned_at"`
	CurrentPhase           string  `json:"current_phase"`
	Status                 string  `json:"status"`
}

// AutoTransitionItem 批量转换中单个项目的结果
type AutoTransitionItem struct {
	ProjectID int64  `json:"project_id"`
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
	Error     string `json:"error,omitempty"`
}

// AutoTransitionResponse 批量转换汇总
type AutoTransitionResponse struct {
	Transitioned int                  `json:"transitioned"`
	Failed       int                  `json:"failed"`
	Skipped      int                  `json:"skipped"`
	Results      []AutoTransitionItem `json:"results"`
}

// TransitionLogResponse 转换审计记录
type TransitionLogResponse struct {
	LogID          int64                  `json:"log_id"`
	TransitionType string                 `json:"transition_type"`
	TriggeredBy    *int64                 `json:"triggered_by"`
	ActorLabel     string                 `json:"actor_label"`
	FromType       string                 `json:"from_type"`
	ToType         string                 `json:"to_type"`
	FromPhase      string                 `json:"from_phase"`
	ToPhase        string                 `json:"to_phase"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      string                 `json:"created_at"`
}
