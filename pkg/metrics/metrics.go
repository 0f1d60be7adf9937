package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 业务指标集合
// 通过 Registerer 注入，测试中使用独立的 prometheus.NewRegistry()
type Metrics struct {
	TestRequestTransitions *prometheus.CounterVec
	EarlyEvidenceUploads   prometheus.Counter
	LateSubmissions        *prometheus.CounterVec
	LateTaggingDegraded    *prometheus.CounterVec
	PhaseTransitions       *prometheus.CounterVec
	AutoTransitionRuns     *prometheus.CounterVec
}

// New 在 reg 上注册全部业务指标
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TestRequestTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cslogbook",
			Name:      "test_request_transitions_total",
			Help:      "系统测试申请状态流转次数",
		}, []string{"to"}),
		EarlyEvidenceUploads: f.NewCounter(prometheus.CounterOpts{
			Namespace: "cslogbook",
			Name:      "test_request_early_evidence_total",
			Help:      "测试截止日前上传证明的次数",
		}),
		LateSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cslogbook",
			Name:      "late_submissions_total",
			Help:      "被标记为迟交的提交次数",
		}, []string{"kind"}),
		LateTaggingDegraded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cslogbook",
			Name:      "late_tagging_degraded_total",
			Help:      "截止日期查询失败、降级为未迟交的次数",
		}, []string{"kind"}),
		PhaseTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cslogbook",
			Name:      "phase_transitions_total",
			Help:      "Project 1 → Project 2 转换次数",
		}, []string{"type", "result"}),
		AutoTransitionRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cslogbook",
			Name:      "auto_transition_runs_total",
			Help:      "自动转换定时任务执行次数",
		}, []string{"result"}),
	}
}

// NewNop 返回注册在私有 Registry 上的指标，用于单元测试
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
