package service

import (
	"time"

	"cslogbook/backend/internal/dto"
	"cslogbook/backend/internal/model"
)

// ────────────────────── model → dto ──────────────────────

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dto.TimeLayout)
	return &s
}

func toDecisionSlotResponse(slot model.DecisionSlot) dto.DecisionSlotResponse {
	resp := dto.DecisionSlotResponse{
		TeacherID: slot.TeacherID,
		DecidedAt: formatTimePtr(slot.DecidedAt),
		Note:      slot.Note,
	}
	if slot.Decision != nil {
		d := string(*slot.Decision)
		resp.Decision = &d
	}
	return resp
}

func toLateStatusResponse(late model.SubmissionLateStatus) dto.LateStatusResponse {
	return dto.LateStatusResponse{
		SubmittedLate:          late.SubmittedLate,
		SubmissionDelayMinutes: late.SubmissionDelayMinutes,
		ImportantDeadlineID:    late.ImportantDeadlineID,
	}
}

// toTestRequestResponse 测试窗口按业务时区输出自然日
func toTestRequestResponse(req *model.ProjectTestRequest, loc *time.Location) dto.TestRequestResponse {
	resp := dto.TestRequestResponse{
		RequestID:            req.RequestID,
		ProjectID:            req.ProjectID,
		Status:               string(req.Status),
		SubmittedByStudentID: req.SubmittedByStudentID,
		SubmittedAt:          req.SubmittedAt.Format(dto.TimeLayout),
		TestStartDate:        req.TestStartDate.In(loc).Format(dto.DateLayout),
		TestDueDate:          req.TestDueDate.In(loc).Format(dto.DateLayout),
		StudentNote:          req.StudentNote,
		RequestFileName:      req.RequestFileName,
		Advisor:              toDecisionSlotResponse(req.Advisor),
		StaffUserID:          req.StaffUserID,
		StaffDecidedAt:       formatTimePtr(req.StaffDecidedAt),
		StaffNote:            req.StaffNote,
		EvidenceFileName:     req.EvidenceFileName,
		EvidenceSubmittedAt:  formatTimePtr(req.EvidenceSubmittedAt),
		LateStatus:           toLateStatusResponse(req.SubmissionLateStatus),
	}
	if req.HasCoAdvisor() {
		co := toDecisionSlotResponse(req.CoAdvisor)
		resp.CoAdvisor = &co
	}
	return resp
}

func toDeadlineStatusResponse(st DeadlineStatus) dto.DeadlineStatusResponse {
	resp := dto.DeadlineStatusResponse{
		DeadlineID:  st.DeadlineID,
		Status:      string(st.Status),
		IsLate:      st.IsLate,
		MinutesLate: st.MinutesLate,
		IsLocked:    st.IsLocked,
	}
	if st.Status != DeadlineNone {
		resp.DeadlineAt = formatTimePtr(&st.DeadlineAt)
		resp.EffectiveDeadline = formatTimePtr(&st.EffectiveDeadline)
	}
	return resp
}

func toDeadlineResponse(d model.ImportantDeadline) dto.DeadlineResponse {
	return dto.DeadlineResponse{
		DeadlineID:         d.DeadlineID,
		Name:               d.Name,
		RelatedTo:          string(d.RelatedTo),
		AcademicYear:       d.AcademicYear,
		Semester:           d.Semester,
		DeadlineAt:         d.DeadlineAt.Format(dto.TimeLayout),
		GracePeriodMinutes: d.GracePeriodMinutes,
		AllowLate:          d.AllowLate,
		LockAfterDeadline:  d.LockAfterDeadline,
		IsPublished:        d.IsPublished,
		Description:        d.Description,
	}
}

func toTransitionResponse(p *model.Project) *dto.TransitionResponse {
	return &dto.TransitionResponse{
		ProjectID:              p.ProjectID,
		ProjectType:            string(p.ProjectType),
		TransitionedToProject2: p.TransitionedToProject2,
		TransitionedAt:         formatTimePtr(p.TransitionedAt),
		CurrentPhase:           string(p.CurrentPhase),
		Status:                 string(p.Status),
	}
}

func toTransitionLogResponse(l model.ProjectTransitionLog) dto.TransitionLogResponse {
	return dto.TransitionLogResponse{
		LogID:          l.LogID,
		TransitionType: string(l.TransitionType),
		TriggeredBy:    l.TriggeredBy,
		ActorLabel:     l.ActorLabel,
		FromType:       string(l.FromType),
		ToType:         string(l.ToType),
		FromPhase:      string(l.FromPhase),
		ToPhase:        string(l.ToPhase),
		Metadata:       l.Metadata,
		CreatedAt:      l.CreatedAt.Format(dto.TimeLayout),
	}
}

func projectDisplayName(p *model.Project) string {
	if p == nil {
		return ""
	}
	if p.NameTH != "" {
		return p.NameTH
	}
	return p.NameEN
}
