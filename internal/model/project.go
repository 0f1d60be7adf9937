package model

import "time"

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
	ProjectStatusArchived   ProjectStatus = "archived"
)

// IsClosed 已取消或已归档的项目不再参与任何流程
func (s ProjectStatus) IsClosed() bool {
	return s == ProjectStatusCancelled || s == ProjectStatusArchived
}

// ProjectType 项目阶段类型：Project 1（选题/开题）或 Project 2（毕业论文）
type ProjectType string

const (
	ProjectTypeProject1 ProjectType = "project1"
	ProjectTypeProject2 ProjectType = "project2"
)

// ExamResult 答辩结果
type ExamResult string

const (
	ExamResultPassed ExamResult = "passed"
	ExamResultFailed ExamResult = "failed"
)

// ProjectPhase 项目当前所处环节
type ProjectPhase string

const (
	PhaseTopicSubmission   ProjectPhase = "TOPIC_SUBMISSION"
	PhaseProposalDefense   ProjectPhase = "PROPOSAL_DEFENSE"
	PhaseProject1Completed ProjectPhase = "PROJECT1_COMPLETED"
	PhaseThesisInProgress  ProjectPhase = "THESIS_IN_PROGRESS"
	PhaseSystemTesting     ProjectPhase = "SYSTEM_TESTING"
	PhaseThesisDefense     ProjectPhase = "THESIS_DEFENSE"
	PhaseCompleted         ProjectPhase = "COMPLETED"
)

// MemberRole 项目成员角色
type MemberRole string

const (
	MemberRoleLeader MemberRole = "leader"
	MemberRoleMember MemberRole = "member"
)

// Project 项目表 — 对应 projects
// 不变式：transitioned_to_project2 = true ⇒ project_type = project2（数据库 CHECK 约束兜底）
type Project struct {
	ProjectID              int64         `gorm:"primaryKey;autoIncrement"                            json:"project_id"`
	ProjectCode            string        `gorm:"type:varchar(30)"                                    json:"project_code,omitempty"`
	NameTH                 string        `gorm:"column:name_th;type:varchar(255)"                    json:"name_th"`
	NameEN                 string        `gorm:"column:name_en;type:varchar(255)"                    json:"name_en"`
	Status                 ProjectStatus `gorm:"type:varchar(20);not null;default:'draft'"           json:"status"`
	ProjectType            ProjectType   `gorm:"type:varchar(20);not null;default:'project1'"        json:"project_type"`
	ExamResult             *ExamResult   `gorm:"type:varchar(10)"                                    json:"exam_result,omitempty"`
	TransitionedToProject2 bool          `gorm:"column:transitioned_to_project2;not null;default:false" json:"transitioned_to_project2"`
	TransitionedAt         *time.Time    `json:"transitioned_at,omitempty"`
	CurrentPhase           ProjectPhase  `gorm:"type:varchar(40);not null;default:'TOPIC_SUBMISSION'" json:"current_phase"`
	AcademicYear           int           `gorm:"not null"                                            json:"academic_year"`
	Semester               int           `gorm:"type:smallint;not null"                              json:"semester"`
	AdvisorID              *int64        `json:"advisor_id,omitempty"`
	CoAdvisorID            *int64        `json:"co_advisor_id,omitempty"`
	VersionedModel

	// 关联
	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
}

// TableName 指定表名
func (Project) TableName() string { return "projects" }

// IsMember 判断学生是否为项目成员
func (p *Project) IsMember(studentID int64) bool {
	for _, m := range p.Members {
		if m.StudentID == studentID {
			return true
		}
	}
	return false
}

// AdvisorRole 返回教师在项目中的指导角色；非指导教师返回 false
func (p *Project) AdvisorRole(teacherID int64) (AdvisorRole, bool) {
	if p.AdvisorID != nil && *p.AdvisorID == teacherID {
		return AdvisorRolePrimary, true
	}
	if p.CoAdvisorID != nil && *p.CoAdvisorID == teacherID {
		return AdvisorRoleCo, true
	}
	return "", false
}

// ProjectMember 项目成员表 — 对应 project_members（每个项目 1~2 人，其中一人为组长）
type ProjectMember struct {
	ProjectID int64      `gorm:"primaryKey"                  json:"project_id"`
	StudentID int64      `gorm:"primaryKey"                  json:"student_id"`
	Role      MemberRole `gorm:"type:varchar(10);not null"   json:"role"`
	JoinedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
}

// TableName 指定表名
func (ProjectMember) TableName() string { return "project_members" }
