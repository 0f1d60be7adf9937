package service

import "cslogbook/backend/internal/model"

// Actor 当前操作人。封闭类型：只有本包内的四种实现
type Actor interface {
	isActor()
}

// StudentActor 学生
type StudentActor struct {
	UserID    int64
	StudentID int64
}

// TeacherActor 教师；Support 为教务支持教师，具备教务审批权限
type TeacherActor struct {
	UserID    int64
	TeacherID int64
	Support   bool
}

// StaffActor 教务管理员
type StaffActor struct {
	UserID int64
	Admin  bool
}

// SystemActor 定时任务等系统内部调用
type SystemActor struct{}

func (StudentActor) isActor() {}
func (TeacherActor) isActor() {}
func (StaffActor) isActor() {}
func (SystemActor) isActor() {}

// ActorUserID 操作人 user_id；系统调用返回 nil
func ActorUserID(a Actor) *int64 {
	switch a := a.(type) {
	case StudentActor:
		return &a.UserID
	case TeacherActor:
		return &a.UserID
	case StaffActor:
		return &a.UserID
	}
	return nil
}

// ActorLabel 审计记录中的操作人标识
func ActorLabel(a Actor) string {
	switch a.(type) {
	case StudentActor:
		return "student"
	case TeacherActor:
		return "teacher"
	case StaffActor:
		return "staff"
	}
	return model.SystemActorLabel
}

// IsStaffCapable 教务管理员或教务支持教师
func IsStaffCapable(a Actor) bool {
	switch a := a.(type) {
	case StaffActor:
		return true
	case TeacherActor:
		return a.Support
	}
	return false
}

// canViewProject 项目成员、指导教师及教务人员可查看项目流程数据
func canViewProject(p *model.Project, a Actor) bool {
	switch a := a.(type) {
	case StudentActor:
		return p.IsMember(a.StudentID)
	case TeacherActor:
		if a.Support {
			return true
		}
		_, ok := p.AdvisorRole(a.TeacherID)
		return ok
	case StaffActor, SystemActor:
		return true
	}
	return false
}
