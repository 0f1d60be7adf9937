package service

import "cslogbook/backend/internal/model"

// CombineAdvisorDecisions 根据两个导师槽位计算申请的下一状态
//
//   - 任一槽位驳回 → advisor_rejected（另一槽位意见不再有意义）
//   - 有副导师时两个槽位均通过 → pending_staff
//   - 无副导师时主导师通过 → pending_staff
//   - 其余情况保持 pending_advisor
//
// 调用方必须传入事务内加锁后重新读取的槽位，不能使用缓存值
func CombineAdvisorDecisions(primary, co model.DecisionSlot, hasCoAdvisor bool) model.TestRequestStatus {
	if primary.Rejected() || (hasCoAdvisor && co.Rejected()) {
		return model.TestRequestAdvisorRejected
	}
	if !primary.Approved() {
		return model.TestRequestPendingAdvisor
	}
	if hasCoAdvisor && !co.Approved() {
		return model.TestRequestPendingAdvisor
	}
	return model.TestRequestPendingStaff
}
