package dto

type WorkloadEntry struct {
	MemberName string `json:"memberName"`
	Count      int    `json:"count"`
	Pending    int    `json:"pending"`
	InProgress int    `json:"inProgress"`
	Done       int    `json:"done"`
	Capacity   int    `json:"capacity"`
}

type DashboardResponse struct {
	TotalProjects int                   `json:"totalProjects"`
	TotalTasks    int                   `json:"totalTasks"`
	Workload      []WorkloadEntry       `json:"workload"`
	ActivityLogs  []ActivityLogResponse `json:"activityLogs"`
}
