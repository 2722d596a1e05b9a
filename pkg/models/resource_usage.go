package models

// TaskResourceUsage holds Container Insights utilization metrics for one
// (task, container instance) pair, averaged over every performance log
// record observed for that pair.
type TaskResourceUsage struct {
	TaskID              string  `json:"task_id"`
	ContainerInstanceID string  `json:"container_instance_id"`
	CPUUtilized         float64 `json:"cpu_used"`
	CPUReserved         float64 `json:"cpu_passed"`
	MemoryUtilized      float64 `json:"memory_used"`
	MemoryReserved      float64 `json:"memory_passed"`
}
