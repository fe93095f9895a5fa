package model

import "time"

// EquipmentStatus 设备运行状态
type EquipmentStatus string

const (
	StatusOperational EquipmentStatus = "operational"
	StatusWarning     EquipmentStatus = "warning"
	StatusCritical    EquipmentStatus = "critical"
	StatusMaintenance EquipmentStatus = "maintenance"
	StatusOffline     EquipmentStatus = "offline"
)

// Valid 是否为已知状态
func (s EquipmentStatus) Valid() bool {
	switch s {
	case StatusOperational, StatusWarning, StatusCritical, StatusMaintenance, StatusOffline:
		return true
	}
	return false
}

// AlertSeverity 告警级别
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// Equipment 设备
type Equipment struct {
	ID              string             `json:"id" gorm:"primaryKey"`
	Name            string             `json:"name"`
	Type            string             `json:"type"`
	Location        string             `json:"location"`
	Status          EquipmentStatus    `json:"status" gorm:"index"`
	HealthScore     float64            `json:"health_score"`
	LastMaintenance time.Time          `json:"last_maintenance"`
	NextMaintenance time.Time          `json:"next_maintenance"`
	Metrics         map[string]float64 `json:"metrics" gorm:"serializer:json"`
}

// SensorReading 传感器读数
type SensorReading struct {
	ID               uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	EquipmentID      string    `json:"equipment_id" gorm:"index"`
	Timestamp        time.Time `json:"timestamp"`
	Temperature      float64   `json:"temperature"`
	Pressure         float64   `json:"pressure"`
	Vibration        float64   `json:"vibration"`
	PowerConsumption float64   `json:"power_consumption"`
}

// MaintenanceLog 维护记录
type MaintenanceLog struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	EquipmentID   string    `json:"equipment_id" gorm:"index"`
	Timestamp     time.Time `json:"timestamp"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	Technician    string    `json:"technician"`
	Cost          float64   `json:"cost"`
	DurationHours float64   `json:"duration_hours"`
}

// Alert 设备告警
type Alert struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	EquipmentID string        `json:"equipment_id" gorm:"index"`
	Timestamp   time.Time     `json:"timestamp"`
	Severity    AlertSeverity `json:"severity"`
	Type        string        `json:"type"`
	Message     string        `json:"message"`
	Resolved    bool          `json:"resolved"`
}

// PredictedFailure 故障预测
type PredictedFailure struct {
	EquipmentID        string  `json:"equipment_id"`
	EquipmentName      string  `json:"equipment_name"`
	FailureProbability float64 `json:"failure_probability"`
	EstimatedDays      int     `json:"estimated_days"`
	Reason             string  `json:"reason"`
}

// DashboardMetrics 管理层看板指标
type DashboardMetrics struct {
	TotalEquipment     int                `json:"total_equipment"`
	OperationalCount   int                `json:"operational_count"`
	WarningCount       int                `json:"warning_count"`
	CriticalCount      int                `json:"critical_count"`
	AverageHealthScore float64            `json:"average_health_score"`
	TotalAlerts        int                `json:"total_alerts"`
	UnresolvedAlerts   int                `json:"unresolved_alerts"`
	MaintenanceCostMTD float64            `json:"maintenance_cost_mtd"`
	EnergyEfficiency   float64            `json:"energy_efficiency"`
	PredictedFailures  []PredictedFailure `json:"predicted_failures"`
}

// PendingMaintenance 待执行的维护
type PendingMaintenance struct {
	EquipmentID   string `json:"equipment_id"`
	EquipmentName string `json:"equipment_name"`
	DueDate       string `json:"due_date"`
	DaysUntil     int    `json:"days_until"`
	Type          string `json:"type"`
}

// ShiftSummary 班次概要
type ShiftSummary struct {
	ShiftStart                 string  `json:"shift_start"`
	AlertsGenerated            int     `json:"alerts_generated"`
	AlertsResolved             int     `json:"alerts_resolved"`
	EquipmentInteractions      int     `json:"equipment_interactions"`
	AverageResponseTimeMinutes float64 `json:"average_response_time_minutes"`
}

// OperatorMetrics 操作员看板指标
type OperatorMetrics struct {
	Equipment          []Equipment          `json:"equipment"`
	RecentAlerts       []Alert              `json:"recent_alerts"`
	PendingMaintenance []PendingMaintenance `json:"pending_maintenance"`
	ShiftSummary       ShiftSummary         `json:"shift_summary"`
}
