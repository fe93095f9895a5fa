package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/HildaM/logs/slog"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hildam/indus-flow-go/entity/conf"
	"github.com/hildam/indus-flow-go/entity/model"
)

// ErrNotFound 设备或告警不存在
var ErrNotFound = errors.New("not found")

const (
	// pendingWindowDays 视为待执行维护的天数
	pendingWindowDays = 14
	// recentAlertLimit 操作员看板展示的告警数
	recentAlertLimit = 5
	// energyEfficiency 能效指标，暂无数据来源使用固定值
	energyEfficiency = 85.3
)

// Service 设备数据服务
type Service struct {
	db    *gorm.DB
	sqlDB *sql.DB
	now   func() time.Time
}

// Option 数据服务选项
type Option func(s *Service)

// WithClock 设置时钟，示例数据与看板指标都相对该时钟计算
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Open 打开 sqlite，path 为空时使用内存库；表为空时写入示例数据
func Open(ctx context.Context, cfg conf.DataConfig, opts ...Option) (*Service, error) {
	s := &Service{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	dsn := ":memory:"
	if cfg.Path != "" {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", cfg.Path)
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		slog.Error("data.Open failed, open sqlite fail, err = %v", err)
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if cfg.Path == "" {
		// 内存库每个连接独立，只保留一个连接
		sqlDB.SetMaxOpenConns(1)
	}
	s.db, s.sqlDB = db, sqlDB

	if err = s.db.WithContext(ctx).AutoMigrate(
		&model.Equipment{},
		&model.Alert{},
		&model.MaintenanceLog{},
		&model.SensorReading{},
	); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err = s.seed(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close 关闭数据库
func (s *Service) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ListEquipment 按写入顺序返回所有设备
func (s *Service) ListEquipment(ctx context.Context) ([]model.Equipment, error) {
	list := make([]model.Equipment, 0)
	if err := s.db.WithContext(ctx).Order("rowid").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	return list, nil
}

// GetEquipment 查询单个设备
func (s *Service) GetEquipment(ctx context.Context, id string) (*model.Equipment, error) {
	eq := &model.Equipment{}
	err := s.db.WithContext(ctx).Where("id = ?", id).First(eq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("equipment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get equipment %s: %w", id, err)
	}
	return eq, nil
}

// ListEquipmentByStatus 按状态过滤设备
func (s *Service) ListEquipmentByStatus(ctx context.Context, status model.EquipmentStatus) ([]model.Equipment, error) {
	list := make([]model.Equipment, 0)
	if err := s.db.WithContext(ctx).Where("status = ?", status).Order("rowid").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list equipment by status: %w", err)
	}
	return list, nil
}

// ListAlerts 查询告警，最新的在前；equipmentID 为空、resolved 为 nil 时不过滤
func (s *Service) ListAlerts(ctx context.Context, equipmentID string, resolved *bool) ([]model.Alert, error) {
	query := s.db.WithContext(ctx).Model(&model.Alert{})
	if equipmentID != "" {
		query = query.Where("equipment_id = ?", equipmentID)
	}
	if resolved != nil {
		query = query.Where("resolved = ?", *resolved)
	}

	alerts := make([]model.Alert, 0)
	if err := query.Order("timestamp DESC").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// ListMaintenanceLogs 查询维护记录，最新的在前
func (s *Service) ListMaintenanceLogs(ctx context.Context, equipmentID string, limit int) ([]model.MaintenanceLog, error) {
	query := s.db.WithContext(ctx).Model(&model.MaintenanceLog{})
	if equipmentID != "" {
		query = query.Where("equipment_id = ?", equipmentID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	logs := make([]model.MaintenanceLog, 0)
	if err := query.Order("timestamp DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list maintenance logs: %w", err)
	}
	return logs, nil
}

// DashboardMetrics 管理层看板
func (s *Service) DashboardMetrics(ctx context.Context) (*model.DashboardMetrics, error) {
	equipment, err := s.ListEquipment(ctx)
	if err != nil {
		return nil, err
	}
	alerts, err := s.ListAlerts(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	logs, err := s.ListMaintenanceLogs(ctx, "", 0)
	if err != nil {
		return nil, err
	}

	metrics := &model.DashboardMetrics{
		TotalEquipment:    len(equipment),
		TotalAlerts:       len(alerts),
		EnergyEfficiency:  energyEfficiency,
		PredictedFailures: predictedFailures(),
	}

	var healthSum float64
	for _, eq := range equipment {
		healthSum += eq.HealthScore
		switch eq.Status {
		case model.StatusOperational:
			metrics.OperationalCount++
		case model.StatusWarning:
			metrics.WarningCount++
		case model.StatusCritical:
			metrics.CriticalCount++
		}
	}
	if len(equipment) > 0 {
		metrics.AverageHealthScore = math.Round(healthSum/float64(len(equipment))*10) / 10
	}
	for _, alert := range alerts {
		if !alert.Resolved {
			metrics.UnresolvedAlerts++
		}
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for _, log := range logs {
		if !log.Timestamp.Before(monthStart) {
			metrics.MaintenanceCostMTD += log.Cost
		}
	}
	return metrics, nil
}

// OperatorMetrics 操作员看板
func (s *Service) OperatorMetrics(ctx context.Context) (*model.OperatorMetrics, error) {
	equipment, err := s.ListEquipment(ctx)
	if err != nil {
		return nil, err
	}
	unresolved := false
	alerts, err := s.ListAlerts(ctx, "", &unresolved)
	if err != nil {
		return nil, err
	}
	if len(alerts) > recentAlertLimit {
		alerts = alerts[:recentAlertLimit]
	}

	now := s.now()
	pending := make([]model.PendingMaintenance, 0)
	for _, eq := range equipment {
		daysUntil := int(math.Floor(eq.NextMaintenance.Sub(now).Hours() / 24))
		if daysUntil > pendingWindowDays {
			continue
		}
		pending = append(pending, model.PendingMaintenance{
			EquipmentID:   eq.ID,
			EquipmentName: eq.Name,
			DueDate:       eq.NextMaintenance.Format(time.RFC3339),
			DaysUntil:     daysUntil,
			Type:          "Scheduled Preventive Maintenance",
		})
	}

	return &model.OperatorMetrics{
		Equipment:          equipment,
		RecentAlerts:       alerts,
		PendingMaintenance: pending,
		ShiftSummary: model.ShiftSummary{
			ShiftStart:                 now.Add(-8 * time.Hour).Format(time.RFC3339),
			AlertsGenerated:            3,
			AlertsResolved:             1,
			EquipmentInteractions:      12,
			AverageResponseTimeMinutes: 15.3,
		},
	}, nil
}

// ResolveAlert 将告警标记为已解决
func (s *Service) ResolveAlert(ctx context.Context, alertID string) error {
	result := s.db.WithContext(ctx).Model(&model.Alert{}).Where("id = ?", alertID).Update("resolved", true)
	if result.Error != nil {
		return fmt.Errorf("resolve alert %s: %w", alertID, result.Error)
	}
	if result.RowsAffected == 0 {
		// sqlite 对未变化的行也计数，0 表示告警不存在
		return fmt.Errorf("alert %s: %w", alertID, ErrNotFound)
	}
	return nil
}

// predictedFailures 故障预测，暂无模型使用固定数据
func predictedFailures() []model.PredictedFailure {
	return []model.PredictedFailure{
		{
			EquipmentID:        "PUMP-007",
			EquipmentName:      "Hydraulic Pump 7",
			FailureProbability: 0.78,
			EstimatedDays:      7,
			Reason:             "High vibration and degraded bearing condition",
		},
		{
			EquipmentID:        "TURB-003",
			EquipmentName:      "Gas Turbine 3",
			FailureProbability: 0.45,
			EstimatedDays:      21,
			Reason:             "Elevated operating temperature",
		},
	}
}
