package data

import (
	"context"
	"fmt"
	"time"

	"github.com/HildaM/logs/slog"
	"gorm.io/gorm"

	"github.com/hildam/indus-flow-go/entity/model"
)

const day = 24 * time.Hour

// seed 设备表为空时写入示例数据
func (s *Service) seed(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Equipment{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count equipment: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := s.now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sampleEquipment(now)).Error; err != nil {
			return err
		}
		if err := tx.Create(sampleAlerts(now)).Error; err != nil {
			return err
		}
		return tx.Create(sampleMaintenanceLogs(now)).Error
	})
	if err != nil {
		slog.Error("data.seed failed, err = %v", err)
		return fmt.Errorf("seed sample data: %w", err)
	}
	slog.Info("data.seed info, sample data created")
	return nil
}

func sampleEquipment(now time.Time) []model.Equipment {
	return []model.Equipment{
		{
			ID: "COMP-001", Name: "Air Compressor Unit 1", Type: "Compressor",
			Location: "Building A - Floor 1", Status: model.StatusOperational, HealthScore: 87.5,
			LastMaintenance: now.Add(-35 * day), NextMaintenance: now.Add(21 * day),
			Metrics: map[string]float64{"temperature": 72.3, "pressure": 120.5, "vibration": 0.8, "efficiency": 89.2},
		},
		{
			ID: "TURB-003", Name: "Gas Turbine 3", Type: "Turbine",
			Location: "Power Plant - Section B", Status: model.StatusWarning, HealthScore: 72.1,
			LastMaintenance: now.Add(-45 * day), NextMaintenance: now.Add(10 * day),
			Metrics: map[string]float64{"temperature": 485.2, "pressure": 340.8, "vibration": 2.3, "efficiency": 76.4},
		},
		{
			ID: "PUMP-007", Name: "Hydraulic Pump 7", Type: "Pump",
			Location: "Building C - Floor 2", Status: model.StatusCritical, HealthScore: 45.8,
			LastMaintenance: now.Add(-60 * day), NextMaintenance: now.Add(5 * day),
			Metrics: map[string]float64{"temperature": 95.7, "pressure": 85.2, "vibration": 4.5, "efficiency": 58.3},
		},
		{
			ID: "CONV-012", Name: "Conveyor Belt 12", Type: "Conveyor",
			Location: "Warehouse - Zone 3", Status: model.StatusOperational, HealthScore: 91.2,
			LastMaintenance: now.Add(-20 * day), NextMaintenance: now.Add(28 * day),
			Metrics: map[string]float64{"temperature": 45.3, "pressure": 0.0, "vibration": 0.5, "efficiency": 94.7},
		},
		{
			ID: "HVAC-005", Name: "HVAC System 5", Type: "HVAC",
			Location: "Building B - Floor 3", Status: model.StatusMaintenance, HealthScore: 68.5,
			LastMaintenance: now.Add(-85 * day), NextMaintenance: now.Add(12 * day),
			Metrics: map[string]float64{"temperature": 22.5, "pressure": 14.7, "vibration": 0.3, "efficiency": 82.1},
		},
	}
}

func sampleAlerts(now time.Time) []model.Alert {
	return []model.Alert{
		{
			ID: "ALT-001", EquipmentID: "PUMP-007", Timestamp: now.Add(-2 * time.Hour),
			Severity: model.SeverityCritical, Type: "High Vibration",
			Message: "Vibration levels exceeded threshold (4.5mm/s)",
		},
		{
			ID: "ALT-002", EquipmentID: "TURB-003", Timestamp: now.Add(-5 * time.Hour),
			Severity: model.SeverityMedium, Type: "Temperature Warning",
			Message: "Operating temperature higher than normal range",
		},
		{
			ID: "ALT-003", EquipmentID: "COMP-001", Timestamp: now.Add(-day),
			Severity: model.SeverityLow, Type: "Efficiency Drop",
			Message: "Efficiency decreased by 3% over last 24 hours", Resolved: true,
		},
	}
}

func sampleMaintenanceLogs(now time.Time) []model.MaintenanceLog {
	return []model.MaintenanceLog{
		{
			ID: "MNT-001", EquipmentID: "TURB-003", Timestamp: now.Add(-45 * day), Type: "Preventive",
			Description: "Routine turbine blade inspection and lubrication",
			Technician:  "John Smith", Cost: 2500, DurationHours: 4.5,
		},
		{
			ID: "MNT-002", EquipmentID: "PUMP-007", Timestamp: now.Add(-60 * day), Type: "Corrective",
			Description: "Replaced worn bearing assembly",
			Technician:  "Sarah Johnson", Cost: 1800, DurationHours: 6.0,
		},
	}
}
