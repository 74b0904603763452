package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VitalReading is a single measurement submitted for a patient's login.
type VitalReading struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Type       string          `gorm:"type:varchar(50);not null;index" json:"type"`
	Value      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"value"`
	Unit       string          `gorm:"type:varchar(20);not null" json:"unit"`
	RecordedAt time.Time       `gorm:"not null;index" json:"recorded_at"`
}

func (VitalReading) TableName() string {
	return "vital_readings"
}

// Vital types
const (
	VitalHeartRate        = "heart_rate"
	VitalBloodPressureSys = "blood_pressure_systolic"
	VitalBloodPressureDia = "blood_pressure_diastolic"
	VitalOxygenSaturation = "oxygen_saturation"
	VitalTemperature      = "temperature"
	VitalGlucose          = "glucose"
)
