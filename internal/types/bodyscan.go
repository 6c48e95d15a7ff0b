package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BodyScan is one completed capture session. It is written once and never
// mutated; its recommendations are replaced only by running a new scan.
type BodyScan struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:session_id" json:"session_id"`
	Height        float64   `gorm:"not null;column:height" json:"height"`
	ShoulderWidth float64   `gorm:"not null;column:shoulder_width" json:"shoulder_width"`
	Chest         float64   `gorm:"not null;column:chest" json:"chest"`
	Waist         float64   `gorm:"not null;column:waist" json:"waist"`
	Hip           float64   `gorm:"not null;column:hip" json:"hip"`
	TorsoLength   float64   `gorm:"not null;column:torso_length" json:"torso_length"`
	ArmLength     float64   `gorm:"not null;column:arm_length" json:"arm_length"`
	Inseam        float64   `gorm:"not null;column:inseam" json:"inseam"`
	BodyShape     string    `gorm:"not null;default:'rectangle';column:body_shape" json:"body_shape"`
	SkinTone      string    `gorm:"not null;default:'intermediate';column:skin_tone" json:"skin_tone"`
	Undertone     string    `gorm:"not null;default:'warm';column:undertone" json:"undertone"`
	Confidence    float64   `gorm:"not null;default:0;column:confidence" json:"confidence"`
	CreatedAt     time.Time `gorm:"not null;default:now()" json:"created_at"`

	Recommendations []*Recommendation `gorm:"foreignKey:BodyScanID;references:ID" json:"recommendations,omitempty"`
}

func (BodyScan) TableName() string { return "body_scan" }

// Measurements rebuilds the named measurement set from the scan columns.
func (bs *BodyScan) Measurements() MeasurementSet {
	return MeasurementSet{
		DimHeight:        bs.Height,
		DimShoulderWidth: bs.ShoulderWidth,
		DimChest:         bs.Chest,
		DimWaist:         bs.Waist,
		DimHip:           bs.Hip,
		DimTorsoLength:   bs.TorsoLength,
		DimArmLength:     bs.ArmLength,
		DimInseam:        bs.Inseam,
	}
}

type Recommendation struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BodyScanID        uuid.UUID      `gorm:"type:uuid;not null;index;column:body_scan_id" json:"body_scan_id"`
	BodyScan          *BodyScan      `gorm:"constraint:OnDelete:CASCADE;foreignKey:BodyScanID;references:ID" json:"body_scan,omitempty"`
	ProductID         uuid.UUID      `gorm:"type:uuid;not null;index;column:product_id" json:"product_id"`
	Product           *Product       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProductID;references:ID" json:"product,omitempty"`
	RecommendedSize   string         `gorm:"not null;column:recommended_size" json:"recommended_size"`
	RecommendedFit    string         `gorm:"not null;column:recommended_fit" json:"recommended_fit"`
	RecommendedColors datatypes.JSON `gorm:"type:jsonb;column:recommended_colors" json:"recommended_colors"`
	Priority          int            `gorm:"not null;default:0;column:priority" json:"priority"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (Recommendation) TableName() string { return "recommendation" }
