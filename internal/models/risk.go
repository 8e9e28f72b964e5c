package models

import "time"

// Severity grades how strongly a risk factor weighs on a record.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// RiskFactorCategory groups risk factors into a taxonomy of attrition causes.
type RiskFactorCategory struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RiskFactor is a concrete attrition cause within a category.
type RiskFactor struct {
	ID          string    `db:"id" json:"id"`
	CategoryID  string    `db:"category_id" json:"category_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// StudentRiskFactor links an enrollment record to a risk factor.
type StudentRiskFactor struct {
	ID           string    `db:"id" json:"id"`
	RecordID     string    `db:"record_id" json:"record_id"`
	RiskFactorID string    `db:"risk_factor_id" json:"risk_factor_id"`
	Severity     Severity  `db:"severity" json:"severity"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// StudentRiskFactorDetail decorates an association with factor and category names.
type StudentRiskFactorDetail struct {
	StudentRiskFactor
	FactorName   string `db:"factor_name" json:"factor_name"`
	CategoryName string `db:"category_name" json:"category_name"`
}
