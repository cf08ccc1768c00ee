// Package domain defines the persistence models for consultations, the
// statistical-test catalog, and platform users. These types are mapped with
// GORM and form the core data layer of the platform backend.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Consultation status values. Transitions (pending → in_progress → completed)
// are driven by operator tooling, not by the intake pipeline.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Help-type categories accepted by the intake form.
const (
	HelpStatisticalAnalysis  = "statistical-analysis"
	HelpResearchConsultation = "research-consultation"
	HelpDataEntry            = "data-entry"
	HelpTraining             = "training"
	HelpOther                = "other"
)

// ValidHelpType reports whether s is one of the fixed help-type categories.
func ValidHelpType(s string) bool {
	switch s {
	case HelpStatisticalAnalysis, HelpResearchConsultation, HelpDataEntry, HelpTraining, HelpOther:
		return true
	}
	return false
}

// Consultation represents a help request submitted through the intake form.
// The row is written best-effort: when the database is unavailable the
// submission still succeeds and only the notification emails carry it.
//
// Fields:
//   - ID: auto-increment primary key assigned by the store. Distinct from the
//     snowflake id returned in the synchronous response.
//   - FullName / Email / HelpType / Message: required, validated upstream.
//   - Phone / University / AcademicLevel: optional, empty means unspecified.
//   - AttachmentPath: stored-file reference, empty when no file was uploaded.
//   - Deadline: optional requested completion date.
//   - Status: workflow state owned by operator tooling.
type Consultation struct {
	ID             uint       `json:"id"              gorm:"primaryKey;autoIncrement"`
	FullName       string     `json:"full_name"       gorm:"type:varchar(255);not null"`
	Email          string     `json:"email"           gorm:"type:varchar(255);not null;index"`
	Phone          string     `json:"phone,omitempty" gorm:"type:varchar(20)"`
	HelpType       string     `json:"help_type"       gorm:"type:varchar(100);not null"`
	University     string     `json:"university,omitempty"     gorm:"type:varchar(255)"`
	AcademicLevel  string     `json:"academic_level,omitempty" gorm:"type:varchar(50)"`
	Message        string     `json:"message"         gorm:"type:text;not null"`
	AttachmentPath string     `json:"attachment_path,omitempty" gorm:"type:varchar(500)"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	Status         string     `json:"status" gorm:"type:varchar(20);not null;default:'pending';check:status IN ('pending','in_progress','completed')"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Consultation.
func (Consultation) TableName() string { return "consultations" }

// StringList stores a []string as a JSON text column. The catalog keeps test
// conditions and tool walkthroughs as ordered string arrays, matching the
// shape returned by the API.
type StringList []string

// Value implements driver.Valuer; nil serializes as an empty JSON array so
// the API never returns null for list fields.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON text columns. Empty or NULL columns
// scan as an empty list.
func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = StringList{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return errors.New("StringList: unsupported source type")
	}
	if len(data) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

// StatisticalTest is a catalog entry describing one statistical test: when it
// applies and how to run it in SPSS and Excel. Rows are seeded at startup and
// read-only thereafter.
type StatisticalTest struct {
	ID          uint       `json:"id"          gorm:"primaryKey;autoIncrement"`
	TestName    string     `json:"test_name"   gorm:"type:varchar(255);not null;uniqueIndex"`
	Category    string     `json:"category"    gorm:"type:varchar(20);not null;check:category IN ('parametric','non-parametric')"`
	TestType    string     `json:"test_type"   gorm:"type:varchar(100);not null"`
	Description string     `json:"description" gorm:"type:text"`
	Conditions  StringList `json:"conditions"  gorm:"type:text"`
	SPSSSteps   StringList `json:"spss_steps"  gorm:"type:text"`
	ExcelSteps  StringList `json:"excel_steps" gorm:"type:text"`
	Icon        string     `json:"icon"        gorm:"type:varchar(100)"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName returns the database table name for StatisticalTest.
func (StatisticalTest) TableName() string { return "statistical_tests" }

// User holds contact details captured from the site, upserted by email so a
// returning visitor updates their own row.
type User struct {
	ID            uint      `json:"id"    gorm:"primaryKey;autoIncrement"`
	Email         string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	FullName      string    `json:"full_name" gorm:"type:varchar(255);not null"`
	Phone         string    `json:"phone,omitempty"          gorm:"type:varchar(20)"`
	University    string    `json:"university,omitempty"     gorm:"type:varchar(255)"`
	AcademicLevel string    `json:"academic_level,omitempty" gorm:"type:varchar(50)"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }
