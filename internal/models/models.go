// Package models contains the Visaport data structures:
// the field catalog that drives the portal intake form, and the
// application records the portal produces.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// =============================================================================
// SYSTEM MODELS
// =============================================================================

// User is a back-office (admin panel) user. Portal customers are not
// users; they are addressed by tracking code.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string     `json:"-" gorm:"size:255"`
	FullName     string     `json:"full_name" gorm:"size:255"`
	Role         string     `json:"role" gorm:"size:50;default:'staff'"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Setting is a single runtime configuration row (key/value with type info).
type Setting struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Key         string    `json:"key" gorm:"uniqueIndex;not null;size:100"`
	Value       string    `json:"value" gorm:"type:text"`
	ValueType   string    `json:"value_type" gorm:"size:20;default:'string'"`
	Description string    `json:"description" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AuditLog records a back-office mutation for the admin activity trail.
type AuditLog struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	UserID        *uuid.UUID     `json:"user_id" gorm:"type:uuid;index"`
	UserEmail     string         `json:"user_email" gorm:"size:255"`
	Action        string         `json:"action" gorm:"size:50;not null"`
	TableName     string         `json:"table_name" gorm:"size:100;index"`
	RecordID      string         `json:"record_id" gorm:"size:100"`
	OldData       JSONB          `json:"old_data" gorm:"type:jsonb"`
	NewData       JSONB          `json:"new_data" gorm:"type:jsonb"`
	ChangedFields pq.StringArray `json:"changed_fields" gorm:"type:text[]"`
	IPAddress     string         `json:"ip_address" gorm:"size:45"`
	UserAgent     string         `json:"user_agent" gorm:"size:500"`
	CreatedAt     time.Time      `json:"created_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// =============================================================================
// CATALOG MODELS (countries, visa types, portal content)
// =============================================================================

// Country is a destination country offered on the portal, with its
// fee schedule. Name holds the Turkish display name, NameEN the
// English one.
type Country struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"uniqueIndex;not null;size:100"`
	NameEN       string    `json:"name_en" gorm:"size:100"`
	FlagEmoji    string    `json:"flag_emoji" gorm:"size:10"`
	ServiceFee   float64   `json:"service_fee" gorm:"default:0"`
	ConsulateFee float64   `json:"consulate_fee" gorm:"default:0"`
	Currency     string    `json:"currency" gorm:"size:10;default:'TL'"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	SortOrder    int       `json:"sort_order" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VisaType is a visa category (tourist, business, ...) selectable on apply.
type VisaType struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null;size:100"`
	NameTR    string    `json:"name_tr" gorm:"size:100"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PortalContent is a country guide block shown on the portal
// (application steps, required documents, an optional video).
type PortalContent struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Country    string    `json:"country" gorm:"size:100;index;not null"`
	Title      string    `json:"title" gorm:"size:255;not null"`
	TitleTR    string    `json:"title_tr" gorm:"size:255"`
	Body       string    `json:"body" gorm:"type:text"`
	BodyTR     string    `json:"body_tr" gorm:"type:text"`
	YoutubeURL string    `json:"youtube_url" gorm:"size:255"`
	SortOrder  int       `json:"sort_order" gorm:"default:0"`
	IsActive   bool      `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// =============================================================================
// FIELD CATALOG MODELS (the intake form is interpreted from these rows)
// =============================================================================

// FieldDefinition is a reusable form field: what it is, independent of
// where it appears. Placement lives in FieldAssignment. Options and
// OptionsTR hold comma-separated choice lists for select fields.
type FieldDefinition struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	FieldKey      string    `json:"field_key" gorm:"uniqueIndex;not null;size:100"`
	FieldLabel    string    `json:"field_label" gorm:"not null;size:255"`
	FieldLabelTR  string    `json:"field_label_tr" gorm:"size:255"`
	FieldType     string    `json:"field_type" gorm:"size:20;default:'text'"`
	Placeholder   string    `json:"placeholder" gorm:"size:255"`
	PlaceholderTR string    `json:"placeholder_tr" gorm:"size:255"`
	Options       string    `json:"options" gorm:"type:text"`
	OptionsTR     string    `json:"options_tr" gorm:"type:text"`
	IsStandard    bool      `json:"is_standard" gorm:"default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Assignments []FieldAssignment `json:"assignments,omitempty" gorm:"foreignKey:DefinitionID"`
}

// FieldAssignment places a field definition on the intake form for a
// given context. Country and VisaType are NULL for global placements;
// scoped rows override nothing by themselves, duplicates are resolved
// by the resolver's first-wins policy.
type FieldAssignment struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	DefinitionID uint      `json:"definition_id" gorm:"index;not null"`
	Country      *string   `json:"country" gorm:"size:100;index"`
	VisaType     *string   `json:"visa_type" gorm:"size:100"`
	IsRequired   bool      `json:"is_required" gorm:"default:false"`
	MaxChars     *int      `json:"max_chars"`
	SortOrder    int       `json:"sort_order" gorm:"default:0"`
	Section      string    `json:"section" gorm:"size:50"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Definition *FieldDefinition `json:"definition,omitempty" gorm:"foreignKey:DefinitionID"`
}

// SmartFieldTemplate is a composite field backed by a registered state
// machine. SubFields describes the answer keys for the admin screens;
// behaviour lives entirely in the machine keyed by TemplateKey.
type SmartFieldTemplate struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	TemplateKey   string         `json:"template_key" gorm:"uniqueIndex;not null;size:100"`
	Label         string         `json:"label" gorm:"not null;size:255"`
	LabelTR       string         `json:"label_tr" gorm:"size:255"`
	Description   string         `json:"description" gorm:"type:text"`
	DescriptionTR string         `json:"description_tr" gorm:"type:text"`
	SubFields     datatypes.JSON `json:"sub_fields" gorm:"type:jsonb"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	Assignments []SmartFieldAssignment `json:"assignments,omitempty" gorm:"foreignKey:TemplateID"`
}

// SubFieldDesc is one entry of SmartFieldTemplate.SubFields.
type SubFieldDesc struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	LabelTR string `json:"label_tr"`
}

// SmartFieldAssignment places a smart-field template on the intake form.
type SmartFieldAssignment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TemplateID uint      `json:"template_id" gorm:"index;not null"`
	Country    *string   `json:"country" gorm:"size:100;index"`
	VisaType   *string   `json:"visa_type" gorm:"size:100"`
	IsRequired bool      `json:"is_required" gorm:"default:false"`
	SortOrder  int       `json:"sort_order" gorm:"default:0"`
	Section    string    `json:"section" gorm:"size:50"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Template *SmartFieldTemplate `json:"template,omitempty" gorm:"foreignKey:TemplateID"`
}

// =============================================================================
// APPLICATION MODELS
// =============================================================================

// Application statuses as shown on the portal status page.
const (
	StatusReceived   = "received"
	StatusProcessing = "processing"
	StatusAppointed  = "appointment"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
	StatusDelivered  = "delivered"
)

// Application is one visa application. Standard answers land in their
// own columns; everything else (custom fields plus the _smart
// namespace) lands in CustomFields.
type Application struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	TrackingCode string `json:"tracking_code" gorm:"uniqueIndex;not null;size:20"`

	FullName       *string `json:"full_name" gorm:"size:255"`
	IDNumber       *string `json:"id_number" gorm:"size:50"`
	DateOfBirth    *string `json:"date_of_birth" gorm:"size:20"`
	Phone          *string `json:"phone" gorm:"size:50"`
	Email          *string `json:"email" gorm:"size:255"`
	PassportNo     *string `json:"passport_no" gorm:"size:50"`
	PassportExpiry *string `json:"passport_expiry" gorm:"size:20"`

	Country      string  `json:"country" gorm:"size:100;index;not null"`
	VisaType     string  `json:"visa_type" gorm:"size:100"`
	VisaStatus   string  `json:"visa_status" gorm:"size:30;default:'received';index"`
	CustomFields JSONB   `json:"custom_fields" gorm:"type:jsonb;default:'{}'"`
	ServiceFee   float64 `json:"service_fee" gorm:"default:0"`
	ConsulateFee float64 `json:"consulate_fee" gorm:"default:0"`
	Currency     string  `json:"currency" gorm:"size:10;default:'TL'"`

	GroupID *uuid.UUID `json:"group_id" gorm:"type:uuid;index"`

	AppointmentDate *string `json:"appointment_date" gorm:"size:20"`
	AppointmentTime *string `json:"appointment_time" gorm:"size:20"`
	PickupDate      *string `json:"pickup_date" gorm:"size:20"`
	TravelDate      *string `json:"travel_date" gorm:"size:20"`
	ConsulateOffice *string `json:"consulate_office" gorm:"size:100"`
	PassportPhoto   *string `json:"passport_photo" gorm:"size:500"`
	VisaPhoto       *string `json:"visa_photo" gorm:"size:500"`

	PortalLastAccessed *time.Time `json:"portal_last_accessed"`
	IsDeleted          bool       `json:"is_deleted" gorm:"default:false;index"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Group *GroupFolder `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}

// GroupFolder bundles the applications of people travelling together.
// Members are normal Application rows pointing back via GroupID; they
// are submitted together and share one group tracking code.
type GroupFolder struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	TrackingCode string    `json:"tracking_code" gorm:"uniqueIndex;not null;size:20"`
	Country      string    `json:"country" gorm:"size:100;not null"`
	VisaType     string    `json:"visa_type" gorm:"size:100"`
	ContactName  string    `json:"contact_name" gorm:"size:255"`
	ContactPhone string    `json:"contact_phone" gorm:"size:50"`
	IsSubmitted  bool      `json:"is_submitted" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Members []Application `json:"members,omitempty" gorm:"foreignKey:GroupID"`
}
