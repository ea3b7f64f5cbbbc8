// Package portal is the customer-facing application service: intake
// schema assembly, submission, tracking-code lookup, personal-info
// updates, document-upload bookkeeping, and group folders.
package portal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atlasgate/visaport/internal/catalog"
	"github.com/atlasgate/visaport/internal/config"
	apperrors "github.com/atlasgate/visaport/internal/errors"
	"github.com/atlasgate/visaport/internal/intake"
	"github.com/atlasgate/visaport/internal/models"
	"github.com/atlasgate/visaport/internal/notify"
	"github.com/atlasgate/visaport/internal/smartfield"
	"github.com/atlasgate/visaport/internal/turkish"
)

// Service runs the portal flows over the catalog and the database.
type Service struct {
	db       *gorm.DB
	store    *catalog.Store
	settings *config.Service
	sms      *notify.SMSService
}

// NewService wires a portal service.
func NewService(db *gorm.DB, store *catalog.Store, settings *config.Service, sms *notify.SMSService) *Service {
	return &Service{db: db, store: store, settings: settings, sms: sms}
}

// Schema is the intake form description served to the portal client.
type Schema struct {
	Fields   []intake.FormField       `json:"fields"`
	Smart    []intake.SmartAssignment `json:"smart_fields"`
	Sections []intake.Section         `json:"sections"`
}

// IntakeSchema resolves and sections the form for a context. Resolver
// failures already degraded to empty lists inside the store; an empty
// schema tells the client to show its warning state.
func (s *Service) IntakeSchema(ctx context.Context, country, visaType string) Schema {
	form := s.loadForm(ctx, country, visaType)
	return Schema{
		Fields:   form.Fields(),
		Smart:    form.SmartAssignments(),
		Sections: form.Sections(),
	}
}

func (s *Service) loadForm(ctx context.Context, country, visaType string) *intake.Form {
	form := intake.NewForm()
	token := form.BeginLoad()
	form.CompleteLoad(token, intake.Snapshot{
		Fields: s.store.FormFields(ctx, country, visaType),
		Smart:  s.store.SmartAssignments(ctx, country, visaType),
	})
	return form
}

// SubmitRequest is one applicant's answers.
type SubmitRequest struct {
	Country     string                    `json:"country" binding:"required"`
	VisaType    string                    `json:"visa_type"`
	City        string                    `json:"application_city"`
	Values      map[string]string         `json:"values"`
	SmartValues map[string]map[string]any `json:"smart_values"`
}

// Receipt is returned to the applicant after a successful submission.
type Receipt struct {
	TrackingCode  string `json:"tracking_code"`
	ApplicationID uint   `json:"application_id"`
}

// Submit runs the full intake pipeline and persists one application
// row. Client-supplied _valid sentinels are not trusted: every smart
// document is re-evaluated by its machine before the gate.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Receipt, error) {
	row, err := s.buildApplication(ctx, req, nil)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("failed to persist application: %w", err))
	}

	s.notifySubmission(row)
	return &Receipt{TrackingCode: row.TrackingCode, ApplicationID: row.ID}, nil
}

// buildApplication validates and normalizes a request into an
// unsaved application row. groupID links group members.
func (s *Service) buildApplication(ctx context.Context, req SubmitRequest, groupID *uuid.UUID) (*models.Application, error) {
	form := s.loadForm(ctx, req.Country, req.VisaType)
	for key, value := range req.Values {
		form.SetValue(key, value)
	}
	for key, doc := range req.SmartValues {
		form.RestoreSmartDocument(key, smartfield.Document(doc))
	}

	sub, err := form.Submit(ctx, req.Country, req.VisaType, req.City, s.store)
	if err != nil {
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			return nil, newSubmissionError(verr)
		}
		return nil, apperrors.NewInternalError(err)
	}

	code, err := NewTrackingCode()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	row := &models.Application{
		TrackingCode:   code,
		FullName:       sub.FullName,
		IDNumber:       standardColumn(sub, "id_number"),
		DateOfBirth:    standardColumn(sub, "date_of_birth"),
		Phone:          standardColumn(sub, "phone"),
		Email:          standardColumn(sub, "email"),
		PassportNo:     standardColumn(sub, "passport_no"),
		PassportExpiry: standardColumn(sub, "passport_expiry"),
		Country:        sub.Country,
		VisaType:       sub.VisaType,
		VisaStatus:     models.StatusReceived,
		CustomFields:   models.JSONB(sub.Custom),
		ServiceFee:     sub.Fees.Service,
		ConsulateFee:   sub.Fees.Consulate,
		Currency:       sub.Fees.Currency,
		GroupID:        groupID,
	}
	return row, nil
}

func standardColumn(sub *intake.Submission, key string) *string {
	if v, ok := sub.Standard[key]; ok && v != "" {
		return &v
	}
	return nil
}

// newSubmissionError flattens a validation report into the API error
// the portal client renders.
func newSubmissionError(verr *intake.ValidationError) error {
	parts := make([]string, 0, len(verr.Report.Summary)+len(verr.Report.InvalidSmart))
	parts = append(parts, verr.Report.Summary...)
	parts = append(parts, verr.Report.InvalidSmart...)
	return apperrors.NewValidationError(strings.Join(parts, ", "), verr.Error())
}

func (s *Service) notifySubmission(row *models.Application) {
	if s.sms == nil || !s.settings.GetBool(config.KeyNotifyOnSubmission) || row.Phone == nil {
		return
	}
	s.sms.SendAsync(*row.Phone,
		fmt.Sprintf("Basvurunuz alindi. Takip kodunuz: %s", row.TrackingCode))
}

// =============================================================================
// TRACKING LOOKUP AND CUSTOMER UPDATES
// =============================================================================

// StatusView is the customer-visible projection of an application.
// Back-office columns (notes, fees breakdown internals) stay hidden.
type StatusView struct {
	TrackingCode    string     `json:"tracking_code"`
	FullName        *string    `json:"full_name"`
	IDNumber        *string    `json:"id_number"`
	DateOfBirth     *string    `json:"date_of_birth"`
	Phone           *string    `json:"phone"`
	Email           *string    `json:"email"`
	PassportNo      *string    `json:"passport_no"`
	PassportExpiry  *string    `json:"passport_expiry"`
	VisaStatus      string     `json:"visa_status"`
	VisaType        string     `json:"visa_type"`
	Country         string     `json:"country"`
	AppointmentDate *string    `json:"appointment_date"`
	AppointmentTime *string    `json:"appointment_time"`
	PickupDate      *string    `json:"pickup_date"`
	TravelDate      *string    `json:"travel_date"`
	ConsulateOffice *string    `json:"consulate_office"`
	PassportPhoto   *string    `json:"passport_photo"`
	VisaPhoto       *string    `json:"visa_photo"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Lookup fetches an application by tracking code and stamps the portal
// access time.
func (s *Service) Lookup(ctx context.Context, trackingCode string) (*StatusView, error) {
	row, err := s.findByCode(ctx, trackingCode)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(row).
		UpdateColumn("portal_last_accessed", now).Error; err != nil {
		log.Printf("Warning: failed to stamp portal access for %s: %v", trackingCode, err)
	}

	return &StatusView{
		TrackingCode:    row.TrackingCode,
		FullName:        row.FullName,
		IDNumber:        row.IDNumber,
		DateOfBirth:     row.DateOfBirth,
		Phone:           row.Phone,
		Email:           row.Email,
		PassportNo:      row.PassportNo,
		PassportExpiry:  row.PassportExpiry,
		VisaStatus:      row.VisaStatus,
		VisaType:        row.VisaType,
		Country:         row.Country,
		AppointmentDate: row.AppointmentDate,
		AppointmentTime: row.AppointmentTime,
		PickupDate:      row.PickupDate,
		TravelDate:      row.TravelDate,
		ConsulateOffice: row.ConsulateOffice,
		PassportPhoto:   row.PassportPhoto,
		VisaPhoto:       row.VisaPhoto,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

func (s *Service) findByCode(ctx context.Context, trackingCode string) (*models.Application, error) {
	var row models.Application
	err := s.db.WithContext(ctx).
		Where("tracking_code = ? AND is_deleted = ?", strings.TrimSpace(trackingCode), false).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("application")
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &row, nil
}

// PersonalInfo is the subset a customer may correct after submitting.
type PersonalInfo struct {
	FullName       string `json:"full_name"`
	IDNumber       string `json:"id_number"`
	DateOfBirth    string `json:"date_of_birth"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	PassportNo     string `json:"passport_no"`
	PassportExpiry string `json:"passport_expiry"`
}

// UpdatePersonalInfo overwrites the personal columns of an
// application. The name folds the same way the intake does; the email
// is stored as entered, a folded local part may stop matching the
// mailbox.
func (s *Service) UpdatePersonalInfo(ctx context.Context, trackingCode string, info PersonalInfo) error {
	row, err := s.findByCode(ctx, trackingCode)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(row).Updates(personalUpdates(info)).Error; err != nil {
		return apperrors.NewInternalError(fmt.Errorf("failed to update personal info: %w", err))
	}
	return nil
}

func personalUpdates(info PersonalInfo) map[string]interface{} {
	return map[string]interface{}{
		"full_name":       turkish.Fold(strings.TrimSpace(info.FullName)),
		"id_number":       strings.TrimSpace(info.IDNumber),
		"date_of_birth":   strings.TrimSpace(info.DateOfBirth),
		"phone":           strings.TrimSpace(info.Phone),
		"email":           strings.TrimSpace(info.Email),
		"passport_no":     strings.TrimSpace(info.PassportNo),
		"passport_expiry": strings.TrimSpace(info.PassportExpiry),
	}
}

// =============================================================================
// DOCUMENT UPLOAD BOOKKEEPING
// =============================================================================

// Upload fields customers may write. Blob storage lives outside this
// service; we validate and record the storage path only.
var uploadFields = map[string]bool{
	"passport_photo": true,
	"visa_photo":     true,
}

var uploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"application/pdf": true,
}

var uploadExtensions = map[string]string{
	"image/jpeg":      "jpg",
	"image/jpg":       "jpg",
	"image/png":       "png",
	"application/pdf": "pdf",
}

// RegisterUpload validates an upload request and records its storage
// path on the application. The returned path is where the caller must
// place the blob.
func (s *Service) RegisterUpload(ctx context.Context, trackingCode, field, contentType string, sizeBytes int64) (string, error) {
	if !uploadFields[field] {
		return "", apperrors.NewBadRequestError("unknown upload field")
	}
	if !uploadTypes[contentType] {
		return "", apperrors.NewBadRequestError("unsupported file type")
	}
	maxBytes := int64(s.settings.GetInt(config.KeyUploadMaxMB, 5)) * 1024 * 1024
	if sizeBytes <= 0 || sizeBytes > maxBytes {
		return "", apperrors.NewBadRequestError("file too large")
	}

	row, err := s.findByCode(ctx, trackingCode)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("%s/%s_%d.%s", row.TrackingCode, field, time.Now().Unix(), uploadExtensions[contentType])
	if err := s.db.WithContext(ctx).Model(row).UpdateColumn(field, path).Error; err != nil {
		return "", apperrors.NewInternalError(fmt.Errorf("failed to record upload: %w", err))
	}
	return path, nil
}
