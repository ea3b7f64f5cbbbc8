package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/atlasgate/visaport/internal/auth"
	apperrors "github.com/atlasgate/visaport/internal/errors"
	"github.com/atlasgate/visaport/internal/intake"
	"github.com/atlasgate/visaport/internal/models"
	"github.com/atlasgate/visaport/internal/security"
	"github.com/atlasgate/visaport/internal/smartfield"
)

func idParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewBadRequestError("invalid id")
	}
	return uint(id), nil
}

func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "25"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 25
	}
	return page, pageSize
}

// validSubFields checks that a template's sub_fields payload parses
// into the descriptor list the admin screens render. Empty is fine;
// the machine, not the descriptor, defines behaviour.
func validSubFields(raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	var descs []models.SubFieldDesc
	if err := json.Unmarshal(raw, &descs); err != nil {
		return apperrors.NewValidationError("sub_fields", "must be a JSON array of {key, label, label_tr} descriptors")
	}
	for _, d := range descs {
		if d.Key == "" {
			return apperrors.NewValidationError("sub_fields", "every descriptor needs a key")
		}
	}
	return nil
}

// snapshot renders a model as a JSONB map for the audit trail.
func snapshot(v any) models.JSONB {
	raw, err := json.Marshal(v)
	if err != nil {
		return models.JSONB{}
	}
	var m models.JSONB
	if err := json.Unmarshal(raw, &m); err != nil {
		return models.JSONB{}
	}
	return m
}

// =============================================================================
// APPLICATIONS
// =============================================================================

// applicationSearchColumns are the columns the free-text search spans.
var applicationSearchColumns = []string{"tracking_code", "full_name", "phone", "email", "passport_no"}

// ListApplications serves the back-office application table with
// free-text search, status and country filters, and pagination.
func (h *Handler) ListApplications(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.Application{}).Where("is_deleted = ?", false)

	if status := c.Query("status"); status != "" {
		query = query.Where("visa_status = ?", status)
	}
	if country := c.Query("country"); country != "" {
		query = query.Where("country = ?", country)
	}
	if search := c.Query("search"); search != "" {
		if cond, params := security.MultiSearchCondition(applicationSearchColumns, search); cond != "" {
			query = query.Where(cond, params...)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}

	page, pageSize := pagination(c)
	var rows []models.Application
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": rows,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
	})
}

// GetApplication returns one application with its group, if any.
func (h *Handler) GetApplication(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var row models.Application
	err = h.db.WithContext(c.Request.Context()).
		Preload("Group").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, apperrors.NewNotFoundError("application"))
		return
	}
	if err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, row)
}

type updateApplicationRequest struct {
	VisaStatus      *string `json:"visa_status"`
	AppointmentDate *string `json:"appointment_date"`
	AppointmentTime *string `json:"appointment_time"`
	PickupDate      *string `json:"pickup_date"`
	TravelDate      *string `json:"travel_date"`
	ConsulateOffice *string `json:"consulate_office"`
}

var validStatuses = map[string]bool{
	models.StatusReceived:   true,
	models.StatusProcessing: true,
	models.StatusAppointed:  true,
	models.StatusApproved:   true,
	models.StatusRejected:   true,
	models.StatusDelivered:  true,
}

// UpdateApplication updates the back-office columns of an application
// (status, appointment, pickup). Intake answers are not editable here.
func (h *Handler) UpdateApplication(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req updateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}
	if req.VisaStatus != nil && !validStatuses[*req.VisaStatus] {
		respondError(c, apperrors.NewValidationError("visa_status", fmt.Sprintf("unknown status %q", *req.VisaStatus)))
		return
	}

	var row models.Application
	err = h.db.WithContext(c.Request.Context()).Where("id = ? AND is_deleted = ?", id, false).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, apperrors.NewNotFoundError("application"))
		return
	}
	if err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}

	before := snapshot(row)
	updates := map[string]any{}
	if req.VisaStatus != nil {
		updates["visa_status"] = *req.VisaStatus
	}
	if req.AppointmentDate != nil {
		updates["appointment_date"] = req.AppointmentDate
	}
	if req.AppointmentTime != nil {
		updates["appointment_time"] = req.AppointmentTime
	}
	if req.PickupDate != nil {
		updates["pickup_date"] = req.PickupDate
	}
	if req.TravelDate != nil {
		updates["travel_date"] = req.TravelDate
	}
	if req.ConsulateOffice != nil {
		updates["consulate_office"] = req.ConsulateOffice
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, row)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Model(&row).Updates(updates).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}

	after := snapshot(row)
	h.audit.Record(c, "update", "applications", strconv.FormatUint(uint64(row.ID), 10), before, after, diffFields(before, after))
	c.JSON(http.StatusOK, row)
}

// DeleteApplication soft-deletes an application. The row stays for the
// audit trail; the portal and the list stop seeing it.
func (h *Handler) DeleteApplication(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	result := h.db.WithContext(c.Request.Context()).
		Model(&models.Application{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if result.Error != nil {
		respondError(c, apperrors.NewInternalError(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, apperrors.NewNotFoundError("application"))
		return
	}
	h.audit.Record(c, "delete", "applications", c.Param("id"), nil, nil, []string{"is_deleted"})
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// =============================================================================
// COUNTRIES / VISA TYPES
// =============================================================================

// ListCountries returns every country, inactive ones included.
func (h *Handler) ListCountries(c *gin.Context) {
	var rows []models.Country
	if err := h.db.WithContext(c.Request.Context()).Order("sort_order ASC, name ASC").Find(&rows).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"countries": rows})
}

func (h *Handler) CreateCountry(c *gin.Context) {
	var row models.Country
	if err := c.ShouldBindJSON(&row); err != nil || row.Name == "" {
		respondError(c, apperrors.NewBadRequestError("name is required"))
		return
	}
	row.ID = 0
	if row.Currency == "" {
		row.Currency = intake.DefaultCurrency
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		respondError(c, apperrors.NewConflictError(fmt.Sprintf("country %q already exists", row.Name)))
		return
	}
	h.audit.Record(c, "create", "countries", strconv.FormatUint(uint64(row.ID), 10), nil, snapshot(row), nil)
	c.JSON(http.StatusCreated, row)
}

func (h *Handler) UpdateCountry(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var row models.Country
	if err := h.db.WithContext(c.Request.Context()).First(&row, id).Error; err != nil {
		respondError(c, apperrors.NewNotFoundError("country"))
		return
	}
	before := snapshot(row)

	var patch models.Country
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}
	patch.ID = row.ID
	patch.CreatedAt = row.CreatedAt
	if err := h.db.WithContext(c.Request.Context()).Save(&patch).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}

	after := snapshot(patch)
	h.audit.Record(c, "update", "countries", c.Param("id"), before, after, diffFields(before, after))
	c.JSON(http.StatusOK, patch)
}

func (h *Handler) DeleteCountry(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	result := h.db.WithContext(c.Request.Context()).Delete(&models.Country{}, id)
	if result.Error != nil {
		respondError(c, apperrors.NewInternalError(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, apperrors.NewNotFoundError("country"))
		return
	}
	h.audit.Record(c, "delete", "countries", c.Param("id"), nil, nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) ListVisaTypes(c *gin.Context) {
	var rows []models.VisaType
	if err := h.db.WithContext(c.Request.Context()).Order("sort_order ASC, name ASC").Find(&rows).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"visa_types": rows})
}

func (h *Handler) CreateVisaType(c *gin.Context) {
	var row models.VisaType
	if err := c.ShouldBindJSON(&row); err != nil || row.Name == "" {
		respondError(c, apperrors.NewBadRequestError("name is required"))
		return
	}
	row.ID = 0
	if err := h.db.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		respondError(c, apperrors.NewConflictError(fmt.Sprintf("visa type %q already exists", row.Name)))
		return
	}
	h.audit.Record(c, "create", "visa_types", strconv.FormatUint(uint64(row.ID), 10), nil, snapshot(row), nil)
	c.JSON(http.StatusCreated, row)
}

func (h *Handler) UpdateVisaType(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var row models.VisaType
	if err := h.db.WithContext(c.Request.Context()).First(&row, id).Error; err != nil {
		respondError(c, apperrors.NewNotFoundError("visa type"))
		return
	}
	before := snapshot(row)

	var patch models.VisaType
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}
	patch.ID = row.ID
	patch.CreatedAt = row.CreatedAt
	if err := h.db.WithContext(c.Request.Context()).Save(&patch).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	after := snapshot(patch)
	h.audit.Record(c, "update", "visa_types", c.Param("id"), before, after, diffFields(before, after))
	c.JSON(http.StatusOK, patch)
}

func (h *Handler) DeleteVisaType(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	result := h.db.WithContext(c.Request.Context()).Delete(&models.VisaType{}, id)
	if result.Error != nil {
		respondError(c, apperrors.NewInternalError(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, apperrors.NewNotFoundError("visa type"))
		return
	}
	h.audit.Record(c, "delete", "visa_types", c.Param("id"), nil, nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// =============================================================================
// FIELD CATALOG
// =============================================================================

// ListFieldDefinitions returns the full field catalog.
func (h *Handler) ListFieldDefinitions(c *gin.Context) {
	var rows []models.FieldDefinition
	if err := h.db.WithContext(c.Request.Context()).Order("field_key ASC").Find(&rows).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"field_definitions": rows})
}

// CreateFieldDefinition adds a field to the catalog. IsStandard is
// derived from the key, never taken from the request: a field whose
// key belongs to the fixed personal-data vocabulary maps to a column,
// everything else goes to custom_fields.
func (h *Handler) CreateFieldDefinition(c *gin.Context) {
	var row models.FieldDefinition
	if err := c.ShouldBindJSON(&row); err != nil || row.FieldKey == "" || row.FieldLabel == "" {
		respondError(c, apperrors.NewBadRequestError("field_key and field_label are required"))
		return
	}
	row.ID = 0
	if row.FieldType == "" {
		row.FieldType = "text"
	}
	if !intake.ValidFieldType(row.FieldType) {
		respondError(c, apperrors.NewValidationError("field_type", fmt.Sprintf("unknown field type %q", row.FieldType)))
		return
	}
	row.IsStandard = intake.IsStandardKey(row.FieldKey)
	if err := h.db.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		respondError(c, apperrors.NewConflictError(fmt.Sprintf("field %q already exists", row.FieldKey)))
		return
	}
	h.audit.Record(c, "create", "field_definitions", strconv.FormatUint(uint64(row.ID), 10), nil, snapshot(row), nil)
	c.JSON(http.StatusCreated, row)
}

func (h *Handler) UpdateFieldDefinition(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var row models.FieldDefinition
	if err := h.db.WithContext(c.Request.Context()).First(&row, id).Error; err != nil {
		respondError(c, apperrors.NewNotFoundError("field definition"))
		return
	}
	before := snapshot(row)

	var patch models.FieldDefinition
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}
	patch.ID = row.ID
	patch.CreatedAt = row.CreatedAt
	if patch.FieldKey == "" {
		patch.FieldKey = row.FieldKey
	}
	if patch.FieldType == "" {
		patch.FieldType = row.FieldType
	}
	if !intake.ValidFieldType(patch.FieldType) {
		respondError(c, apperrors.NewValidationError("field_type", fmt.Sprintf("unknown field type %q", patch.FieldType)))
		return
	}
	patch.IsStandard = intake.IsStandardKey(patch.FieldKey)
	if err := h.db.WithContext(c.Request.Context()).Save(&patch).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	after := snapshot(patch)
	h.audit.Record(c, "update", "field_definitions", c.Param("id"), before, after, diffFields(before, after))
	c.JSON(http.StatusOK, patch)
}

// DeleteFieldDefinition removes a field and its placements.
func (h *Handler) DeleteFieldDefinition(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("definition_id = ?", id).Delete(&models.FieldAssignment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.FieldDefinition{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.NewNotFoundError("field definition")
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit.Record(c, "delete", "field_definitions", c.Param("id"), nil, nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// ListFieldAssignments lists placements, optionally filtered to one context.
func (h *Handler) ListFieldAssignments(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.FieldAssignment{}).Preload("Definition")
	if country := c.Query("country"); country != "" {
		query = query.Where("country = ?", country)
	} else if c.Query("global") == "true" {
		query = query.Where("country IS NULL")
	}
	var rows []models.FieldAssignment
	if err := query.Order("sort_order ASC, id ASC").Find(&rows).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"field_assignments": rows})
}

func (h *Handler) CreateFieldAssignment(c *gin.Context) {
	var row models.FieldAssignment
	if err := c.ShouldBindJSON(&row); err != nil || row.DefinitionID == 0 {
		respondError(c, apperrors.NewBadRequestError("definition_id is required"))
		return
	}
	row.ID = 0
	var def models.FieldDefinition
	if err := h.db.WithContext(c.Request.Context()).First(&def, row.DefinitionID).Error; err != nil {
		respondError(c, apperrors.NewNotFoundError("field definition"))
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	h.audit.Record(c, "create", "field_assignments", strconv.FormatUint(uint64(row.ID), 10), nil, snapshot(row), nil)
	c.JSON(http.StatusCreated, row)
}

func (h *Handler) UpdateFieldAssignment(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var row models.FieldAssignment
	if err := h.db.WithContext(c.Request.Context()).First(&row, id).Error; err != nil {
		respondError(c, apperrors.NewNotFoundError("field assignment"))
		return
	}
	before := snapshot(row)

	var patch models.FieldAssignment
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}
	patch.ID = row.ID
	patch.CreatedAt = row.CreatedAt
	if patch.DefinitionID == 0 {
		patch.DefinitionID = row.DefinitionID
	}
	if err := h.db.WithContext(c.Request.Context()).Save(&patch).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	after := snapshot(patch)
	h.audit.Record(c, "update", "field_assignments", c.Param("id"), before, after, diffFields(before, after))
	c.JSON(http.StatusOK, patch)
}

func (h *Handler) DeleteFieldAssignment(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	result := h.db.WithContext(c.Request.Context()).Delete(&models.FieldAssignment{}, id)
	if result.Error != nil {
		respondError(c, apperrors.NewInternalError(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, apperrors.NewNotFoundError("field assignment"))
		return
	}
	h.audit.Record(c, "delete", "field_assignments", c.Param("id"), nil, nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// =============================================================================
// SMART FIELDS
// =============================================================================

// ListSmartMachines lists the machine keys templates may bind to.
func (h *Handler) ListSmartMachines(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"machines": smartfield.Keys()})
}

func (h *Handler) ListSmartTemplates(c *gin.Context) {
	var rows []models.SmartFieldTemplate
	if err := h.db.WithContext(c.Request.Context()).Order("template_key ASC").Find(&rows).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"smart_field_templates": rows})
}

// CreateSmartTemplate registers a smart-field template. The template
// key must name a registered machine; a template without behaviour
// would render a form block that validates nothing.
func (h *Handler) CreateSmartTemplate(c *gin.Context) {
	var row models.SmartFieldTemplate
	if err := c.ShouldBindJSON(&row); err != nil || row.TemplateKey == "" || row.Label == "" {
		respondError(c, apperrors.NewBadRequestError("template_key and label are required"))
		return
	}
	if _, ok := smartfield.Lookup(row.TemplateKey); !ok {
		respondError(c, apperrors.NewValidationError("template_key", fmt.Sprintf("no machine registered for %q", row.TemplateKey)))
		return
	}
	if err := validSubFields(row.SubFields); err != nil {
		respondError(c, err)
		return
	}
	row.ID = 0
	if err := h.db.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		respondError(c, apperrors.NewConflictError(fmt.Sprintf("template %q already exists", row.TemplateKey)))
		return
	}
	h.audit.Record(c, "create", "smart_field_templates", strconv.FormatUint(uint64(row.ID), 10), nil, snapshot(row), nil)
	c.JSON(http.StatusCreated, row)
}

func (h *Handler) UpdateSmartTemplate(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var row models.SmartFieldTemplate
	if err := h.db.WithContext(c.Request.Context()).First(&row, id).Error; err != nil {
		respondError(c, apperrors.NewNotFoundError("smart field template"))
		return
	}
	before := snapshot(row)

	var patch models.SmartFieldTemplate
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}
	patch.ID = row.ID
	patch.CreatedAt = row.CreatedAt
	if patch.TemplateKey == "" {
		patch.TemplateKey = row.TemplateKey
	}
	if _, ok := smartfield.Lookup(patch.TemplateKey); !ok {
		respondError(c, apperrors.NewValidationError("template_key", fmt.Sprintf("no machine registered for %q", patch.TemplateKey)))
		return
	}
	if err := validSubFields(patch.SubFields); err != nil {
		respondError(c, err)
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Save(&patch).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	after := snapshot(patch)
	h.audit.Record(c, "update", "smart_field_templates", c.Param("id"), before, after, diffFields(before, after))
	c.JSON(http.StatusOK, patch)
}

func (h *Handler) DeleteSmartTemplate(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&models.SmartFieldAssignment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.SmartFieldTemplate{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.NewNotFoundError("smart field template")
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit.Record(c, "delete", "smart_field_templates", c.Param("id"), nil, nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) ListSmartAssignments(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.SmartFieldAssignment{}).Preload("Template")
	if country := c.Query("country"); country != "" {
		query = query.Where("country = ?", country)
	} else if c.Query("global") == "true" {
		query = query.Where("country IS NULL")
	}
	var rows []models.SmartFieldAssignment
	if err := query.Order("sort_order ASC, id ASC").Find(&rows).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"smart_field_assignments": rows})
}

func (h *Handler) CreateSmartAssignment(c *gin.Context) {
	var row models.SmartFieldAssignment
	if err := c.ShouldBindJSON(&row); err != nil || row.TemplateID == 0 {
		respondError(c, apperrors.NewBadRequestError("template_id is required"))
		return
	}
	row.ID = 0
	var tpl models.SmartFieldTemplate
	if err := h.db.WithContext(c.Request.Context()).First(&tpl, row.TemplateID).Error; err != nil {
		respondError(c, apperrors.NewNotFoundError("smart field template"))
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	h.audit.Record(c, "create", "smart_field_assignments", strconv.FormatUint(uint64(row.ID), 10), nil, snapshot(row), nil)
	c.JSON(http.StatusCreated, row)
}

func (h *Handler) DeleteSmartAssignment(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	result := h.db.WithContext(c.Request.Context()).Delete(&models.SmartFieldAssignment{}, id)
	if result.Error != nil {
		respondError(c, apperrors.NewInternalError(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, apperrors.NewNotFoundError("smart field assignment"))
		return
	}
	h.audit.Record(c, "delete", "smart_field_assignments", c.Param("id"), nil, nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// =============================================================================
// PORTAL CONTENT
// =============================================================================

func (h *Handler) ListPortalContents(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.PortalContent{})
	if country := c.Query("country"); country != "" {
		query = query.Where("country = ?", country)
	}
	var rows []models.PortalContent
	if err := query.Order("country ASC, sort_order ASC").Find(&rows).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"contents": rows})
}

func (h *Handler) CreatePortalContent(c *gin.Context) {
	var row models.PortalContent
	if err := c.ShouldBindJSON(&row); err != nil || row.Country == "" || row.Title == "" {
		respondError(c, apperrors.NewBadRequestError("country and title are required"))
		return
	}
	row.ID = 0
	if err := h.db.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	h.audit.Record(c, "create", "portal_contents", strconv.FormatUint(uint64(row.ID), 10), nil, snapshot(row), nil)
	c.JSON(http.StatusCreated, row)
}

func (h *Handler) UpdatePortalContent(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var row models.PortalContent
	if err := h.db.WithContext(c.Request.Context()).First(&row, id).Error; err != nil {
		respondError(c, apperrors.NewNotFoundError("portal content"))
		return
	}
	before := snapshot(row)

	var patch models.PortalContent
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}
	patch.ID = row.ID
	patch.CreatedAt = row.CreatedAt
	if err := h.db.WithContext(c.Request.Context()).Save(&patch).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	after := snapshot(patch)
	h.audit.Record(c, "update", "portal_contents", c.Param("id"), before, after, diffFields(before, after))
	c.JSON(http.StatusOK, patch)
}

func (h *Handler) DeletePortalContent(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	result := h.db.WithContext(c.Request.Context()).Delete(&models.PortalContent{}, id)
	if result.Error != nil {
		respondError(c, apperrors.NewInternalError(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, apperrors.NewNotFoundError("portal content"))
		return
	}
	h.audit.Record(c, "delete", "portal_contents", c.Param("id"), nil, nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// =============================================================================
// SETTINGS / USERS / AUDIT
// =============================================================================

// GetSettings returns every runtime setting with its effective value.
func (h *Handler) GetSettings(c *gin.Context) {
	rows, err := h.settings.All()
	if err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": rows})
}

type updateSettingRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

func (h *Handler) UpdateSetting(c *gin.Context) {
	var req updateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("key is required"))
		return
	}
	if err := h.settings.Set(req.Key, req.Value); err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	h.audit.Record(c, "update", "settings", req.Key, nil, models.JSONB{"value": req.Value}, []string{req.Key})
	c.JSON(http.StatusOK, gin.H{"message": "saved"})
}

func (h *Handler) ListUsers(c *gin.Context) {
	var rows []models.User
	if err := h.db.WithContext(c.Request.Context()).Order("email ASC").Find(&rows).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": rows})
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("email and password (min 8 chars) are required"))
		return
	}
	role := req.Role
	if role != auth.RoleAdmin {
		role = auth.RoleStaff
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	user := models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         role,
		IsActive:     true,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		respondError(c, apperrors.NewConflictError(fmt.Sprintf("user %q already exists", req.Email)))
		return
	}
	h.audit.Record(c, "create", "users", user.ID.String(), nil, snapshot(user), nil)
	c.JSON(http.StatusCreated, user)
}

type updateUserRequest struct {
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var user models.User
	if err := h.db.WithContext(c.Request.Context()).Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		respondError(c, apperrors.NewNotFoundError("user"))
		return
	}
	before := snapshot(user)

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}
	updates := map[string]any{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Role != nil {
		if *req.Role != auth.RoleAdmin && *req.Role != auth.RoleStaff {
			respondError(c, apperrors.NewValidationError("role", fmt.Sprintf("unknown role %q", *req.Role)))
			return
		}
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := h.db.WithContext(c.Request.Context()).Model(&user).Updates(updates).Error; err != nil {
			respondError(c, apperrors.NewInternalError(err))
			return
		}
	}
	after := snapshot(user)
	h.audit.Record(c, "update", "users", user.ID.String(), before, after, diffFields(before, after))
	c.JSON(http.StatusOK, user)
}

// ListAuditLogs serves the admin activity trail, newest first.
func (h *Handler) ListAuditLogs(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.AuditLog{})
	if table := c.Query("table"); table != "" {
		query = query.Where("table_name = ?", table)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}

	page, pageSize := pagination(c)
	var rows []models.AuditLog
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": rows, "total": total, "page": page, "page_size": pageSize})
}
