package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atlasgate/visaport/internal/config"
	apperrors "github.com/atlasgate/visaport/internal/errors"
	"github.com/atlasgate/visaport/internal/portal"
)

// =============================================================================
// PORTAL (public, unauthenticated)
// =============================================================================

// PortalMeta returns what the portal frontend needs before anything
// else: active countries with fees, visa types, and display settings.
func (h *Handler) PortalMeta(c *gin.Context) {
	countries, err := h.store.ActiveCountries(c.Request.Context())
	if err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	visaTypes, err := h.store.ActiveVisaTypes(c.Request.Context())
	if err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"countries":  countries,
		"visa_types": visaTypes,
		"settings": gin.H{
			"title":            h.settings.GetString(config.KeyPortalTitle),
			"default_currency": h.settings.GetString(config.KeyDefaultCurrency),
			"groups_enabled":   h.settings.GetBool(config.KeyGroupsEnabled),
			"upload_max_mb":    h.settings.GetInt(config.KeyUploadMaxMB, 5),
		},
	})
}

// PortalSchema resolves the application form for a country and visa
// type and returns it grouped into sections.
func (h *Handler) PortalSchema(c *gin.Context) {
	country := c.Query("country")
	if country == "" {
		respondError(c, apperrors.NewBadRequestError("country query parameter is required"))
		return
	}
	schema := h.portal.IntakeSchema(c.Request.Context(), country, c.Query("visa_type"))
	c.JSON(http.StatusOK, schema)
}

// PortalContent returns the published guides for a country.
func (h *Handler) PortalContent(c *gin.Context) {
	guides, err := h.content.CountryGuides(c.Request.Context(), c.Param("country"), c.Query("locale"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"guides": guides})
}

// PortalSubmit accepts one application.
func (h *Handler) PortalSubmit(c *gin.Context) {
	var req portal.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("country is required"))
		return
	}
	receipt, err := h.portal.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

// PortalLookup returns the customer-visible status of an application.
func (h *Handler) PortalLookup(c *gin.Context) {
	view, err := h.portal.Lookup(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PortalUpdatePersonal lets an applicant correct their personal details.
func (h *Handler) PortalUpdatePersonal(c *gin.Context) {
	var info portal.PersonalInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}
	if err := h.portal.UpdatePersonalInfo(c.Request.Context(), c.Param("code"), info); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

type uploadRequest struct {
	Field       string `json:"field" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	SizeBytes   int64  `json:"size_bytes" binding:"required"`
}

// PortalRegisterUpload validates and records a document upload slot.
func (h *Handler) PortalRegisterUpload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("field, content_type and size_bytes are required"))
		return
	}
	path, err := h.portal.RegisterUpload(c.Request.Context(), c.Param("code"), req.Field, req.ContentType, req.SizeBytes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"path": path})
}

// =============================================================================
// PORTAL GROUPS
// =============================================================================

func groupIDParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.NewBadRequestError("invalid group id")
	}
	return id, nil
}

func memberIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("memberId"), 10, 64)
	if err != nil {
		return 0, apperrors.NewBadRequestError("invalid member id")
	}
	return uint(id), nil
}

// PortalCreateGroup opens a group folder.
func (h *Handler) PortalCreateGroup(c *gin.Context) {
	var req portal.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("country is required"))
		return
	}
	folder, err := h.portal.CreateGroup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, folder)
}

// PortalAddGroupMember runs the intake pipeline for one member.
func (h *Handler) PortalAddGroupMember(c *gin.Context) {
	groupID, err := groupIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req portal.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("country is required"))
		return
	}
	receipt, err := h.portal.AddGroupMember(c.Request.Context(), groupID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

// PortalGroupMembers lists the members of a group folder.
func (h *Handler) PortalGroupMembers(c *gin.Context) {
	groupID, err := groupIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	members, err := h.portal.GroupMembers(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members, "count": len(members)})
}

// PortalUpdateGroupMember re-runs the pipeline for an existing member.
func (h *Handler) PortalUpdateGroupMember(c *gin.Context) {
	groupID, err := groupIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	memberID, err := memberIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req portal.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("country is required"))
		return
	}
	if err := h.portal.UpdateGroupMember(c.Request.Context(), groupID, memberID, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

// PortalDeleteGroupMember removes a member from an unsubmitted folder.
func (h *Handler) PortalDeleteGroupMember(c *gin.Context) {
	groupID, err := groupIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	memberID, err := memberIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.portal.DeleteGroupMember(c.Request.Context(), groupID, memberID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed"})
}

// PortalSubmitGroup finalizes a group folder.
func (h *Handler) PortalSubmitGroup(c *gin.Context) {
	groupID, err := groupIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	folder, err := h.portal.SubmitGroup(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, folder)
}
