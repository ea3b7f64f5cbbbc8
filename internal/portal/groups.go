package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atlasgate/visaport/internal/config"
	apperrors "github.com/atlasgate/visaport/internal/errors"
	"github.com/atlasgate/visaport/internal/models"
	"github.com/atlasgate/visaport/internal/turkish"
)

// CreateGroupRequest opens a folder for people travelling together.
type CreateGroupRequest struct {
	Country      string `json:"country" binding:"required"`
	VisaType     string `json:"visa_type"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
}

// CreateGroup opens an empty group folder with its own tracking code.
func (s *Service) CreateGroup(ctx context.Context, req CreateGroupRequest) (*models.GroupFolder, error) {
	if !s.settings.GetBool(config.KeyGroupsEnabled) {
		return nil, apperrors.NewBadRequestError("group applications are disabled")
	}

	code, err := NewTrackingCode()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	folder := &models.GroupFolder{
		TrackingCode: code,
		Country:      req.Country,
		VisaType:     req.VisaType,
		ContactName:  turkish.Fold(req.ContactName),
		ContactPhone: req.ContactPhone,
	}
	if err := s.db.WithContext(ctx).Create(folder).Error; err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("failed to create group folder: %w", err))
	}
	return folder, nil
}

func (s *Service) findGroup(ctx context.Context, groupID uuid.UUID) (*models.GroupFolder, error) {
	var folder models.GroupFolder
	err := s.db.WithContext(ctx).Where("id = ?", groupID).First(&folder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("group folder")
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &folder, nil
}

// AddGroupMember runs the full intake pipeline for one member and
// files the resulting application under the folder. The member's
// context (country, visa type) is the folder's, not the request's.
func (s *Service) AddGroupMember(ctx context.Context, groupID uuid.UUID, req SubmitRequest) (*Receipt, error) {
	folder, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if folder.IsSubmitted {
		return nil, apperrors.NewConflictError("submitted group member")
	}

	req.Country = folder.Country
	req.VisaType = folder.VisaType
	row, err := s.buildApplication(ctx, req, &folder.ID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("failed to persist group member: %w", err))
	}
	return &Receipt{TrackingCode: row.TrackingCode, ApplicationID: row.ID}, nil
}

// UpdateGroupMember re-runs the pipeline and replaces the member's
// answers. Only possible while the folder is open.
func (s *Service) UpdateGroupMember(ctx context.Context, groupID uuid.UUID, memberID uint, req SubmitRequest) error {
	folder, err := s.findGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if folder.IsSubmitted {
		return apperrors.NewConflictError("submitted group member")
	}

	var member models.Application
	err = s.db.WithContext(ctx).
		Where("id = ? AND group_id = ?", memberID, folder.ID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFoundError("group member")
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	req.Country = folder.Country
	req.VisaType = folder.VisaType
	fresh, err := s.buildApplication(ctx, req, &folder.ID)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"full_name":       fresh.FullName,
		"id_number":       fresh.IDNumber,
		"date_of_birth":   fresh.DateOfBirth,
		"phone":           fresh.Phone,
		"email":           fresh.Email,
		"passport_no":     fresh.PassportNo,
		"passport_expiry": fresh.PassportExpiry,
		"custom_fields":   fresh.CustomFields,
		"service_fee":     fresh.ServiceFee,
		"consulate_fee":   fresh.ConsulateFee,
		"currency":        fresh.Currency,
	}
	if err := s.db.WithContext(ctx).Model(&member).Updates(updates).Error; err != nil {
		return apperrors.NewInternalError(fmt.Errorf("failed to update group member: %w", err))
	}
	return nil
}

// DeleteGroupMember removes a member from an open folder.
func (s *Service) DeleteGroupMember(ctx context.Context, groupID uuid.UUID, memberID uint) error {
	folder, err := s.findGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if folder.IsSubmitted {
		return apperrors.NewConflictError("submitted group member")
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND group_id = ?", memberID, folder.ID).
		Delete(&models.Application{})
	if result.Error != nil {
		return apperrors.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("group member")
	}
	return nil
}

// GroupMembers lists a folder's applications.
func (s *Service) GroupMembers(ctx context.Context, groupID uuid.UUID) ([]models.Application, error) {
	if _, err := s.findGroup(ctx, groupID); err != nil {
		return nil, err
	}
	var members []models.Application
	err := s.db.WithContext(ctx).
		Where("group_id = ? AND is_deleted = ?", groupID, false).
		Order("id ASC").
		Find(&members).Error
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return members, nil
}

// SubmitGroup closes the folder. Empty folders cannot be submitted.
func (s *Service) SubmitGroup(ctx context.Context, groupID uuid.UUID) (*models.GroupFolder, error) {
	folder, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if folder.IsSubmitted {
		return nil, apperrors.NewConflictError("group submission")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Application{}).
		Where("group_id = ?", folder.ID).Count(&count).Error; err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if count == 0 {
		return nil, apperrors.NewBadRequestError("group folder has no members")
	}

	if err := s.db.WithContext(ctx).Model(folder).
		UpdateColumn("is_submitted", true).Error; err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("failed to submit group: %w", err))
	}
	folder.IsSubmitted = true

	if s.sms != nil && s.settings.GetBool(config.KeyNotifyOnSubmission) && folder.ContactPhone != "" {
		s.sms.SendAsync(folder.ContactPhone,
			fmt.Sprintf("Grup basvurunuz alindi. Takip kodunuz: %s", folder.TrackingCode))
	}
	return folder, nil
}
