package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/atlasgate/visaport/internal/auth"
	"github.com/atlasgate/visaport/internal/models"
)

// AuditService records who changed what in the back office.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record writes one audit row. Failures are logged, never surfaced:
// an audit hiccup must not fail the operation it describes.
func (a *AuditService) Record(c *gin.Context, action, tableName, recordID string, oldData, newData models.JSONB, changedFields []string) {
	entry := models.AuditLog{
		Action:        action,
		TableName:     tableName,
		RecordID:      recordID,
		OldData:       oldData,
		NewData:       newData,
		ChangedFields: pq.StringArray(changedFields),
		IPAddress:     c.ClientIP(),
		UserAgent:     c.Request.UserAgent(),
	}
	if v, ok := c.Get(auth.ContextUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			entry.UserID = &id
		}
	}
	if v, ok := c.Get(auth.ContextEmail); ok {
		if email, ok := v.(string); ok {
			entry.UserEmail = email
		}
	}
	if err := a.db.Create(&entry).Error; err != nil {
		log.Printf("Warning: failed to write audit log for %s %s/%s: %v", action, tableName, recordID, err)
	}
}

// diffFields lists the keys whose values differ between two snapshots.
func diffFields(oldData, newData models.JSONB) []string {
	changed := make([]string, 0)
	for key, newVal := range newData {
		oldVal, existed := oldData[key]
		if !existed || oldVal != newVal {
			changed = append(changed, key)
		}
	}
	for key := range oldData {
		if _, still := newData[key]; !still {
			changed = append(changed, key)
		}
	}
	return changed
}
