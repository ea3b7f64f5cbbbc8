package api

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/atlasgate/visaport/internal/models"
)

func TestDiffFields(t *testing.T) {
	oldData := models.JSONB{"visa_status": "received", "country": "Almanya", "pickup_date": "2026-01-10"}
	newData := models.JSONB{"visa_status": "processing", "country": "Almanya", "consulate_office": "Ankara"}

	changed := diffFields(oldData, newData)

	assert.ElementsMatch(t, []string{"visa_status", "consulate_office", "pickup_date"}, changed)
}

func TestDiffFieldsNoChange(t *testing.T) {
	data := models.JSONB{"a": "1", "b": "2"}
	assert.Empty(t, diffFields(data, models.JSONB{"a": "1", "b": "2"}))
}

func TestPaginationDefaultsAndClamps(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
	}{
		{"defaults", "", 1, 25},
		{"explicit", "page=3&page_size=50", 3, 50},
		{"zero page clamps", "page=0&page_size=10", 1, 10},
		{"oversized page size clamps", "page=2&page_size=1000", 2, 25},
		{"garbage falls back", "page=x&page_size=y", 1, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/?"+tt.query, nil)

			page, pageSize := pagination(c)
			assert.Equal(t, tt.page, page)
			assert.Equal(t, tt.pageSize, pageSize)
		})
	}
}

func TestValidSubFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"empty is fine", "", true},
		{"well formed", `[{"key":"selection","label":"Selection","label_tr":"Seçim"}]`, true},
		{"not an array", `{"key":"selection"}`, false},
		{"descriptor without key", `[{"label":"Selection"}]`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validSubFields([]byte(tt.raw))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	row := models.Country{ID: 3, Name: "Almanya", Currency: "EUR"}

	snap := snapshot(row)

	assert.Equal(t, "Almanya", snap["name"])
	assert.Equal(t, "EUR", snap["currency"])
}
