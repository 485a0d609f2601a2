package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestParsePaginationParams(t *testing.T) {
	tests := []struct {
		query    string
		wantPage int
		wantSize int
	}{
		{query: "", wantPage: 1, wantSize: 10},
		{query: "?page=3&size=25", wantPage: 3, wantSize: 25},
		{query: "?page=0&size=0", wantPage: 1, wantSize: 10},
		{query: "?page=-2&size=500", wantPage: 1, wantSize: 10},
		{query: "?page=abc&size=xyz", wantPage: 1, wantSize: 10},
		{query: "?size=100", wantPage: 1, wantSize: 100},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page, size := ParsePaginationParams(testContext("/items" + tt.query))
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 20)
	assert.Equal(t, uint64(40), offset)
	assert.Equal(t, 20, limit)

	offset, limit = CalculateOffsetLimit(0, 1000)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, DefaultPageSize, limit)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(21, 2, 10)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 10, info.PageSize)
	assert.Equal(t, int64(21), info.TotalItems)

	empty := NewPaginationInfo(0, 0, 0)
	assert.Equal(t, 1, empty.TotalPages)
	assert.Equal(t, DefaultPage, empty.CurrentPage)
	assert.Equal(t, DefaultPageSize, empty.PageSize)
}

func TestParseIDParam(t *testing.T) {
	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{value: "42", want: 42},
		{value: "0", wantErr: true},
		{value: "-1", wantErr: true},
		{value: "abc", wantErr: true},
		{value: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			c := testContext("/items")
			c.Params = gin.Params{{Key: "id", Value: tt.value}}

			id, err := ParseIDParam(c, "id")
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "id must be a positive integer", err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, ParseDuration("1m30s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
}
