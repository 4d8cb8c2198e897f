package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/applytrack/applytrack-api/internal/model"
)

func queryContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req, _ := http.NewRequest("GET", "/jobs?"+rawQuery, nil)
	c.Request = req
	return c
}

func TestFilterFromQuery_Defaults(t *testing.T) {
	c := queryContext(t, "")
	assert.Equal(t, model.DefaultFilterState(), filterFromQuery(c))
}

func TestFilterFromQuery_AllParams(t *testing.T) {
	c := queryContext(t, "status=applied&country=Ireland&jobType=remote&sort=company")
	assert.Equal(t, model.FilterState{
		Status:  model.StatusApplied,
		Country: "Ireland",
		JobType: "remote",
		Sort:    model.SortCompany,
	}, filterFromQuery(c))
}

func TestFilterFromQuery_UnknownValuesFallBack(t *testing.T) {
	c := queryContext(t, "status=bogus&sort=sideways")
	f := filterFromQuery(c)
	assert.Equal(t, model.StatusAll, f.Status)
	assert.Equal(t, model.SortNewest, f.Sort)
}
