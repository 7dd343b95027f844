package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, nil)
	require.NoError(t, err)
	c.Request = req
	return c, w
}

func TestSectionRoomsListsGradePlan(t *testing.T) {
	handler := NewSectionHandler(nil, nil, nil)

	c, w := newTestContext(t, http.MethodGet, "/rooms/3")
	c.Params = gin.Params{{Key: "grade", Value: "3"}}

	handler.Rooms(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			GradeLevel string         `json:"grade_level"`
			Building   string         `json:"building"`
			Rooms      map[int]string `json:"rooms"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "3", body.Data.GradeLevel)
	assert.Equal(t, "Building A - Second Floor", body.Data.Building)
	assert.Len(t, body.Data.Rooms, 8)
	assert.Equal(t, "Room 301 - Building A", body.Data.Rooms[1])
}

func TestSectionRoomsUnknownGrade(t *testing.T) {
	handler := NewSectionHandler(nil, nil, nil)

	c, w := newTestContext(t, http.MethodGet, "/rooms/9")
	c.Params = gin.Params{{Key: "grade", Value: "9"}}

	handler.Rooms(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSectionStudentsRejectsNonNumericSection(t *testing.T) {
	handler := NewSectionHandler(nil, nil, nil)

	c, w := newTestContext(t, http.MethodGet, "/sections/3/abc/students")
	c.Params = gin.Params{{Key: "grade", Value: "3"}, {Key: "section", Value: "abc"}}

	handler.Students(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSectionTakenRequiresGradeQuery(t *testing.T) {
	handler := NewSectionHandler(nil, nil, nil)

	c, w := newTestContext(t, http.MethodGet, "/sections/taken")

	handler.Taken(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
