package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finderhub-backend/internal/config"
	"finderhub-backend/internal/model"
	"finderhub-backend/internal/storage"
	"finderhub-backend/internal/tabular"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

type memRecordStore struct {
	keyField string
	rows     []tabular.Record
}

func (s *memRecordStore) FindByKey(ctx context.Context, key string) (bool, error) {
	for _, rec := range s.rows {
		if rec.Get(s.keyField) == key {
			return true, nil
		}
	}
	return false, nil
}

func (s *memRecordStore) Insert(ctx context.Context, rec tabular.Record) error {
	s.rows = append(s.rows, rec)
	return nil
}

func (s *memRecordStore) InsertBatch(ctx context.Context, recs []tabular.Record) error {
	s.rows = append(s.rows, recs...)
	return nil
}

func (s *memRecordStore) InsertUnique(ctx context.Context, rec tabular.Record) (bool, error) {
	exists, _ := s.FindByKey(ctx, rec.Get(s.keyField))
	if exists {
		return false, nil
	}
	s.rows = append(s.rows, rec)
	return true, nil
}

type memStudents struct{ memRecordStore }

func (s *memStudents) List(ctx context.Context) ([]model.Student, error) {
	students := make([]model.Student, 0, len(s.rows))
	for _, rec := range s.rows {
		students = append(students, model.Student{
			EnrollmentCode: rec.Get("EnrollmentCode"),
			FullName:       rec.Get("FullName"),
			Email:          rec.Get("Email"),
		})
	}
	return students, nil
}

type memBuses struct{ memRecordStore }

func (s *memBuses) List(ctx context.Context) ([]model.Bus, error) {
	buses := make([]model.Bus, 0, len(s.rows))
	for _, rec := range s.rows {
		buses = append(buses, model.Bus{BusNo: rec.Get("Busno"), Route: rec.Get("Route")})
	}
	return buses, nil
}

type memStops struct {
	stops []model.Stop
}

func (s *memStops) InsertBatch(ctx context.Context, stops []model.Stop) error {
	s.stops = append(s.stops, stops...)
	return nil
}

func (s *memStops) List(ctx context.Context) ([]model.Stop, error) {
	return s.stops, nil
}

type memUsers struct {
	users map[string]*model.User
}

func (s *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := s.users[email]
	return ok, nil
}

func (s *memUsers) Create(ctx context.Context, user *model.User) error {
	s.users[user.Email] = user
	return nil
}

type fixtures struct {
	students *memStudents
	buses    *memBuses
	stops    *memStops
	users    *memUsers
}

func newTestRouter(t *testing.T) (*gin.Engine, *fixtures) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.App.Name = "finderhub"
	cfg.App.Version = "test"

	fx := &fixtures{
		students: &memStudents{memRecordStore{keyField: "EnrollmentCode"}},
		buses:    &memBuses{memRecordStore{keyField: "Busno"}},
		stops:    &memStops{},
		users:    &memUsers{users: make(map[string]*model.User)},
	}

	blob := storage.NewStage(storage.NewMemoryStorage(), "uploads")
	handler := NewHandler(cfg, fx.students, fx.buses, fx.stops, fx.users, blob, nil)

	router := gin.New()
	SetupRoutes(router, handler)
	return router, fx
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func workbookBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cellRef, cell))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func postUpload(router *gin.Engine, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUploadStudents(t *testing.T) {
	router, fx := newTestRouter(t)

	// EN002 is already persisted; the row without a code must be skipped.
	fx.students.rows = []tabular.Record{{"EnrollmentCode": "EN002"}}

	data := workbookBytes(t, [][]interface{}{
		{"EnrollmentCode", "FullName", "Email"},
		{" EN001 ", "Asha Rao", "asha@campus.edu"},
		{"EN002", "Vikram Joshi", "vikram@campus.edu"},
		{"", "No Code", "none@campus.edu"},
		{"EN003", "Meera Iyer", "meera@campus.edu"},
	})

	body, contentType := multipartBody(t, "excelFile", "students.xlsx", data)
	rec := postUpload(router, "/api/upload", body, contentType)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Message        string `json:"message"`
		ProcessedCount int    `json:"processedCount"`
		DuplicateCount int    `json:"duplicateCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.ProcessedCount)
	assert.Equal(t, 1, resp.DuplicateCount)

	// Trimmed key landed, skipped row did not.
	assert.Len(t, fx.students.rows, 3)
	exists, _ := fx.students.FindByKey(context.Background(), "EN001")
	assert.True(t, exists)
}

func TestUploadStudentsNoFile(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "wrongField", "students.xlsx", []byte("x"))
	rec := postUpload(router, "/api/upload", body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file uploaded")
}

func TestUploadStudentsMalformedWorkbook(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "excelFile", "students.xlsx", []byte("not a workbook"))
	rec := postUpload(router, "/api/upload", body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid file format")
}

func TestUploadStudentsTwiceAllDuplicates(t *testing.T) {
	router, _ := newTestRouter(t)

	data := workbookBytes(t, [][]interface{}{
		{"EnrollmentCode"},
		{"EN001"},
		{"EN002"},
	})

	body, contentType := multipartBody(t, "excelFile", "students.xlsx", data)
	rec := postUpload(router, "/api/upload", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)

	body, contentType = multipartBody(t, "excelFile", "students.xlsx", data)
	rec = postUpload(router, "/api/upload", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ProcessedCount int `json:"processedCount"`
		DuplicateCount int `json:"duplicateCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.ProcessedCount)
	assert.Equal(t, 2, resp.DuplicateCount)
}

func TestUploadBuses(t *testing.T) {
	router, fx := newTestRouter(t)
	fx.buses.rows = []tabular.Record{{"Busno": "B1"}}

	data := workbookBytes(t, [][]interface{}{
		{"Busno", "Route"},
		{"B1", "North Loop"},
		{"B2", "South Loop"},
	})

	body, contentType := multipartBody(t, "busFile", "buses.xlsx", data)
	rec := postUpload(router, "/api/upload-bus", body, contentType)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["duplicateCount"])
	assert.NotContains(t, resp, "processedCount")
	assert.Len(t, fx.buses.rows, 2)
}

func TestUploadBusesRepeatedNewKey(t *testing.T) {
	router, fx := newTestRouter(t)

	// B2 appears twice and is not yet persisted: the lookup-then-stage
	// contract inserts both rows and reports no duplicates.
	data := workbookBytes(t, [][]interface{}{
		{"Busno", "Route"},
		{"B2", "South Loop"},
		{"B2", "South Loop Express"},
	})

	body, contentType := multipartBody(t, "busFile", "buses.xlsx", data)
	rec := postUpload(router, "/api/upload-bus", body, contentType)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(0), resp["duplicateCount"])
	assert.Len(t, fx.buses.rows, 2)
}

func TestUploadStops(t *testing.T) {
	router, fx := newTestRouter(t)

	csvData := []byte("srno,code,stopname\n1,A1,Main St\n2,B2,Oak Ave\n")
	body, contentType := multipartBody(t, "file", "stops.csv", csvData)
	rec := postUpload(router, "/api/upload-stops", body, contentType)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "File uploaded and data saved.", rec.Body.String())

	require.Len(t, fx.stops.stops, 2)
	assert.Equal(t, 1, fx.stops.stops[0].SrNo)
	assert.Equal(t, "A1", fx.stops.stops[0].Code)
	assert.Equal(t, 2, fx.stops.stops[1].SrNo)
	assert.Equal(t, "Oak Ave", fx.stops.stops[1].StopName)
}

func TestUploadStopsTwiceAppends(t *testing.T) {
	router, fx := newTestRouter(t)

	csvData := []byte("srno,code,stopname\n1,A1,Main St\n")

	body, contentType := multipartBody(t, "file", "stops.csv", csvData)
	rec := postUpload(router, "/api/upload-stops", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)

	body, contentType = multipartBody(t, "file", "stops.csv", csvData)
	rec = postUpload(router, "/api/upload-stops", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)

	// No dedup on stops: the second upload appends.
	assert.Len(t, fx.stops.stops, 2)
}

func TestUploadStopsNoFile(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "other", "stops.csv", []byte("x"))
	rec := postUpload(router, "/api/upload-stops", body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file uploaded.", rec.Body.String())
}

func TestUploadStopsBadSerialNumber(t *testing.T) {
	router, fx := newTestRouter(t)

	csvData := []byte("srno,code,stopname\nnot-a-number,A1,Main St\n")
	body, contentType := multipartBody(t, "file", "stops.csv", csvData)
	rec := postUpload(router, "/api/upload-stops", body, contentType)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, fx.stops.stops)
}

func TestListStudents(t *testing.T) {
	router, fx := newTestRouter(t)
	fx.students.rows = []tabular.Record{
		{"EnrollmentCode": "EN001", "FullName": "Asha Rao"},
		{"EnrollmentCode": "EN002", "FullName": "Vikram Joshi"},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var students []model.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
	require.Len(t, students, 2)
	assert.Equal(t, "EN001", students[0].EnrollmentCode)
}

func TestListBuses(t *testing.T) {
	router, fx := newTestRouter(t)
	fx.buses.rows = []tabular.Record{{"Busno": "B7", "Route": "East Link"}}

	req := httptest.NewRequest(http.MethodGet, "/api/upload-bus", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var buses []model.Bus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &buses))
	require.Len(t, buses, 1)
	assert.Equal(t, "B7", buses[0].BusNo)
}

func registerBody(overrides map[string]string) *bytes.Buffer {
	payload := map[string]string{
		"fullName":    "Asha Rao",
		"email":       "asha@campus.edu",
		"password":    "secret123",
		"phoneNumber": "5550100",
		"campusId":    "C-12",
		"role":        "Student",
	}
	for k, v := range overrides {
		payload[k] = v
	}
	data, _ := json.Marshal(payload)
	return bytes.NewBuffer(data)
}

func postRegister(router *gin.Engine, body *bytes.Buffer) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegister(t *testing.T) {
	router, fx := newTestRouter(t)

	rec := postRegister(router, registerBody(nil))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "User registered successfully")

	user, ok := fx.users.users["asha@campus.edu"]
	require.True(t, ok)
	assert.Equal(t, model.RoleStudent, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func TestRegisterPasswordLength(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postRegister(router, registerBody(map[string]string{"password": "five!"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password must be at least 6 characters long")

	rec = postRegister(router, registerBody(map[string]string{"password": "sixsix"}))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRegisterAggregatesValidationErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postRegister(router, registerBody(map[string]string{
		"fullName": "",
		"email":    "not-an-email",
		"role":     "Janitor",
	}))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "Full name is required")
	assert.Contains(t, resp.Errors, "Valid email is required")
	assert.Contains(t, resp.Errors, "Role must be Student, Faculty, or Staff")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postRegister(router, registerBody(nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postRegister(router, registerBody(nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email is already registered")
}

func TestRegisterNormalizesEmailCase(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postRegister(router, registerBody(map[string]string{"email": "Asha@Campus.edu"}))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postRegister(router, registerBody(map[string]string{"email": "asha@campus.edu"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestRoot(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "up and running"))
}
