package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Lllllllleong/suratflow/internal/attachment"
	"github.com/Lllllllleong/suratflow/internal/models"
	"github.com/Lllllllleong/suratflow/internal/services"
	"github.com/Lllllllleong/suratflow/internal/services/mocks"
	"github.com/Lllllllleong/suratflow/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testBucket = "surat_files"

var (
	admin = &models.UserData{NIP: "198001012005011001", Name: "Siti", Role: models.RoleAdmin}
	staff = &models.UserData{NIP: "199002022015022002", Name: "Budi", Role: models.RoleUser}
)

type apiFixture struct {
	persistence *mocks.MockPersistence
	storage     *mocks.MockStorage
	finder      *mocks.MockPegawaiFinder
	store       *session.Store
	router      http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	f := &apiFixture{
		persistence: new(mocks.MockPersistence),
		storage:     new(mocks.MockStorage),
		finder:      new(mocks.MockPegawaiFinder),
	}
	store, err := session.NewStore("test-secret", time.Hour, false)
	require.NoError(t, err)
	f.store = store

	validator := services.NewRecordValidator(services.NewDuplicateChecker(f.persistence), services.PolicyAgendaGlobal)
	pipeline := services.NewSubmissionPipeline(validator, attachment.NewCompressor(), f.storage, f.persistence, nil,
		services.PipelineConfig{Bucket: testBucket, MaxFileSize: attachment.DefaultMaxFileSize})
	suratSvc := services.NewSuratService(f.persistence, f.storage, nil, testBucket)

	f.router = NewRouter(store,
		NewAuthHandler(services.NewAuthService(f.finder), store),
		NewSuratHandler(suratSvc, pipeline, validator),
	)
	return f
}

func (f *apiFixture) do(t *testing.T, user *models.UserData, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if user != nil {
		token, err := f.store.Issue(user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestLoginAndMe(t *testing.T) {
	f := newAPIFixture(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia"), bcrypt.MinCost)
	require.NoError(t, err)
	f.finder.On("FindPegawaiByNIP", mock.Anything, admin.NIP).
		Return(&models.Pegawai{NIP: admin.NIP, Name: admin.Name, Role: admin.Role, PasswordHash: string(hash)}, nil)

	rec := f.do(t, nil, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{NIP: admin.NIP, Password: "salah"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NIP atau Password salah", decode[loginResponse](t, rec).Message)

	rec = f.do(t, nil, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{NIP: admin.NIP, Password: "rahasia"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[loginResponse](t, rec)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	me := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	me.AddCookie(cookies[0])
	meRec := httptest.NewRecorder()
	f.router.ServeHTTP(meRec, me)
	require.Equal(t, http.StatusOK, meRec.Code)
	assert.Equal(t, admin.NIP, decode[models.UserData](t, meRec).NIP)
}

func TestRoutesRequireSession(t *testing.T) {
	f := newAPIFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, nil, http.MethodGet, "/api/v1/auth/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, nil, http.MethodGet, "/api/v1/surat/masuk", nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, staff, http.MethodDelete, "/api/v1/surat/masuk/1", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, nil, http.MethodGet, "/livez", nil).Code)
}

func TestStatuses(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, staff, http.MethodGet, "/api/v1/statuses/keluar", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Statuses []string `json:"statuses"`
		Default  string   `json:"default"`
	}](t, rec)
	assert.Contains(t, body.Statuses, "Penerima")
	assert.Equal(t, "Sub Bagian Umum", body.Default)

	assert.Equal(t, http.StatusNotFound, f.do(t, staff, http.MethodGet, "/api/v1/statuses/arsip", nil).Code)
}

func TestListAndGet(t *testing.T) {
	f := newAPIFixture(t)
	f.persistence.On("List", mock.Anything, "surat_masuk").Return([]models.Surat{
		{ID: 1, AgendaNumber: "1/2024", Subject: "Undangan", ReceivedDate: "2024-01-02"},
		{ID: 2, AgendaNumber: "2/2024", Subject: "Laporan", ReceivedDate: "2024-01-03"},
	}, nil)
	f.persistence.On("GetByID", mock.Anything, "surat_masuk", int64(2)).Return(&models.Surat{ID: 2, Subject: "Laporan"}, nil)
	f.persistence.On("GetByID", mock.Anything, "surat_masuk", int64(9)).Return(nil, nil)

	rec := f.do(t, staff, http.MethodGet, "/api/v1/surat/masuk?q=undangan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Records []models.Surat `json:"records"`
		Total   int            `json:"total"`
	}](t, rec)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, int64(1), list.Records[0].ID)

	rec = f.do(t, staff, http.MethodGet, "/api/v1/surat/masuk/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Laporan", decode[models.Surat](t, rec).Subject)

	rec = f.do(t, staff, http.MethodGet, "/api/v1/surat/masuk/9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[errorResponse](t, rec).Code)

	assert.Equal(t, http.StatusBadRequest, f.do(t, staff, http.MethodGet, "/api/v1/surat/masuk/abc", nil).Code)
}

func TestCheck(t *testing.T) {
	f := newAPIFixture(t)
	f.persistence.On("Exists", mock.Anything, "surat_masuk", "nomor_agenda", "5/2024").Return(false, nil)
	f.persistence.On("Exists", mock.Anything, "surat_keluar", "nomor_agenda", "5/2024").Return(true, nil)

	rec := f.do(t, staff, http.MethodPost, "/api/v1/surat/masuk/check", models.DuplicateCheckRequest{LetterNumber: "001/X", AgendaNumber: "5/2024"})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[models.DuplicateCheckResult](t, rec)
	assert.True(t, res.AgendaNumberDuplicate)
	assert.False(t, res.LetterNumberDuplicate)
}

func TestValidate(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, staff, http.MethodPost, "/api/v1/surat/keluar/validate", models.Surat{LetterNumber: "001/X"})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[services.ValidationOutcome](t, rec)
	assert.False(t, out.Valid)
	assert.Equal(t, map[string]string{"pengirim": "Penerima harus diisi"}, out.FieldErrors)
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, file []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func submitFields() map[string]string {
	return map[string]string{
		"pengirim":         "Dinas A",
		"nomor_surat":      "001/X",
		"tanggal_surat":    "01-01-2024",
		"nomor_agenda":     "5/2024",
		"tanggal_diterima": "02-01-2024",
		"perihal":          "Undangan",
		"source":           "gallery",
	}
}

func (f *apiFixture) submit(t *testing.T, kind string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/surat/"+kind, bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	token, err := f.store.Issue(staff)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitWithAttachment(t *testing.T) {
	f := newAPIFixture(t)
	f.persistence.On("Exists", mock.Anything, mock.Anything, "nomor_agenda", "5/2024").Return(false, nil)
	f.storage.On("Upload", mock.Anything, testBucket, mock.MatchedBy(func(name string) bool {
		return strings.HasSuffix(name, "_scan.png")
	}), mock.Anything).Return("https://storage.googleapis.com/surat_files/x_scan.png", nil)
	f.persistence.On("Insert", mock.Anything, "surat_masuk", mock.MatchedBy(func(r *models.Surat) bool {
		return r.LetterDate == "2024-01-01" && r.AttachmentURL != ""
	})).Return(&models.Surat{ID: 11, AgendaNumber: "5/2024"}, nil)

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewGray(image.Rect(0, 0, 8, 8))))
	body, ct := multipartBody(t, submitFields(), "scan.png", img.Bytes())
	rec := f.submit(t, "masuk", body, ct)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[models.SubmissionResult](t, rec)
	assert.True(t, res.Success)
	assert.Empty(t, res.Warning)
	assert.Equal(t, int64(11), res.Record.ID)
	f.storage.AssertExpectations(t)
}

func TestSubmitDropsUnreadablePDF(t *testing.T) {
	f := newAPIFixture(t)
	f.persistence.On("Exists", mock.Anything, mock.Anything, "nomor_agenda", "5/2024").Return(false, nil)
	f.persistence.On("Insert", mock.Anything, "surat_masuk", mock.MatchedBy(func(r *models.Surat) bool {
		return r.AttachmentURL == ""
	})).Return(&models.Surat{ID: 12}, nil)

	body, ct := multipartBody(t, submitFields(), "surat.pdf", []byte("%PDF-1.4\n%truncated\n"))
	rec := f.submit(t, "masuk", body, ct)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[models.SubmissionResult](t, rec)
	assert.Equal(t, "File tidak dapat dibaca, lampiran tidak disertakan", res.Warning)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitRejectsDuplicate(t *testing.T) {
	f := newAPIFixture(t)
	f.persistence.On("Exists", mock.Anything, "surat_masuk", "nomor_agenda", "5/2024").Return(true, nil)
	f.persistence.On("Exists", mock.Anything, "surat_keluar", "nomor_agenda", "5/2024").Return(false, nil)

	body, ct := multipartBody(t, submitFields(), "", nil)
	rec := f.submit(t, "keluar", body, ct)

	assert.Equal(t, http.StatusConflict, rec.Code)
	res := decode[models.SubmissionResult](t, rec)
	assert.Equal(t, "Nomor Agenda sudah terdaftar!", res.ErrorMessage)
	assert.Equal(t, "DUPLICATE_NUMBER", res.Code)
	f.persistence.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitRejectsNonMultipart(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.submit(t, "masuk", []byte(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminMutations(t *testing.T) {
	f := newAPIFixture(t)
	f.persistence.On("GetByID", mock.Anything, "surat_masuk", int64(3)).Return(&models.Surat{ID: 3}, nil)
	f.persistence.On("Update", mock.Anything, "surat_masuk", int64(3), mock.Anything).
		Return(&models.Surat{ID: 3, Status: "Kepala"}, nil)
	f.persistence.On("Delete", mock.Anything, "surat_masuk", int64(3)).Return(true, nil)

	rec := f.do(t, admin, http.MethodPut, "/api/v1/surat/masuk/3/status", models.StatusUpdateRequest{Status: "Kepala"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Kepala", decode[models.Surat](t, rec).Status)

	rec = f.do(t, admin, http.MethodPut, "/api/v1/surat/masuk/3/status", models.StatusUpdateRequest{Status: "Penerima"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status_surat", decode[errorResponse](t, rec).Field)

	var sig bytes.Buffer
	require.NoError(t, png.Encode(&sig, image.NewGray(image.Rect(0, 0, 2, 2))))
	rec = f.do(t, admin, http.MethodPost, "/api/v1/surat/masuk/3/disposisi", models.DispositionRequest{
		SignerName:     "Siti",
		SignatureImage: "data:image/png;base64," + base64.StdEncoding.EncodeToString(sig.Bytes()),
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, admin, http.MethodPost, "/api/v1/surat/masuk/3/disposisi", models.DispositionRequest{SignerName: "Siti"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Tanda tangan harus diisi", decode[errorResponse](t, rec).Error)

	rec = f.do(t, admin, http.MethodDelete, "/api/v1/surat/masuk/3", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
