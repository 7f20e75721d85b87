package comparison

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"twmods/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupApp(t *testing.T, apiURL string) (*fiber.App, *Service) {
	t.Helper()

	svc := setupService(t, apiURL, nil, 1<<20)

	app := fiber.New()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(app)
	return app, svc
}

func multipartUpload(t *testing.T, user string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	if user != "" {
		require.NoError(t, writer.WriteField("user", user))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func doCompare(t *testing.T, app *fiber.App, user string, files map[string]string) *CompareResponse {
	t.Helper()

	body, contentType := multipartUpload(t, user, files)
	req := httptest.NewRequest(http.MethodPost, "/comparison/compare", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out CompareResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return &out
}

func TestHandleCompare(t *testing.T) {
	api, _ := workshopAPIStub(nil)
	defer api.Close()
	app, _ := setupApp(t, api.URL)

	out := doCompare(t, app, "user-1", map[string]string{
		"a.twmods": manifestA,
		"b.twmods": manifestB,
	})

	assert.NotEmpty(t, out.SessionID)
	assert.Equal(t, 2, out.Summary.FilesScanned)
	assert.Equal(t, 2, out.Summary.UnionCount)
	assert.Contains(t, out.Page.Content, "alpha.pack")
	assert.NotEmpty(t, out.CSVExport)
	assert.NotEmpty(t, out.JSONExport)
}

func TestHandleCompare_RejectsWrongExtension(t *testing.T) {
	api, _ := workshopAPIStub(nil)
	defer api.Close()
	app, _ := setupApp(t, api.URL)

	body, contentType := multipartUpload(t, "", map[string]string{"mods.txt": manifestA})
	req := httptest.NewRequest(http.MethodPost, "/comparison/compare", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleCompare_RejectsEmptyForm(t *testing.T) {
	api, _ := workshopAPIStub(nil)
	defer api.Close()
	app, _ := setupApp(t, api.URL)

	body, contentType := multipartUpload(t, "user-1", nil)
	req := httptest.NewRequest(http.MethodPost, "/comparison/compare", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleCompare_EmptyManifestIsBadRequest(t *testing.T) {
	api, _ := workshopAPIStub(nil)
	defer api.Close()
	app, _ := setupApp(t, api.URL)

	body, contentType := multipartUpload(t, "", map[string]string{"empty.twmods": "# nothing\n"})
	req := httptest.NewRequest(http.MethodPost, "/comparison/compare", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleSessionPage(t *testing.T) {
	api, _ := workshopAPIStub(nil)
	defer api.Close()
	app, _ := setupApp(t, api.URL)

	out := doCompare(t, app, "user-1", map[string]string{"a.twmods": manifestA})

	req := httptest.NewRequest(http.MethodGet, "/comparison/sessions/"+out.SessionID+"/page?action=last&user=user-1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page TablePage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, page.TotalPages, page.PageNumber)
}

func TestHandleSessionPage_Errors(t *testing.T) {
	api, _ := workshopAPIStub(nil)
	defer api.Close()
	app, _ := setupApp(t, api.URL)

	out := doCompare(t, app, "owner", map[string]string{"a.twmods": manifestA})

	req := httptest.NewRequest(http.MethodGet, "/comparison/sessions/nope/page", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/comparison/sessions/"+out.SessionID+"/page?user=intruder", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHandleExports(t *testing.T) {
	api, _ := workshopAPIStub(nil)
	defer api.Close()
	app, _ := setupApp(t, api.URL)

	out := doCompare(t, app, "user-1", map[string]string{"a.twmods": manifestA})

	req := httptest.NewRequest(http.MethodGet, "/comparison/sessions/"+out.SessionID+"/export/csv", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "comparison_table_full.csv")
	csvBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(csvBody), "Mod,Workshop ID")
	assert.Contains(t, string(csvBody), "alpha.pack")

	req = httptest.NewRequest(http.MethodGet, "/comparison/sessions/"+out.SessionID+"/export/json", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "comparison_table_full.json")

	var exported []ExportRow
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&exported))
	assert.Len(t, exported, 2)
}

func TestHandleExports_UnknownSession(t *testing.T) {
	api, _ := workshopAPIStub(nil)
	defer api.Close()
	app, _ := setupApp(t, api.URL)

	for _, path := range []string{
		"/comparison/sessions/nope/export/csv",
		"/comparison/sessions/nope/export/json",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestHandleUploadManifests(t *testing.T) {
	api, _ := workshopAPIStub(nil)
	defer api.Close()

	store := new(mocks.Client)
	store.On("PutObject", mock.Anything, "manifests", "a.twmods", mock.Anything, int64(len(manifestA)), mock.Anything).
		Return(minio.UploadInfo{Bucket: "manifests", Key: "a.twmods"}, nil)

	svc := setupService(t, api.URL, store, 1<<20)
	app := fiber.New()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(app)

	body, contentType := multipartUpload(t, "", map[string]string{"a.twmods": manifestA})
	req := httptest.NewRequest(http.MethodPost, "/comparison/manifests", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"a.twmods"}, out["stored"])
	store.AssertExpectations(t)
}

func TestHandleListManifests(t *testing.T) {
	api, _ := workshopAPIStub(nil)
	defer api.Close()

	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Key: "a.twmods", Size: 42}
	close(ch)

	store := new(mocks.Client)
	store.On("ListObjects", mock.Anything, "manifests", mock.Anything).
		Return((<-chan minio.ObjectInfo)(ch))

	svc := setupService(t, api.URL, store, 1<<20)
	app := fiber.New()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(app)

	req := httptest.NewRequest(http.MethodGet, "/comparison/manifests", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var manifests []StoredManifest
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&manifests))
	require.Len(t, manifests, 1)
	assert.Equal(t, "a.twmods", manifests[0].Name)
}

func TestHandleManifests_WithoutStorage(t *testing.T) {
	api, _ := workshopAPIStub(nil)
	defer api.Close()
	app, _ := setupApp(t, api.URL)

	body, contentType := multipartUpload(t, "", map[string]string{"a.twmods": manifestA})
	req := httptest.NewRequest(http.MethodPost, "/comparison/manifests", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/comparison/manifests", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandleCompareStored_WithoutStorage(t *testing.T) {
	api, _ := workshopAPIStub(nil)
	defer api.Close()
	app, _ := setupApp(t, api.URL)

	payload, _ := json.Marshal(storedCompareRequest{Objects: []string{"a.twmods"}, User: "user-1"})
	req := httptest.NewRequest(http.MethodPost, "/comparison/compare-stored", bytes.NewReader(payload))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
