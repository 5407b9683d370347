package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"sortify/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadRequest собирает multipart-запрос загрузки файла.
func uploadRequest(t *testing.T, projectID int64, fields map[string]string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", "payload.bin")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/projects/%d/upload", projectID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestFile_UploadAndVersions(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "o@example.com", "Owner", "owner")
	reader := env.seedUser(t, "r@example.com", "Reader", "reader")
	p := env.seedProject(t, "P", owner)
	env.seedMember(t, p.ID, reader.ID, model.RoleReader)

	var fileID int64
	t.Run("new file gets version 1", func(t *testing.T) {
		req := uploadRequest(t, p.ID, map[string]string{"title": "report.xlsx", "comment": "initial"}, []byte("v1-bytes"))
		addAuthCookie(t, req, owner.ID, env.cfg.AuthSecret)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		var resp struct {
			FileID        int64 `json:"file_id"`
			VersionNumber int   `json:"version_number"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.VersionNumber)
		fileID = resp.FileID
	})

	t.Run("parent_file_id appends version", func(t *testing.T) {
		req := uploadRequest(t, p.ID, map[string]string{
			"parent_file_id": fmt.Sprintf("%d", fileID),
			"comment":        "second",
		}, []byte("v2-bytes"))
		addAuthCookie(t, req, owner.ID, env.cfg.AuthSecret)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		var resp struct {
			VersionNumber int `json:"version_number"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.VersionNumber)
	})

	t.Run("reader forbidden", func(t *testing.T) {
		req := uploadRequest(t, p.ID, map[string]string{"title": "x"}, []byte("data"))
		addAuthCookie(t, req, reader.ID, env.cfg.AuthSecret)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("versions newest first", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/files/%d/versions", fileID), nil)
		addAuthCookie(t, req, reader.ID, env.cfg.AuthSecret)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp []struct {
			VersionNumber int    `json:"version_number"`
			Comment       string `json:"comment"`
			IsCurrent     bool   `json:"is_current"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Equal(t, 2, resp[0].VersionNumber)
		assert.True(t, resp[0].IsCurrent)
		assert.Equal(t, "second", resp[0].Comment)
		assert.False(t, resp[1].IsCurrent)
	})

	t.Run("list files exposes has_latest", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/projects/%d/files", p.ID), nil)
		addAuthCookie(t, req, reader.ID, env.cfg.AuthSecret)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp []struct {
			FileID        int64 `json:"file_id"`
			VersionID     int64 `json:"version_id"`
			VersionNumber int   `json:"version_number"`
			HasLatest     bool  `json:"has_latest"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, 2, resp[0].VersionNumber)
		assert.False(t, resp[0].HasLatest)

		// скачиваем текущую версию и проверяем флаг
		dl := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/versions/%d/download", resp[0].VersionID), nil)
		addAuthCookie(t, dl, reader.ID, env.cfg.AuthSecret)
		dlrr := httptest.NewRecorder()
		env.router.ServeHTTP(dlrr, dl)
		require.Equal(t, http.StatusOK, dlrr.Code)
		body, err := io.ReadAll(dlrr.Result().Body)
		require.NoError(t, err)
		assert.Equal(t, []byte("v2-bytes"), body)
		assert.Contains(t, dlrr.Header().Get("Content-Disposition"), "report.xlsx")

		rr = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/projects/%d/files", p.ID), nil)
		addAuthCookie(t, req, reader.ID, env.cfg.AuthSecret)
		env.router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		resp = resp[:0]
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.True(t, resp[0].HasLatest)
	})

	t.Run("outsider denied", func(t *testing.T) {
		outsider := env.seedUser(t, "x@example.com", "X", "x")
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/projects/%d/files", p.ID), nil)
		addAuthCookie(t, req, outsider.ID, env.cfg.AuthSecret)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestFile_UploadLimits(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "o@example.com", "Owner", "owner")
	p := env.seedProject(t, "P", owner)

	t.Run("payload over limit", func(t *testing.T) {
		big := make([]byte, env.cfg.UploadMaxSizeMB*1024*1024+1)
		req := uploadRequest(t, p.ID, map[string]string{"title": "big"}, big)
		addAuthCookie(t, req, owner.ID, env.cfg.AuthSecret)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})

	t.Run("missing file part", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("title", "x"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/projects/%d/upload", p.ID), &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		addAuthCookie(t, req, owner.ID, env.cfg.AuthSecret)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
