package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/ippis/backend/internal/application/importer"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func csvUpload(t *testing.T, filename, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestImportHandler_Validate(t *testing.T) {
	imp := new(MockRegistrationImporter)
	var got string
	imp.On("Validate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			b, _ := io.ReadAll(args.Get(1).(io.Reader))
			got = string(b)
		}).
		Return(&importer.ImportResult{TotalRows: 1, ValidRows: 1}, nil)

	body, ct := csvUpload(t, "staff.csv", "surname,firstname,email\nBello,Amina,amina@example.com\n")
	w := perform(http.MethodPost, "/admin/import/validate", "/admin/import/validate", body, NewImportHandler(imp).Validate, "Content-Type", ct)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, got, "Bello,Amina")
	assert.Contains(t, w.Body.String(), `"valid_rows":1`)
}

func TestImportHandler_Import(t *testing.T) {
	imp := new(MockRegistrationImporter)
	imp.On("Import", mock.Anything, mock.Anything).Return(&importer.ImportResult{TotalRows: 2, Imported: 1, Skipped: 1}, nil)

	body, ct := csvUpload(t, "STAFF.CSV", "surname,firstname,email\n")
	w := perform(http.MethodPost, "/admin/import", "/admin/import", body, NewImportHandler(imp).Import, "Content-Type", ct)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"imported":1`)
}

func TestImportHandler_ImportAbortReturnsPartialResult(t *testing.T) {
	imp := new(MockRegistrationImporter)
	partial := &importer.ImportResult{TotalRows: 3, ValidRows: 3, Imported: 1, RegistrationIDs: []string{regID}, FailedRow: 3}
	imp.On("Import", mock.Anything, mock.Anything).Return(partial, shared.ErrPersistence)

	body, ct := csvUpload(t, "staff.csv", "surname,firstname,email\n")
	w := perform(http.MethodPost, "/admin/import", "/admin/import", body, NewImportHandler(imp).Import, "Content-Type", ct)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp, data := decode(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PERSISTENCE_ERROR", resp.Error.Code)
	var got importer.ImportResult
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []string{regID}, got.RegistrationIDs)
	assert.Equal(t, 3, got.FailedRow)
}

func TestImportHandler_RejectsBadUploads(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		imp := new(MockRegistrationImporter)
		w := perform(http.MethodPost, "/admin/import", "/admin/import", jsonBody(`{}`), NewImportHandler(imp).Import)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not a csv", func(t *testing.T) {
		imp := new(MockRegistrationImporter)
		body, ct := csvUpload(t, "staff.xlsx", "binary")
		w := perform(http.MethodPost, "/admin/import", "/admin/import", body, NewImportHandler(imp).Import, "Content-Type", ct)

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		imp.AssertNotCalled(t, "Import", mock.Anything, mock.Anything)
	})
}
