package uploadmultiple

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/handlers/library/uploadsingle"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/response"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/models"
	libservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/library"
)

type LibraryServiceMock struct {
	mock.Mock
}

func (m *LibraryServiceMock) Upload(ctx context.Context, userUID string, files []libservice.UploadFile) ([]*models.StoredFile, error) {
	args := m.Called(ctx, userUID, files)
	stored, _ := args.Get(0).([]*models.StoredFile)
	return stored, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func multipartBody(t *testing.T, names []string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, name := range names {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition",
			`form-data; name="`+uploadsingle.UploadField+`"; filename="`+name+`"`)
		hdr.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write([]byte("image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func doUpload(t *testing.T, handler http.Handler, userID string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/image-upload-multiple/"+userID, body)
	req.Header.Set("Content-Type", contentType)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", userID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestUploadMultipleHandler_ServeHTTP(t *testing.T) {
	t.Run("uploads a batch", func(t *testing.T) {
		svc := new(LibraryServiceMock)
		stored := []*models.StoredFile{
			{Key: "uid-1/x-a.png", MimeType: "image/png", Size: 11, PublicURL: "https://img.test/uid-1/x-a.png"},
			{Key: "uid-1/x-b.png", MimeType: "image/png", Size: 11, PublicURL: "https://img.test/uid-1/x-b.png"},
		}
		svc.On("Upload", mock.Anything, "uid-1", mock.MatchedBy(func(files []libservice.UploadFile) bool {
			return len(files) == 2
		})).Return(stored, nil).Once()

		body, contentType := multipartBody(t, []string{"a.png", "b.png"})
		rr := doUpload(t, New(newNoopLogger(), svc), "uid-1", body, contentType)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), response.MsgUploaded)
		assert.Contains(t, rr.Body.String(), "https://img.test/uid-1/x-b.png")
		svc.AssertExpectations(t)
	})

	t.Run("rejects more than five files", func(t *testing.T) {
		svc := new(LibraryServiceMock)
		names := make([]string, 6)
		for i := range names {
			names[i] = fmt.Sprintf("f%d.png", i)
		}
		body, contentType := multipartBody(t, names)
		rr := doUpload(t, New(newNoopLogger(), svc), "uid-1", body, contentType)

		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects empty batch", func(t *testing.T) {
		svc := new(LibraryServiceMock)
		body, contentType := multipartBody(t, nil)
		rr := doUpload(t, New(newNoopLogger(), svc), "uid-1", body, contentType)

		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})
}
