package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"rag-system-go/internal/model"
	"rag-system-go/internal/service"
)

// fakeDocService 返回预置结果，记录收到的调用参数。
type fakeDocService struct {
	ingested  []model.DocumentCreateResponse
	listResp  *model.DocumentListResponse
	summary   *model.DocumentSummary
	deleted   int
	err       error
	lastLimit int
	lastOff   int
}

func (f *fakeDocService) IngestFiles(_ context.Context, files []*multipart.FileHeader) []model.DocumentCreateResponse {
	return f.ingested
}

func (f *fakeDocService) List(_ context.Context, limit, offset int) (*model.DocumentListResponse, error) {
	f.lastLimit, f.lastOff = limit, offset
	return f.listResp, f.err
}

func (f *fakeDocService) Get(_ context.Context, _ string) (*model.DocumentSummary, error) {
	return f.summary, f.err
}

func (f *fakeDocService) Delete(_ context.Context, _ string) (int, error) {
	return f.deleted, f.err
}

func newDocumentRouter(svc service.DocumentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewDocumentHandler(svc)
	group := router.Group("/api/v1/documents")
	{
		group.POST("/upload", h.Upload)
		group.GET("/", h.List)
		group.GET("/:documentId", h.Get)
		group.DELETE("/:documentId", h.Delete)
	}
	return router
}

func TestUpload_NoFilesRejected(t *testing.T) {
	router := newDocumentRouter(&fakeDocService{})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.WriteField("other", "value")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] != "No files provided." {
		t.Fatalf("unexpected error message: %q", resp["error"])
	}
}

func TestUpload_ReturnsPerFileStatuses(t *testing.T) {
	svc := &fakeDocService{ingested: []model.DocumentCreateResponse{
		{ID: "id-1", Filename: "a.txt", Status: model.StatusProcessed},
		{ID: "id-2", Filename: "b.png", Status: "error: unsupported file type image/png"},
	}}
	router := newDocumentRouter(svc)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("files", "a.txt")
	part.Write([]byte("hello"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp []model.DocumentCreateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 || resp[1].Status != "error: unsupported file type image/png" {
		t.Fatalf("unexpected responses: %+v", resp)
	}
}

func TestList_InvalidParamsRejected(t *testing.T) {
	router := newDocumentRouter(&fakeDocService{})

	for _, query := range []string{"limit=0", "limit=1001", "limit=abc", "offset=-1", "offset=x"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/?"+query, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("query %q: expected 400, got %d", query, rec.Code)
		}
	}
}

func TestList_DefaultsApplied(t *testing.T) {
	svc := &fakeDocService{listResp: &model.DocumentListResponse{
		Documents: []model.DocumentSummary{},
		Total:     0, Limit: 100, Offset: 0,
	}}
	router := newDocumentRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastLimit != 100 || svc.lastOff != 0 {
		t.Fatalf("expected defaults limit=100 offset=0, got limit=%d offset=%d", svc.lastLimit, svc.lastOff)
	}
}

func TestGet_UnknownDocument(t *testing.T) {
	router := newDocumentRouter(&fakeDocService{err: service.ErrDocumentNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/no-such-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] != "Document with source_document_id 'no-such-id' not found or has no chunks." {
		t.Fatalf("unexpected error message: %q", resp["error"])
	}
}

func TestDelete_ReportsDeletedChunks(t *testing.T) {
	router := newDocumentRouter(&fakeDocService{deleted: 7})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/doc-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp model.DocumentDeleteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Document doc-1 and its 7 chunks deleted successfully." {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestDelete_UnknownDocument(t *testing.T) {
	router := newDocumentRouter(&fakeDocService{err: service.ErrDocumentNotFound})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
