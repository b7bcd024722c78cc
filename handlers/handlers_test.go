package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"rooftop-vision/vision"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	result *vision.Result
	calls  int
	got    []byte
}

func (f *fakeAnalyzer) AnalyzeRooftop(_ context.Context, imageData []byte) *vision.Result {
	f.calls++
	f.got = imageData
	return f.result
}

func (f *fakeAnalyzer) SourceName() string { return "Fake" }

func successResult() *vision.Result {
	return vision.ParseReply(`{"usable_area_m2": 42.5, "recommended_panels": 21}`)
}

func setupRouter(analyzer vision.Analyzer, maxUpload int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandlers(analyzer, maxUpload)
	router := gin.New()
	router.GET("/health", h.HealthCheck)
	router.POST("/analyze", h.AnalyzeRooftop)
	return router
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(&fakeAnalyzer{}, 1024)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "Fake", body["provider"])
}

func TestAnalyzeRooftop_RawBody(t *testing.T) {
	analyzer := &fakeAnalyzer{result: successResult()}
	router := setupRouter(analyzer, 1024)

	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader([]byte("jpeg-bytes")))
	req.Header.Set("Content-Type", "image/jpeg")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Fake", w.Header().Get(HeaderAnalysisSource))
	assert.JSONEq(t, `{"usable_area_m2": 42.5, "recommended_panels": 21}`, w.Body.String())
	assert.Equal(t, []byte("jpeg-bytes"), analyzer.got)
}

func TestAnalyzeRooftop_Multipart(t *testing.T) {
	analyzer := &fakeAnalyzer{result: successResult()}
	router := setupRouter(analyzer, 1<<20)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(FormFieldImage, "roof.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("multipart-jpeg"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte("multipart-jpeg"), analyzer.got)
}

func TestAnalyzeRooftop_MultipartWithoutImage(t *testing.T) {
	analyzer := &fakeAnalyzer{result: successResult()}
	router := setupRouter(analyzer, 1<<20)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no photo"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, analyzer.calls)
}

func TestAnalyzeRooftop_EmptyBody(t *testing.T) {
	analyzer := &fakeAnalyzer{result: successResult()}
	router := setupRouter(analyzer, 1024)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/analyze", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Image is required")
	assert.Equal(t, 0, analyzer.calls)
}

func TestAnalyzeRooftop_TooLarge(t *testing.T) {
	analyzer := &fakeAnalyzer{result: successResult()}
	router := setupRouter(analyzer, 8)

	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(make([]byte, 64)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, 0, analyzer.calls)
}

func TestAnalyzeRooftop_TooLargeWithoutContentLength(t *testing.T) {
	analyzer := &fakeAnalyzer{result: successResult()}
	router := setupRouter(analyzer, 8)

	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(make([]byte, 64)))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, 0, analyzer.calls)
}

func TestAnalyzeRooftop_FailureStatus(t *testing.T) {
	testCases := []struct {
		name   string
		result *vision.Result
		status int
	}{
		{"missing key", &vision.Result{Kind: vision.KindConfigMissing, Error: "GOOGLE_API_KEY environment variable not set"}, http.StatusServiceUnavailable},
		{"timeout", &vision.Result{Kind: vision.KindTimeout, Error: "Request timed out"}, http.StatusGatewayTimeout},
		{"upstream status", &vision.Result{Kind: vision.KindHTTPStatus, Error: "API returned status code 500", RawResponse: "oops"}, http.StatusBadGateway},
		{"no json", vision.ParseReply("no idea"), http.StatusBadGateway},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := setupRouter(&fakeAnalyzer{result: tc.result}, 1024)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader([]byte("img"))))

			assert.Equal(t, tc.status, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.result.Error, body["error"])
			assert.NotContains(t, body, "usable_area_m2")
			assert.NotContains(t, body, "recommended_panels")
		})
	}
}

func multipartRequest(t *testing.T, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(FormFieldImage, "roof.jpg")
	require.NoError(t, err)
	_, err = fw.Write(image)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func rawRequest(_ *testing.T, image []byte) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(image))
}

func TestAnalyzeRooftop_UploadLimitAppliesToImage(t *testing.T) {
	const limit = 1024
	testCases := []struct {
		name    string
		request func(*testing.T, []byte) *http.Request
		size    int
		status  int
	}{
		{"raw at limit", rawRequest, limit, http.StatusOK},
		{"raw over limit", rawRequest, limit + 1, http.StatusRequestEntityTooLarge},
		{"multipart at limit", multipartRequest, limit, http.StatusOK},
		{"multipart over limit", multipartRequest, limit + 1, http.StatusRequestEntityTooLarge},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{result: successResult()}
			router := setupRouter(analyzer, limit)

			image := bytes.Repeat([]byte{0xff}, tc.size)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request(t, image))

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, image, analyzer.got)
			} else {
				assert.Equal(t, 0, analyzer.calls)
			}
		})
	}
}
