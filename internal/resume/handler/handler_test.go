package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/resumeflow/resumeflow-backend/internal/resume/extractor"
	"github.com/resumeflow/resumeflow-backend/internal/resume/handler"
	"github.com/resumeflow/resumeflow-backend/internal/resume/llm"
	"github.com/resumeflow/resumeflow-backend/internal/resume/pipeline"
	"github.com/resumeflow/resumeflow-backend/internal/resume/prompt"
	"github.com/resumeflow/resumeflow-backend/internal/resume/service"
	"github.com/resumeflow/resumeflow-backend/internal/resume/storage"
	"github.com/resumeflow/resumeflow-backend/pkg/config"
	"github.com/resumeflow/resumeflow-backend/pkg/httputil"
	"github.com/resumeflow/resumeflow-backend/pkg/logger"
	"github.com/resumeflow/resumeflow-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	secret = "test-secret"
	record = `{"data":{"full_name":"Jane Doe","email_id":"jane@example.com"}}`
)

type stubGenerator struct {
	reply    string
	probeErr error
	genErr   error
}

func (g *stubGenerator) Generate(ctx context.Context, p string, jsonMode bool) (string, error) {
	if !jsonMode {
		return "API connection successful", g.probeErr
	}
	return g.reply, g.genErr
}

type errorBody struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

func newRouter(t *testing.T, gen llm.Generator, auth config.AuthConfig, maxSize int64) http.Handler {
	t.Helper()
	log := logger.Nop()

	ctrl := pipeline.New(
		extractor.NewDispatcher(log, extractor.NewTextExtractor(), extractor.NewDOCXExtractor()),
		prompt.NewBuilder(),
		llm.NewClient(gen, log),
		log,
	)
	store := storage.NewJobStore(time.Hour)
	t.Cleanup(store.Close)

	svc := service.NewService(ctrl, store, log)
	t.Cleanup(func() { _ = svc.Wait(context.Background()) })

	h := handler.NewHandler(svc, handler.NewAuthenticator(auth), maxSize, log)

	r := chi.NewRouter()
	r.Use(httputil.RequestID)
	h.RegisterRoutes(r)
	return r
}

func defaultRouter(t *testing.T, gen llm.Generator) http.Handler {
	return newRouter(t, gen, config.AuthConfig{SecretKey: secret}, 1<<20)
}

func upload(t *testing.T, url, name string, content []byte, secretKey string) *http.Request {
	t.Helper()
	fields := map[string]string{}
	if secretKey != "" {
		fields["secret_key"] = secretKey
	}
	return testutil.NewMultipartRequest(t, http.MethodPost, url, fields,
		testutil.MultipartFile{Field: "file", FileName: name, Content: content})
}

func TestParse_Success(t *testing.T) {
	router := defaultRouter(t, &stubGenerator{reply: record})

	for _, path := range []string{"/parse-resume/", "/api/v1/resumes/parse"} {
		t.Run(path, func(t *testing.T) {
			rr := testutil.ExecuteRequest(router, upload(t, path, "jane.txt", []byte("Jane Doe, jane@example.com\n"), secret))

			testutil.AssertStatus(t, rr, http.StatusOK)
			assert.JSONEq(t, record, rr.Body.String())
			assert.Equal(t, "0", rr.Header().Get(handler.WarningsHeader))
		})
	}
}

func TestParse_WarningsHeader(t *testing.T) {
	router := defaultRouter(t, &stubGenerator{reply: `{"data":{"full_name":42}}`})

	rr := testutil.ExecuteRequest(router, upload(t, "/api/v1/resumes/parse", "jane.txt", []byte("Jane"), secret))

	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.NotEqual(t, "0", rr.Header().Get(handler.WarningsHeader))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name       string
		gen        *stubGenerator
		fileName   string
		content    string
		secretKey  string
		wantStatus int
		wantCode   string
		wantPrefix string
	}{
		{
			name:       "invalid secret",
			gen:        &stubGenerator{reply: record},
			fileName:   "jane.txt",
			content:    "Jane",
			secretKey:  "wrong",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
			wantPrefix: "Invalid secret key",
		},
		{
			name:       "missing secret",
			gen:        &stubGenerator{reply: record},
			fileName:   "jane.txt",
			content:    "Jane",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
			wantPrefix: "Invalid secret key",
		},
		{
			name:       "unsupported extension",
			gen:        &stubGenerator{reply: record},
			fileName:   "resume.odt",
			content:    "Jane",
			secretKey:  secret,
			wantStatus: http.StatusBadRequest,
			wantCode:   "UNSUPPORTED_FORMAT",
			wantPrefix: "Unsupported file format. Supported formats: .pdf, .docx, .doc, .txt, .jpg, .jpeg, .png",
		},
		{
			name:       "legacy doc fails extraction",
			gen:        &stubGenerator{reply: record},
			fileName:   "resume.doc",
			content:    "\xd0\xcf\x11\xe0 legacy",
			secretKey:  secret,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "EXTRACTION_FAILURE",
			wantPrefix: "Failed to extract text from file: Error extracting text from DOCX:",
		},
		{
			name:       "probe failure",
			gen:        &stubGenerator{probeErr: errors.New("dial tcp: refused")},
			fileName:   "jane.txt",
			content:    "Jane",
			secretKey:  secret,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "MODEL_CONNECTIVITY_FAILURE",
			wantPrefix: "API connection test failed: dial tcp: refused",
		},
		{
			name:       "generation failure",
			gen:        &stubGenerator{genErr: errors.New("quota exceeded")},
			fileName:   "jane.txt",
			content:    "Jane",
			secretKey:  secret,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "MODEL_GENERATION_FAILURE",
			wantPrefix: "Structured content generation failed: quota exceeded",
		},
		{
			name:       "non-JSON response",
			gen:        &stubGenerator{reply: "Sure! Here is the resume"},
			fileName:   "jane.txt",
			content:    "Jane",
			secretKey:  secret,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "RESPONSE_PARSE_FAILURE",
			wantPrefix: "Failed to parse response as JSON:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := defaultRouter(t, tt.gen)

			rr := testutil.ExecuteRequest(router, upload(t, "/parse-resume/", tt.fileName, []byte(tt.content), tt.secretKey))

			testutil.AssertStatus(t, rr, tt.wantStatus)
			var body errorBody
			testutil.ParseJSONBody(t, rr, &body)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.True(t, strings.HasPrefix(body.Error, tt.wantPrefix), "error %q", body.Error)
		})
	}
}

func TestParse_MissingFile(t *testing.T) {
	router := defaultRouter(t, &stubGenerator{reply: record})
	req := testutil.NewMultipartRequest(t, http.MethodPost, "/parse-resume/", map[string]string{"secret_key": secret})

	rr := testutil.ExecuteRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestParse_TooLarge(t *testing.T) {
	router := newRouter(t, &stubGenerator{reply: record}, config.AuthConfig{SecretKey: secret}, 1024)

	rr := testutil.ExecuteRequest(router, upload(t, "/parse-resume/", "big.txt", make([]byte, 4096), secret))

	testutil.AssertStatus(t, rr, http.StatusRequestEntityTooLarge)
	var body errorBody
	testutil.ParseJSONBody(t, rr, &body)
	assert.Equal(t, "FILE_TOO_LARGE", body.Code)
}

func TestParse_MalformedBody(t *testing.T) {
	router := newRouter(t, &stubGenerator{reply: record}, config.AuthConfig{SecretKey: secret}, 1024)

	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{name: "not multipart", contentType: "application/json", body: `{"file":"cv.txt"}`},
		{name: "truncated multipart", contentType: "multipart/form-data; boundary=xyz", body: "--xyz\r\nContent-Disposition: form-data; name=\"file\"; filename=\"cv.txt\"\r\n\r\nJane"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/parse-resume/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)

			rr := testutil.ExecuteRequest(router, req)

			testutil.AssertStatus(t, rr, http.StatusBadRequest)
			var body errorBody
			testutil.ParseJSONBody(t, rr, &body)
			assert.Equal(t, "BAD_REQUEST", body.Code)
		})
	}
}

func TestParse_HashedSecret(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)
	router := newRouter(t, &stubGenerator{reply: record}, config.AuthConfig{SecretKeyHash: string(hash)}, 1<<20)

	rr := testutil.ExecuteRequest(router, upload(t, "/parse-resume/", "jane.txt", []byte("Jane"), secret))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.ExecuteRequest(router, upload(t, "/parse-resume/", "jane.txt", []byte("Jane"), "other"))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestParse_BearerToken(t *testing.T) {
	auth := config.AuthConfig{SecretKey: secret, JWTSecret: "jwt-signing-secret", JWTIssuer: "resumeflow"}
	router := newRouter(t, &stubGenerator{reply: record}, auth, 1<<20)

	token, err := handler.NewAuthenticator(auth).IssueToken("recruiter-7", time.Minute)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		req := testutil.WithBearerToken(upload(t, "/api/v1/resumes/parse", "jane.txt", []byte("Jane"), ""), token)
		rr := testutil.ExecuteRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := handler.NewAuthenticator(config.AuthConfig{JWTSecret: "jwt-signing-secret", JWTIssuer: "someone-else"}).
			IssueToken("recruiter-7", time.Minute)
		require.NoError(t, err)

		req := testutil.WithBearerToken(upload(t, "/api/v1/resumes/parse", "jane.txt", []byte("Jane"), ""), other)
		rr := testutil.ExecuteRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		forged, err := handler.NewAuthenticator(config.AuthConfig{JWTSecret: "forged", JWTIssuer: "resumeflow"}).
			IssueToken("recruiter-7", time.Minute)
		require.NoError(t, err)

		req := testutil.WithBearerToken(upload(t, "/api/v1/resumes/parse", "jane.txt", []byte("Jane"), secret), forged)
		rr := testutil.ExecuteRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := handler.NewAuthenticator(auth).IssueToken("recruiter-7", -time.Minute)
		require.NoError(t, err)

		req := testutil.WithBearerToken(upload(t, "/api/v1/resumes/parse", "jane.txt", []byte("Jane"), ""), expired)
		rr := testutil.ExecuteRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestIssueToken_Disabled(t *testing.T) {
	_, err := handler.NewAuthenticator(config.AuthConfig{SecretKey: secret}).IssueToken("x", time.Minute)
	assert.Error(t, err)
}

type jobEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		JobID  string         `json:"job_id"`
		Status string         `json:"status"`
		Stage  string         `json:"stage"`
		Result map[string]any `json:"result"`
		Error  *struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"data"`
}

func TestJobs(t *testing.T) {
	router := defaultRouter(t, &stubGenerator{reply: record})

	rr := testutil.ExecuteRequest(router, upload(t, "/api/v1/resumes/jobs", "jane.txt", []byte("Jane Doe"), secret))
	testutil.AssertStatus(t, rr, http.StatusAccepted)

	var created jobEnvelope
	testutil.ParseJSONBody(t, rr, &created)
	require.True(t, created.Success)
	require.NotEmpty(t, created.Data.JobID)

	var job jobEnvelope
	testutil.RequireEventually(t, func() bool {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/resumes/jobs/"+created.Data.JobID, nil)
		rr := testutil.ExecuteRequest(router, req)
		if rr.Code != http.StatusOK {
			return false
		}
		job = jobEnvelope{}
		testutil.ParseJSONBody(t, rr, &job)
		return job.Data.Status == "completed"
	}, 5*time.Second, 10*time.Millisecond, "job did not complete")

	assert.Equal(t, "done", job.Data.Stage)
	assert.Contains(t, job.Data.Result, "data")
	assert.Nil(t, job.Data.Error)
}

func TestJobs_RejectsBeforeStarting(t *testing.T) {
	router := defaultRouter(t, &stubGenerator{reply: record})

	rr := testutil.ExecuteRequest(router, upload(t, "/api/v1/resumes/jobs", "resume.rtf", []byte("x"), secret))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	rr = testutil.ExecuteRequest(router, upload(t, "/api/v1/resumes/jobs", "jane.txt", []byte("x"), "nope"))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestGetJob_NotFound(t *testing.T) {
	router := defaultRouter(t, &stubGenerator{})

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/resumes/jobs/does-not-exist", nil)
	rr := testutil.ExecuteRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestAudit_Disabled(t *testing.T) {
	router := defaultRouter(t, &stubGenerator{})

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/resumes/audit", nil)
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNotFound)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/resumes/audit?limit=abc", nil)
	rr = testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}
