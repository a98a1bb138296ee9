package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/resumeflow/resumeflow-backend/internal/resume/classifier"
	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
	"github.com/resumeflow/resumeflow-backend/internal/resume/service"
	"github.com/resumeflow/resumeflow-backend/pkg/errors"
	"github.com/resumeflow/resumeflow-backend/pkg/httputil"
	"github.com/resumeflow/resumeflow-backend/pkg/logger"
	"github.com/resumeflow/resumeflow-backend/pkg/messaging"
)

// WarningsHeader carries the number of schema warnings on a successful parse
const WarningsHeader = "X-Resume-Warnings"

// Handler handles resume upload and job requests
type Handler struct {
	service *service.Service
	auth    *Authenticator
	maxSize int64
	log     *logger.Logger
}

// NewHandler creates a new resume handler
func NewHandler(svc *service.Service, auth *Authenticator, maxSize int64, log *logger.Logger) *Handler {
	return &Handler{
		service: svc,
		auth:    auth,
		maxSize: maxSize,
		log:     log.WithComponent("handler"),
	}
}

// RegisterRoutes mounts the resume endpoints on r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/parse-resume/", h.Parse)

	r.Route("/api/v1/resumes", func(r chi.Router) {
		r.Post("/parse", h.Parse)
		r.Post("/jobs", h.StartJob)
		r.Get("/jobs/{jobId}", h.GetJob)
		r.Get("/audit", h.Audit)
	})
}

type upload struct {
	FileName    string `validate:"required,max=255"`
	Data        []byte
	RequestedBy string
}

// readUpload authenticates the caller and reads the file part into memory
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)

	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errors.TooLarge(h.maxSize)
		}
		return nil, errors.BadRequest("Invalid multipart form")
	}
	defer r.MultipartForm.RemoveAll()

	subject, err := h.auth.Authenticate(r)
	if err != nil {
		return nil, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.BadRequest("Missing file in request")
	}
	defer file.Close()

	u := &upload{FileName: header.Filename, RequestedBy: subject}
	if err := httputil.Validate(u); err != nil {
		return nil, err
	}

	if !classifier.IsSupported(u.FileName) {
		return nil, unsupported()
	}

	// Kept in memory only; the service zeroes it after the run
	u.Data, err = io.ReadAll(file)
	if err != nil {
		return nil, errors.Internal("Failed to read uploaded file")
	}
	return u, nil
}

// Parse handles POST /parse-resume/ and POST /api/v1/resumes/parse.
// Responds with the parsed record as the raw JSON body.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	u, err := h.readUpload(w, r)
	if err != nil {
		httputil.Fail(w, err)
		return
	}

	ctx := messaging.WithCorrelationID(r.Context(), httputil.GetRequestID(r.Context()))

	run, err := h.service.Parse(ctx, u.FileName, u.Data, u.RequestedBy)
	if err != nil {
		h.log.WithRequestID(httputil.GetRequestID(ctx)).Error().Err(err).
			Str("file_name", u.FileName).
			Str("subject", u.RequestedBy).
			Msg("resume parse failed")
		httputil.Fail(w, toAppError(err))
		return
	}

	w.Header().Set(WarningsHeader, strconv.Itoa(len(run.Warnings)))
	httputil.Raw(w, http.StatusOK, run.Record)
}

// StartJob handles POST /api/v1/resumes/jobs
func (h *Handler) StartJob(w http.ResponseWriter, r *http.Request) {
	u, err := h.readUpload(w, r)
	if err != nil {
		httputil.Fail(w, err)
		return
	}

	ctx := messaging.WithCorrelationID(r.Context(), httputil.GetRequestID(r.Context()))
	job := h.service.StartJob(ctx, u.FileName, u.Data, u.RequestedBy)

	httputil.JSON(w, http.StatusAccepted, job)
}

// GetJob handles GET /api/v1/resumes/jobs/{jobId}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		httputil.Error(w, errors.BadRequest("Missing jobId parameter"))
		return
	}

	job := h.service.GetJob(jobID)
	if job == nil {
		httputil.Error(w, errors.NotFound("Job"))
		return
	}

	httputil.JSON(w, http.StatusOK, job)
}

// Audit handles GET /api/v1/resumes/audit?error_kind=&limit=
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httputil.Error(w, errors.BadRequest("limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := h.service.RecentAudit(r.Context(), r.URL.Query().Get("error_kind"), limit)
	if err != nil {
		if errors.Is(err, service.ErrAuditDisabled) {
			httputil.Error(w, errors.New("AUDIT_DISABLED", "Audit log is disabled", http.StatusNotFound))
			return
		}
		h.log.Error().Err(err).Msg("failed to list audit entries")
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entries)
}

func unsupported() *errors.AppError {
	return errors.Wrap(domain.ErrUnsupported, string(domain.ErrUnsupportedFormat),
		"Unsupported file format. Supported formats: "+strings.Join(classifier.SupportedExtensions(), ", "),
		http.StatusBadRequest)
}

// toAppError maps a pipeline failure to its HTTP status and message
func toAppError(err error) *errors.AppError {
	var pe *domain.PipelineError
	if !errors.As(err, &pe) {
		return errors.Internal(fmt.Sprintf("Error processing file: %v", err))
	}

	switch pe.Kind {
	case domain.ErrUnsupportedFormat:
		return unsupported()
	case domain.ErrExtractionFailure:
		return errors.Wrap(pe, string(pe.Kind), "Failed to extract text from file: "+pe.Error(), http.StatusInternalServerError)
	default:
		return errors.Wrap(pe, string(pe.Kind), pe.Error(), http.StatusInternalServerError)
	}
}
