package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/claimintake-backend/internal/http/response"
	"github.com/yungbote/claimintake-backend/internal/pkg/apierr"
	"github.com/yungbote/claimintake-backend/internal/pkg/logger"
	"github.com/yungbote/claimintake-backend/internal/services"
)

const MaxUploadBytes = 20 << 20

var allowedContentTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type ClaimHandler struct {
	log         *logger.Logger
	submissions *services.SubmissionService
}

func NewClaimHandler(log *logger.Logger, submissions *services.SubmissionService) *ClaimHandler {
	return &ClaimHandler{
		log:         log.With("handler", "ClaimHandler"),
		submissions: submissions,
	}
}

// Submit handles POST /api/claims: multipart form with identity,
// optional classification and notes, and exactly one file. Validation
// happens before any collaborator call.
func (h *ClaimHandler) Submit(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(MaxUploadBytes); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}

	identity := strings.TrimSpace(c.PostForm("identity"))
	classification := strings.TrimSpace(c.PostForm("classification"))
	notes := strings.TrimSpace(c.PostForm("notes"))

	fh, verr := validateSubmission(c.Request.MultipartForm, identity)
	if verr != nil {
		response.RespondError(c, verr.Status, verr.Code, verr.Err)
		return
	}

	file, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "file_open_failed", err)
		return
	}
	defer file.Close()

	result, err := h.submissions.Process(c.Request.Context(), services.SubmissionInput{
		Identity:       identity,
		Classification: classification,
		Notes:          notes,
		Filename:       filepath.Base(fh.Filename),
		ContentType:    effectiveContentType(fh),
		File:           file,
	})
	if err != nil {
		h.log.Error("Submission failed", "error", err.Error())
		response.RespondError(c, http.StatusInternalServerError, "submission_failed", err)
		return
	}

	message := "claim received"
	if !result.Created {
		message = "claim updated"
	}
	response.RespondOK(c, gin.H{
		"message":    message,
		"record_id":  result.RecordID,
		"created":    result.Created,
		"recipients": result.Recipients,
		"notified":   result.Notified,
	})
}

func validateSubmission(form *multipart.Form, identity string) (*multipart.FileHeader, *apierr.Error) {
	if identity == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_identity", errors.New("identity is required"))
	}

	var files []*multipart.FileHeader
	if form != nil {
		files = form.File["file"]
	}
	if len(files) == 0 {
		return nil, apierr.New(http.StatusBadRequest, "missing_file", errors.New("exactly one file is required"))
	}
	if len(files) > 1 {
		return nil, apierr.New(http.StatusBadRequest, "too_many_files", errors.New("exactly one file is required"))
	}
	fh := files[0]

	if fh.Size > MaxUploadBytes {
		return nil, apierr.New(http.StatusBadRequest, "file_too_large",
			fmt.Errorf("file exceeds %d bytes", MaxUploadBytes))
	}

	ct := effectiveContentType(fh)
	if _, ok := allowedContentTypes[ct]; !ok {
		return nil, apierr.New(http.StatusBadRequest, "unsupported_file_type",
			fmt.Errorf("unsupported file type %q; allowed: PDF, DOC, DOCX", ct))
	}
	return fh, nil
}

// effectiveContentType prefers the declared header type when it is in the
// allow-list, falling back to the filename extension. Browsers routinely
// send application/octet-stream for DOCX.
func effectiveContentType(fh *multipart.FileHeader) string {
	declared := strings.TrimSpace(strings.ToLower(fh.Header.Get("Content-Type")))
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if _, ok := allowedContentTypes[declared]; ok {
		return declared
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ct, ok := allowedExtensions[ext]; ok {
		return ct
	}
	return declared
}
