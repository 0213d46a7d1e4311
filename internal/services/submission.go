package services

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/claimintake-backend/internal/clients/gcs"
	"github.com/yungbote/claimintake-backend/internal/mail"
	"github.com/yungbote/claimintake-backend/internal/pkg/logger"
	"github.com/yungbote/claimintake-backend/internal/records"
)

// SubmissionService runs the intake pipeline for one request, strictly
// ordered: upload, classification resolution, reconciliation, recipient
// resolution, notification. There is no rollback: an uploaded artifact
// stays in the bucket even when a later step fails.
type SubmissionService struct {
	log        *logger.Logger
	uploader   gcs.Uploader
	classifier *ClassificationResolver
	reconciler *Reconciler
	recipients *RecipientResolver
	notifier   *mail.Chain
	now        func() time.Time
}

func NewSubmissionService(
	log *logger.Logger,
	uploader gcs.Uploader,
	classifier *ClassificationResolver,
	reconciler *Reconciler,
	recipients *RecipientResolver,
	notifier *mail.Chain,
) *SubmissionService {
	return &SubmissionService{
		log:        log.With("service", "SubmissionService"),
		uploader:   uploader,
		classifier: classifier,
		reconciler: reconciler,
		recipients: recipients,
		notifier:   notifier,
		now:        time.Now,
	}
}

type SubmissionInput struct {
	Identity       string
	Classification string
	Notes          string
	Filename       string
	ContentType    string
	File           io.Reader
}

type SubmissionResult struct {
	Created     bool
	RecordID    string
	ArtifactURL string
	Recipients  int
	Notified    bool
}

// Process returns an error only for upload and store failures. A failed
// notification after a successful record write is logged and the
// submission still succeeds.
func (s *SubmissionService) Process(ctx context.Context, in SubmissionInput) (SubmissionResult, error) {
	key := gcs.ObjectKey(s.now().UTC(), uuid.NewString(), in.Filename)
	artifactURL, err := s.uploader.Put(ctx, key, in.File, in.ContentType)
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("upload artifact: %w", err)
	}
	s.log.Debug("Artifact stored", "key", key)

	class, err := s.classifier.Resolve(ctx, in.Classification, in.Identity)
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("resolve classification: %w", err)
	}

	rec, err := s.reconciler.Reconcile(ctx, in.Identity, class, in.Notes,
		records.Attachment{URL: artifactURL, Filename: in.Filename})
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("reconcile submission: %w", err)
	}

	recipients, err := s.recipients.Recipients(ctx, class, rec.ClassRef)
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("resolve recipients: %w", err)
	}

	result := SubmissionResult{
		Created:     rec.Created,
		RecordID:    rec.Record.ID,
		ArtifactURL: artifactURL,
		Recipients:  len(recipients),
	}

	if len(recipients) == 0 {
		s.log.Info("Submission processed, nothing to notify",
			"record_id", result.RecordID, "created", result.Created)
		return result, nil
	}

	msg := mail.Message{
		To:      recipients,
		Subject: notificationSubject(in.Identity),
		HTML:    notificationBody(in, class, artifactURL),
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		// Record write already succeeded; the submission stays a success.
		s.log.Error("Notification failed", "record_id", result.RecordID, "error", err.Error())
		return result, nil
	}
	result.Notified = true

	s.log.Info("Submission processed",
		"record_id", result.RecordID, "created", result.Created, "recipients", len(recipients))
	return result, nil
}

func notificationSubject(identity string) string {
	return fmt.Sprintf("New claim submission from %s", strings.TrimSpace(identity))
}

func notificationBody(in SubmissionInput, class, artifactURL string) string {
	var b strings.Builder
	b.WriteString("<h2>New claim submission</h2>")
	b.WriteString(fmt.Sprintf("<p><strong>Submitter:</strong> %s</p>", html.EscapeString(in.Identity)))
	if strings.TrimSpace(class) != "" {
		b.WriteString(fmt.Sprintf("<p><strong>Class:</strong> %s</p>", html.EscapeString(class)))
	}
	if strings.TrimSpace(in.Notes) != "" {
		b.WriteString(fmt.Sprintf("<p><strong>Notes:</strong> %s</p>", html.EscapeString(in.Notes)))
	}
	b.WriteString(fmt.Sprintf(`<p><a href="%s">%s</a></p>`,
		artifactURL, html.EscapeString(in.Filename)))
	return b.String()
}
