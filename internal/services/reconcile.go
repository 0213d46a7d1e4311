package services

import (
	"context"
	"errors"
	"strings"

	xerrors "github.com/yungbote/claimintake-backend/internal/pkg/errors"
	"github.com/yungbote/claimintake-backend/internal/pkg/logger"
	"github.com/yungbote/claimintake-backend/internal/records"
)

// Reconciler decides create-vs-merge for a submission against the claim
// table. Records are keyed by submitter identity: a repeat submission
// appends its artifact and notes to the existing record instead of
// creating a second one.
type Reconciler struct {
	log    *logger.Logger
	store  records.Store
	tables TableConfig
}

func NewReconciler(log *logger.Logger, store records.Store, tables TableConfig) *Reconciler {
	return &Reconciler{
		log:    log.With("service", "Reconciler"),
		store:  store,
		tables: tables,
	}
}

type ReconcileResult struct {
	Record   records.Record
	Created  bool
	ClassRef string
}

// Reconcile issues exactly one store write. classification may be empty,
// a category name, or a direct record reference.
func (s *Reconciler) Reconcile(ctx context.Context, identity, classification, notes string, artifact records.Attachment) (ReconcileResult, error) {
	identity = strings.TrimSpace(identity)
	notes = strings.TrimSpace(notes)

	classRef, err := s.resolveCategoryRef(ctx, classification)
	if err != nil {
		return ReconcileResult{}, err
	}

	existing, err := s.store.FindOne(ctx, s.tables.ClaimsTable,
		records.EqFold(s.tables.ClaimIdentityField, identity))
	switch {
	case err == nil:
		rec, mergeErr := s.merge(ctx, existing, classRef, notes, artifact)
		if mergeErr != nil {
			return ReconcileResult{}, mergeErr
		}
		return ReconcileResult{Record: rec, Created: false, ClassRef: classRef}, nil
	case errors.Is(err, xerrors.ErrNotFound):
		rec, createErr := s.create(ctx, identity, classRef, notes, artifact)
		if createErr != nil {
			return ReconcileResult{}, createErr
		}
		return ReconcileResult{Record: rec, Created: true, ClassRef: classRef}, nil
	default:
		return ReconcileResult{}, err
	}
}

// resolveCategoryRef turns free text into a category record reference.
// Text already shaped like a record id is trusted as a direct reference;
// anything else is matched by name, created when absent. Concurrent
// creates of the same new name can race and leave a duplicate category;
// that is accepted rather than serialized.
func (s *Reconciler) resolveCategoryRef(ctx context.Context, classification string) (string, error) {
	classification = strings.TrimSpace(classification)
	if classification == "" {
		return "", nil
	}
	if records.LooksLikeRecordID(classification) {
		return classification, nil
	}
	cat, created, err := s.store.GetOrCreateByName(ctx,
		s.tables.CategoriesTable, s.tables.CategoryNameField, classification)
	if err != nil {
		return "", err
	}
	if created {
		s.log.Info("Category created", "name", classification, "record_id", cat.ID)
	}
	return cat.ID, nil
}

func (s *Reconciler) create(ctx context.Context, identity, classRef, notes string, artifact records.Attachment) (records.Record, error) {
	fields := records.Fields{
		s.tables.ClaimIdentityField: identity,
		s.tables.ClaimFilesField:    []records.Attachment{artifact},
	}
	if notes != "" {
		fields[s.tables.ClaimNotesField] = notes
	}
	if classRef != "" {
		fields[s.tables.ClaimClassField] = []string{classRef}
	}
	return s.store.Create(ctx, s.tables.ClaimsTable, fields)
}

func (s *Reconciler) merge(ctx context.Context, existing records.Record, classRef, notes string, artifact records.Attachment) (records.Record, error) {
	attachments := append(existing.Attachments(s.tables.ClaimFilesField), artifact)

	fields := records.Fields{
		s.tables.ClaimFilesField: attachments,
	}
	if notes != "" {
		merged := notes
		if prev := existing.Str(s.tables.ClaimNotesField); prev != "" {
			merged = prev + "\n" + notes
		}
		fields[s.tables.ClaimNotesField] = merged
	}
	// An empty resolution must never erase a stored classification.
	if classRef != "" {
		fields[s.tables.ClaimClassField] = []string{classRef}
	}
	return s.store.Update(ctx, s.tables.ClaimsTable, existing.ID, fields)
}
