package services

import (
	"context"
	"errors"
	"strings"

	xerrors "github.com/yungbote/claimintake-backend/internal/pkg/errors"
	"github.com/yungbote/claimintake-backend/internal/pkg/logger"
	"github.com/yungbote/claimintake-backend/internal/records"
)

// ClassificationResolver determines the effective classification for a
// submission: an explicit value wins, otherwise the applicant directory
// supplies a default keyed by the submitter identity.
type ClassificationResolver struct {
	log    *logger.Logger
	store  records.Store
	tables TableConfig
}

func NewClassificationResolver(log *logger.Logger, store records.Store, tables TableConfig) *ClassificationResolver {
	return &ClassificationResolver{
		log:    log.With("service", "ClassificationResolver"),
		store:  store,
		tables: tables,
	}
}

// Resolve returns the effective classification text, or "" when nothing
// is known. Empty is a valid terminal state, not an error; only a failed
// directory query propagates.
func (r *ClassificationResolver) Resolve(ctx context.Context, explicit, identity string) (string, error) {
	if v := strings.TrimSpace(explicit); v != "" {
		return v, nil
	}

	identity = strings.TrimSpace(identity)
	if identity == "" {
		return "", nil
	}

	rec, err := r.store.FindOne(ctx, r.tables.ApplicantsTable,
		records.EqFold(r.tables.ApplicantIdentityField, identity))
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	class := rec.Str(r.tables.ApplicantClassField)
	if class != "" {
		r.log.Debug("Classification resolved from applicant directory", "classification", class)
	}
	return class, nil
}
