package services

import (
	"context"
	"strings"

	"github.com/yungbote/claimintake-backend/internal/pkg/logger"
	"github.com/yungbote/claimintake-backend/internal/records"
)

// RecipientResolver computes the notification list for an effective
// classification from the subscription directory. Entries may be tagged
// by a structured category link or by legacy free text, so the lookup is
// two-tier: link membership first, display-name text only when that
// yields nothing.
type RecipientResolver struct {
	log      *logger.Logger
	store    records.Store
	tables   TableConfig
	override string
}

func NewRecipientResolver(log *logger.Logger, store records.Store, tables TableConfig, override string) *RecipientResolver {
	return &RecipientResolver{
		log:      log.With("service", "RecipientResolver"),
		store:    store,
		tables:   tables,
		override: strings.TrimSpace(override),
	}
}

// Recipients returns the deduplicated notification addresses. An unknown
// classification yields an empty list, meaning nothing to notify.
func (r *RecipientResolver) Recipients(ctx context.Context, classText, classRef string) ([]string, error) {
	classText = strings.TrimSpace(classText)
	classRef = strings.TrimSpace(classRef)
	if classText == "" && classRef == "" {
		return nil, nil
	}

	// The override redirects every notification during testing without
	// touching the directory data.
	if r.override != "" {
		r.log.Debug("Recipient override active")
		return []string{r.override}, nil
	}

	var matches []records.Record
	if classRef != "" {
		recs, err := r.store.FindAll(ctx, r.tables.SubscriptionsTable,
			records.Contains(r.tables.SubscriptionLinkField, classRef))
		if err != nil {
			return nil, err
		}
		matches = recs
	}
	if len(matches) == 0 && classText != "" {
		recs, err := r.store.FindAll(ctx, r.tables.SubscriptionsTable,
			records.Eq(r.tables.SubscriptionNameField, classText))
		if err != nil {
			return nil, err
		}
		matches = recs
	}

	seen := make(map[string]struct{})
	var out []string
	for _, rec := range matches {
		for _, raw := range rec.Strs(r.tables.SubscriptionEmailField) {
			// A recipient field may hold a multi-value list or a single
			// comma-separated string; both normalize to individual
			// trimmed addresses.
			for _, addr := range strings.Split(raw, ",") {
				addr = strings.TrimSpace(addr)
				if addr == "" {
					continue
				}
				if _, dup := seen[addr]; dup {
					continue
				}
				seen[addr] = struct{}{}
				out = append(out, addr)
			}
		}
	}
	return out, nil
}
