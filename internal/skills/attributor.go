package skills

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/skillcrawl/skillcrawl/pkg/types"
)

// Attributor resolves lesson descriptions into skill identifiers and
// labels. Both external collaborators are injected; the label memo lives on
// the instance, not in package state, so every run constructs its own.
type Attributor struct {
	extractor Extractor
	resolver  LabelResolver

	mu     sync.Mutex
	labels map[string]string // identifier -> resolved label, successes only
}

// New creates an Attributor around the given collaborators.
func New(extractor Extractor, resolver LabelResolver) *Attributor {
	return &Attributor{
		extractor: extractor,
		resolver:  resolver,
		labels:    make(map[string]string),
	}
}

// Attribute populates rec's skill identifiers and labels.
//
// A record whose identifiers and labels are already populated is a no-op
// unless force is set: neither collaborator is invoked. A record carrying
// the no-data sentinel gets empty sets without an extraction call.
func (a *Attributor) Attribute(ctx context.Context, rec *types.LessonRecord, force bool) error {
	if rec.Attributed() && !force {
		rec.Provenance = types.ProvenanceCached
		return nil
	}

	if rec.Description == "" || rec.Description == types.NoDataSentinel {
		rec.SetSkills(nil, nil, nil, types.ProvenanceFresh)
		return nil
	}

	collections, err := a.extractor.Extract(ctx, []string{rec.Description})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if len(collections) != 1 {
		return fmt.Errorf("%w: got %d collections for 1 description", ErrExtractionFailed, len(collections))
	}

	a.apply(ctx, rec, collections[0])
	return nil
}

// AttributeAll attributes every record lacking skill data, batching all
// descriptions into a single extraction call. Per-identifier label failures
// degrade to the unknown-skill sentinel without aborting the batch.
// Returns the number of records freshly attributed.
func (a *Attributor) AttributeAll(ctx context.Context, recs []*types.LessonRecord, force bool) (int, error) {
	var pending []*types.LessonRecord
	var descriptions []string

	for _, rec := range recs {
		if rec.Attributed() && !force {
			rec.Provenance = types.ProvenanceCached
			continue
		}
		if rec.Description == "" || rec.Description == types.NoDataSentinel {
			rec.SetSkills(nil, nil, nil, types.ProvenanceFresh)
			continue
		}
		pending = append(pending, rec)
		descriptions = append(descriptions, rec.Description)
	}

	if len(pending) == 0 {
		return 0, nil
	}

	collections, err := a.extractor.Extract(ctx, descriptions)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if len(collections) != len(pending) {
		return 0, fmt.Errorf("%w: got %d collections for %d descriptions",
			ErrExtractionFailed, len(collections), len(pending))
	}

	for i, rec := range pending {
		a.apply(ctx, rec, collections[i])
	}
	return len(pending), nil
}

// apply installs a freshly extracted identifier collection on rec,
// resolving labels as a unit with the identifiers.
func (a *Attributor) apply(ctx context.Context, rec *types.LessonRecord, collection []string) {
	ids := dedupe(collection)
	labels := make([]string, 0, len(ids))
	connect := make(map[string]string, len(ids))

	for _, id := range ids {
		label := a.lookupLabel(ctx, id)
		labels = append(labels, label)
		connect[id] = label
	}

	rec.SetSkills(ids, labels, connect, types.ProvenanceFresh)
}

// lookupLabel resolves one identifier, memoizing successes. Failures and
// empty results fall back to the unknown-skill sentinel; the identifier is
// never dropped for lack of a label.
func (a *Attributor) lookupLabel(ctx context.Context, id string) string {
	a.mu.Lock()
	label, ok := a.labels[id]
	a.mu.Unlock()
	if ok {
		return label
	}

	label, err := a.resolver.Resolve(ctx, id)
	if err != nil {
		log.Printf("skills: label lookup for %s failed: %v", id, err)
		return types.UnknownSkillLabel
	}
	if label == "" {
		return types.UnknownSkillLabel
	}

	a.mu.Lock()
	a.labels[id] = label
	a.mu.Unlock()
	return label
}

// dedupe removes duplicate identifiers while preserving first-seen order.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
