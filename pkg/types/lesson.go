package types

// Sentinel values shared across the pipeline.
const (
	// NoDataSentinel marks a lesson whose description markers were found but
	// whose span was empty. Consumers must treat it specially rather than as
	// ordinary description text.
	NoDataSentinel = "This lesson has no data!"

	// UnknownSkillLabel is assigned when label lookup fails or returns empty.
	// The skill identifier is kept; only the label degrades.
	UnknownSkillLabel = "Unknown Skill"
)

// Provenance records whether a lesson's skill data came from a fresh
// attribution run or from the cache.
type Provenance string

const (
	ProvenanceFresh  Provenance = "fresh"
	ProvenanceCached Provenance = "cached"
)

// LessonRecord is one course entry within a semester block.
//
// Skills and SkillNames are updated together, never independently: a nil
// slice means attribution has not run, an empty non-nil slice means
// attribution ran and found nothing.
type LessonRecord struct {
	Title        string            `json:"-"`
	Description  string            `json:"description"`
	Skills       []string          `json:"skills"`                 // identifier URIs
	SkillNames   []string          `json:"skill_names"`            // resolved labels
	SkillConnect map[string]string `json:"skill_connect,omitempty"` // identifier -> label
	Provenance   Provenance        `json:"-"`
}

// Attributed reports whether skill identifiers and labels are both
// populated. An attributed record must not trigger further external calls.
func (r *LessonRecord) Attributed() bool {
	return r.Skills != nil && r.SkillNames != nil
}

// SetSkills installs identifiers and labels as a unit, maintaining the
// invariant that the two sets only ever change together.
func (r *LessonRecord) SetSkills(ids, labels []string, connect map[string]string, prov Provenance) {
	if ids == nil {
		ids = []string{}
	}
	if labels == nil {
		labels = []string{}
	}
	r.Skills = ids
	r.SkillNames = labels
	r.SkillConnect = connect
	r.Provenance = prov
}

// Clone returns a deep copy of the record.
func (r *LessonRecord) Clone() *LessonRecord {
	dst := &LessonRecord{
		Title:       r.Title,
		Description: r.Description,
		Provenance:  r.Provenance,
	}
	if r.Skills != nil {
		dst.Skills = append([]string{}, r.Skills...)
	}
	if r.SkillNames != nil {
		dst.SkillNames = append([]string{}, r.SkillNames...)
	}
	if r.SkillConnect != nil {
		dst.SkillConnect = make(map[string]string, len(r.SkillConnect))
		for k, v := range r.SkillConnect {
			dst.SkillConnect[k] = v
		}
	}
	return dst
}
