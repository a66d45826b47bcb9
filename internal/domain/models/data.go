package models

// Record represents a schemaless nested object: a step definition, an
// artifact shape, an artifact reference, or a modification payload.
// Steps and artifacts are authored as JSON and carried through compilation
// untouched except where a modification or the hydrator rewrites them.
type Record map[string]interface{}

// Well-known record keys
const (
	KeyStepID      = "step_id"
	KeyDisplayName = "display_name"
	KeyArtifacts   = "artifacts"
	KeyRefID       = "ref_id"
	KeyArtifactID  = "artifact_id"
)

// GetString returns the string value for key, or "" if absent or not a string
func (r Record) GetString(key string) string {
	if val, ok := r[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// Get returns the raw value for key
func (r Record) Get(key string) interface{} {
	return r[key]
}

// StepID returns the step's unique identifier within its template
func (r Record) StepID() string {
	return r.GetString(KeyStepID)
}

// ArtifactRefs returns the step's artifact-reference list.
// Artifact references are Records carrying at least a ref_id and an
// artifact_id (an opaque component identifier resolved by the UI layer).
func (r Record) ArtifactRefs() []interface{} {
	if refs, ok := r[KeyArtifacts].([]interface{}); ok {
		return refs
	}
	return nil
}

// Clone returns a deep copy of the record. Compilation never mutates base
// template data; every merge works on a clone.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return cloneMap(r)
}

// CloneSteps deep-copies an ordered step list
func CloneSteps(steps []Record) []Record {
	if steps == nil {
		return nil
	}
	out := make([]Record, len(steps))
	for i, s := range steps {
		out[i] = s.Clone()
	}
	return out
}

// CloneArtifacts deep-copies an artifact-id to artifact-shape mapping
func CloneArtifacts(artifacts map[string]Record) map[string]Record {
	if artifacts == nil {
		return nil
	}
	out := make(map[string]Record, len(artifacts))
	for k, v := range artifacts {
		out[k] = v.Clone()
	}
	return out
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return cloneMap(val)
	case Record:
		// Nested records normalize to plain maps so downstream walks only
		// ever see JSON-shaped values.
		return cloneMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}
