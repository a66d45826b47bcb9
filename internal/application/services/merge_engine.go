package services

import (
	"fmt"
	"log"
	"sort"

	"github.com/pulsecs/backend/internal/domain/models"
	"github.com/pulsecs/backend/pkg/constants"
	"github.com/pulsecs/backend/pkg/errors"
)

// MergeResult is the output of applying an ordered modification sequence to
// a template's base steps and artifacts.
type MergeResult struct {
	Steps     []models.Record
	Artifacts map[string]models.Record
	Warnings  []models.CompilationWarning
}

// MergeEngine applies modifications one at a time against the current
// working copy, so later modifications see the effects of earlier ones.
// Base steps and artifacts are never mutated; everything works on clones.
//
// Missing targets are warnings by design: modification layers are authored
// independently and must tolerate a target removed by an earlier layer.
// Structural malformation of a payload is fatal instead; a partial,
// inconsistent workflow must never be persisted.
type MergeEngine struct{}

// NewMergeEngine creates a MergeEngine
func NewMergeEngine() *MergeEngine {
	return &MergeEngine{}
}

// SortModifications orders modifications ascending by priority, ties broken
// by id, so the same input set always merges identically.
func SortModifications(mods []*models.Modification) {
	sort.SliceStable(mods, func(i, j int) bool {
		if mods[i].Priority != mods[j].Priority {
			return mods[i].Priority < mods[j].Priority
		}
		return mods[i].ID < mods[j].ID
	})
}

// Merge applies orderedMods to copies of baseSteps/baseArtifacts.
// orderedMods must already be filtered to applicable and sorted by
// priority then id.
func (e *MergeEngine) Merge(baseSteps []models.Record, baseArtifacts map[string]models.Record, orderedMods []*models.Modification) (*MergeResult, error) {
	result := &MergeResult{
		Steps:     models.CloneSteps(baseSteps),
		Artifacts: models.CloneArtifacts(baseArtifacts),
	}
	if result.Steps == nil {
		result.Steps = []models.Record{}
	}
	if result.Artifacts == nil {
		result.Artifacts = map[string]models.Record{}
	}

	for _, mod := range orderedMods {
		if err := e.apply(result, mod); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (e *MergeEngine) apply(result *MergeResult, mod *models.Modification) error {
	switch mod.Type {
	case constants.ModAddStep:
		return e.addStep(result, mod)
	case constants.ModRemoveStep:
		return e.removeStep(result, mod)
	case constants.ModReplaceStep:
		return e.replaceStep(result, mod)
	case constants.ModModifyStep:
		return e.modifyStep(result, mod)
	case constants.ModAddArtifact:
		return e.addArtifact(result, mod)
	case constants.ModRemoveArtifact:
		return e.removeArtifact(result, mod)
	default:
		return errors.NewCompilationError(mod.ID, fmt.Sprintf("unknown modification type '%s'", mod.Type))
	}
}

// addStep inserts a complete step definition at target position, clamped to
// the current list bounds. A step id collision is fatal.
func (e *MergeEngine) addStep(result *MergeResult, mod *models.Modification) error {
	if len(mod.Data) == 0 {
		return errors.NewCompilationError(mod.ID, "add_step requires a step definition payload")
	}
	newStep := mod.Data.Clone()
	stepID := newStep.StepID()
	if stepID == "" {
		return errors.NewCompilationError(mod.ID, "add_step payload missing step_id")
	}
	if mod.TargetPosition == nil {
		return errors.NewCompilationError(mod.ID, "add_step requires target_position")
	}
	if indexOfStep(result.Steps, stepID) >= 0 {
		return errors.NewCompilationError(mod.ID, fmt.Sprintf("step_id '%s' already exists in working list", stepID))
	}

	pos := *mod.TargetPosition
	if pos < 0 {
		pos = 0
	}
	if pos > len(result.Steps) {
		pos = len(result.Steps)
	}

	result.Steps = append(result.Steps, nil)
	copy(result.Steps[pos+1:], result.Steps[pos:])
	result.Steps[pos] = newStep
	return nil
}

// removeStep deletes the target step. No-op with warning if absent: an
// earlier modification may have legitimately removed it already.
func (e *MergeEngine) removeStep(result *MergeResult, mod *models.Modification) error {
	if mod.TargetStepID == "" {
		return errors.NewCompilationError(mod.ID, "remove_step requires target_step_id")
	}
	idx := indexOfStep(result.Steps, mod.TargetStepID)
	if idx < 0 {
		e.warnMissingTarget(result, mod, "step")
		return nil
	}
	result.Steps = append(result.Steps[:idx], result.Steps[idx+1:]...)
	return nil
}

// replaceStep substitutes the payload wholesale at the target's index.
func (e *MergeEngine) replaceStep(result *MergeResult, mod *models.Modification) error {
	if mod.TargetStepID == "" {
		return errors.NewCompilationError(mod.ID, "replace_step requires target_step_id")
	}
	if len(mod.Data) == 0 {
		return errors.NewCompilationError(mod.ID, "replace_step requires a step definition payload")
	}
	if mod.Data.StepID() == "" {
		return errors.NewCompilationError(mod.ID, "replace_step payload missing step_id")
	}
	idx := indexOfStep(result.Steps, mod.TargetStepID)
	if idx < 0 {
		e.warnMissingTarget(result, mod, "step")
		return nil
	}
	result.Steps[idx] = mod.Data.Clone()
	return nil
}

// modifyStep shallow-merges patch fields onto the target step. Overlapping
// scalars are last-key-wins; arrays and objects are replaced wholesale, not
// deep-merged, to keep semantics predictable.
func (e *MergeEngine) modifyStep(result *MergeResult, mod *models.Modification) error {
	if mod.TargetStepID == "" {
		return errors.NewCompilationError(mod.ID, "modify_step requires target_step_id")
	}
	if len(mod.Data) == 0 {
		return errors.NewCompilationError(mod.ID, "modify_step requires a patch payload")
	}
	idx := indexOfStep(result.Steps, mod.TargetStepID)
	if idx < 0 {
		e.warnMissingTarget(result, mod, "step")
		return nil
	}
	patch := mod.Data.Clone()
	for k, v := range patch {
		result.Steps[idx][k] = v
	}
	return nil
}

// addArtifact appends an artifact reference to the target step's list.
// A missing host step is fatal here: an artifact without a host step is
// meaningless.
func (e *MergeEngine) addArtifact(result *MergeResult, mod *models.Modification) error {
	if mod.TargetStepID == "" {
		return errors.NewCompilationError(mod.ID, "add_artifact requires target_step_id")
	}
	if len(mod.Data) == 0 || mod.Data.GetString(models.KeyRefID) == "" {
		return errors.NewCompilationError(mod.ID, "add_artifact payload missing ref_id")
	}
	idx := indexOfStep(result.Steps, mod.TargetStepID)
	if idx < 0 {
		return errors.NewCompilationError(mod.ID, fmt.Sprintf("add_artifact target step '%s' not found", mod.TargetStepID))
	}

	refs := result.Steps[idx].ArtifactRefs()
	refs = append(refs, map[string]interface{}(mod.Data.Clone()))
	result.Steps[idx][models.KeyArtifacts] = refs
	return nil
}

// removeArtifact removes the reference matched by its ref_id from the
// target step's artifact list. No-op with warning if step or reference is
// absent.
func (e *MergeEngine) removeArtifact(result *MergeResult, mod *models.Modification) error {
	if mod.TargetStepID == "" {
		return errors.NewCompilationError(mod.ID, "remove_artifact requires target_step_id")
	}
	refID := mod.Data.GetString(models.KeyRefID)
	if refID == "" {
		return errors.NewCompilationError(mod.ID, "remove_artifact payload missing ref_id")
	}
	idx := indexOfStep(result.Steps, mod.TargetStepID)
	if idx < 0 {
		e.warnMissingTarget(result, mod, "step")
		return nil
	}

	refs := result.Steps[idx].ArtifactRefs()
	for i, raw := range refs {
		if ref, ok := raw.(map[string]interface{}); ok {
			if models.Record(ref).GetString(models.KeyRefID) == refID {
				result.Steps[idx][models.KeyArtifacts] = append(refs[:i:i], refs[i+1:]...)
				return nil
			}
		}
	}

	e.warnMissingTarget(result, mod, "artifact reference")
	return nil
}

func (e *MergeEngine) warnMissingTarget(result *MergeResult, mod *models.Modification, kind string) {
	detail := fmt.Sprintf("%s '%s' not present in working copy for %s", kind, mod.TargetStepID, mod.Type)
	if kind == "artifact reference" {
		detail = fmt.Sprintf("artifact reference '%s' not present on step '%s'", mod.Data.GetString(models.KeyRefID), mod.TargetStepID)
	}
	log.Printf("⚠️ MergeEngine: modification %s: %s", mod.ID, detail)
	result.Warnings = append(result.Warnings, models.CompilationWarning{
		Kind:           models.WarningMissingTarget,
		ModificationID: mod.ID,
		Detail:         detail,
	})
}

func indexOfStep(steps []models.Record, stepID string) int {
	for i, s := range steps {
		if s.StepID() == stepID {
			return i
		}
	}
	return -1
}
