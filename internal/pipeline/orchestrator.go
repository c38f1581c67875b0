// Package pipeline is the generation orchestrator: it owns the session's
// stage inputs, decides per artifact whether the stored value is still
// usable (fingerprint match) or must be regenerated through the backend,
// gates every generated payload through its contract, and cascades
// invalidation to downstream artifacts after a real change.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"questgen/internal/artifact"
	"questgen/internal/bloom"
	"questgen/internal/contract"
	"questgen/internal/export"
	"questgen/internal/extract"
	"questgen/internal/fingerprint"
	"questgen/internal/graph"
	"questgen/internal/llm"
	"questgen/internal/prompt"
)

// Orchestrator serializes every session mutation and generation request
// behind one mutex: check-then-act on an artifact name is never interleaved
// with another check-then-act (single-user, single in-flight model).
type Orchestrator struct {
	mu      sync.Mutex
	session Session
	store   *artifact.Store
	client  llm.Client
	log     *zap.SugaredLogger
}

// New wires an orchestrator over the given store and backend client.
func New(store *artifact.Store, client llm.Client, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		session: Session{Export: export.DefaultOptions()},
		store:   store,
		client:  client,
		log:     log,
	}
}

// ExportValue is the stored export artifact: the rendered document bytes
// plus the options and question count it was built with.
type ExportValue struct {
	Docx      []byte         `json:"docx"`
	Options   export.Options `json:"options"`
	Questions int            `json:"questions"`
}

// SetModuleContent replaces the module stage input. A changed fingerprint
// cascades invalidation through every dependent artifact immediately, so
// status and events reflect the staleness without waiting for the next
// ensure call. Setting byte-equivalent content is a no-op.
func (o *Orchestrator) SetModuleContent(text string, files []string) (ModuleContent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.setModuleLocked(text, files)
}

// SetModuleFromFiles extracts the given files, combines them into one
// module text and applies it. Per-file failures are returned alongside the
// result and never abort sibling files; only a batch with zero successes
// fails as a whole.
func (o *Orchestrator) SetModuleFromFiles(ctx context.Context, ex *extract.Extractor, paths []string) (ModuleContent, []extract.Failure, error) {
	results, failures := ex.FileBatch(ctx, paths)
	if len(results) == 0 {
		return ModuleContent{}, failures, errors.New("no file yielded extractable text")
	}
	files := make([]string, len(results))
	for i, r := range results {
		files[i] = r.File
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	mc, err := o.setModuleLocked(extract.Combine(results), files)
	return mc, failures, err
}

func (o *Orchestrator) setModuleLocked(text string, files []string) (ModuleContent, error) {
	canonical := fingerprint.Canonical(text)
	if canonical == "" {
		return ModuleContent{}, errors.New("module content is empty")
	}
	tokens := extract.CountTokens(canonical)
	if tokens > ModuleTokenBudget {
		return ModuleContent{}, &TokenBudgetError{Tokens: tokens, Budget: ModuleTokenBudget}
	}

	fp := fingerprint.Text(canonical)
	if fp == o.session.Module.Fingerprint {
		return o.session.Module, nil
	}
	o.session.Module = ModuleContent{
		Text:        canonical,
		Fingerprint: fp,
		Tokens:      tokens,
		Files:       append([]string(nil), files...),
	}
	graph.InvalidateDownstream(o.store, artifact.KindModule, "")
	if o.log != nil {
		o.log.Infow("module content replaced", "fingerprint", fp.Short(), "tokens", tokens, "files", len(files))
	}
	return o.session.Module, nil
}

// AddObjective registers a new learning objective and returns it with its
// generated id.
func (o *Orchestrator) AddObjective(text string, level bloom.Level, count int) (Objective, error) {
	if strings.TrimSpace(text) == "" {
		return Objective{}, errors.New("objective text is empty")
	}
	if !level.Valid() {
		return Objective{}, fmt.Errorf("invalid bloom level %q", level)
	}
	if count == 0 {
		count = DefaultQuestionCount
	}
	if count < 1 || count > MaxQuestionCount {
		return Objective{}, fmt.Errorf("question count %d out of range 1-%d", count, MaxQuestionCount)
	}

	obj := Objective{
		ID:            uuid.NewString(),
		Text:          strings.TrimSpace(text),
		Level:         level,
		QuestionCount: count,
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.session.Objectives = append(o.session.Objectives, obj)
	return obj, nil
}

// ObjectiveUpdate carries the fields of an objective to change; nil fields
// keep their value.
type ObjectiveUpdate struct {
	Text  *string
	Level *bloom.Level
	Count *int
}

// UpdateObjective edits one objective. A text or level change re-keys the
// alignment input and cascades from the objective node; a count-only change
// re-keys just the questions input. Rewriting the text drops a previously
// accepted suggestion.
func (o *Orchestrator) UpdateObjective(id string, upd ObjectiveUpdate) (Objective, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	obj, ok := o.session.objective(id)
	if !ok {
		return Objective{}, fmt.Errorf("%w: %s", ErrObjectiveNotFound, id)
	}

	alignmentInputChanged := false
	questionsInputChanged := false
	if upd.Text != nil {
		text := strings.TrimSpace(*upd.Text)
		if text == "" {
			return Objective{}, errors.New("objective text is empty")
		}
		if text != obj.Text {
			obj.Text = text
			obj.AcceptedText = ""
			alignmentInputChanged = true
			questionsInputChanged = true
		}
	}
	if upd.Level != nil {
		if !upd.Level.Valid() {
			return Objective{}, fmt.Errorf("invalid bloom level %q", *upd.Level)
		}
		if *upd.Level != obj.Level {
			obj.Level = *upd.Level
			alignmentInputChanged = true
			questionsInputChanged = true
		}
	}
	if upd.Count != nil {
		if *upd.Count < 1 || *upd.Count > MaxQuestionCount {
			return Objective{}, fmt.Errorf("question count %d out of range 1-%d", *upd.Count, MaxQuestionCount)
		}
		if *upd.Count != obj.QuestionCount {
			obj.QuestionCount = *upd.Count
			questionsInputChanged = true
		}
	}

	switch {
	case alignmentInputChanged:
		graph.InvalidateDownstream(o.store, artifact.KindObjective, id)
	case questionsInputChanged:
		// The alignment input is untouched; only the questions key moved.
		graph.InvalidateDownstream(o.store, artifact.KindAlignment, id)
	}
	return *obj, nil
}

// AcceptSuggestion adopts the suggested replacement objective from the
// current fresh alignment verdict. The accepted text becomes the effective
// questions-stage input; the alignment verdict itself stays fresh, since it
// judges the author text and the suggestion is its own output.
func (o *Orchestrator) AcceptSuggestion(id string) (Objective, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	obj, ok := o.session.objective(id)
	if !ok {
		return Objective{}, fmt.Errorf("%w: %s", ErrObjectiveNotFound, id)
	}
	name := artifact.AlignmentName(id)
	if !o.store.IsFresh(name, o.session.alignmentFingerprint(obj)) {
		return Objective{}, fmt.Errorf("%w: objective %s has no fresh alignment verdict", ErrNoSuggestion, id)
	}
	entry, _ := o.store.Get(name)
	res, err := artifact.Decode[contract.AlignmentResult](entry)
	if err != nil {
		return Objective{}, err
	}
	if strings.TrimSpace(res.Suggestion) == "" {
		return Objective{}, fmt.Errorf("%w: verdict carries no suggestion", ErrNoSuggestion)
	}
	if fingerprint.Canonical(res.Suggestion) == fingerprint.Canonical(obj.Effective()) {
		return *obj, nil
	}
	obj.AcceptedText = strings.TrimSpace(res.Suggestion)
	graph.InvalidateDownstream(o.store, artifact.KindAlignment, id)
	return *obj, nil
}

// RemoveObjective drops an objective, removes its artifacts and stales the
// export.
func (o *Orchestrator) RemoveObjective(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	idx := -1
	for i := range o.session.Objectives {
		if o.session.Objectives[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrObjectiveNotFound, id)
	}
	o.session.Objectives = append(o.session.Objectives[:idx], o.session.Objectives[idx+1:]...)
	delete(o.session.EditedQuestions, id)
	o.store.Remove(artifact.AlignmentName(id))
	o.store.Remove(artifact.QuestionsName(id))
	o.store.Invalidate(artifact.ExportName)
	return nil
}

// EnsureAlignment returns the alignment verdict for one objective, reusing
// the stored artifact when its fingerprint matches the current input and
// regenerating through the backend otherwise. cached reports which path ran.
func (o *Orchestrator) EnsureAlignment(ctx context.Context, id string) (res contract.AlignmentResult, cached bool, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	obj, ok := o.session.objective(id)
	if !ok {
		return res, false, fmt.Errorf("%w: %s", ErrObjectiveNotFound, id)
	}
	if !o.session.Module.IsSet() {
		return res, false, ErrNoModule
	}

	name := artifact.AlignmentName(id)
	fp := o.session.alignmentFingerprint(obj)
	if o.store.IsFresh(name, fp) {
		entry, _ := o.store.Get(name)
		res, err = artifact.Decode[contract.AlignmentResult](entry)
		return res, true, err
	}

	raw, err := o.client.GenerateJSON(
		llm.WithStage(ctx, contract.Alignment),
		prompt.Alignment,
		prompt.ForAlignment(obj.Text, obj.Level, o.session.Module.Text),
	)
	if err != nil {
		return res, false, &GenerationFailure{Stage: contract.Alignment, Err: err}
	}
	res, err = contract.DecodeAlignment(raw)
	if err != nil {
		// Terminal for this request; a previously stored verdict is untouched.
		return contract.AlignmentResult{}, false, err
	}

	value, _ := json.Marshal(res)
	if o.store.Put(name, value, fp) {
		graph.InvalidateDownstream(o.store, artifact.KindAlignment, id)
	}
	if o.log != nil {
		o.log.Infow("alignment generated", "objective", id, "label", res.Label, "fingerprint", fp.Short())
	}
	return res, false, nil
}

// EnsureQuestions returns the question set for one objective, reusing the
// stored artifact on fingerprint match and regenerating otherwise.
func (o *Orchestrator) EnsureQuestions(ctx context.Context, id string) (res contract.QuestionSetResult, cached bool, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	obj, ok := o.session.objective(id)
	if !ok {
		return res, false, fmt.Errorf("%w: %s", ErrObjectiveNotFound, id)
	}
	if !o.session.Module.IsSet() {
		return res, false, ErrNoModule
	}

	name := artifact.QuestionsName(id)
	fp := o.session.questionsFingerprint(obj)
	if o.store.IsFresh(name, fp) {
		entry, _ := o.store.Get(name)
		res, err = artifact.Decode[contract.QuestionSetResult](entry)
		return res, true, err
	}

	raw, err := o.client.GenerateJSON(
		llm.WithStage(ctx, contract.QuestionSet),
		prompt.Questions,
		prompt.ForQuestions(obj.Effective(), obj.Level, obj.QuestionCount, o.session.Module.Text),
	)
	if err != nil {
		return res, false, &GenerationFailure{Stage: contract.QuestionSet, Err: err}
	}
	res, err = contract.DecodeQuestionSet(raw)
	if err != nil {
		return contract.QuestionSetResult{}, false, err
	}

	value, _ := json.Marshal(res)
	delete(o.session.EditedQuestions, id)
	if o.store.Put(name, value, fp) {
		graph.InvalidateDownstream(o.store, artifact.KindQuestions, id)
	}
	if o.log != nil {
		o.log.Infow("questions generated", "objective", id, "count", len(res.Questions), "fingerprint", fp.Short())
	}
	return res, false, nil
}

// EditQuestions applies author edits to a stored question set. The edited
// payload must satisfy the question-set contract as a whole; a violation
// rejects the edit and leaves the stored artifact unchanged. The edit is
// stored under the same input fingerprint (the inputs did not change), so
// the set stays fresh while the export goes stale.
func (o *Orchestrator) EditQuestions(id string, raw json.RawMessage) (contract.QuestionSetResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	obj, ok := o.session.objective(id)
	if !ok {
		return contract.QuestionSetResult{}, fmt.Errorf("%w: %s", ErrObjectiveNotFound, id)
	}
	name := artifact.QuestionsName(id)
	fp := o.session.questionsFingerprint(obj)
	if !o.store.IsFresh(name, fp) {
		return contract.QuestionSetResult{}, fmt.Errorf("objective %s has no fresh question set to edit", id)
	}

	res, err := contract.DecodeQuestionSet(raw)
	if err != nil {
		return contract.QuestionSetResult{}, err
	}

	value, _ := json.Marshal(res)
	if o.store.Put(name, value, fp) {
		if o.session.EditedQuestions == nil {
			o.session.EditedQuestions = make(map[string]bool)
		}
		o.session.EditedQuestions[id] = true
		graph.InvalidateDownstream(o.store, artifact.KindQuestions, id)
	}
	return res, nil
}

// EnsureExport renders the selected question sets into a document, reusing
// the stored bytes when nothing upstream changed. The export fingerprint
// covers the selected sets' value digests, the options and the objective
// metadata, so touching any of them re-renders.
func (o *Orchestrator) EnsureExport(ctx context.Context, opts export.Options) (val ExportValue, cached bool, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return val, false, err
	}
	selected, err := o.selectForExport(opts)
	if err != nil {
		return val, false, err
	}

	key := exportKey{Options: opts}
	sections := make([]export.Section, 0, len(selected))
	total := 0
	for _, obj := range selected {
		entry, _ := o.store.Get(artifact.QuestionsName(obj.ID))
		set, err := artifact.Decode[contract.QuestionSetResult](entry)
		if err != nil {
			return val, false, err
		}
		edited := o.session.EditedQuestions[obj.ID]
		key.Sets = append(key.Sets, fingerprint.Bytes(entry.Value))
		key.Meta = append(key.Meta, exportMetaKey{
			ID:     obj.ID,
			Text:   obj.Effective(),
			Level:  obj.Level,
			Edited: edited,
		})
		sections = append(sections, export.Section{
			Objective: contract.ObjectiveMeta{ID: obj.ID, Text: obj.Effective(), Level: obj.Level},
			Questions: set.Questions,
			Edited:    edited,
		})
		total += len(set.Questions)
	}

	o.session.Export = opts.Clone()
	fp := fingerprint.JSON(key)
	if o.store.IsFresh(artifact.ExportName, fp) {
		entry, _ := o.store.Get(artifact.ExportName)
		val, err = artifact.Decode[ExportValue](entry)
		return val, true, err
	}

	docx, err := export.Render(sections, opts)
	if err != nil {
		return val, false, err
	}
	val = ExportValue{Docx: docx, Options: opts.Clone(), Questions: total}
	value, _ := json.Marshal(val)
	o.store.Put(artifact.ExportName, value, fp)
	if o.log != nil {
		o.log.Infow("export rendered", "objectives", len(selected), "questions", total, "bytes", len(docx))
	}
	return val, false, nil
}

// selectForExport resolves the objective selection: an explicit id list
// (every id must exist and have a fresh question set) or, by default, every
// objective that has one.
func (o *Orchestrator) selectForExport(opts export.Options) ([]Objective, error) {
	fresh := func(obj *Objective) bool {
		return o.store.IsFresh(artifact.QuestionsName(obj.ID), o.session.questionsFingerprint(obj))
	}

	if len(opts.ObjectiveIDs) > 0 {
		out := make([]Objective, 0, len(opts.ObjectiveIDs))
		for _, id := range opts.ObjectiveIDs {
			obj, ok := o.session.objective(id)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrObjectiveNotFound, id)
			}
			if !fresh(obj) {
				return nil, fmt.Errorf("objective %s has no fresh question set; generate questions first", id)
			}
			out = append(out, *obj)
		}
		return out, nil
	}

	out := make([]Objective, 0, len(o.session.Objectives))
	for i := range o.session.Objectives {
		if fresh(&o.session.Objectives[i]) {
			out = append(out, o.session.Objectives[i])
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no objective has a fresh question set; generate questions first")
	}
	return out, nil
}

// Objectives returns a copy of the registered objectives.
func (o *Orchestrator) Objectives() []Objective {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Objective(nil), o.session.Objectives...)
}

// Module returns the current module stage input.
func (o *Orchestrator) Module() ModuleContent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.Module
}

// Artifacts returns the store listing, for status output and the gateway.
func (o *Orchestrator) Artifacts() []artifact.Entry {
	return o.store.List()
}

// Artifact returns one stored entry by name.
func (o *Orchestrator) Artifact(name string) (artifact.Entry, bool) {
	return o.store.Get(name)
}

// SetEventSink registers the store's transition observer (gateway feed).
func (o *Orchestrator) SetEventSink(sink artifact.EventSink) {
	o.store.SetEventSink(sink)
}

// SessionState returns a snapshot-ready copy of the stage inputs and every
// artifact entry, taken atomically.
func (o *Orchestrator) SessionState() (Session, []artifact.Entry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.clone(), o.store.List()
}

// Restore replaces the whole session and store from a loaded snapshot.
// Fingerprints come back verbatim, never recomputed, so freshness checks
// behave exactly as in the session that produced the snapshot.
func (o *Orchestrator) Restore(sess Session, entries []artifact.Entry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.session = sess.clone()
	o.store.Restore(entries)
}

// ObjectiveStatus reports one objective's artifact states. Current means
// the stored fingerprint matches the present input; with the eager cascade
// it only diverges from the state marker after a snapshot from another
// configuration is loaded.
type ObjectiveStatus struct {
	Objective        Objective      `json:"objective"`
	Alignment        artifact.State `json:"alignment"`
	AlignmentCurrent bool           `json:"alignment_current"`
	Questions        artifact.State `json:"questions"`
	QuestionsCurrent bool           `json:"questions_current"`
	Edited           bool           `json:"edited"`
}

// ModuleSummary is the module input without its full text.
type ModuleSummary struct {
	Set         bool     `json:"set"`
	Tokens      int      `json:"tokens"`
	Files       []string `json:"files,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`
}

// Status is the session-wide state view for the CLI and the gateway.
type Status struct {
	Module     ModuleSummary     `json:"module"`
	Objectives []ObjectiveStatus `json:"objectives"`
	Export     artifact.State    `json:"export"`
}

// Status reports the current freshness of every stage.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := Status{
		Module: ModuleSummary{
			Set:    o.session.Module.IsSet(),
			Tokens: o.session.Module.Tokens,
			Files:  append([]string(nil), o.session.Module.Files...),
		},
		Export: o.store.StateOf(artifact.ExportName),
	}
	if st.Module.Set {
		st.Module.Fingerprint = o.session.Module.Fingerprint.Short()
	}
	for i := range o.session.Objectives {
		obj := &o.session.Objectives[i]
		st.Objectives = append(st.Objectives, ObjectiveStatus{
			Objective:        *obj,
			Alignment:        o.store.StateOf(artifact.AlignmentName(obj.ID)),
			AlignmentCurrent: o.store.IsFresh(artifact.AlignmentName(obj.ID), o.session.alignmentFingerprint(obj)),
			Questions:        o.store.StateOf(artifact.QuestionsName(obj.ID)),
			QuestionsCurrent: o.store.IsFresh(artifact.QuestionsName(obj.ID), o.session.questionsFingerprint(obj)),
			Edited:           o.session.EditedQuestions[obj.ID],
		})
	}
	return st
}
