package content

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	versionRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

// DocumentKind classifies a parsed content document.
type DocumentKind string

const (
	KindTemplate DocumentKind = "template"
	KindOverlay  DocumentKind = "overlay"
	KindUnknown  DocumentKind = "unknown"
)

// ValidationError is one schema or referential-integrity violation,
// attributed to the field path that caused it.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// DocumentReport is the validation outcome for one document.
type DocumentReport struct {
	File   string            `json:"file"`
	Index  int               `json:"index"` // position within a multi-document file
	ID     string            `json:"id,omitempty"`
	Kind   DocumentKind      `json:"kind"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Valid reports whether the document passed with zero errors.
func (d DocumentReport) Valid() bool { return len(d.Errors) == 0 }

// Report aggregates per-document outcomes for one validator run.
type Report struct {
	Documents []DocumentReport `json:"documents"`
}

// Valid reports whether every document in the run passed. The publishability
// contract is all-or-nothing: one invalid document fails the run.
func (r Report) Valid() bool {
	for _, d := range r.Documents {
		if !d.Valid() {
			return false
		}
	}
	return true
}

// ErrorCount returns the total number of errors across all documents.
func (r Report) ErrorCount() int {
	n := 0
	for _, d := range r.Documents {
		n += len(d.Errors)
	}
	return n
}

// Validator parses and validates a directory of authored content. It is
// stateless between runs: the same input always yields the same report.
type Validator struct {
	report    Report
	templates []*ScenarioTemplate
	overlays  []*RoleOverlay

	templateIndex map[string]*ScenarioTemplate
}

// NewValidator returns an empty validator.
func NewValidator() *Validator {
	return &Validator{templateIndex: make(map[string]*ScenarioTemplate)}
}

// Report returns the aggregated outcome of the last run.
func (v *Validator) Report() Report { return v.report }

// Templates returns the templates that validated cleanly in the last run.
func (v *Validator) Templates() []*ScenarioTemplate { return v.templates }

// Overlays returns the overlays that validated cleanly in the last run.
func (v *Validator) Overlays() []*RoleOverlay { return v.overlays }

type rawDocument struct {
	file  string
	index int
	node  *yaml.Node
	kind  DocumentKind
}

// ValidateDir parses every .yaml/.yml file under dir (one or more documents
// per file) and validates each document. It returns an error only for I/O or
// unreadable YAML streams; schema and cross-reference violations land in the
// report instead.
func (v *Validator) ValidateDir(dir string) (Report, error) {
	v.report = Report{}
	v.templates = nil
	v.overlays = nil
	v.templateIndex = make(map[string]*ScenarioTemplate)

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("failed to walk content directory %q: %w", dir, err)
	}
	sort.Strings(files)

	var docs []rawDocument
	for _, file := range files {
		parsed, err := parseFile(file)
		if err != nil {
			return Report{}, err
		}
		docs = append(docs, parsed...)
	}

	// Templates first: overlay cross-references resolve against the set of
	// structurally valid templates from the same run.
	for i := range docs {
		if docs[i].kind == KindTemplate {
			v.validateTemplateDoc(&docs[i])
		}
	}
	for i := range docs {
		if docs[i].kind != KindTemplate {
			v.validateOverlayDoc(&docs[i])
		}
	}

	return v.report, nil
}

func parseFile(path string) ([]rawDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	var docs []rawDocument
	dec := yaml.NewDecoder(f)
	for i := 0; ; i++ {
		var node yaml.Node
		err := dec.Decode(&node)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to parse %q: %w", path, err)
		}
		docs = append(docs, rawDocument{
			file:  filepath.Base(path),
			index: i,
			node:  &node,
			kind:  classify(&node),
		})
	}
	return docs, nil
}

// classify distinguishes overlays from templates by the presence of an
// overrides key at the document root.
func classify(node *yaml.Node) DocumentKind {
	root := node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return KindUnknown
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "overrides" {
			return KindOverlay
		}
	}
	return KindTemplate
}

// strictDecode re-decodes a document node with unknown fields rejected, so
// that typos in authored content surface as errors rather than silence.
func strictDecode(node *yaml.Node, out any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	return dec.Decode(out)
}

func (v *Validator) validateTemplateDoc(doc *rawDocument) {
	dr := DocumentReport{File: doc.file, Index: doc.index, Kind: KindTemplate}

	var t ScenarioTemplate
	if err := strictDecode(doc.node, &t); err != nil {
		dr.Errors = append(dr.Errors, ValidationError{Path: "document", Message: err.Error()})
		v.report.Documents = append(v.report.Documents, dr)
		return
	}
	dr.ID = t.ID

	c := &docChecker{errors: &dr.Errors}
	c.requireID("id", t.ID)
	c.requireVersion("version", t.Version)
	if t.Chapter < 0 {
		c.add("chapter", "must not be negative")
	}
	if t.Title == "" {
		c.add("title", "is required")
	}

	actionIDs := make(map[string]bool)
	if len(t.Actions) == 0 {
		c.add("actions", "must not be empty")
	}
	for i, a := range t.Actions {
		path := fmt.Sprintf("actions[%d]", i)
		c.requireID(path+".id", a.ID)
		if a.Label == "" {
			c.add(path+".label", "is required")
		}
		if actionIDs[a.ID] {
			c.add(path+".id", fmt.Sprintf("duplicate action id %q", a.ID))
		}
		actionIDs[a.ID] = true
		c.checkConditions(path+".conditions", a.Conditions)
	}
	c.checkConditions("entry_conditions", t.EntryConditions)

	variantKeys := make(map[string]bool)
	if len(t.FeedbackVariants) == 0 {
		c.add("feedback_variants", "must not be empty")
	}
	for i, fv := range t.FeedbackVariants {
		path := fmt.Sprintf("feedback_variants[%d]", i)
		if fv.Key == "" {
			c.add(path+".key", "is required")
		}
		if variantKeys[fv.Key] {
			c.add(path+".key", fmt.Sprintf("duplicate feedback key %q", fv.Key))
		}
		variantKeys[fv.Key] = true
		if fv.EmotionalState != "" && !fv.EmotionalState.IsValid() {
			c.add(path+".emotional_state", fmt.Sprintf("unknown emotional state %q", fv.EmotionalState))
		}
		if fv.Text == "" {
			c.add(path+".text", "is required")
		}
	}

	if len(t.ConsequenceRules) == 0 {
		c.add("consequence_rules", "must not be empty")
	}
	ruledActions := make(map[string]bool)
	for i, r := range t.ConsequenceRules {
		path := fmt.Sprintf("consequence_rules[%d]", i)
		c.checkRule(path, r, variantKeys)
		// Referential integrity: a structurally valid rule may still dangle.
		if r.ActionID != "" && !actionIDs[r.ActionID] {
			c.add(path+".action_id", fmt.Sprintf("references undeclared action %q", r.ActionID))
		}
		if ruledActions[r.ActionID] {
			c.add(path+".action_id", fmt.Sprintf("duplicate rule for action %q", r.ActionID))
		}
		ruledActions[r.ActionID] = true
	}
	for id := range actionIDs {
		if !ruledActions[id] {
			c.add("consequence_rules", fmt.Sprintf("action %q has no consequence rule", id))
		}
	}

	if t.TimeConstraint != nil && t.TimeConstraint.LimitTurns < 0 {
		c.add("time_constraint.limit_turns", "must not be negative")
	}

	v.report.Documents = append(v.report.Documents, dr)
	if len(dr.Errors) == 0 {
		if _, dup := v.templateIndex[t.ID]; dup {
			last := &v.report.Documents[len(v.report.Documents)-1]
			last.Errors = append(last.Errors, ValidationError{
				Path:    "id",
				Message: fmt.Sprintf("duplicate scenario id %q", t.ID),
			})
			return
		}
		tc := t
		v.templates = append(v.templates, &tc)
		v.templateIndex[t.ID] = &tc
	}
}

func (v *Validator) validateOverlayDoc(doc *rawDocument) {
	dr := DocumentReport{File: doc.file, Index: doc.index, Kind: KindOverlay}

	var o RoleOverlay
	if err := strictDecode(doc.node, &o); err != nil {
		dr.Errors = append(dr.Errors, ValidationError{Path: "document", Message: err.Error()})
		v.report.Documents = append(v.report.Documents, dr)
		return
	}
	dr.ID = o.ScenarioID

	c := &docChecker{errors: &dr.Errors}
	c.requireID("scenario_id", o.ScenarioID)
	c.requireVersion("version", o.Version)
	if !o.Role.IsValid() {
		c.add("role", fmt.Sprintf("unknown role %q", o.Role))
	}

	base, baseKnown := v.templateIndex[o.ScenarioID]
	if o.ScenarioID != "" && !baseKnown {
		c.add("scenario_id", fmt.Sprintf("references unknown scenario %q", o.ScenarioID))
	}

	// The merged action set: base actions plus overlay additions. Overlay
	// rules must bind into this union or the 1:1 invariant breaks post-merge.
	mergedActions := make(map[string]bool)
	variantKeys := make(map[string]bool)
	if baseKnown {
		for _, a := range base.Actions {
			mergedActions[a.ID] = true
		}
		for _, fv := range base.FeedbackVariants {
			variantKeys[fv.Key] = true
		}
	}
	for i, a := range o.Overrides.Actions {
		path := fmt.Sprintf("overrides.actions[%d]", i)
		c.requireID(path+".id", a.ID)
		if a.Label == "" {
			c.add(path+".label", "is required")
		}
		c.checkConditions(path+".conditions", a.Conditions)
		mergedActions[a.ID] = true
	}
	for i, r := range o.Overrides.ConsequenceRules {
		path := fmt.Sprintf("overrides.consequence_rules[%d]", i)
		c.checkRule(path, r, variantKeys)
		if baseKnown && r.ActionID != "" && !mergedActions[r.ActionID] {
			c.add(path+".action_id", fmt.Sprintf("references action %q absent from base and overlay", r.ActionID))
		}
	}
	for token := range o.Overrides.NarrativeSubstitutions {
		if !validIDRegex.MatchString(token) {
			c.add("overrides.narrative_substitutions", fmt.Sprintf("token %q should be lowercase snake_case", token))
		}
	}

	v.report.Documents = append(v.report.Documents, dr)
	if len(dr.Errors) == 0 {
		oc := o
		v.overlays = append(v.overlays, &oc)
	}
}

// docChecker accumulates errors for a single document.
type docChecker struct {
	errors *[]ValidationError
}

func (c *docChecker) add(path, msg string) {
	*c.errors = append(*c.errors, ValidationError{Path: path, Message: msg})
}

func (c *docChecker) requireID(path, id string) {
	if id == "" {
		c.add(path, "is required")
		return
	}
	if !validIDRegex.MatchString(id) {
		c.add(path, fmt.Sprintf("%q should be lowercase snake_case", id))
	}
}

func (c *docChecker) requireVersion(path, version string) {
	if version == "" {
		c.add(path, "is required")
		return
	}
	if !versionRegex.MatchString(version) {
		c.add(path, fmt.Sprintf("%q must match MAJOR.MINOR.PATCH", version))
	}
}

func (c *docChecker) checkConditions(path string, conds []Condition) {
	for i, cond := range conds {
		p := fmt.Sprintf("%s[%d]", path, i)
		if cond.Variable == "" {
			c.add(p+".variable", "is required")
		}
		if !cond.Operator.IsValid() {
			c.add(p+".operator", fmt.Sprintf("unknown operator %q", cond.Operator))
			continue
		}
		if cond.Operator == OpInRange {
			if !cond.Threshold.IsRange {
				c.add(p+".threshold", "in_range requires a [min, max] pair")
			} else if cond.Threshold.Min > cond.Threshold.Max {
				c.add(p+".threshold", "range min must not exceed max")
			}
		} else if cond.Threshold.IsRange {
			c.add(p+".threshold", fmt.Sprintf("operator %q requires a single number", cond.Operator))
		}
	}
}

func (c *docChecker) checkRule(path string, r ConsequenceRule, variantKeys map[string]bool) {
	c.requireID(path+".action_id", r.ActionID)
	if r.ImmediateFeedback == "" {
		c.add(path+".immediate_feedback", "is required")
	} else if len(variantKeys) > 0 && !variantKeys[r.ImmediateFeedback] {
		c.add(path+".immediate_feedback", fmt.Sprintf("references unknown feedback variant %q", r.ImmediateFeedback))
	}

	for i, sd := range r.StateDeltas {
		if sd.Variable == "" {
			c.add(fmt.Sprintf("%s.state_deltas[%d].variable", path, i), "is required")
		}
	}

	if es := r.EmotionalShift; es != nil {
		if !es.To.IsValid() {
			c.add(path+".emotional_shift.to", fmt.Sprintf("unknown emotional state %q", es.To))
		}
		for i, cur := range es.IfCurrentIn {
			if !cur.IsValid() {
				c.add(fmt.Sprintf("%s.emotional_shift.if_current_in[%d]", path, i), fmt.Sprintf("unknown emotional state %q", cur))
			}
		}
	}

	for i, ev := range r.Events {
		p := fmt.Sprintf("%s.events[%d]", path, i)
		if !ev.Type.IsValid() {
			c.add(p+".type", fmt.Sprintf("unknown event type %q", ev.Type))
		}
		if ev.Delay < 0 {
			c.add(p+".delay", "must not be negative")
		}
	}

	for i, ni := range r.NPCInteractions {
		p := fmt.Sprintf("%s.npc_interactions[%d]", path, i)
		if ni.NPCID == "" {
			c.add(p+".npc_id", "is required")
		}
		if ni.SetAttitude != "" && !ni.SetAttitude.IsValid() {
			c.add(p+".set_attitude", fmt.Sprintf("unknown attitude %q", ni.SetAttitude))
		}
	}
}
