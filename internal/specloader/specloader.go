// Package specloader is the Spec Loader boundary (spec.md §6): it decodes a
// JSON or YAML workflow-spec document into the DAG Model, doing nothing
// else — no file I/O, no remote fetch, no registration or execution
// side-effects. Callers own how the bytes got here.
package specloader

import (
	"encoding/json"
	"strconv"

	"github.com/go-playground/validator/v10"
	goyaml "github.com/goccy/go-yaml"

	"github.com/EpicWink/seddy/internal/dag"
	"github.com/EpicWink/seddy/internal/errs"
)

// Format selects the document's on-the-wire encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// supportedMajorVersion is the only "version" major component this loader
// accepts (spec.md §6: "major 1, rejected otherwise").
const supportedMajorVersion = "1"

var validate = validator.New()

// document is the top-level wire shape: {"version": "1.x", "workflows": [...]}.
type document struct {
	Version   string        `json:"version" validate:"required"`
	Workflows []workflowDoc `json:"workflows" validate:"required,dive"`
}

type workflowDoc struct {
	SpecType     string          `json:"spec_type" validate:"required,oneof=dag"`
	Name         string          `json:"name" validate:"required"`
	Version      string          `json:"version" validate:"required"`
	Description  string          `json:"description"`
	Registration json.RawMessage `json:"registration,omitempty"` // consumed by Registrar, not here
	Tasks        []taskDoc       `json:"tasks" validate:"dive"`
}

type activityTypeDoc struct {
	Name    string `json:"name" validate:"required"`
	Version string `json:"version" validate:"required"`
}

type taskDoc struct {
	ID           string          `json:"id" validate:"required"`
	Type         activityTypeDoc `json:"type" validate:"required"`
	Input        json.RawMessage `json:"input,omitempty"`
	Heartbeat    json.RawMessage `json:"heartbeat,omitempty"`
	Timeout      json.RawMessage `json:"timeout,omitempty"`
	TaskList     string          `json:"task_list,omitempty"`
	Priority     *int            `json:"priority,omitempty"`
	Dependencies []string        `json:"dependencies,omitempty"`
	SkipIf       json.RawMessage `json:"skip_if,omitempty"`
}

// Load decodes a workflow-spec document and returns every DAG-type
// Workflow it contains, built and validated (dag.Build: unique ids, valid
// id characters, acyclic dependency graph).
func Load(data []byte, format Format) ([]*dag.Workflow, error) {
	jsonData := data
	if format == FormatYAML {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		jsonData = converted
	}

	var doc document
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, errs.Wrap(errs.KindInvalidSpec, err, "decoding spec document")
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, errs.Wrap(errs.KindInvalidSpec, err, "validating spec document")
	}
	if err := checkMajorVersion(doc.Version); err != nil {
		return nil, err
	}

	workflows := make([]*dag.Workflow, 0, len(doc.Workflows))
	for _, wd := range doc.Workflows {
		w, err := buildWorkflow(wd)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, w)
	}
	return workflows, nil
}

// yamlToJSON decodes YAML to an untyped tree and re-marshals it through
// encoding/json, so both formats share the single JSON-tag-driven decode
// path below — the same trick the teacher's config loaders use to accept
// both YAML and struct-tagged JSON shapes for one document.
func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := goyaml.Unmarshal(data, &v); err != nil {
		return nil, errs.Wrap(errs.KindInvalidSpec, err, "decoding YAML spec document")
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalidSpec, err, "re-encoding YAML spec document")
	}
	return out, nil
}

func checkMajorVersion(version string) error {
	major := version
	for i, r := range version {
		if r == '.' {
			major = version[:i]
			break
		}
	}
	if major != supportedMajorVersion {
		return errs.New(errs.KindInvalidSpec, "unsupported spec version %q (need major version %s)", version, supportedMajorVersion)
	}
	return nil
}

func buildWorkflow(wd workflowDoc) (*dag.Workflow, error) {
	tasks := make([]dag.Task, 0, len(wd.Tasks))
	for _, td := range wd.Tasks {
		task, err := buildTask(td)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	w, err := dag.Build(wd.Name, wd.Version, wd.Description, tasks)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func buildTask(td taskDoc) (dag.Task, error) {
	task := dag.Task{
		ID: td.ID,
		ActivityType: dag.ActivityType{
			Name:    td.Type.Name,
			Version: td.Type.Version,
		},
		TaskList:     td.TaskList,
		Dependencies: td.Dependencies,
	}

	input, err := dag.DecodeTaskInput(td.Input)
	if err != nil {
		return dag.Task{}, err
	}
	task.Input = input

	heartbeat, err := decodeTimeout(td.Heartbeat)
	if err != nil {
		return dag.Task{}, errs.Wrap(errs.KindInvalidSpec, err, "decoding task %q heartbeat", td.ID)
	}
	task.Heartbeat = heartbeat

	timeout, err := decodeTimeout(td.Timeout)
	if err != nil {
		return dag.Task{}, errs.Wrap(errs.KindInvalidSpec, err, "decoding task %q timeout", td.ID)
	}
	task.Timeout = timeout

	if td.Priority != nil {
		task.Priority = strconv.Itoa(*td.Priority)
	}

	if len(td.SkipIf) > 0 {
		cond, err := dag.DecodeCondition(td.SkipIf)
		if err != nil {
			return dag.Task{}, err
		}
		task.SkipIf = cond
	}

	return task, nil
}

// decodeTimeout decodes a §6 "INT|\"NONE\"" field, absent meaning
// dag.NoTimeout().
func decodeTimeout(data json.RawMessage) (dag.Timeout, error) {
	if len(data) == 0 {
		return dag.NoTimeout(), nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "NONE" {
			return dag.Timeout{}, errs.New(errs.KindInvalidSpec, "timeout string value must be %q, got %q", "NONE", s)
		}
		return dag.NewTimeoutNone(), nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return dag.Timeout{}, errs.Wrap(errs.KindInvalidSpec, err, "timeout must be an integer or \"NONE\"")
	}
	return dag.NewTimeoutSeconds(n), nil
}

