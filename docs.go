package robovm

import (
	"encoding/json"
	"sort"

	"github.com/bxvs888/robovm/faults"
	"github.com/bxvs888/robovm/object"
)

// DocsOption configures documentation retrieval.
type DocsOption func(*docsOptions)

type docsOptions struct {
	category string
	topic    string
	quick    bool
	all      bool
}

// DocsCategory filters documentation to a specific category.
// Valid categories: "categories", "classes", "lifecycle", "errors"
func DocsCategory(cat string) DocsOption {
	return func(o *docsOptions) {
		o.category = cat
	}
}

// DocsTopic retrieves documentation for a specific topic.
// Examples: "null-deref", "java/lang/StackOverflowError", "Install"
func DocsTopic(topic string) DocsOption {
	return func(o *docsOptions) {
		o.topic = topic
	}
}

// DocsQuick returns a concise quick reference.
func DocsQuick() DocsOption {
	return func(o *docsOptions) {
		o.quick = true
	}
}

// DocsAll returns complete documentation (may be large).
func DocsAll() DocsOption {
	return func(o *docsOptions) {
		o.all = true
	}
}

// Documentation provides structured access to runtime documentation.
type Documentation struct {
	data any
}

// JSON returns the documentation as a JSON string.
func (d *Documentation) JSON() string {
	b, _ := json.MarshalIndent(d.data, "", "  ")
	return string(b)
}

// Data returns the raw documentation data.
func (d *Documentation) Data() any {
	return d.data
}

// Version is the current runtime version.
const Version = "0.2.0"

// docsRuntimeInfo provides basic runtime information.
type docsRuntimeInfo struct {
	Version     string `json:"version"`
	Description string `json:"description"`
	FaultPath   string `json:"fault_path"`
}

// docsCategoryInfo describes one fault category.
type docsCategoryInfo struct {
	Name      string `json:"name"`
	Raises    string `json:"raises,omitempty"`
	Condition string `json:"condition"`
	Outcome   string `json:"outcome"`
}

// docsClassInfo summarizes a bootstrap exception class.
type docsClassInfo struct {
	Name   string `json:"name"`
	Super  string `json:"super,omitempty"`
	Fields int    `json:"field_count"`
}

// docsLifecycleOp describes one control-plane operation.
type docsLifecycleOp struct {
	Name     string `json:"name"`
	Scope    string `json:"scope"`
	Contract string `json:"contract"`
}

// docsErrorInfo describes an error type the control plane returns.
type docsErrorInfo struct {
	Type           string   `json:"type"`
	MessagePattern string   `json:"message_pattern"`
	Causes         []string `json:"causes"`
}

// docsQuickReference is the quick reference structure.
type docsQuickReference struct {
	Runtime    docsRuntimeInfo    `json:"runtime"`
	Categories []docsCategoryInfo `json:"categories"`
	Topics     map[string]string  `json:"topics"`
	Next       []string           `json:"next"`
}

// docsFullDocumentation contains all documentation.
type docsFullDocumentation struct {
	Runtime    docsRuntimeInfo    `json:"runtime"`
	Categories []docsCategoryInfo `json:"categories"`
	Classes    []docsClassInfo    `json:"classes"`
	Lifecycle  []docsLifecycleOp  `json:"lifecycle"`
	Errors     []docsErrorInfo    `json:"errors"`
}

// Docs returns structured documentation about the fault-interception runtime.
// Useful for tooling and diagnostics.
//
// Example:
//
//	// Quick reference
//	docs := robovm.Docs(robovm.DocsQuick())
//	fmt.Println(docs.JSON())
//
//	// Specific category
//	docs := robovm.Docs(robovm.DocsCategory("lifecycle"))
func Docs(opts ...DocsOption) *Documentation {
	o := &docsOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.quick {
		return &Documentation{data: buildQuickReference()}
	}

	if o.all {
		return &Documentation{data: buildFullDocumentation()}
	}

	if o.category != "" {
		return &Documentation{data: buildCategoryDocs(o.category)}
	}

	if o.topic != "" {
		return &Documentation{data: buildTopicDocs(o.topic)}
	}

	// Default: return quick reference
	return &Documentation{data: buildQuickReference()}
}

func docsInfo() docsRuntimeInfo {
	return docsRuntimeInfo{
		Version:     Version,
		Description: "Hardware fault to managed exception translation",
		FaultPath:   "fault -> signal -> classify -> allocate -> capture -> raise | terminate",
	}
}

func buildQuickReference() docsQuickReference {
	return docsQuickReference{
		Runtime:    docsInfo(),
		Categories: docsCategories,
		Topics: map[string]string{
			"categories": "Fault categories and what each raises",
			"classes":    "Bootstrap exception class hierarchy",
			"lifecycle":  "Control-plane operations (Init, Install, ...)",
			"errors":     "Control-plane error types",
		},
		Next: []string{
			"robovm.Docs(robovm.DocsCategory(\"lifecycle\"))",
			"robovm.Docs(robovm.DocsAll())",
		},
	}
}

func buildFullDocumentation() docsFullDocumentation {
	return docsFullDocumentation{
		Runtime:    docsInfo(),
		Categories: docsCategories,
		Classes:    docsBootstrapClasses(),
		Lifecycle:  docsLifecycleOps,
		Errors:     docsErrorTypes,
	}
}

func buildCategoryDocs(category string) any {
	switch category {
	case "categories":
		return map[string]any{
			"category":   "categories",
			"count":      len(docsCategories),
			"categories": docsCategories,
		}
	case "classes":
		classes := docsBootstrapClasses()
		return map[string]any{
			"category": "classes",
			"count":    len(classes),
			"classes":  classes,
		}
	case "lifecycle":
		return map[string]any{
			"category":   "lifecycle",
			"operations": docsLifecycleOps,
		}
	case "errors":
		return map[string]any{
			"category": "errors",
			"patterns": docsErrorTypes,
		}
	default:
		return map[string]any{
			"error": "unknown category: " + category,
		}
	}
}

func buildTopicDocs(topic string) any {
	for _, cat := range docsCategories {
		if cat.Name == topic {
			return map[string]any{"type": "category", "detail": cat}
		}
	}
	for _, cls := range docsBootstrapClasses() {
		if cls.Name == topic {
			return map[string]any{"type": "class", "detail": cls}
		}
	}
	for _, op := range docsLifecycleOps {
		if op.Name == topic {
			return map[string]any{"type": "operation", "detail": op}
		}
	}
	return map[string]any{
		"error": "unknown topic: " + topic,
	}
}

var docsCategories = []docsCategoryInfo{
	{
		Name:      faults.NullDeref.String(),
		Raises:    object.NullPointerExceptionClass,
		Condition: "faulting address is exactly 0, in managed code",
		Outcome:   "exception raised with captured call stack",
	},
	{
		Name:      faults.StackOverflow.String(),
		Raises:    object.StackOverflowErrorClass,
		Condition: "faulting address falls in the thread's stack guard region, in managed code",
		Outcome:   "exception raised with captured call stack",
	},
	{
		Name:      faults.Unrecognized.String(),
		Condition: "any other address, or any fault outside managed code",
		Outcome:   "default disposition restored, signal re-delivered, process terminates",
	},
}

func docsBootstrapClasses() []docsClassInfo {
	reg := object.Bootstrap()
	names := []string{
		object.ObjectClass,
		object.ThrowableClass,
		object.ErrorClass,
		object.ExceptionClass,
		object.RuntimeExceptionClass,
		object.NullPointerExceptionClass,
		object.VirtualMachineErrorClass,
		object.StackOverflowErrorClass,
		object.OutOfMemoryErrorClass,
	}
	sort.Strings(names)
	infos := make([]docsClassInfo, 0, len(names))
	for _, name := range names {
		cls := reg.MustLookup(name)
		info := docsClassInfo{Name: cls.Name(), Fields: cls.SlotCount()}
		if cls.Super() != nil {
			info.Super = cls.Super().Name()
		}
		infos = append(infos, info)
	}
	return infos
}

var docsLifecycleOps = []docsLifecycleOp{
	{
		Name:     "Init",
		Scope:    "process",
		Contract: "resolves dispatch metadata; must succeed once before any Install",
	},
	{
		Name:     "Install",
		Scope:    "thread",
		Contract: "installs fault handlers and captures the thread's signal mask; rolls back on failure",
	},
	{
		Name:     "DispatchFault",
		Scope:    "fault",
		Contract: "classifies, raises or terminates; runs on the faulting thread, takes no shared locks",
	},
	{
		Name:     "RestoreMask",
		Scope:    "thread",
		Contract: "unconditionally reapplies the mask captured at install time",
	},
	{
		Name:     "Teardown",
		Scope:    "thread",
		Contract: "lifecycle placeholder; process-wide dispositions stay in place",
	},
}

var docsErrorTypes = []docsErrorInfo{
	{
		Type:           "InitError",
		MessagePattern: "signals: init: ...",
		Causes: []string{
			"no system wired",
			"unsupported platform (no context reader)",
			"bootstrap class or reserved field missing",
			"second Init call",
		},
	},
	{
		Type:           "SetupError",
		MessagePattern: "signals: install signal N: ...",
		Causes: []string{
			"Install before Init",
			"OS rejected a handler registration",
			"signal mask query failed",
		},
	},
	{
		Type:           "UnsupportedArchError",
		MessagePattern: "signals: unsupported platform GOOS/GOARCH",
		Causes: []string{
			"no ucontext layout for this OS and architecture",
		},
	},
}
