package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/compass/internal/cache"
	"github.com/ppiankov/compass/internal/uml"
)

// ErrInvalidSubmission is returned for submission files that do not
// describe a valid diagram
var ErrInvalidSubmission = errors.New("invalid submission")

// SubmissionFile is the on-disk form of one submission. Elements are
// already typed; parents and relationship ends refer to element ids.
type SubmissionFile struct {
	Submission int64         `yaml:"submission"`
	Exercise   int64         `yaml:"exercise"`
	Type       string        `yaml:"type"`
	Elements   []ElementSpec `yaml:"elements"`
}

// ElementSpec describes one element. Which fields apply depends on Kind.
type ElementSpec struct {
	ID     string `yaml:"id"`
	Kind   string `yaml:"kind"`
	Name   string `yaml:"name,omitempty"`
	Parent string `yaml:"parent,omitempty"`

	// class, attribute, method
	ClassType  string   `yaml:"classType,omitempty"`
	Type       string   `yaml:"type,omitempty"`
	ReturnType string   `yaml:"returnType,omitempty"`
	Parameters []string `yaml:"parameters,omitempty"`

	// relationship, control flow
	RelationType       string `yaml:"relationType,omitempty"`
	Source             string `yaml:"source,omitempty"`
	Target             string `yaml:"target,omitempty"`
	SourceMultiplicity string `yaml:"sourceMultiplicity,omitempty"`
	TargetMultiplicity string `yaml:"targetMultiplicity,omitempty"`
	SourceRole         string `yaml:"sourceRole,omitempty"`
	TargetRole         string `yaml:"targetRole,omitempty"`
	Guard              string `yaml:"guard,omitempty"`

	// activity node
	NodeType string `yaml:"nodeType,omitempty"`

	// drop location
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
}

// Submission is a loaded diagram with its provenance
type Submission struct {
	Diagram    uml.Diagram
	ExerciseID int64
	Digest     string // content hash of the source file
	Source     string
}

// Loader turns submission files into diagrams
type Loader struct{}

// NewLoader creates a loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadPaths loads every submission file named by paths. Directories are
// walked recursively for *.yaml, *.yml and *.json files. Submission ids
// must be unique.
func (l *Loader) LoadPaths(paths []string) ([]*Submission, error) {
	files, err := ExpandPaths(paths)
	if err != nil {
		return nil, err
	}

	submissions := make([]*Submission, 0, len(files))
	seen := make(map[int64]string, len(files))
	for _, file := range files {
		sub, err := l.LoadFile(file)
		if err != nil {
			return nil, err
		}
		id := sub.Diagram.SubmissionID()
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: submission %d in both %s and %s", ErrInvalidSubmission, id, prev, file)
		}
		seen[id] = file
		submissions = append(submissions, sub)
	}
	return submissions, nil
}

// LoadFile loads a single submission file
func (l *Loader) LoadFile(path string) (*Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read submission: %w", err)
	}
	return l.Parse(data, path)
}

// Parse decodes a submission document. YAML and JSON are both accepted.
func (l *Loader) Parse(data []byte, source string) (*Submission, error) {
	var file SubmissionFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w: empty document", source, ErrInvalidSubmission)
		}
		return nil, fmt.Errorf("%s: decode: %w", source, err)
	}

	d, err := BuildDiagram(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	return &Submission{
		Diagram:    d,
		ExerciseID: file.Exercise,
		Digest:     cache.Digest(data),
		Source:     source,
	}, nil
}

// BuildDiagram materializes the diagram described by file
func BuildDiagram(file SubmissionFile) (uml.Diagram, error) {
	var (
		d   uml.Diagram
		err error
	)
	switch uml.DiagramKind(strings.ToLower(file.Type)) {
	case uml.DiagramClass:
		d, err = buildClassDiagram(file)
	case uml.DiagramActivity:
		d, err = buildActivityDiagram(file)
	case uml.DiagramDragAndDrop:
		d, err = buildDragAndDropDiagram(file)
	default:
		return nil, fmt.Errorf("%w: unknown diagram type %q", ErrInvalidSubmission, file.Type)
	}
	if err != nil {
		if errors.Is(err, ErrInvalidSubmission) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}
	return d, nil
}

func buildClassDiagram(file SubmissionFile) (uml.Diagram, error) {
	var (
		classes       []*uml.Class
		relationships []*uml.Relationship
		packages      []*uml.Package
	)
	byID := make(map[string]*uml.Class)

	for _, spec := range file.Elements {
		switch uml.ElementKind(spec.Kind) {
		case uml.KindClass:
			c := uml.NewClass(spec.ID, spec.Name, classType(spec.ClassType))
			classes = append(classes, c)
			byID[spec.ID] = c
		case uml.KindPackage:
			packages = append(packages, uml.NewPackage(spec.ID, spec.Name))
		}
	}

	for _, spec := range file.Elements {
		switch uml.ElementKind(spec.Kind) {
		case uml.KindClass, uml.KindPackage:
		case uml.KindAttribute, uml.KindMethod:
			parent, ok := byID[spec.Parent]
			if !ok {
				return nil, fmt.Errorf("%w: %s %q has unknown parent class %q", ErrInvalidSubmission, spec.Kind, spec.ID, spec.Parent)
			}
			if spec.Kind == string(uml.KindAttribute) {
				parent.AddAttribute(spec.ID, spec.Name, spec.Type)
			} else {
				parent.AddMethod(spec.ID, spec.Name, spec.ReturnType, spec.Parameters)
			}
		case uml.KindRelationship:
			relationships = append(relationships, uml.NewRelationship(spec.ID,
				uml.RelationshipType(spec.RelationType),
				uml.End{ElementID: spec.Source, Multiplicity: spec.SourceMultiplicity, Role: spec.SourceRole},
				uml.End{ElementID: spec.Target, Multiplicity: spec.TargetMultiplicity, Role: spec.TargetRole},
			))
		default:
			return nil, unexpectedKind(file.Type, spec)
		}
	}

	d, err := uml.NewClassDiagram(file.Submission, classes, relationships, packages)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func buildActivityDiagram(file SubmissionFile) (uml.Diagram, error) {
	var (
		activities []*uml.Activity
		nodes      []*uml.ActivityNode
		flows      []*uml.ControlFlow
	)

	for _, spec := range file.Elements {
		switch uml.ElementKind(spec.Kind) {
		case uml.KindActivity:
			activities = append(activities, uml.NewActivity(spec.ID, spec.Name))
		case uml.KindActivityNode:
			nodes = append(nodes, uml.NewActivityNode(spec.ID, spec.Name, uml.ActivityNodeType(spec.NodeType), spec.Parent))
		case uml.KindControlFlow:
			flows = append(flows, uml.NewControlFlow(spec.ID, spec.Source, spec.Target, spec.Guard))
		default:
			return nil, unexpectedKind(file.Type, spec)
		}
	}

	d, err := uml.NewActivityDiagram(file.Submission, activities, nodes, flows)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func buildDragAndDropDiagram(file SubmissionFile) (uml.Diagram, error) {
	var locations []*uml.DropLocation
	for _, spec := range file.Elements {
		if uml.ElementKind(spec.Kind) != uml.KindDropLocation {
			return nil, unexpectedKind(file.Type, spec)
		}
		locations = append(locations, uml.NewDropLocation(spec.ID, spec.X, spec.Y, spec.Width, spec.Height))
	}
	d, err := uml.NewDragAndDropDiagram(file.Submission, locations)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func classType(s string) uml.ClassType {
	if s == "" {
		return uml.ClassTypeClass
	}
	return uml.ClassType(s)
}

func unexpectedKind(diagramType string, spec ElementSpec) error {
	return fmt.Errorf("%w: element %q of kind %q in %s diagram", ErrInvalidSubmission, spec.ID, spec.Kind, diagramType)
}

// ExpandPaths resolves files and directories into a sorted list of
// submission files
func ExpandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isSubmissionFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

func isSubmissionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
