/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/suparena/tablestore/registry"
)

// extensionKey is the OpenAPI vendor extension selecting a schema for
// registration code generation.
const extensionKey = "x-tablestore-keys"

// KeySpec mirrors the x-tablestore-keys vendor extension on a schema.
type KeySpec struct {
	EntityType            string `yaml:"entityType"`
	PartitionKeyAttribute string `yaml:"partitionKeyAttribute"`
	RowKeyAttribute       string `yaml:"rowKeyAttribute"`
	PartitionKeyPattern   string `yaml:"partitionKeyPattern"`
	RowKeyPattern         string `yaml:"rowKeyPattern"`
}

// Model is one schema selected for generation.
type Model struct {
	Name string
	Keys KeySpec
}

type openAPIDoc struct {
	Components struct {
		Schemas map[string]yaml.Node `yaml:"schemas"`
	} `yaml:"components"`
}

// ParseSpec reads an OpenAPI document and returns the schemas annotated with
// x-tablestore-keys, sorted by name so generation is deterministic. Missing
// attribute names and entity types fall back to the registry defaults.
func ParseSpec(path string) ([]Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec: %w", err)
	}

	var doc openAPIDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var models []Model
	for name, node := range doc.Components.Schemas {
		var ext struct {
			Keys *KeySpec `yaml:"x-tablestore-keys"`
		}
		if err := node.Decode(&ext); err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}
		if ext.Keys == nil {
			continue
		}

		keys := *ext.Keys
		if keys.PartitionKeyAttribute == "" {
			keys.PartitionKeyAttribute = registry.DefaultPartitionKeyAttribute
		}
		if keys.RowKeyAttribute == "" {
			keys.RowKeyAttribute = registry.DefaultRowKeyAttribute
		}
		if keys.EntityType == "" {
			keys.EntityType = name
		}
		models = append(models, Model{Name: name, Keys: keys})
	}

	if len(models) == 0 {
		return nil, fmt.Errorf("no schemas with %s found in %s", extensionKey, path)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

var genTemplate = template.Must(template.New("keymaps").Parse(`// Code generated by keymapgen from {{.Source}}. DO NOT EDIT.

package {{.Package}}

import (
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/tablestore/registry"
)

func init() {
{{- range .Models}}
	registry.RegisterKeyMap[{{.Name}}](registry.KeyMap{
		PartitionKeyAttribute: {{printf "%q" .Keys.PartitionKeyAttribute}},
		RowKeyAttribute: {{printf "%q" .Keys.RowKeyAttribute}},
		EntityType: {{printf "%q" .Keys.EntityType}},
{{- if .Keys.PartitionKeyPattern}}
		PartitionKeyPattern: {{printf "%q" .Keys.PartitionKeyPattern}},
{{- end}}
{{- if .Keys.RowKeyPattern}}
		RowKeyPattern: {{printf "%q" .Keys.RowKeyPattern}},
{{- end}}
	})
	registry.RegisterType({{printf "%q" .Keys.EntityType}}, func(item map[string]types.AttributeValue) (interface{}, error) {
		var entity {{.Name}}
		if err := attributevalue.UnmarshalMap(item, &entity); err != nil {
			return nil, err
		}
		return &entity, nil
	})
{{- end}}
}
`))

type fileData struct {
	Source  string
	Package string
	Models  []Model
}

// Generate renders registration code for the models and returns it
// gofmt-formatted.
func Generate(pkg, source string, models []Model) ([]byte, error) {
	var buf bytes.Buffer
	err := genTemplate.Execute(&buf, fileData{
		Source:  source,
		Package: pkg,
		Models:  models,
	})
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	return formatted, nil
}

// Run generates registration code from the spec at input and writes it to
// output. An empty output defaults to keymaps_gen.go next to the input; an
// empty pkg defaults to the output directory's name.
func Run(input, output, pkg string) error {
	models, err := ParseSpec(input)
	if err != nil {
		return err
	}

	if output == "" {
		output = filepath.Join(filepath.Dir(input), "keymaps_gen.go")
	}
	if pkg == "" {
		abs, err := filepath.Abs(output)
		if err != nil {
			return fmt.Errorf("resolve output path: %w", err)
		}
		pkg = filepath.Base(filepath.Dir(abs))
	}

	code, err := Generate(pkg, filepath.Base(input), models)
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, code, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	return nil
}

var (
	inputFlag   = flag.String("input", "", "OpenAPI spec with x-tablestore-keys annotations")
	outputFlag  = flag.String("output", "", "output file (defaults to keymaps_gen.go next to the input)")
	packageFlag = flag.String("package", "", "package name for the generated file (defaults to the output directory name)")
)

// Main is the command-line entry point used by cmd/keymapgen.
func Main() {
	if !flag.Parsed() {
		flag.Parse()
	}

	if *inputFlag == "" {
		fmt.Fprintln(os.Stderr, "keymapgen: -input is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := Run(*inputFlag, *outputFlag, *packageFlag); err != nil {
		fmt.Fprintf(os.Stderr, "keymapgen: %v\n", err)
		os.Exit(1)
	}
}
