package config

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Load reads a sync configuration file. The format follows the extension:
// .json, .yaml/.yml or .hcl. Any other extension is tried as JSON, then YAML.
// HCL files can reference the environment as env.NAME.
// Every failure is a *LoadError matching ErrConfigLoad.
func Load(fsys afero.Fs, path string, env Environment) (*File, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var cfg *File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		cfg, err = loadJSON(data)
	case ".yaml", ".yml":
		cfg, err = loadYAML(data)
	case ".hcl":
		cfg, err = loadHCL(data, path, env)
	default:
		cfg, err = loadJSON(data)
		if err != nil {
			cfg, err = loadYAML(data)
		}
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	return cfg, nil
}

// loadJSON loads a configuration from JSON data
func loadJSON(data []byte) (*File, error) {
	var cfg File
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return &cfg, nil
}

// loadYAML loads a configuration from YAML data
func loadYAML(data []byte) (*File, error) {
	var cfg File
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

// loadHCL loads a configuration from HCL data
func loadHCL(data []byte, filename string, env Environment) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	vars := make(map[string]cty.Value, len(env))
	for k, v := range env {
		vars[k] = cty.StringVal(v)
	}
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}

	var cfg File
	if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg); diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}
	return &cfg, nil
}

// Save writes cfg to path in the format implied by its extension,
// creating parent directories as needed.
func Save(fsys afero.Fs, cfg *File, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	case ".hcl":
		f := hclwrite.NewEmptyFile()
		gohcl.EncodeIntoBody(cfg, f.Body())
		data = f.Bytes()
	default:
		data, err = json.MarshalIndent(cfg, "", "    ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.Errorf("failed to marshal config: %w", err)
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Errorf("failed to create directory: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0644); err != nil {
		return errors.Errorf("failed to write config file: %w", err)
	}
	return nil
}
