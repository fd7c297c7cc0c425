// Package config provides YAML configuration parsing for the waitfor CLI.
//
// This package enables running waitfor as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	interval: 500ms
//	max_trials: 40
//
//	conditions:
//	  - name: api ready
//	    check: http://localhost:8080/healthz
//
//	  - name: deploy marker
//	    check: file:/tmp/ready
//
//	  - name: app rendered
//	    check:
//	      type: node
//	      source: http://localhost:3000/
//	      selector: "#app .ready"
//	    interval: 1s
//	    max_trials: 20
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// minInterval is the minimum allowed trial interval for configs.
// This prevents accidental busy-polling of the checked target.
const minInterval = 10 * time.Millisecond

// maxTrialsCap bounds max_trials so a typo cannot configure an effectively
// endless run.
const maxTrialsCap = 100000

// Config is the root configuration structure for waitfor.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Interval is the default time between trials for all conditions.
	// Accepts duration strings like "250ms", "1s". Defaults to 250ms.
	Interval Duration `yaml:"interval"`

	// MaxTrials is the default trial budget for all conditions.
	// Defaults to 50.
	MaxTrials int `yaml:"max_trials"`

	// Conditions defines the conditions to wait for.
	Conditions []ConditionConfig `yaml:"conditions"`
}

// ConditionConfig defines a single condition to wait for.
type ConditionConfig struct {
	// Name is the display name used in logs and CLI output.
	Name string `yaml:"name"`

	// Check describes what to check. Can be shorthand
	// ("http://host/path", "file:/some/path") or structured.
	Check CheckConfig `yaml:"check"`

	// Interval overrides the global interval for this condition.
	Interval Duration `yaml:"interval"`

	// MaxTrials overrides the global trial budget for this condition.
	MaxTrials int `yaml:"max_trials"`

	// Timeout bounds each http probe or node fetch. Defaults to 10s.
	Timeout Duration `yaml:"timeout"`

	// Headers are custom HTTP headers for http checks.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`
}

// CheckConfig specifies what a condition checks.
//
// It supports two formats in YAML:
//
// Shorthand string:
//
//	check: http://localhost:8080/healthz
//	check: file:/tmp/ready
//
// Structured object:
//
//	check:
//	  type: http
//	  url: http://localhost:8080/healthz
//	  status: 204
//
//	check:
//	  type: node
//	  source: http://localhost:3000/
//	  selector: "#app .ready"
type CheckConfig struct {
	// Type is the check type: "http", "file", or "node".
	Type string

	// URL is the probed URL (for type: http).
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string

	// Status is the expected HTTP status code (for type: http).
	// Zero accepts any 2xx response.
	Status int

	// Method is the HTTP method (for type: http). Defaults to GET.
	Method string

	// Path is the filesystem path that must exist (for type: file).
	Path string

	// Source is where the document is read from (for type: node):
	// an http(s) URL or a filesystem path.
	Source string

	// Selector is the CSS selector to count (for type: node).
	Selector string
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler for CheckConfig.
func (c *CheckConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		return c.parseShorthand(s)
	}

	if node.Kind == yaml.MappingNode {
		// temporary struct to avoid infinite recursion
		var raw struct {
			Type     string `yaml:"type"`
			URL      string `yaml:"url"`
			Status   int    `yaml:"status"`
			Method   string `yaml:"method"`
			Path     string `yaml:"path"`
			Source   string `yaml:"source"`
			Selector string `yaml:"selector"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		c.Type = raw.Type
		c.URL = raw.URL
		c.Status = raw.Status
		c.Method = raw.Method
		c.Path = raw.Path
		c.Source = raw.Source
		c.Selector = raw.Selector
		return nil
	}

	return fmt.Errorf("check must be a string or object, got %v", node.Kind)
}

// parseShorthand parses check shorthand syntax.
//
// Supported formats:
//   - "http://..." or "https://..." → http check against that URL
//   - "file:PATH" → file-exists check
//
// Node checks have no shorthand; the selector requires the structured form.
func (c *CheckConfig) parseShorthand(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		c.Type = "http"
		c.URL = s
		return nil
	}

	if path, found := strings.CutPrefix(s, "file:"); found {
		c.Type = "file"
		c.Path = path
		return nil
	}

	return fmt.Errorf("unknown check %q (expected 'http(s)://url', 'file:path', or a structured check)", s)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in URL, Source, Path, and Header
// values. Defaults are applied for Interval (250ms) and MaxTrials (50).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Interval == 0 {
		cfg.Interval = Duration(250 * time.Millisecond)
	}
	if cfg.MaxTrials == 0 {
		cfg.MaxTrials = 50
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Interval.Duration() < minInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minInterval, c.Interval.Duration())
	}
	if c.MaxTrials < 0 {
		return fmt.Errorf("max_trials cannot be negative, got %d", c.MaxTrials)
	}
	if c.MaxTrials > maxTrialsCap {
		return fmt.Errorf("max_trials must not exceed %d, got %d", maxTrialsCap, c.MaxTrials)
	}

	if len(c.Conditions) == 0 {
		return errors.New("at least one condition must be defined")
	}

	seen := make(map[string]struct{}, len(c.Conditions))
	for i := range c.Conditions {
		cc := &c.Conditions[i]

		if cc.Name == "" {
			return fmt.Errorf("conditions[%d]: name is required", i)
		}
		if _, exists := seen[cc.Name]; exists {
			return fmt.Errorf("conditions[%d]: duplicate condition name %q", i, cc.Name)
		}
		seen[cc.Name] = struct{}{}

		context := fmt.Sprintf("conditions[%d] (%s)", i, cc.Name)

		if cc.Interval != 0 && cc.Interval.Duration() < minInterval {
			return fmt.Errorf("%s: interval must be at least %s, got %s", context, minInterval, cc.Interval.Duration())
		}
		if cc.MaxTrials < 0 {
			return fmt.Errorf("%s: max_trials cannot be negative, got %d", context, cc.MaxTrials)
		}
		if cc.MaxTrials > maxTrialsCap {
			return fmt.Errorf("%s: max_trials must not exceed %d, got %d", context, maxTrialsCap, cc.MaxTrials)
		}
		if cc.Timeout.Duration() < 0 {
			return fmt.Errorf("%s: timeout cannot be negative, got %s", context, cc.Timeout.Duration())
		}

		for k, v := range cc.Headers {
			expanded, err := expandEnvVars(v)
			if err != nil {
				return fmt.Errorf("%s: headers[%s]: %w", context, k, err)
			}
			cc.Headers[k] = expanded
		}

		if err := expandAndValidateCheck(&cc.Check, context); err != nil {
			return err
		}
	}

	return nil
}

// expandAndValidateCheck validates a single check configuration.
func expandAndValidateCheck(check *CheckConfig, context string) error {
	switch check.Type {
	case "":
		return fmt.Errorf("%s: check is required", context)

	case "http":
		if check.URL == "" {
			return fmt.Errorf("%s: check type 'http' requires a url", context)
		}
		expanded, err := expandEnvVars(check.URL)
		if err != nil {
			return fmt.Errorf("%s: url: %w", context, err)
		}
		check.URL = expanded

		parsed, err := url.Parse(check.URL)
		if err != nil {
			return fmt.Errorf("%s: invalid url: %w", context, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s: url scheme must be http or https, got %q", context, parsed.Scheme)
		}

		if check.Status != 0 && (check.Status < 100 || check.Status > 599) {
			return fmt.Errorf("%s: status must be a valid HTTP status code, got %d", context, check.Status)
		}
		if check.Method != "" && check.Method != "GET" && check.Method != "HEAD" && check.Method != "POST" {
			return fmt.Errorf("%s: method must be GET, HEAD, or POST", context)
		}

	case "file":
		if check.Path == "" {
			return fmt.Errorf("%s: check type 'file' requires a path", context)
		}
		expanded, err := expandEnvVars(check.Path)
		if err != nil {
			return fmt.Errorf("%s: path: %w", context, err)
		}
		check.Path = expanded

	case "node":
		if check.Source == "" {
			return fmt.Errorf("%s: check type 'node' requires a source", context)
		}
		expanded, err := expandEnvVars(check.Source)
		if err != nil {
			return fmt.Errorf("%s: source: %w", context, err)
		}
		check.Source = expanded

		if check.Selector == "" {
			return fmt.Errorf("%s: check type 'node' requires a selector", context)
		}

	default:
		return fmt.Errorf("%s: unknown check type %q (expected 'http', 'file', or 'node')", context, check.Type)
	}

	return nil
}
