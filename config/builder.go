package config

import (
	"fmt"
	"strings"

	"github.com/jpalmerr/waitfor"
)

// NamedPoller pairs a configured condition name with the poller built for
// it. The name is only used for logs and CLI output; the poller itself is
// the SDK type.
type NamedPoller struct {
	Name   string
	Poller *waitfor.Poller
}

// BuildPollers converts parsed configuration into SDK pollers, one per
// condition. Extra options (for example a CLI logger) are appended after
// the config-derived ones.
//
// The returned pollers are not started.
func BuildPollers(cfg *Config, extra ...waitfor.Option) ([]NamedPoller, error) {
	pollers := make([]NamedPoller, 0, len(cfg.Conditions))

	for i, cc := range cfg.Conditions {
		cond, err := buildCondition(cc)
		if err != nil {
			return nil, fmt.Errorf("conditions[%d] (%s): %w", i, cc.Name, err)
		}

		opts := []waitfor.Option{
			waitfor.WithInterval(cfg.Interval.Duration()),
			waitfor.WithMaxTrials(cfg.MaxTrials),
		}
		// per-condition overrides after the global defaults
		if cc.Interval != 0 {
			opts = append(opts, waitfor.WithInterval(cc.Interval.Duration()))
		}
		if cc.MaxTrials != 0 {
			opts = append(opts, waitfor.WithMaxTrials(cc.MaxTrials))
		}
		opts = append(opts, extra...)

		pollers = append(pollers, NamedPoller{
			Name:   cc.Name,
			Poller: waitfor.New(cond, opts...),
		})
	}

	return pollers, nil
}

// buildCondition converts a ConditionConfig to an SDK Condition.
func buildCondition(cc ConditionConfig) (waitfor.Condition, error) {
	switch cc.Check.Type {
	case "http":
		return waitfor.HTTPProbe{
			URL:     cc.Check.URL,
			Status:  cc.Check.Status,
			Method:  cc.Check.Method,
			Headers: cc.Headers,
			Timeout: cc.Timeout.Duration(),
		}.Condition(), nil

	case "file":
		return waitfor.FileCondition(cc.Check.Path), nil

	case "node":
		source := buildDocumentSource(cc)
		query := waitfor.NewDocumentQuery(source)
		return waitfor.NodeCondition(query, cc.Check.Selector), nil

	default:
		// validation should catch this; kept as a guard for direct callers
		return nil, fmt.Errorf("unknown check type %q", cc.Check.Type)
	}
}

// buildDocumentSource picks a document source for a node check: http(s)
// sources are fetched per trial, anything else is treated as a file path.
func buildDocumentSource(cc ConditionConfig) waitfor.DocumentSource {
	src := cc.Check.Source
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return waitfor.URLSource(src, cc.Timeout.Duration())
	}
	return waitfor.FileSource(src)
}
