// Package config loads plan-level attributes from a YAML file into a
// koanf.Koanf, the same config-loading idiom the rest of this codebase
// uses (flat key/value store merged from one or more sources).
package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"

	"github.com/tarungka/flowplan/plan"
)

// Load reads one or more YAML files into a fresh koanf.Koanf, later files
// overriding earlier ones on key conflict.
func Load(paths []string) (*koanf.Koanf, error) {
	ko := koanf.New(".")
	for _, p := range paths {
		log.Debug().Str("path", p).Msg("loading plan config")
		if err := ko.Load(file.Provider(p), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return ko, nil
}

// ApplyPlanAttributes walks the top-level keys of ko and rebinds each one
// onto the plan's attribute map by name, using the same attribute
// registry the plan-serialization codec rebinds against (plan.attrs.go's
// key table). Unknown keys are reported but do not abort the whole load,
// since a config file may carry keys meant for a different consumer.
func ApplyPlanAttributes(ko *koanf.Koanf, p *plan.Plan) error {
	var firstErr error
	for key, value := range ko.All() {
		if err := plan.PutAttrByName(p.Attributes(), key, value); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("skipping unrecognized plan attribute")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
