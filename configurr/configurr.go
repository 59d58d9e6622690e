// Package configurr builds triggers from declarative configuration. Feed it
// YAML or JSON bytes with a `kind` key and it returns a constructed
// trigger.Trigger:
//
//	kind: daily
//	time_of_day: 1430
//	skip_days: 6
//	start_day_of_week: 3
//
// Three kinds ship with the package: daily, cron, and client. Register your
// own Trigger implementations with RegisterKind. Numeric fields are passed
// through untouched; the triggers normalize out-of-range values themselves.
package configurr

import (
	"errors"
	"fmt"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"golift.io/triggerr/trigger"
)

// Custom errors returned by this package.
var (
	ErrUnknownKind = errors.New("unknown trigger kind")
	ErrNoKind      = errors.New("trigger config is missing a kind")
)

// Keys read from trigger configuration data.
const (
	KeyKind           = "kind"
	KeyTimeOfDay      = "time_of_day"
	KeySkipDays       = "skip_days"
	KeyStartDayOfWeek = "start_day_of_week"
	KeySchedule       = "schedule"
)

// Builder constructs a Trigger from parsed configuration data.
type Builder func(conf *koanf.Koanf) (trigger.Trigger, error)

// registry maps a config kind to its Builder. Guarded by registryLock so
// RegisterKind may be called from init functions in different packages.
var ( //nolint:gochecknoglobals
	registryLock sync.RWMutex
	registry     = map[string]Builder{
		"client": buildClient,
		"daily":  buildDaily,
		"cron":   buildCron,
	}
)

// RegisterKind makes a custom trigger kind available to YAML, JSON and New.
// Registering an existing kind replaces it.
func RegisterKind(kind string, builder Builder) {
	registryLock.Lock()
	defer registryLock.Unlock()

	registry[kind] = builder
}

// YAML builds a trigger from YAML bytes.
func YAML(data []byte) (trigger.Trigger, error) {
	return parse(data, yaml.Parser())
}

// JSON builds a trigger from JSON bytes.
func JSON(data []byte) (trigger.Trigger, error) {
	return parse(data, json.Parser())
}

// New builds a trigger from already-parsed configuration data. Use this when
// the trigger block is nested inside your app's own config tree.
func New(conf *koanf.Koanf) (trigger.Trigger, error) {
	kind := conf.String(KeyKind)
	if kind == "" {
		return nil, ErrNoKind
	}

	registryLock.RLock()
	builder, ok := registry[kind]
	registryLock.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	return builder(conf)
}

// parse loads raw bytes with the provided parser and dispatches on kind.
func parse(data []byte, parser koanf.Parser) (trigger.Trigger, error) {
	conf := koanf.New(".")

	err := conf.Load(rawbytes.Provider(data), parser)
	if err != nil {
		return nil, fmt.Errorf("parsing trigger config: %w", err)
	}

	return New(conf)
}

func buildClient(_ *koanf.Koanf) (trigger.Trigger, error) {
	return trigger.NewClient(), nil
}

func buildDaily(conf *koanf.Koanf) (trigger.Trigger, error) {
	return trigger.NewDaily(&trigger.DailyConfig{
		TimeOfDay:      conf.Int(KeyTimeOfDay),
		SkipDays:       conf.Int(KeySkipDays),
		StartDayOfWeek: conf.Int(KeyStartDayOfWeek),
	}), nil
}

func buildCron(conf *koanf.Koanf) (trigger.Trigger, error) {
	return trigger.NewCron(conf.String(KeySchedule), nil)
}
