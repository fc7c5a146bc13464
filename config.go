package glowrays

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"gitlab.com/tozd/go/errors"
)

// Settings keys as persisted by the configuration collaborator.
const (
	KeyEnable                    = "enable"
	KeyIntensity                 = "intensity"
	KeyIncludeLanguages          = "includeLanguages"
	KeyExcludeLanguages          = "excludeLanguages"
	KeyDisableOnErrors           = "disableOnErrors"
	KeyDynamicConfig             = "dynamicConfig"
	KeyPauseAnimationWhileTyping = "pauseAnimationWhileTyping"
	KeyGlowOnDefinitionNames     = "glowOnDefinitionNames"
	KeyAdvancedMode              = "advancedMode"
	KeyDefinitionKinds           = "definitionKinds"
)

// SettingKeys lists every key of the settings record in display order.
var SettingKeys = []string{
	KeyEnable,
	KeyIntensity,
	KeyIncludeLanguages,
	KeyExcludeLanguages,
	KeyDisableOnErrors,
	KeyDynamicConfig,
	KeyPauseAnimationWhileTyping,
	KeyGlowOnDefinitionNames,
	KeyAdvancedMode,
	KeyDefinitionKinds,
}

// Intensity and speed limits.
const (
	MinIntensity     = 0.1
	MaxIntensity     = 30.0
	DefaultIntensity = 5.0
	MinSpeed         = 1
	MaxSpeed         = 10

	// StandardMaxIntensity caps intensity offered without advanced mode.
	StandardMaxIntensity = 10.0
)

// WildcardLanguage in the include set matches every language.
const WildcardLanguage = "*"

// Settings is the key-value configuration collaborator.
type Settings interface {
	// Get returns the value stored under key, or def when it is unset.
	Get(key string, def any) any
	// Update persists value under key.
	Update(key string, value any) error
	// OnChange registers fn to be called after the settings change.
	OnChange(fn func())
}

// DynamicConfig is the typed form of the "<min> <max> <speed> <enabled>"
// wire string.
type DynamicConfig struct {
	Min     float64
	Max     float64
	Speed   int
	Enabled bool
}

// DefaultDynamicConfig returns the documented fallback values.
func DefaultDynamicConfig() DynamicConfig {
	return DynamicConfig{Min: 3, Max: 8, Speed: 5, Enabled: false}
}

// ParseDynamicConfig decodes the space-delimited wire format. Each field
// falls back to its default independently when missing or malformed.
func ParseDynamicConfig(s string) DynamicConfig {
	cfg := DefaultDynamicConfig()
	parts := strings.Fields(s)

	if len(parts) > 0 {
		if v, ok := parseFinite(parts[0]); ok {
			cfg.Min = clampIntensity(v)
		}
	}
	if len(parts) > 1 {
		if v, ok := parseFinite(parts[1]); ok {
			cfg.Max = clampIntensity(v)
		}
	}
	if len(parts) > 2 {
		if v, err := strconv.Atoi(parts[2]); err == nil {
			cfg.Speed = min(max(v, MinSpeed), MaxSpeed)
		}
	}
	if len(parts) > 3 {
		cfg.Enabled = parts[3] == "true"
	}

	if cfg.Min > cfg.Max {
		cfg.Min, cfg.Max = cfg.Max, cfg.Min
	}
	return cfg
}

// String encodes the config in its wire format.
func (d DynamicConfig) String() string {
	return fmt.Sprintf("%s %s %d %t",
		strconv.FormatFloat(d.Min, 'f', -1, 64),
		strconv.FormatFloat(d.Max, 'f', -1, 64),
		d.Speed, d.Enabled)
}

// EffectConfiguration is an immutable snapshot of the settings read once per
// update cycle.
type EffectConfiguration struct {
	Enabled          bool
	Intensity        float64
	IncludeLanguages []string
	ExcludeLanguages []string
	DefinitionsOnly  bool
	DefinitionKinds  []DefinitionKind
	Dynamic          DynamicConfig
	PauseWhileTyping bool
	// DisableOnErrors is read for the settings record but has no effect on
	// detection or decoration.
	DisableOnErrors bool
	// AdvancedMode only affects the intensity range offered by settings UIs.
	AdvancedMode bool
}

// DefaultEffectConfiguration returns the configuration used when no settings
// are stored.
func DefaultEffectConfiguration() EffectConfiguration {
	return EffectConfiguration{
		Enabled:          true,
		Intensity:        DefaultIntensity,
		IncludeLanguages: []string{WildcardLanguage},
		ExcludeLanguages: []string{},
		DefinitionKinds:  slices.Clone(DefaultDefinitionKinds),
		Dynamic:          DefaultDynamicConfig(),
		DisableOnErrors:  true,
	}
}

// ReadEffectConfiguration builds a snapshot from s. Values that cannot be
// coerced to the expected type fall back to their defaults field by field.
func ReadEffectConfiguration(s Settings) EffectConfiguration {
	def := DefaultEffectConfiguration()
	cfg := EffectConfiguration{
		Enabled:          readBool(s, KeyEnable, def.Enabled),
		Intensity:        clampIntensity(readFloat(s, KeyIntensity, def.Intensity)),
		IncludeLanguages: readStrings(s, KeyIncludeLanguages, def.IncludeLanguages),
		ExcludeLanguages: readStrings(s, KeyExcludeLanguages, def.ExcludeLanguages),
		DefinitionsOnly:  readBool(s, KeyGlowOnDefinitionNames, def.DefinitionsOnly),
		PauseWhileTyping: readBool(s, KeyPauseAnimationWhileTyping, def.PauseWhileTyping),
		DisableOnErrors:  readBool(s, KeyDisableOnErrors, def.DisableOnErrors),
		AdvancedMode:     readBool(s, KeyAdvancedMode, def.AdvancedMode),
		Dynamic:          def.Dynamic,
		DefinitionKinds:  def.DefinitionKinds,
	}

	if raw, err := cast.ToStringE(s.Get(KeyDynamicConfig, def.Dynamic.String())); err == nil {
		cfg.Dynamic = ParseDynamicConfig(raw)
	}

	kinds := readStrings(s, KeyDefinitionKinds, nil)
	if kinds != nil {
		cfg.DefinitionKinds = make([]DefinitionKind, 0, len(kinds))
		for _, k := range kinds {
			cfg.DefinitionKinds = append(cfg.DefinitionKinds, DefinitionKind(k))
		}
	}

	return cfg
}

// LanguageAllowed reports whether documents in languageID get decorated.
// The exclude set takes precedence over the include set, including the
// wildcard.
func (c EffectConfiguration) LanguageAllowed(languageID string) bool {
	if slices.Contains(c.ExcludeLanguages, languageID) {
		return false
	}
	return slices.Contains(c.IncludeLanguages, WildcardLanguage) ||
		slices.Contains(c.IncludeLanguages, languageID)
}

// DetectOptions returns the detection options implied by the configuration.
func (c EffectConfiguration) DetectOptions() DetectOptions {
	if !c.DefinitionsOnly {
		return DetectOptions{Mode: AllTokens}
	}
	return DetectOptions{Mode: DefinitionsOnly, Targets: c.DefinitionKinds}
}

// Record returns the flat settings record in its persisted representation.
func (c EffectConfiguration) Record() map[string]any {
	kinds := make([]string, 0, len(c.DefinitionKinds))
	for _, k := range c.DefinitionKinds {
		kinds = append(kinds, string(k))
	}
	return map[string]any{
		KeyEnable:                    c.Enabled,
		KeyIntensity:                 c.Intensity,
		KeyIncludeLanguages:          c.IncludeLanguages,
		KeyExcludeLanguages:          c.ExcludeLanguages,
		KeyDisableOnErrors:           c.DisableOnErrors,
		KeyDynamicConfig:             c.Dynamic.String(),
		KeyPauseAnimationWhileTyping: c.PauseWhileTyping,
		KeyGlowOnDefinitionNames:     c.DefinitionsOnly,
		KeyAdvancedMode:              c.AdvancedMode,
		KeyDefinitionKinds:           kinds,
	}
}

// ParseSettingValue converts a textual value, as typed on a command line,
// into the persisted type for key. Lists are comma separated.
func ParseSettingValue(key, raw string) (any, error) {
	switch key {
	case KeyEnable, KeyDisableOnErrors, KeyPauseAnimationWhileTyping,
		KeyGlowOnDefinitionNames, KeyAdvancedMode:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.Errorf("%s: %w", key, err)
		}
		return v, nil
	case KeyIntensity:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.Errorf("%s: %w", key, err)
		}
		if !isFinite(v) || v < MinIntensity || v > MaxIntensity {
			return nil, errors.Errorf("%s: %v outside %v-%v", key, v, MinIntensity, MaxIntensity)
		}
		return v, nil
	case KeyIncludeLanguages, KeyExcludeLanguages, KeyDefinitionKinds:
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		if out == nil {
			out = []string{}
		}
		return out, nil
	case KeyDynamicConfig:
		return ParseDynamicConfig(raw).String(), nil
	default:
		return nil, errors.Errorf("%q: %w", key, ErrUnknownSetting)
	}
}

// Toggle flips the enable setting and returns the new state.
func Toggle(s Settings) (bool, error) {
	enabled := !readBool(s, KeyEnable, DefaultEffectConfiguration().Enabled)
	if err := s.Update(KeyEnable, enabled); err != nil {
		return !enabled, errors.Errorf("updating %s: %w", KeyEnable, err)
	}
	return enabled, nil
}

// StepIntensity returns the intensity delta away from the configured one,
// rounded to one decimal. Increases stop at StandardMaxIntensity unless
// advanced mode is on; a value already above that cap is never raised.
func StepIntensity(c EffectConfiguration, delta float64) float64 {
	limit := StandardMaxIntensity
	if c.AdvancedMode {
		limit = MaxIntensity
	}
	next := math.Round((c.Intensity+delta)*10) / 10
	if delta > 0 && next > limit {
		next = max(limit, c.Intensity)
	}
	return clampIntensity(next)
}

func clampIntensity(v float64) float64 {
	return min(max(v, MinIntensity), MaxIntensity)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// parseFinite parses s as a float, rejecting NaN and infinities.
func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(v) {
		return 0, false
	}
	return v, true
}

func readBool(s Settings, key string, def bool) bool {
	v, err := cast.ToBoolE(s.Get(key, def))
	if err != nil {
		return def
	}
	return v
}

func readFloat(s Settings, key string, def float64) float64 {
	v, err := cast.ToFloat64E(s.Get(key, def))
	if err != nil || !isFinite(v) {
		return def
	}
	return v
}

func readStrings(s Settings, key string, def []string) []string {
	raw := s.Get(key, def)
	if raw == nil {
		return def
	}
	v, err := cast.ToStringSliceE(raw)
	if err != nil {
		return def
	}
	return v
}
