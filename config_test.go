package glowrays_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/fwojciec/glowrays"
	"github.com/fwojciec/glowrays/memory"
	"github.com/fwojciec/glowrays/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDynamicConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  glowrays.DynamicConfig
	}{
		{"empty uses defaults", "", glowrays.DynamicConfig{Min: 3, Max: 8, Speed: 5}},
		{"all fields", "2 9 7 true", glowrays.DynamicConfig{Min: 2, Max: 9, Speed: 7, Enabled: true}},
		{"malformed field falls back alone", "x 9", glowrays.DynamicConfig{Min: 3, Max: 9, Speed: 5}},
		{"non-numeric speed", "3 8 fast true", glowrays.DynamicConfig{Min: 3, Max: 8, Speed: 5, Enabled: true}},
		{"enabled must be literal true", "3 8 5 yes", glowrays.DynamicConfig{Min: 3, Max: 8, Speed: 5}},
		{"inverted bounds are swapped", "9 2 5 true", glowrays.DynamicConfig{Min: 2, Max: 9, Speed: 5, Enabled: true}},
		{"values are clamped", "0 50 20 true", glowrays.DynamicConfig{Min: 0.1, Max: 30, Speed: 10, Enabled: true}},
		{"extra whitespace", "  4   6  2  true ", glowrays.DynamicConfig{Min: 4, Max: 6, Speed: 2, Enabled: true}},
		{"NaN bounds fall back", "NaN nan 5 true", glowrays.DynamicConfig{Min: 3, Max: 8, Speed: 5, Enabled: true}},
		{"infinite bounds fall back", "-Inf +Inf 5 true", glowrays.DynamicConfig{Min: 3, Max: 8, Speed: 5, Enabled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, glowrays.ParseDynamicConfig(tt.input))
		})
	}
}

func TestDynamicConfig_String(t *testing.T) {
	t.Parallel()

	cfg := glowrays.DynamicConfig{Min: 2.5, Max: 8, Speed: 4, Enabled: true}

	assert.Equal(t, "2.5 8 4 true", cfg.String())
	assert.Equal(t, cfg, glowrays.ParseDynamicConfig(cfg.String()))
}

func TestReadEffectConfiguration(t *testing.T) {
	t.Parallel()

	t.Run("defaults when nothing is stored", func(t *testing.T) {
		t.Parallel()

		cfg := glowrays.ReadEffectConfiguration(memory.NewSettings(nil))

		assert.Equal(t, glowrays.DefaultEffectConfiguration(), cfg)
		assert.True(t, cfg.Enabled)
		assert.InDelta(t, 5.0, cfg.Intensity, 1e-9)
		assert.Equal(t, []string{"*"}, cfg.IncludeLanguages)
		assert.Equal(t, glowrays.DynamicConfig{Min: 3, Max: 8, Speed: 5}, cfg.Dynamic)
	})

	t.Run("reads stored values", func(t *testing.T) {
		t.Parallel()

		cfg := glowrays.ReadEffectConfiguration(memory.NewSettings(map[string]any{
			glowrays.KeyEnable:                    false,
			glowrays.KeyIntensity:                 12.5,
			glowrays.KeyIncludeLanguages:          []string{"go", "python"},
			glowrays.KeyExcludeLanguages:          []any{"markdown"},
			glowrays.KeyDynamicConfig:             "4 6 2 true",
			glowrays.KeyPauseAnimationWhileTyping: true,
			glowrays.KeyGlowOnDefinitionNames:     true,
			glowrays.KeyDefinitionKinds:           []string{"function"},
		}))

		assert.False(t, cfg.Enabled)
		assert.InDelta(t, 12.5, cfg.Intensity, 1e-9)
		assert.Equal(t, []string{"go", "python"}, cfg.IncludeLanguages)
		assert.Equal(t, []string{"markdown"}, cfg.ExcludeLanguages)
		assert.Equal(t, glowrays.DynamicConfig{Min: 4, Max: 6, Speed: 2, Enabled: true}, cfg.Dynamic)
		assert.True(t, cfg.PauseWhileTyping)
		assert.True(t, cfg.DefinitionsOnly)
		assert.Equal(t, []glowrays.DefinitionKind{glowrays.KindFunction}, cfg.DefinitionKinds)
	})

	t.Run("malformed values fall back per field", func(t *testing.T) {
		t.Parallel()

		cfg := glowrays.ReadEffectConfiguration(memory.NewSettings(map[string]any{
			glowrays.KeyEnable:        "maybe",
			glowrays.KeyIntensity:     "bright",
			glowrays.KeyDynamicConfig: struct{}{},
			glowrays.KeyAdvancedMode:  true,
		}))

		assert.True(t, cfg.Enabled)
		assert.InDelta(t, glowrays.DefaultIntensity, cfg.Intensity, 1e-9)
		assert.Equal(t, glowrays.DefaultDynamicConfig(), cfg.Dynamic)
		assert.True(t, cfg.AdvancedMode)
	})

	t.Run("non-finite numbers fall back per field", func(t *testing.T) {
		t.Parallel()

		cfg := glowrays.ReadEffectConfiguration(memory.NewSettings(map[string]any{
			glowrays.KeyIntensity:     math.NaN(),
			glowrays.KeyDynamicConfig: "NaN 8 5 true",
		}))

		assert.InDelta(t, glowrays.DefaultIntensity, cfg.Intensity, 1e-9)
		assert.Equal(t, glowrays.DynamicConfig{Min: 3, Max: 8, Speed: 5, Enabled: true}, cfg.Dynamic)

		inf := glowrays.ReadEffectConfiguration(memory.NewSettings(map[string]any{
			glowrays.KeyIntensity: "+Inf",
		}))
		assert.InDelta(t, glowrays.DefaultIntensity, inf.Intensity, 1e-9)

		// The animation stays between the bounds.
		a := glowrays.NewAnimationState(cfg.Dynamic, false)
		now := time.Now()
		for range 200 {
			v, _ := a.Tick(now)
			require.GreaterOrEqual(t, v, cfg.Dynamic.Min)
			require.LessOrEqual(t, v, cfg.Dynamic.Max)
		}
	})

	t.Run("clamps intensity", func(t *testing.T) {
		t.Parallel()

		high := glowrays.ReadEffectConfiguration(memory.NewSettings(map[string]any{glowrays.KeyIntensity: 100}))
		low := glowrays.ReadEffectConfiguration(memory.NewSettings(map[string]any{glowrays.KeyIntensity: 0}))

		assert.InDelta(t, glowrays.MaxIntensity, high.Intensity, 1e-9)
		assert.InDelta(t, glowrays.MinIntensity, low.Intensity, 1e-9)
	})
}

func TestEffectConfiguration_LanguageAllowed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		include  []string
		exclude  []string
		language string
		want     bool
	}{
		{"wildcard allows anything", []string{"*"}, nil, "go", true},
		{"listed language", []string{"javascript"}, nil, "javascript", true},
		{"unlisted language", []string{"javascript"}, nil, "go", false},
		{"exclude beats wildcard", []string{"*"}, []string{"markdown"}, "markdown", false},
		{"exclude beats explicit include", []string{"go"}, []string{"go"}, "go", false},
		{"empty include allows nothing", []string{}, nil, "go", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := glowrays.DefaultEffectConfiguration()
			cfg.IncludeLanguages = tt.include
			cfg.ExcludeLanguages = tt.exclude

			assert.Equal(t, tt.want, cfg.LanguageAllowed(tt.language))
		})
	}
}

func TestEffectConfiguration_DetectOptions(t *testing.T) {
	t.Parallel()

	cfg := glowrays.DefaultEffectConfiguration()
	assert.Equal(t, glowrays.DetectOptions{Mode: glowrays.AllTokens}, cfg.DetectOptions())

	cfg.DefinitionsOnly = true
	cfg.DefinitionKinds = []glowrays.DefinitionKind{glowrays.KindClass}
	assert.Equal(t, glowrays.DetectOptions{
		Mode:    glowrays.DefinitionsOnly,
		Targets: []glowrays.DefinitionKind{glowrays.KindClass},
	}, cfg.DetectOptions())
}

func TestEffectConfiguration_Record(t *testing.T) {
	t.Parallel()

	record := glowrays.DefaultEffectConfiguration().Record()

	for _, key := range glowrays.SettingKeys {
		assert.Contains(t, record, key)
	}
	assert.Equal(t, "3 8 5 false", record[glowrays.KeyDynamicConfig])
	assert.Equal(t, true, record[glowrays.KeyEnable])
}

func TestParseSettingValue(t *testing.T) {
	t.Parallel()

	t.Run("booleans", func(t *testing.T) {
		t.Parallel()

		v, err := glowrays.ParseSettingValue(glowrays.KeyEnable, "false")
		require.NoError(t, err)
		assert.Equal(t, false, v)

		_, err = glowrays.ParseSettingValue(glowrays.KeyEnable, "sometimes")
		assert.Error(t, err)
	})

	t.Run("intensity within range", func(t *testing.T) {
		t.Parallel()

		v, err := glowrays.ParseSettingValue(glowrays.KeyIntensity, "12.5")
		require.NoError(t, err)
		assert.Equal(t, 12.5, v)

		_, err = glowrays.ParseSettingValue(glowrays.KeyIntensity, "40")
		assert.Error(t, err)
	})

	t.Run("intensity must be finite", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"NaN", "Inf", "-Inf"} {
			_, err := glowrays.ParseSettingValue(glowrays.KeyIntensity, raw)
			assert.Error(t, err, raw)
		}
	})

	t.Run("comma separated lists", func(t *testing.T) {
		t.Parallel()

		v, err := glowrays.ParseSettingValue(glowrays.KeyIncludeLanguages, "go, python,,")
		require.NoError(t, err)
		assert.Equal(t, []string{"go", "python"}, v)

		v, err = glowrays.ParseSettingValue(glowrays.KeyExcludeLanguages, "")
		require.NoError(t, err)
		assert.Equal(t, []string{}, v)
	})

	t.Run("dynamic config is normalised", func(t *testing.T) {
		t.Parallel()

		v, err := glowrays.ParseSettingValue(glowrays.KeyDynamicConfig, "9 2")
		require.NoError(t, err)
		assert.Equal(t, "2 9 5 false", v)
	})

	t.Run("unknown key", func(t *testing.T) {
		t.Parallel()

		_, err := glowrays.ParseSettingValue("glowColor", "red")
		assert.ErrorIs(t, err, glowrays.ErrUnknownSetting)
	})
}

func TestToggle(t *testing.T) {
	t.Parallel()

	t.Run("flips the enable setting", func(t *testing.T) {
		t.Parallel()

		settings := memory.NewSettings(nil)
		changes := 0
		settings.OnChange(func() { changes++ })

		enabled, err := glowrays.Toggle(settings)
		require.NoError(t, err)
		assert.False(t, enabled)
		assert.Equal(t, false, settings.Get(glowrays.KeyEnable, nil))

		enabled, err = glowrays.Toggle(settings)
		require.NoError(t, err)
		assert.True(t, enabled)
		assert.Equal(t, 2, changes)
	})

	t.Run("returns update errors", func(t *testing.T) {
		t.Parallel()

		saveErr := errors.New("read-only")
		settings := &mock.Settings{
			GetFn: func(key string, def any) any { return def },
			UpdateFn: func(key string, value any) error {
				return saveErr
			},
		}

		_, err := glowrays.Toggle(settings)
		assert.ErrorIs(t, err, saveErr)
	})
}

func TestStepIntensity(t *testing.T) {
	t.Parallel()

	cfg := glowrays.DefaultEffectConfiguration()

	assert.InDelta(t, 6.0, glowrays.StepIntensity(cfg, 1), 1e-9)
	assert.InDelta(t, 4.0, glowrays.StepIntensity(cfg, -1), 1e-9)

	cfg.Intensity = 9.5
	assert.InDelta(t, 10.0, glowrays.StepIntensity(cfg, 1), 1e-9, "capped without advanced mode")

	cfg.AdvancedMode = true
	assert.InDelta(t, 10.5, glowrays.StepIntensity(cfg, 1), 1e-9)

	cfg.AdvancedMode = false
	cfg.Intensity = 20
	assert.InDelta(t, 20.0, glowrays.StepIntensity(cfg, 1), 1e-9, "never lowered by an increase")

	cfg.Intensity = 0.5
	assert.InDelta(t, glowrays.MinIntensity, glowrays.StepIntensity(cfg, -1), 1e-9)
}
