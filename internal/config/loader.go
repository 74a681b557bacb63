package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/sheetsync/reconcile/internal/domain"
	"github.com/sheetsync/reconcile/internal/merge"
	"github.com/sheetsync/reconcile/internal/schema"
)

// Config carries everything a reconciliation session needs: the schema rule
// set plus the matcher and merge knobs.
type Config struct {
	Threshold float64
	Strategy  merge.Strategy
	ActorID   string
	Overrides map[string]string
	Rules     domain.RuleSet
}

type fieldConfig struct {
	Name      string   `mapstructure:"name"`
	Type      string   `mapstructure:"type"`
	Required  bool     `mapstructure:"required"`
	Pattern   string   `mapstructure:"pattern"`
	Enum      []string `mapstructure:"enum"`
	Min       *float64 `mapstructure:"min"`
	Max       *float64 `mapstructure:"max"`
	MinLength *int     `mapstructure:"min_length"`
	MaxLength *int     `mapstructure:"max_length"`
	Unique    bool     `mapstructure:"unique"`
	Default   any      `mapstructure:"default"`
}

// Load reads config.yaml from the given directory with RECONCILE_* env
// overrides, falling back to defaults when no file is present.
func Load(configPath string) (Config, error) {
	cfg := Config{
		Threshold: schema.DefaultThreshold,
		Strategy:  merge.StrategySmart,
		ActorID:   "system",
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("RECONCILE")

	v.BindEnv("matcher.threshold")
	v.BindEnv("merge.strategy")
	v.BindEnv("audit.actor_id")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if v.IsSet("matcher.threshold") {
		cfg.Threshold = v.GetFloat64("matcher.threshold")
	}
	if v.IsSet("merge.strategy") {
		strategy, err := merge.ParseStrategy(v.GetString("merge.strategy"))
		if err != nil {
			return cfg, err
		}
		cfg.Strategy = strategy
	}
	if v.IsSet("audit.actor_id") {
		cfg.ActorID = v.GetString("audit.actor_id")
	}
	if v.IsSet("matcher.overrides") {
		cfg.Overrides = v.GetStringMapString("matcher.overrides")
	}

	identifier := v.GetString("schema.identifier")
	if identifier == "" {
		identifier = "roll_no"
	}

	var fields []fieldConfig
	if err := v.UnmarshalKey("schema.fields", &fields); err != nil {
		return cfg, fmt.Errorf("failed to parse schema fields: %w", err)
	}

	rules, err := buildRuleSet(identifier, fields)
	if err != nil {
		return cfg, err
	}
	cfg.Rules = rules

	return cfg, nil
}

func buildRuleSet(identifier string, fields []fieldConfig) (domain.RuleSet, error) {
	if len(fields) == 0 {
		return defaultRuleSet(identifier), nil
	}

	rules := domain.NewRuleSet(identifier)
	for _, field := range fields {
		if field.Name == "" {
			return domain.RuleSet{}, errors.New("schema field with empty name")
		}
		dataType, err := domain.ParseDataType(field.Type)
		if err != nil {
			return domain.RuleSet{}, fmt.Errorf("field %s: %w", field.Name, err)
		}
		rules = rules.WithField(field.Name, domain.FieldRule{
			Required:  field.Required,
			DataType:  dataType,
			Pattern:   field.Pattern,
			Enum:      field.Enum,
			Min:       field.Min,
			Max:       field.Max,
			MinLength: field.MinLength,
			MaxLength: field.MaxLength,
			Unique:    field.Unique,
			Default:   field.Default,
		})
	}

	if _, ok := rules.Rule(identifier); !ok {
		return domain.RuleSet{}, fmt.Errorf("identifier field %s has no rule", identifier)
	}

	return rules, nil
}

// defaultRuleSet is the built-in student-record schema used when no schema
// file is supplied.
func defaultRuleSet(identifier string) domain.RuleSet {
	min := 0.0
	max := 10.0

	rules := domain.NewRuleSet(identifier)
	rules = rules.WithField(identifier, domain.FieldRule{Required: true, DataType: domain.DataTypeString, Unique: true})
	rules = rules.WithField("name", domain.FieldRule{Required: true, DataType: domain.DataTypeString})
	rules = rules.WithField("department", domain.FieldRule{DataType: domain.DataTypeString})
	rules = rules.WithField("email", domain.FieldRule{DataType: domain.DataTypeString, Pattern: `^[^@\s]+@[^@\s]+\.[^@\s]+$`})
	rules = rules.WithField("phone", domain.FieldRule{DataType: domain.DataTypeString})
	rules = rules.WithField("cgpa", domain.FieldRule{DataType: domain.DataTypeNumber, Min: &min, Max: &max})
	rules = rules.WithField("skills", domain.FieldRule{DataType: domain.DataTypeArray})
	rules = rules.WithField("placed", domain.FieldRule{DataType: domain.DataTypeBoolean})
	return rules
}
