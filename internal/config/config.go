// Package config centralizes every tunable knob named in spec §6, loaded
// the way noah-isme-sma-adp-api/pkg/config loads its nested *Config
// structs: viper reads environment variables (with a config file as an
// optional override), and New returns a struct with defaults already
// applied so callers never see a zero-value knob.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"timetable-UDP/internal/domain"
)

// GeneratorConfig governs the base generator (C4).
type GeneratorConfig struct {
	LabBlock                   domain.LabBlock
	MultiStartAttempts         int
	RelaxedModeAttempt         int // 1-indexed attempt number at which the day-balancing cap lifts
	GreedyFallbackCutoff       float64
	ReductionUtilizationCutoff float64
	MaxSectionPeriodsPerDay    int
	MaxTheoryPeriodsPerDayCap  int // I8: per (section,subject) theory cap
	Seed                       int64
}

// CPSATConfig governs the CP-SAT client (C3).
type CPSATConfig struct {
	BaseURL        string
	LabDeadline    time.Duration
	TheoryDeadline time.Duration
	RetryAttempts  uint
	RetryDelay     time.Duration
	CacheTTL       time.Duration
	RateLimitRPS   float64 // 0 means unlimited
}

// GAConfig governs the GA optimizer (C5).
type GAConfig struct {
	Population      int
	Generations     int
	MutationRate    float64
	CrossoverRate   float64
	EliteFraction   float64
	TournamentSize  int
	MutationRetries int
	Weights         FitnessWeights
	Seed            int64
}

// FitnessWeights is the weighted-sum breakdown from spec §4.6.
type FitnessWeights struct {
	FacultyGaps        float64
	StudentGaps        float64
	WorkloadBalance    float64
	MorningPreference  float64
	LabCompactness     float64
}

// Config is the full set of knobs for one generation run.
type Config struct {
	Generator GeneratorConfig
	CPSAT     CPSATConfig
	GA        GAConfig
	LogLevel  string
	LogFormat string
}

// New builds a Config from environment variables prefixed TIMETABLE_, with
// every knob defaulted to the values spec §6 lists. Call Load(v) on a
// pre-populated viper.Viper (e.g. one that also read a YAML file) to layer
// overrides before defaults are applied.
func New() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TIMETABLE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return Load(v)
}

// Load reads a pre-configured viper instance and applies defaults for any
// knob left unset.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	labBlock := domain.LabBlock(v.GetInt("generator.lab_block"))
	if !labBlock.Valid() {
		return nil, fmt.Errorf("config: generator.lab_block must be 3 or 4, got %d", labBlock)
	}

	cfg := &Config{
		Generator: GeneratorConfig{
			LabBlock:                   labBlock,
			MultiStartAttempts:         v.GetInt("generator.multi_start_attempts"),
			RelaxedModeAttempt:         v.GetInt("generator.relaxed_mode_attempt"),
			GreedyFallbackCutoff:       v.GetFloat64("generator.greedy_fallback_cutoff"),
			ReductionUtilizationCutoff: v.GetFloat64("generator.reduction_utilization_cutoff"),
			MaxSectionPeriodsPerDay:    v.GetInt("generator.max_section_periods_per_day"),
			MaxTheoryPeriodsPerDayCap:  v.GetInt("generator.max_theory_periods_per_day_cap"),
			Seed:                       v.GetInt64("generator.seed"),
		},
		CPSAT: CPSATConfig{
			BaseURL:        v.GetString("cpsat.base_url"),
			LabDeadline:    v.GetDuration("cpsat.lab_deadline"),
			TheoryDeadline: v.GetDuration("cpsat.theory_deadline"),
			RetryAttempts:  uint(v.GetInt("cpsat.retry_attempts")),
			RetryDelay:     v.GetDuration("cpsat.retry_delay"),
			CacheTTL:       v.GetDuration("cpsat.cache_ttl"),
			RateLimitRPS:   v.GetFloat64("cpsat.rate_limit_rps"),
		},
		GA: GAConfig{
			Population:      v.GetInt("ga.population"),
			Generations:     v.GetInt("ga.generations"),
			MutationRate:    v.GetFloat64("ga.mutation_rate"),
			CrossoverRate:   v.GetFloat64("ga.crossover_rate"),
			EliteFraction:   v.GetFloat64("ga.elite_fraction"),
			TournamentSize:  v.GetInt("ga.tournament_size"),
			MutationRetries: v.GetInt("ga.mutation_retries"),
			Seed:            v.GetInt64("ga.seed"),
			Weights: FitnessWeights{
				FacultyGaps:       v.GetFloat64("ga.weights.faculty_gaps"),
				StudentGaps:       v.GetFloat64("ga.weights.student_gaps"),
				WorkloadBalance:   v.GetFloat64("ga.weights.workload_balance"),
				MorningPreference: v.GetFloat64("ga.weights.morning_preference"),
				LabCompactness:    v.GetFloat64("ga.weights.lab_compactness"),
			},
		},
		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("generator.lab_block", int(domain.LabBlockFour))
	v.SetDefault("generator.multi_start_attempts", 15)
	v.SetDefault("generator.relaxed_mode_attempt", 11)
	v.SetDefault("generator.greedy_fallback_cutoff", 0.80)
	v.SetDefault("generator.reduction_utilization_cutoff", 0.95)
	v.SetDefault("generator.max_section_periods_per_day", 6)
	v.SetDefault("generator.max_theory_periods_per_day_cap", 2)
	v.SetDefault("generator.seed", int64(1))

	v.SetDefault("cpsat.base_url", "")
	v.SetDefault("cpsat.lab_deadline", 60*time.Second)
	v.SetDefault("cpsat.theory_deadline", 30*time.Second)
	v.SetDefault("cpsat.retry_attempts", 3)
	v.SetDefault("cpsat.retry_delay", 500*time.Millisecond)
	v.SetDefault("cpsat.cache_ttl", 5*time.Minute)
	v.SetDefault("cpsat.rate_limit_rps", 0.0)

	v.SetDefault("ga.population", 50)
	v.SetDefault("ga.generations", 100)
	v.SetDefault("ga.mutation_rate", 0.10)
	v.SetDefault("ga.crossover_rate", 0.80)
	v.SetDefault("ga.elite_fraction", 0.10)
	v.SetDefault("ga.tournament_size", 5)
	v.SetDefault("ga.mutation_retries", 10)
	v.SetDefault("ga.seed", int64(1))
	v.SetDefault("ga.weights.faculty_gaps", 0.30)
	v.SetDefault("ga.weights.student_gaps", 0.25)
	v.SetDefault("ga.weights.workload_balance", 0.20)
	v.SetDefault("ga.weights.morning_preference", 0.15)
	v.SetDefault("ga.weights.lab_compactness", 0.10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
