// =============================================================================
// sheetops - Configuration Module
// =============================================================================
//
// This module loads the YAML job file. One file holds the global settings
// (logging, output, concurrency, CSV parsing) and an ordered list of jobs.
//
// EXAMPLE:
//
//   output_dir: ./out
//   output_format: xlsx
//   jobs:
//     - name: joined
//       mode: merge
//       left:  { file: staff.xlsx }
//       right: { file: contracts.xlsx, sheet: "2024" }
//       join:  { left_key: id, right_key: staff_id }
//     - name: tenure
//       mode: calculate
//       input: { from: joined }
//       date_pairs:
//         - { start_column: hired, end_column: left, start_calendar: local, end_calendar: standard }
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/sheetops/internal/transform"
	"github.com/ginjaninja78/sheetops/internal/types"
	"github.com/ginjaninja78/sheetops/internal/validation"
)

// ErrInvalidConfig is wrapped by every validation failure from Load.
var ErrInvalidConfig = errors.New("invalid configuration")

// Output formats.
const (
	FormatXLSX   = "xlsx"
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatXML    = "xml"
	FormatSQLite = "sqlite"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the global settings and the job list.
type Config struct {
	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log encoding: "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is the directory results are written to. When empty, only
	// jobs with an explicit output path are written.
	OutputDir string `yaml:"output_dir"`

	// OutputFormat is the default output format: "xlsx", "csv", "json",
	// "xml" or "sqlite".
	// Default: "xlsx"
	OutputFormat string `yaml:"output_format"`

	// FileNameFormat defines the output file name, without extension.
	// Placeholders:
	//   {name}      - The default name for the mode (e.g. merged_file)
	//   {mode}      - The job mode
	//   {job}       - The job name
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {uuid}      - A random UUID
	// Default: "{name}"
	FileNameFormat string `yaml:"file_name_format"`

	// PreviewRows is the number of rows shown by the terminal preview.
	// Default: 100
	PreviewRows int `yaml:"preview_rows"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// Workers bounds the goroutines used for per-row work.
	// Default: number of CPUs
	Workers int `yaml:"workers"`

	// Locale is the BCP 47 tag used to sort duplicate groups.
	// Default: "und"
	Locale string `yaml:"locale"`

	// CSVSettings controls how CSV inputs are parsed.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// Jobs run in order.
	Jobs []Job `yaml:"jobs"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), "|" (pipe), "\t" or "tab", ";"
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows. Multiple header rows are
	// merged column by column.
	// Default: 1
	HeaderRows int `yaml:"header_rows"`

	// DataStartRow is the 1-based row number where the data begins.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row"`

	// Encoding is the character encoding of the CSV file, by WHATWG name
	// (e.g. "utf-8", "windows-1256", "iso-8859-1").
	// Default: "utf-8"
	Encoding string `yaml:"encoding"`
}

// DefaultCSVSettings returns the settings used when none are configured.
func DefaultCSVSettings() CSVSettings {
	s := CSVSettings{}
	applyCSVDefaults(&s)
	return s
}

// =============================================================================
// JOB STRUCTURE
// =============================================================================

// Job is one transformation step.
type Job struct {
	// Name identifies the job in logs and in "from" references.
	// Default: "job{N}" (1-based position)
	Name string `yaml:"name"`

	// Mode is one of "calculate", "merge", "group", "compare".
	Mode string `yaml:"mode"`

	// Input is the table for single-table modes (calculate, group).
	Input Source `yaml:"input"`

	// Left and Right are the tables for two-table modes (merge, compare).
	Left  Source `yaml:"left"`
	Right Source `yaml:"right"`

	// Join names the key columns for merge and compare.
	Join types.JoinKeySpec `yaml:"join"`

	// Key is the key column for group.
	Key string `yaml:"key"`

	// DatePairs configures calculate.
	DatePairs []types.DatePairSpec `yaml:"date_pairs"`

	// ComparePairs configures compare.
	ComparePairs []types.ComparisonPairSpec `yaml:"compare_pairs"`

	// Output is an explicit output file path. Its extension selects the
	// format when Format is empty.
	Output string `yaml:"output"`

	// Format overrides the global output format for this job.
	Format string `yaml:"format"`
}

// Primary returns the job's first table source: Input, or Left when Input
// is unset.
func (j Job) Primary() Source {
	if !j.Input.IsZero() {
		return j.Input
	}
	return j.Left
}

// Source is where a job table comes from: a file, or the output of an
// earlier job.
type Source struct {
	// File is a path to an .xlsx or .csv file.
	File string `yaml:"file"`

	// Sheet selects a worksheet of an XLSX file. Default: the first sheet.
	Sheet string `yaml:"sheet"`

	// From names an earlier job whose output is used as this table.
	From string `yaml:"from"`
}

// IsZero reports whether the source is unset.
func (s Source) IsZero() bool {
	return s.File == "" && s.From == ""
}

// String describes the source for logs.
func (s Source) String() string {
	switch {
	case s.From != "":
		return "job:" + s.From
	case s.Sheet != "":
		return s.File + "#" + s.Sheet
	default:
		return s.File
	}
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load loads a configuration file.
//
// PARAMETERS:
//   - path: The path to the YAML file.
//
// RETURNS:
//   - A pointer to the Config with defaults applied.
//   - An error if the file cannot be read, parsed, or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses and validates YAML configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied and no jobs.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for any unspecified configuration.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = FormatXLSX
	}
	if cfg.FileNameFormat == "" {
		cfg.FileNameFormat = "{name}"
	}
	if cfg.PreviewRows == 0 {
		cfg.PreviewRows = 100
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Locale == "" {
		cfg.Locale = transform.DefaultLocale
	}

	applyCSVDefaults(&cfg.CSVSettings)

	for i := range cfg.Jobs {
		job := &cfg.Jobs[i]
		if job.Name == "" {
			job.Name = fmt.Sprintf("job%d", i+1)
		}
		if mode, err := transform.ParseMode(job.Mode); err == nil {
			job.Mode = string(mode)
		}
	}
}

func applyCSVDefaults(s *CSVSettings) {
	if s.Delimiter == "" {
		s.Delimiter = ","
	}
	if s.HeaderRows == 0 {
		s.HeaderRows = 1
	}
	if s.DataStartRow == 0 {
		s.DataStartRow = s.HeaderRows + 1
	}
	if s.Encoding == "" {
		s.Encoding = "utf-8"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration again, for example after command-line
// overrides were applied.
func (c *Config) Validate() error {
	return validate(c)
}

// validate checks the configuration and reports every problem at once.
func validate(cfg *Config) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("log_level %q is not one of debug, info, warn, error", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		add("log_format %q is not one of text, json", cfg.LogFormat)
	}
	if !ValidFormat(cfg.OutputFormat) {
		add("output_format %q is not one of xlsx, csv, json, xml, sqlite", cfg.OutputFormat)
	}
	if cfg.PreviewRows < 0 {
		add("preview_rows must not be negative")
	}
	if cfg.Workers < 0 {
		add("workers must not be negative")
	}
	if cfg.CSVSettings.HeaderRows < 1 {
		add("csv_settings.header_rows must be at least 1")
	}
	if cfg.CSVSettings.DataStartRow <= cfg.CSVSettings.HeaderRows {
		add("csv_settings.data_start_row must come after the header rows")
	}

	seen := make(map[string]bool, len(cfg.Jobs))
	for i, job := range cfg.Jobs {
		where := fmt.Sprintf("jobs[%d] (%s)", i, job.Name)

		if seen[job.Name] {
			add("%s: duplicate job name", where)
		}

		mode, err := transform.ParseMode(job.Mode)
		if err != nil {
			add("%s: %v", where, err)
		}
		if err == nil {
			if perr := validation.CheckStatic(validation.Job{
				Mode:         string(mode),
				Keys:         job.Join,
				KeyColumn:    job.Key,
				DatePairs:    job.DatePairs,
				ComparePairs: job.ComparePairs,
			}); perr != nil {
				add("%s: %v", where, perr)
			}
		}
		if job.Format != "" && !ValidFormat(job.Format) {
			add("%s: format %q is not one of xlsx, csv, json, xml, sqlite", where, job.Format)
		}

		type namedSource struct {
			name string
			src  Source
		}
		var sources []namedSource
		if mode.TwoTables() {
			sources = []namedSource{{"left", job.Primary()}, {"right", job.Right}}
		} else if err == nil {
			sources = []namedSource{{"input", job.Primary()}}
		}
		for _, s := range sources {
			name, src := s.name, s.src
			switch {
			case src.IsZero():
				add("%s: %s needs a file or from", where, name)
			case src.File != "" && src.From != "":
				add("%s: %s sets both file and from", where, name)
			case src.From != "" && !seen[src.From]:
				add("%s: %s.from %q does not name an earlier job", where, name, src.From)
			}
		}

		seen[job.Name] = true
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ValidFormat reports whether format is a supported output format.
func ValidFormat(format string) bool {
	switch format {
	case FormatXLSX, FormatCSV, FormatJSON, FormatXML, FormatSQLite:
		return true
	}
	return false
}
