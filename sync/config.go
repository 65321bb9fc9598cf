package sync

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/iancoleman/strcase"
	"go.uber.org/config"
)

const (
	IdentifierSlug = "slug"
	IdentifierID   = "id"

	LogStoreMemory = "memory"
	LogStoreRedis  = "redis"
)

// Config is the process wide bridge configuration. It is read-only once loaded.
type Config struct {
	API APISettings
	// TargetFormName restricts processing to a single form, empty accepts every form.
	TargetFormName string
	DebugMode      bool
	RequiredFields []string
	// RequiredAction, when set, must appear in the trigger's configured form actions.
	RequiredAction string
	Company        EntitySettings
	Contact        EntitySettings
	Job            JobSettings
	Log            LogSettings
	Server         ServerSettings
}

type APISettings struct {
	Token    string
	Endpoint string
	// Identifier selects the record handle sent to dependent endpoints, "slug" or "id".
	Identifier string
	// RecordRequests is a directory, when set every request/response pair is recorded there.
	RecordRequests string `yaml:"recordRequests"`
}

// EntitySettings describes a searchable Recruit CRM collection.
type EntitySettings struct {
	KeyField      string        `yaml:"keyField"`
	SearchPath    string        `yaml:"searchPath"`
	SearchParam   string        `yaml:"searchParam"`
	CreatePath    string        `yaml:"createPath"`
	MatchField    string        `yaml:"matchField"`
	FieldMappings FieldMappings `yaml:"fieldMappings"`
}

type JobSettings struct {
	CreatePath       string               `yaml:"createPath"`
	DefaultTitle     string               `yaml:"defaultTitle"`
	NumberOfOpenings int                  `yaml:"numberOfOpenings"`
	CurrencyID       int                  `yaml:"currencyId"`
	FieldMappings    FieldMappings        `yaml:"fieldMappings"`
	DateFields       []string             `yaml:"dateFields"`
	CustomFields     []CustomFieldMapping `yaml:"customFields"`
}

// IsDateField reports whether the form field key holds a date.
func (s JobSettings) IsDateField(key string) bool {
	for _, f := range s.DateFields {
		if f == key {
			return true
		}
	}
	return false
}

// CustomFieldMapping maps a normalised form field key to a Recruit CRM custom field label.
type CustomFieldMapping struct {
	Key   string
	Label string
}

type LogSettings struct {
	Store      string
	RedisURL   string `yaml:"redisURL"`
	Key        string
	MaxEntries int `yaml:"maxEntries"`
}

type ServerSettings struct {
	Addr       string
	AdminToken string `yaml:"adminToken"`
}

// FieldMappings maps payload keys to gjson paths evaluated against the submitted fields.
// A path wrapped in backticks is a static value.
type FieldMappings struct {
	Strings  map[string]string
	Integers map[string]string
	Booleans map[string]string
}

func (m FieldMappings) AllKeys() []string {
	var result []string
	result = append(result, FieldMapsKeys(m.Strings)...)
	result = append(result, FieldMapsKeys(m.Integers)...)
	result = append(result, FieldMapsKeys(m.Booleans)...)
	return result
}

// TypeOf returns the mapping type label for a payload key.
func (m FieldMappings) TypeOf(key string) string {
	if _, exists := m.Strings[key]; exists {
		return "Text"
	}
	if _, exists := m.Integers[key]; exists {
		return "Number"
	}
	if _, exists := m.Booleans[key]; exists {
		return "Boolean"
	}
	return "Unknown"
}

// PathOf returns the source path mapped to a payload key.
func (m FieldMappings) PathOf(key string) string {
	if p, exists := m.Strings[key]; exists {
		return p
	}
	if p, exists := m.Integers[key]; exists {
		return p
	}
	return m.Booleans[key]
}

func FieldMapsKeys(m map[string]string) []string {
	result := make([]string, len(m))
	i := 0
	for k := range m {
		result[i] = k
		i++
	}
	return result
}

// Validate checks the values that would otherwise fail late, mid submission.
func (c Config) Validate() error {
	switch c.API.Identifier {
	case IdentifierSlug, IdentifierID:
	default:
		return fmt.Errorf("unsupported api identifier %q, expected %q or %q", c.API.Identifier, IdentifierSlug, IdentifierID)
	}
	switch c.Log.Store {
	case LogStoreMemory, LogStoreRedis:
	default:
		return fmt.Errorf("unsupported log store %q", c.Log.Store)
	}
	if c.Log.MaxEntries < 1 {
		return fmt.Errorf("log maxEntries must be positive, have %d", c.Log.MaxEntries)
	}
	if c.API.Endpoint == "" {
		return fmt.Errorf("api endpoint is required")
	}
	for _, e := range []struct {
		name     string
		settings EntitySettings
	}{{"company", c.Company}, {"contact", c.Contact}} {
		if e.settings.KeyField == "" || e.settings.CreatePath == "" || e.settings.MatchField == "" {
			return fmt.Errorf("%s requires keyField, createPath and matchField", e.name)
		}
	}
	return nil
}

// EnvLookup resolves ${VAR:default} references in mapping files.
type EnvLookup interface {
	LookupEnv(name string) (string, bool)
}

// OSEnvVar looks variables up in the process environment.
type OSEnvVar struct{}

func (OSEnvVar) LookupEnv(name string) (string, bool) {
	return os.LookupEnv(name)
}

// MapEnvVar looks variables up in a fixed map.
type MapEnvVar map[string]string

func (m MapEnvVar) LookupEnv(name string) (string, bool) {
	v, exists := m[name]
	return v, exists
}

// JSONCompositeEnvVar reads variables from a single env var holding a JSON object,
// e.g. RECRUITBRIDGE='{"RECRUITCRM_API_TOKEN":"..."}'. Names missing from the
// object fall back to the process environment.
type JSONCompositeEnvVar struct {
	Parent string
}

func (c JSONCompositeEnvVar) LookupEnv(child string) (string, bool) {
	if c.Parent != "" {
		s := os.Getenv(c.Parent)
		if s != "" {
			m := make(map[string]string)
			err := json.Unmarshal([]byte(s), &m)
			if err == nil {
				if v, exists := m[child]; exists {
					return v, true
				}
			}
		}
	}
	return os.LookupEnv(child)
}

type YAMLConfigUnmarshaler struct{}

func (u YAMLConfigUnmarshaler) Unmarshal(env EnvLookup, sources ...MappingFile) (Config, error) {
	var result Config
	var options []config.YAMLOption
	for _, s := range sources {
		if s.Length > 0 {
			options = append(options, config.Source(s.Reader))
		}
	}
	options = append(options, config.Expand(env.LookupEnv))
	yaml, err := config.NewYAML(options...)
	if err != nil {
		return result, fmt.Errorf("failed to read yaml config %w", err)
	}
	readError := func(key string, cause error) error {
		return fmt.Errorf("failed to read '%s' from yaml config %w", key, cause)
	}
	key := "api"
	err = yaml.Get(key).Populate(&result.API)
	if err != nil {
		return result, readError(key, err)
	}
	key = "targetFormName"
	err = yaml.Get(key).Populate(&result.TargetFormName)
	if err != nil {
		return result, readError(key, err)
	}
	key = "debugMode"
	if yaml.Get(key).HasValue() {
		err = yaml.Get(key).Populate(&result.DebugMode)
		if err != nil {
			return result, readError(key, err)
		}
	}
	key = "requiredAction"
	err = yaml.Get(key).Populate(&result.RequiredAction)
	if err != nil {
		return result, readError(key, err)
	}
	key = "requiredFields"
	err = yaml.Get(key).Populate(&result.RequiredFields)
	if err != nil {
		return result, readError(key, err)
	}
	key = "company"
	err = yaml.Get(key).Populate(&result.Company)
	if err != nil {
		return result, readError(key, err)
	}
	key = "contact"
	err = yaml.Get(key).Populate(&result.Contact)
	if err != nil {
		return result, readError(key, err)
	}
	key = "job"
	err = yaml.Get(key).Populate(&result.Job)
	if err != nil {
		return result, readError(key, err)
	}
	key = "log"
	err = yaml.Get(key).Populate(&result.Log)
	if err != nil {
		return result, readError(key, err)
	}
	key = "server"
	err = yaml.Get(key).Populate(&result.Server)
	if err != nil {
		return result, readError(key, err)
	}

	result.API.Token = strings.TrimSpace(result.API.Token)
	result.API.Endpoint = strings.TrimRight(result.API.Endpoint, "/")
	for i, f := range result.Job.CustomFields {
		if f.Label == "" {
			result.Job.CustomFields[i].Label = DefaultLabel(f.Key)
		}
	}

	return result, nil
}

// DefaultLabel derives a human readable label from a form field key,
// e.g. "job_department" -> "Job Department".
func DefaultLabel(key string) string {
	var words []string
	for _, s := range strings.Split(strcase.ToSnake(key), "_") {
		if s != "" {
			words = append(words, strcase.ToCamel(s))
		}
	}
	return strings.Join(words, " ")
}
