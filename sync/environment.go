package sync

import (
	"fmt"
	"os"
)

const (
	// ConfigFileEnvVar names an optional YAML file layered over the embedded defaults.
	ConfigFileEnvVar = "RECRUITBRIDGE_CONFIG"
	// CompositeEnvVar names an optional env var holding a JSON object of settings.
	CompositeEnvVar = "RECRUITBRIDGE"
)

type configOptions struct {
	env   EnvLookup
	files []MappingFile
}

// ConfigOption is a functional option for LoadConfig.
type ConfigOption func(*configOptions)

// ConfigWithEnvLookup replaces the process environment as the source of ${VAR} values.
func ConfigWithEnvLookup(env EnvLookup) ConfigOption {
	return func(o *configOptions) {
		o.env = env
	}
}

// ConfigWithMappingFile layers an extra mapping file over the defaults.
// Files are applied in the order given, later files win.
func ConfigWithMappingFile(f MappingFile) ConfigOption {
	return func(o *configOptions) {
		o.files = append(o.files, f)
	}
}

// LoadConfig loads the defaults mapping file plus any extra files and validates the result.
func LoadConfig(embeddedMappings EmbeddedMappings, opts ...ConfigOption) (Config, error) {
	options := configOptions{env: OSEnvVar{}}
	for _, opt := range opts {
		opt(&options)
	}

	var result Config
	defaultsMappingFile, err := embeddedMappings.MustFindDefaultsMappingFile()
	if err != nil {
		return result, fmt.Errorf("failed to read defaults mapping file %w", err)
	}

	sources := append([]MappingFile{defaultsMappingFile}, options.files...)
	result, err = YAMLConfigUnmarshaler{}.Unmarshal(options.env, sources...)
	if err != nil {
		return result, fmt.Errorf("failed to load config %w", err)
	}
	if err = result.Validate(); err != nil {
		return result, fmt.Errorf("invalid config %w", err)
	}
	return result, nil
}

// LoadConfigFromEnvironment loads config the way the service does at start up:
// embedded defaults, then the file named by RECRUITBRIDGE_CONFIG if set, with
// ${VAR} values read from RECRUITBRIDGE (JSON) and then the process environment.
func LoadConfigFromEnvironment(embeddedMappings EmbeddedMappings) (Config, error) {
	opts := []ConfigOption{ConfigWithEnvLookup(JSONCompositeEnvVar{Parent: CompositeEnvVar})}
	if p := os.Getenv(ConfigFileEnvVar); p != "" {
		f, err := MappingFileFromPath(p)
		if err != nil {
			return Config{}, err
		}
		opts = append(opts, ConfigWithMappingFile(f))
	}
	return LoadConfig(embeddedMappings, opts...)
}
