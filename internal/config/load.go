package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "HOUSEKEEPER_CONFIG"

// Load reads the file named by HOUSEKEEPER_CONFIG, or starts from defaults
// when it is unset, then applies environment overrides and validates.
func Load() (*Config, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return LoadFromPath(path)
	}
	cfg := Default()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath reads a YAML file on top of the defaults, applies environment
// overrides and validates.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults, applies environment overrides
// and validates. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overwrites every field tagged `env:"NAME"` whose variable is set.
func applyEnv(cfg *Config) error {
	return applyEnvValue(reflect.ValueOf(cfg).Elem())
}

func applyEnvValue(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := applyEnvValue(fv); err != nil {
				return err
			}
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}
		raw, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if err := setField(fv, raw); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	return nil
}

func setField(fv reflect.Value, raw string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		fv.SetInt(n)
	default:
		return fmt.Errorf("unsupported kind %s", fv.Kind())
	}
	return nil
}

// Validate checks backend names, schedules and numeric ranges.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Backend {
	case DatabaseFirestore:
		if c.Database.ProjectID == "" {
			errs = append(errs, errors.New("database.projectId is required for firestore"))
		}
	case DatabaseOxia:
		if c.Database.OxiaEndpoint == "" {
			errs = append(errs, errors.New("database.oxiaEndpoint is required for oxia"))
		}
		if c.Database.OxiaNamespace == "" {
			errs = append(errs, errors.New("database.oxiaNamespace is required for oxia"))
		}
	case DatabaseMemory:
	default:
		errs = append(errs, fmt.Errorf("database.backend %q is not one of firestore, oxia, memory", c.Database.Backend))
	}

	switch c.ObjectStore.Backend {
	case ObjectStoreGCS, ObjectStoreS3:
		if c.ObjectStore.Bucket == "" {
			errs = append(errs, errors.New("objectStore.bucket is required"))
		}
	case ObjectStoreMinIO:
		if c.ObjectStore.Bucket == "" {
			errs = append(errs, errors.New("objectStore.bucket is required"))
		}
		if c.ObjectStore.Endpoint == "" {
			errs = append(errs, errors.New("objectStore.endpoint is required for minio"))
		}
	case ObjectStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("objectStore.backend %q is not one of gcs, s3, minio, memory", c.ObjectStore.Backend))
	}

	if c.Jobs.Expiry.Enabled {
		if _, err := cron.ParseStandard(c.Jobs.Expiry.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("jobs.expiry.schedule: %w", err))
		}
	}
	if c.Jobs.Storage.Enabled {
		if _, err := cron.ParseStandard(c.Jobs.Storage.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("jobs.storage.schedule: %w", err))
		}
	}
	if c.Jobs.Expiry.Parallelism < 1 {
		errs = append(errs, errors.New("jobs.expiry.parallelism must be at least 1"))
	}
	if c.Jobs.Expiry.BatchSize < 1 || c.Jobs.Expiry.BatchSize > 500 {
		errs = append(errs, errors.New("jobs.expiry.batchSize must be between 1 and 500"))
	}
	if c.Jobs.Expiry.TimeoutMs < 0 || c.Jobs.Storage.TimeoutMs < 0 {
		errs = append(errs, errors.New("jobs timeouts must not be negative"))
	}
	if c.Jobs.Storage.Prefix == "" {
		errs = append(errs, errors.New("jobs.storage.prefix is required"))
	}
	if c.Jobs.Storage.WarnThresholdBytes <= 0 {
		errs = append(errs, errors.New("jobs.storage.warnThresholdBytes must be positive"))
	}
	if c.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listenAddr is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}
	return nil
}
