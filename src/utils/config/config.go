package config

import (
	"bytes"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config stores global configuration
type Config struct {
	// Is development mode on
	IsDevelopment bool

	// REST API address. API used for monitoring etc.
	RESTListenAddress string

	// Maximum time the indexer will be closing before stop is forced.
	StopTimeout time.Duration

	// Logging level
	LogLevel string

	Database Database
	Redis    Redis
	Indexer  Indexer
}

func setDefaults() {
	viper.SetDefault("IsDevelopment", "false")
	viper.SetDefault("RESTListenAddress", ":7777")
	viper.SetDefault("LogLevel", "DEBUG")
	viper.SetDefault("StopTimeout", "30s")

	setDatabaseDefaults()
	setRedisDefaults()
	setIndexerDefaults()
}

func Default() (config *Config) {
	config, _ = Load("")
	return
}

// BindEnv visits every field and registers upper snake case ENV name for it.
// Slices of structs (e.g. chains) can only be set from the config file.
func BindEnv(path []string, val reflect.Value) {
	switch {
	case val.Kind() == reflect.Slice && val.Type().Elem().Kind() == reflect.Struct:
		return
	case val.Kind() != reflect.Struct:
		key := strings.ToLower(strings.Join(path, "."))
		env := "INDEXER_" + strcase.ToScreamingSnake(strings.Join(path, "_"))
		err := viper.BindEnv(key, env)
		if err != nil {
			panic(err)
		}
	default:
		for i := 0; i < val.NumField(); i++ {
			newPath := make([]string, len(path))
			copy(newPath, path)
			newPath = append(newPath, val.Type().Field(i).Name)
			BindEnv(newPath, val.Field(i))
		}
	}
}

func decoderConfig(c *mapstructure.DecoderConfig) {
	c.WeaklyTypedInput = true
	c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// Load configuration from file and env
func Load(filename string) (config *Config, err error) {
	viper.Reset()
	viper.SetConfigType("json")

	setDefaults()

	BindEnv([]string{}, reflect.ValueOf(Config{}))

	// Empty filename means we use default values
	if filename != "" {
		var content []byte
		/* #nosec */
		content, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}

		err = viper.ReadConfig(bytes.NewBuffer(content))
		if err != nil {
			return nil, err
		}
	}

	config = new(Config)
	err = viper.Unmarshal(config, decoderConfig)
	if err != nil {
		return nil, err
	}

	err = config.Indexer.Validate()
	if err != nil {
		return nil, err
	}

	return
}
