package core

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config contains all of the configuration options available to the wordgate
// server and client.
type Config struct {
	// Hostname or IP address on which the server will listen for connections.
	Hostname string `mapstructure:"hostname"`
	// IP address or hostname the client dials.
	ServerIP string `mapstructure:"server_ip"`
	// Port on which the server listens and to which the client connects.
	ServerPort int `mapstructure:"server_port"`
	// Full path to file to which logs will be written. Blank will write to stdout.
	LogFilePath string `mapstructure:"log_file_path"`
	// Minimum level of a log required to be written. Options: debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`

	WordStore struct {
		// Full (or relative to the current directory) path to the file
		// containing the delimiter-separated word sequence.
		Filename string `mapstructure:"filename"`
	} `mapstructure:"word_store"`

	Client struct {
		// Maximum number of words requested per page (k).
		PageSize int `mapstructure:"page_size"`
		// Index of the first word to request (p).
		StartOffset int `mapstructure:"start_offset"`
	} `mapstructure:"client"`

	Database struct {
		// Whether completed sessions are persisted at all.
		Enabled bool `mapstructure:"enabled"`
		// Which database backend to use: sqlite or postgres.
		Engine string `mapstructure:"engine"`
		// Path to the sqlite database file.
		Filename string `mapstructure:"filename"`
		// Hostname of the Postgres database instance.
		Host string `mapstructure:"host"`
		// Port on db_host on which the Postgres instance is accepting connections.
		Port int `mapstructure:"port"`
		// Name of the database in Postgres for wordgate.
		Name string `mapstructure:"name"`
		// Username and password of a user with full RW privileges to ${db_name}.
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		// Set to verify-full if the Postgres instance supports SSL.
		SSLMode string `mapstructure:"sslmode"`
	} `mapstructure:"database"`

	Web struct {
		// HTTP endpoint port for the debug/metrics listener.
		HTTPPort int `mapstructure:"http_port"`
	} `mapstructure:"web"`

	Debugging struct {
		// Enable the pprof/metrics HTTP listener for the server.
		PprofEnabled bool `mapstructure:"pprof_enabled"`
	} `mapstructure:"debugging"`
}

const envVarPrefix = "WORDGATE"

// LoadConfig initializes Viper with the contents of the config file under
// configPath and returns the unmarshalled Config.
func LoadConfig(configPath string) *Config {
	viper.AddConfigPath(configPath)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix(envVarPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			fmt.Printf("error reading config file: no config file in path %s\n", configPath)
		} else {
			fmt.Printf("error reading config file: %v\n", err)
		}
		os.Exit(1)
	}

	// This allows us to set nested yaml config options through environment
	// variables. For example, database.host can be set using: <envVarPrefix>_DATABASE_HOST
	for _, k := range viper.AllKeys() {
		envVar := strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := viper.BindEnv(k, envVarPrefix+"_"+envVar); err != nil {
			fmt.Printf("error binding %s to %s\n", k, envVarPrefix+"_"+envVar)
			os.Exit(1)
		}
	}

	// The short K and P variables are the env contract the original tooling
	// around this protocol expects, so keep honoring them.
	_ = viper.BindEnv("client.page_size", envVarPrefix+"_CLIENT_PAGE_SIZE", "K")
	_ = viper.BindEnv("client.start_offset", envVarPrefix+"_CLIENT_START_OFFSET", "P")

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		fmt.Printf("error unmarshaling config object: %v\n", err)
		os.Exit(1)
	}
	return config
}

// ServerAddr returns the listen address for the server.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Hostname, c.ServerPort)
}

// DialAddr returns the address the client connects to.
func (c *Config) DialAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerIP, c.ServerPort)
}

const databaseURITemplate = "host=%s port=%d dbname=%s user=%s password=%s sslmode=%s"

// DatabaseURL returns a Postgres connection string generated from the
// configured database values.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		databaseURITemplate,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.Username,
		c.Database.Password,
		c.Database.SSLMode,
	)
}

// ValidateServer checks that the options the server cannot start without are
// present.
func (c *Config) ValidateServer() error {
	if c.ServerPort == 0 {
		return errors.New("missing required config parameter: server_port")
	}
	if c.WordStore.Filename == "" {
		return errors.New("missing required config parameter: word_store.filename")
	}
	return nil
}

// ValidateClient checks that the options the client cannot run without are
// present.
func (c *Config) ValidateClient() error {
	if c.ServerPort == 0 {
		return errors.New("missing required config parameter: server_port")
	}
	if c.Client.PageSize < 1 {
		return fmt.Errorf("client.page_size must be positive, got %d", c.Client.PageSize)
	}
	return nil
}
