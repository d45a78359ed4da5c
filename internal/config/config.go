package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/gputemps/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix  = "GPUTEMPS"
	DefaultInterval   = 1
	DefaultMemPath    = "/dev/mem"
	DefaultSysfsPath  = "/sys/bus/pci/devices"
	DefaultBufferSize = 1024
	MinBufferSize     = 256

	defaultConfigName = "gputemps"
	defaultConfigDir  = "/etc"
)

type Config struct {
	Interval   int       `mapstructure:"interval"`
	Debug      bool      `mapstructure:"debug"`
	Verbose    bool      `mapstructure:"verbose"`
	LogLevel   LogLevel  `mapstructure:"log_level"`
	Color      ColorMode `mapstructure:"color"`
	MemPath    string    `mapstructure:"mem_path"`
	SysfsPath  string    `mapstructure:"sysfs_path"`
	BufferSize int       `mapstructure:"buffer_size"`

	// Args holds the positional arguments left after flag parsing.
	Args []string `mapstructure:"-"`
}

// Load reads configuration from defaults, the TOML config file, GPUTEMPS_*
// environment variables and args, in increasing order of precedence.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{
		name:      defaultConfigName,
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}
	if o.configPath == "" {
		o.configPath = os.Getenv(o.envPrefix + "_CONFIG")
	}

	flags := pflag.NewFlagSet(o.name, pflag.ContinueOnError)
	flags.Int("interval", DefaultInterval, "Seconds between refreshes")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")
	flags.String("log-level", "", "Log level (debug, info, warning, error)")
	flags.String("color", string(ColorAuto), "Colorize output (auto, always, never)")
	flags.String("mem-path", DefaultMemPath, "Physical memory device")
	flags.String("sysfs-path", DefaultSysfsPath, "PCI devices directory in sysfs")
	flags.Int("buffer-size", DefaultBufferSize, "Maximum size of one rendered frame in bytes")

	if err := flags.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("color", string(ColorAuto))
	v.SetDefault("mem_path", DefaultMemPath)
	v.SetDefault("sysfs_path", DefaultSysfsPath)
	v.SetDefault("buffer_size", DefaultBufferSize)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if o.configPath != "" {
		v.SetConfigFile(o.configPath)
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("toml")
		v.AddConfigPath(defaultConfigDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	// Flags only override other sources when set explicitly
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, bindErr)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	cfg.Args = flags.Args()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges that viper cannot express.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.LogLevel != "" && !c.LogLevel.IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if !c.Color.IsValid() {
		return errFactory.WithData(errors.ErrInvalidConfig, "color: "+string(c.Color))
	}
	if c.BufferSize < MinBufferSize {
		return errFactory.WithData(errors.ErrInvalidConfig, "buffer_size below minimum")
	}
	if c.MemPath == "" || c.SysfsPath == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "empty device path")
	}

	return nil
}

// IsHelp reports whether err was caused by -h/--help.
func IsHelp(err error) bool {
	return errors.Is(err, pflag.ErrHelp)
}
