// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads the msgqdemo configuration.
//
// Values come from, in increasing precedence: built-in defaults, an
// optional YAML file, and MSGQ_* environment variables. The environment
// key for a setting is its dotted path upper-cased with dots and dashes
// turned into underscores, e.g. producer.send-timeout is
// MSGQ_PRODUCER_SEND_TIMEOUT.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"code.hybscloud.com/msgq"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MSGQ"

// Queue sizes the shared message queue.
type Queue struct {
	Capacity int `mapstructure:"capacity" yaml:"capacity"`
	Spin     int `mapstructure:"spin" yaml:"spin"`
}

// Scheduler sets the tick source period.
type Scheduler struct {
	TickRate time.Duration `mapstructure:"tick-rate" yaml:"tick-rate"`
}

// Task holds the create_task parameters. Both are advisory under Go.
type Task struct {
	Priority  int `mapstructure:"priority" yaml:"priority"`
	StackSize int `mapstructure:"stack-size" yaml:"stack-size"`
}

// Producer configures the periodic message source.
type Producer struct {
	Task        `mapstructure:",squash" yaml:",inline"`
	Period      time.Duration `mapstructure:"period" yaml:"period"`
	SendTimeout time.Duration `mapstructure:"send-timeout" yaml:"send-timeout"`
	Overflow    string        `mapstructure:"overflow" yaml:"overflow"` // drop/block
	FirstID     uint32        `mapstructure:"first-id" yaml:"first-id"`
	Source      string        `mapstructure:"source" yaml:"source"` // counter/random
	Seed        uint64        `mapstructure:"seed" yaml:"seed"`
	Min         int32         `mapstructure:"min" yaml:"min"`
	Max         int32         `mapstructure:"max" yaml:"max"`
}

// Consumer configures the receiving task and its handler.
type Consumer struct {
	Task `mapstructure:",squash" yaml:",inline"`
	// ReceiveTimeout of 0 polls with backoff instead of waiting.
	ReceiveTimeout time.Duration `mapstructure:"receive-timeout" yaml:"receive-timeout"`
	Handler        string        `mapstructure:"handler" yaml:"handler"` // log/aggregate/both
}

// Logger selects the zap level and encoding.
type Logger struct {
	Level    string `mapstructure:"level" yaml:"level"`
	Encoding string `mapstructure:"encoding" yaml:"encoding"` // json/console
}

// Run bounds the demo's lifetime.
type Run struct {
	// Duration stops the demo after this long; 0 runs until interrupted.
	Duration        time.Duration `mapstructure:"duration" yaml:"duration"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout" yaml:"shutdown-timeout"`
}

// Config is the top-level demo configuration.
type Config struct {
	Queue     Queue     `mapstructure:"queue" yaml:"queue"`
	Scheduler Scheduler `mapstructure:"scheduler" yaml:"scheduler"`
	Producer  Producer  `mapstructure:"producer" yaml:"producer"`
	Consumer  Consumer  `mapstructure:"consumer" yaml:"consumer"`
	Logger    Logger    `mapstructure:"logger" yaml:"logger"`
	Run       Run       `mapstructure:"run" yaml:"run"`
}

// Default returns the built-in configuration: a 5-slot queue, a 1000 Hz
// tick, a producer every 100ms that drops after 10ms, and an
// aggregating consumer that wakes at least once a second.
func Default() Config {
	return Config{
		Queue:     Queue{Capacity: 5},
		Scheduler: Scheduler{TickRate: time.Millisecond},
		Producer: Producer{
			Task:        Task{Priority: 2, StackSize: 4096},
			Period:      100 * time.Millisecond,
			SendTimeout: 10 * time.Millisecond,
			Overflow:    "drop",
			FirstID:     1,
			Source:      "counter",
			Seed:        1,
			Min:         0,
			Max:         1000,
		},
		Consumer: Consumer{
			Task:           Task{Priority: 1, StackSize: 4096},
			ReceiveTimeout: time.Second,
			Handler:        "aggregate",
		},
		Logger: Logger{Level: "info", Encoding: "console"},
		Run:    Run{ShutdownTimeout: 5 * time.Second},
	}
}

// Load reads path (may be empty) and the environment over Default and
// validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("queue.capacity", d.Queue.Capacity)
	v.SetDefault("queue.spin", d.Queue.Spin)
	v.SetDefault("scheduler.tick-rate", d.Scheduler.TickRate)

	v.SetDefault("producer.priority", d.Producer.Priority)
	v.SetDefault("producer.stack-size", d.Producer.StackSize)
	v.SetDefault("producer.period", d.Producer.Period)
	v.SetDefault("producer.send-timeout", d.Producer.SendTimeout)
	v.SetDefault("producer.overflow", d.Producer.Overflow)
	v.SetDefault("producer.first-id", d.Producer.FirstID)
	v.SetDefault("producer.source", d.Producer.Source)
	v.SetDefault("producer.seed", d.Producer.Seed)
	v.SetDefault("producer.min", d.Producer.Min)
	v.SetDefault("producer.max", d.Producer.Max)

	v.SetDefault("consumer.priority", d.Consumer.Priority)
	v.SetDefault("consumer.stack-size", d.Consumer.StackSize)
	v.SetDefault("consumer.receive-timeout", d.Consumer.ReceiveTimeout)
	v.SetDefault("consumer.handler", d.Consumer.Handler)

	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.encoding", d.Logger.Encoding)

	v.SetDefault("run.duration", d.Run.Duration)
	v.SetDefault("run.shutdown-timeout", d.Run.ShutdownTimeout)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Queue.Capacity < 1 {
		errs = append(errs, fmt.Errorf("queue.capacity must be >= 1, got %d", c.Queue.Capacity))
	}
	if c.Queue.Spin < 0 {
		errs = append(errs, fmt.Errorf("queue.spin must be >= 0, got %d", c.Queue.Spin))
	}
	if c.Scheduler.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.tick-rate must be > 0, got %s", c.Scheduler.TickRate))
	}
	if c.Producer.Period < 0 {
		errs = append(errs, fmt.Errorf("producer.period must be >= 0, got %s", c.Producer.Period))
	}
	if c.Producer.SendTimeout < 0 {
		errs = append(errs, fmt.Errorf("producer.send-timeout must be >= 0, got %s", c.Producer.SendTimeout))
	}
	if _, err := msgq.ParseOverflowPolicy(c.Producer.Overflow); err != nil {
		errs = append(errs, fmt.Errorf("producer.overflow: %w", err))
	}
	switch c.Producer.Source {
	case "counter":
	case "random":
		if c.Producer.Min > c.Producer.Max {
			errs = append(errs, fmt.Errorf("producer.min %d exceeds producer.max %d", c.Producer.Min, c.Producer.Max))
		}
	default:
		errs = append(errs, fmt.Errorf("producer.source must be counter or random, got %q", c.Producer.Source))
	}
	if c.Consumer.ReceiveTimeout < 0 {
		errs = append(errs, fmt.Errorf("consumer.receive-timeout must be >= 0, got %s", c.Consumer.ReceiveTimeout))
	}
	switch c.Consumer.Handler {
	case "log", "aggregate", "both":
	default:
		errs = append(errs, fmt.Errorf("consumer.handler must be log, aggregate or both, got %q", c.Consumer.Handler))
	}
	if _, err := zapcore.ParseLevel(c.Logger.Level); err != nil {
		errs = append(errs, fmt.Errorf("logger.level: %w", err))
	}
	switch c.Logger.Encoding {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logger.encoding must be json or console, got %q", c.Logger.Encoding))
	}
	if c.Run.Duration < 0 {
		errs = append(errs, fmt.Errorf("run.duration must be >= 0, got %s", c.Run.Duration))
	}
	if c.Run.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("run.shutdown-timeout must be > 0, got %s", c.Run.ShutdownTimeout))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: yaml marshal: %w", err)
	}
	return data, nil
}
