/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/rulego/groupby/logger"
)

// Config 聚合引擎配置
type Config struct {
	// Workers is the number of parallel scan workers, one group table each.
	Workers int `toml:"workers" json:"workers"`
	// InitialCapacity is the expected number of groups per table.
	InitialCapacity int `toml:"initial_capacity" json:"initialCapacity"`
	// MaxGroups caps the number of groups per table, 0 means unlimited.
	MaxGroups int `toml:"max_groups" json:"maxGroups"`
	// MaxMemoryBytes caps key and region memory per table, 0 means unlimited.
	MaxMemoryBytes int64 `toml:"max_memory_bytes" json:"maxMemoryBytes"`
	// CheckedOffsets verifies slot type and bounds on every region access.
	CheckedOffsets bool `toml:"checked_offsets" json:"checkedOffsets"`
	// MergeFanIn is the parallelism of the merge reduction tree. 1 merges
	// sequentially.
	MergeFanIn int `toml:"merge_fan_in" json:"mergeFanIn"`
	// CancelCheckInterval is the number of rows a worker scans between
	// context polls.
	CancelCheckInterval int `toml:"cancel_check_interval" json:"cancelCheckInterval"`

	Log LogConfig `toml:"log" json:"log"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level     string `toml:"level" json:"level"`           // debug, info, warn, error, off
	File      string `toml:"file" json:"file"`             // 日志文件路径，为空时输出到stdout
	MaxSizeMB int    `toml:"max_size_mb" json:"maxSizeMB"` // 单个日志文件最大大小
	MaxBackup int    `toml:"max_backup" json:"maxBackup"`  // 保留的旧日志文件数量
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Workers:             runtime.NumCPU(),
		InitialCapacity:     1024,
		MergeFanIn:          runtime.NumCPU(),
		CancelCheckInterval: 4096,
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 64,
			MaxBackup: 3,
		},
	}
}

// DebugConfig 调试配置预设，开启偏移量检查并串行执行
func DebugConfig() Config {
	c := DefaultConfig()
	c.Workers = 1
	c.MergeFanIn = 1
	c.CheckedOffsets = true
	c.CancelCheckInterval = 1
	c.Log.Level = "debug"
	return c
}

// LoadConfig reads a TOML config file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, errors.Wrapf(err, "load config %s", path)
	}
	return c, c.Validate()
}

// ParseConfig decodes TOML text on top of DefaultConfig.
func ParseConfig(text string) (Config, error) {
	c := DefaultConfig()
	if _, err := toml.Decode(text, &c); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	return c, c.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Workers < 1:
		return errors.Newf("workers must be positive, got %d", c.Workers)
	case c.MergeFanIn < 1:
		return errors.Newf("merge_fan_in must be positive, got %d", c.MergeFanIn)
	case c.CancelCheckInterval < 1:
		return errors.Newf("cancel_check_interval must be positive, got %d", c.CancelCheckInterval)
	case c.InitialCapacity < 0, c.MaxGroups < 0, c.MaxMemoryBytes < 0:
		return errors.New("capacities and limits must not be negative")
	}
	if _, ok := logger.LookupLevel(c.Log.Level); c.Log.Level != "" && !ok {
		return errors.Newf("unknown log level %q", c.Log.Level)
	}
	return nil
}
