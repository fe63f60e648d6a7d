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

package groupby

import (
	"github.com/rulego/groupby/logger"
	"github.com/rulego/groupby/types"
)

// Option 表示对聚合引擎默认行为的修改配置。
type Option func(*Engine)

// WithConfig 使用完整配置替换默认配置。
func WithConfig(cfg types.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithConfigFile 从 TOML 文件加载配置。
//
// 示例:
//
//	engine, err := groupby.New(groupby.WithConfigFile("groupby.toml"))
func WithConfigFile(path string) Option {
	return func(e *Engine) {
		cfg, err := types.LoadConfig(path)
		if err != nil {
			e.err = err
			return
		}
		e.cfg = cfg
	}
}

// WithWorkers 设置并行扫描的工作协程数
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.cfg.Workers = n
	}
}

// WithMergeFanIn 设置合并归约树的并行度，1 表示顺序合并
func WithMergeFanIn(n int) Option {
	return func(e *Engine) {
		e.cfg.MergeFanIn = n
	}
}

// WithMemoryLimit 限制每个分组表的内存字节数
func WithMemoryLimit(bytes int64) Option {
	return func(e *Engine) {
		e.cfg.MaxMemoryBytes = bytes
	}
}

// WithMaxGroups 限制每个分组表的分组数
func WithMaxGroups(n int) Option {
	return func(e *Engine) {
		e.cfg.MaxGroups = n
	}
}

// WithCheckedOffsets 开启状态槽位的类型与边界检查，用于调试
func WithCheckedOffsets() Option {
	return func(e *Engine) {
		e.cfg.CheckedOffsets = true
	}
}

// WithLogger 设置自定义日志记录器。
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithLogLevel 设置日志级别。
func WithLogLevel(level logger.Level) Option {
	return func(e *Engine) {
		e.cfg.Log.Level = level.String()
	}
}

// WithDiscardLog 禁用日志输出
func WithDiscardLog() Option {
	return func(e *Engine) {
		e.log = logger.NewDiscardLogger()
	}
}
