// Package autoload configures the global logger from LOG_* environment
// variables as an import side effect.
package autoload

import (
	configx "github.com/jewelryops/agent/pkg/config"
	logx "github.com/jewelryops/agent/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
