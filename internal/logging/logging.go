// Package logging names the commonlog loggers used across envx.
package logging

import (
	"github.com/tliron/commonlog"
)

const rootName = "envx"

// Get returns the logger for component, e.g. "vm" -> envx.vm.
func Get(component string) commonlog.Logger {
	return commonlog.GetLogger(rootName + "." + component)
}

// Configure sets the global verbosity and log destination. An empty path
// logs to stderr. A negative verbosity disables logging.
func Configure(verbosity int, path string) {
	if path == "" {
		commonlog.Configure(verbosity, nil)
		return
	}
	commonlog.Configure(verbosity, &path)
}
