package logger

import (
	"sync"
)

// registry holds named component loggers.
var registry = &loggerRegistry{
	loggers: make(map[string]*Logger),
	derived: make(map[string]bool),
}

type loggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
	// derived marks entries created by Get from the global logger.
	derived map[string]bool
}

// Register stores a named logger in the registry.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[name] = l
	delete(registry.derived, name)
}

// Get retrieves a named logger. Unregistered names get the global logger
// tagged with the component name.
func Get(name string) *Logger {
	registry.mu.RLock()
	l, ok := registry.loggers[name]
	registry.mu.RUnlock()
	if ok {
		return l
	}

	l = GetGlobalLogger().WithComponent(name)
	registry.mu.Lock()
	registry.loggers[name] = l
	registry.derived[name] = true
	registry.mu.Unlock()
	return l
}

func resetDerived() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	for name := range registry.derived {
		delete(registry.loggers, name)
	}
	registry.derived = make(map[string]bool)
}
