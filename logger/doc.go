// Package logger provides structured logging on top of zerolog.
//
// Logs are written to stderr by default; stdout is reserved for result
// records. Components take a named logger from the registry:
//
//	log := logger.Get("dag")
//	log.Debug("node computed", logger.Fields("node", "tokens", "records", 12))
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
package logger
