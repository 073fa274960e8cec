// Package logger provides the structured logging facility based on Zap.
//
// New builds a development logger for the debug level and a production
// logger otherwise. The console format uses colored capital levels and no
// stack traces; json is used everywhere else.
//
// # Context
//
// WithRayID attaches the request RayID stored by the rayid middleware so
// every line logged while serving a request can be correlated. WithRun does
// the same for the id of a synchronization run.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "json"})
//	log.Info("Sync started")
//
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
