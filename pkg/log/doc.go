// Package log provides the logging abstraction used by the ainoship agent.
//
// The agent logs through the [Logger] interface. A zerolog adapter and a
// no-op logger are provided; the no-op logger is what the agent uses when
// no logger is configured.
//
// # Usage
//
//	logger := log.NewZerologLogger(zerolog.New(os.Stderr).With().Timestamp().Logger())
//	agent, err := ainoship.New(cfg, ainoship.WithLogger(logger))
//
// # Custom Loggers
//
// Implement the Logger interface to integrate with your existing
// logging infrastructure:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
package log
