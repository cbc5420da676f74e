// Package logger configures the global zerolog logger: console and rolling
// file outputs split by level, plus a Prometheus counter of log statements.
package logger
