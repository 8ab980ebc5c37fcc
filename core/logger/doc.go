// Package logger reports interpreter diagnostics and traces process launches.
package logger
