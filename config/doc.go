// Package config loads the doubles configuration file.
//
// A configuration is YAML:
//
//	module:
//	  name: doubles
//	  doc: This module is implemented in Go
//	exports: [count_doubles, count_doubles_peek]
//	limits:
//	  max_request_size: 1048576
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  enabled: true
//	tracing:
//	  enabled: false
//
// Every key is optional; Default supplies the rest. DOUBLES_LOG_LEVEL and
// DOUBLES_MODULE_NAME override the file.
package config
