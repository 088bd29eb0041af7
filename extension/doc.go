// Package extension defines the doubles extension module: its name, doc
// string, and the table of exported entry points a host can call.
//
// Every export takes one string and returns one unsigned count. Through a
// HandlerRegistry the wire shape is
//
//	request:  {"val": "aabbcc"}
//	response: {"total": 3}
//
// A non-string or missing "val" is rejected with a VALIDATION_ERROR
// response before any counting happens. The "describe" export returns the
// module manifest, including the JSON Schema of both shapes.
package extension
