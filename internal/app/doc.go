// Package app wires config, logging, the content generator, the
// notification dispatcher and the polling loop into one runnable service.
package app
