// Package entities provides the domain types shared by the extension module,
// its registry, and the host runtime adapters.
// They carry no behavior beyond formatting and construction helpers.
package entities
