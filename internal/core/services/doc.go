// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The dual index, embedding service and parsers are constructed by the
// caller and passed in explicitly; services hold no global state.
package services
