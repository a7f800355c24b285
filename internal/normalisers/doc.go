// Package normalisers provides implementations of the Normaliser interface
// for the course file formats. Each normaliser knows how to extract text
// content from a specific file extension.
//
// Normalisers are registered with the Registry at startup.
package normalisers
