// Package parser provides tree-sitter based code parsing for multiple languages.
package parser

import "fmt"

// ParseError represents a parsing failure reported by the engine.
type ParseError struct {
	Message string
	File    string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: parse failed: %s", e.File, e.Message)
	}
	return fmt.Sprintf("parse failed: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnsupportedLanguageError is returned when attempting to parse an unsupported language.
type UnsupportedLanguageError struct {
	Language string
}

// Error implements the error interface.
func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %s", e.Language)
}

// GrammarLoadError is returned when a grammar cannot be loaded. It is
// permanent for the Parser that produced it.
type GrammarLoadError struct {
	Language string
	Path     string
	Err      error
}

// Error implements the error interface.
func (e *GrammarLoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("load %s grammar from %s: %v", e.Language, e.Path, e.Err)
	}
	return fmt.Sprintf("load %s grammar: %v", e.Language, e.Err)
}

// Unwrap returns the underlying error.
func (e *GrammarLoadError) Unwrap() error {
	return e.Err
}

// FileReadError is returned when a file cannot be read.
type FileReadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *FileReadError) Error() string {
	return fmt.Sprintf("failed to read file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *FileReadError) Unwrap() error {
	return e.Err
}
