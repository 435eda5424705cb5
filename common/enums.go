// Package common holds enums shared by configuration and conversion code.
package common

//go:generate go tool go-enum --marshal --names --values

// Handling of code cell stderr output wrappers.
// ENUM(keep, skip)
type StderrMode int

func (m StderrMode) Render() bool {
	return m != StderrModeSkip
}
