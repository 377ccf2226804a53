// Package provider builds the configured transcription.Provider.
package provider
