// Package models lists the OpenAI and Gemini models available to an API key
// and runs a one-prompt connectivity check against the configured text model.
package models
