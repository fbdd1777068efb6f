// Package cli provides the command-line interface for vocabquiz: the cobra
// command tree, viper configuration and the validated Settings derived
// from both.
package cli
