// Package tui is the terminal frontend of the quiz, built with bubbletea.
package tui
