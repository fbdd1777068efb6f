// Package archive keeps previous exports around instead of overwriting them.
package archive
