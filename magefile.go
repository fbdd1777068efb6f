//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary  = "vocabquiz"
	mainPkg = "./cmd/vocabquiz"
)

// Default target to run when none is specified
var Default = Build

// Build builds the vocabquiz binary. go-sqlite3 needs cgo.
func Build() error {
	fmt.Println("Building", binary)
	env := map[string]string{"CGO_ENABLED": "1"}
	return sh.RunWith(env, "go", "build", "-o", binary, mainPkg)
}

// Install installs vocabquiz into GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.Run("go", "install", mainPkg)
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Race runs all tests with the race detector
func Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build artifacts
func Clean() error {
	fmt.Println("Cleaning")
	return os.RemoveAll(binary)
}
