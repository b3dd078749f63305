// Package main is the entry point for the skillsync CLI.
package main

import "github.com/skillsync/skillsync/internal/cli"

func main() {
	cli.Execute()
}
