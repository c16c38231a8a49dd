// Package main is the entry point for the mockdock CLI.
package main

import "mockdock.dev/pkg/mockdock/cmd"

func main() {
	cmd.Execute()
}
