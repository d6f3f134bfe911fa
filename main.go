/*
Copyright © 2023 Jonathan Taylor <jonrtaylor12@gmail.com>
*/

package main

import (
	"os"

	"platecalc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
