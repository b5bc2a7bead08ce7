package main

import "github.com/naka-gawa/cgmanifest-schema/cmd"

func main() {
	cmd.Execute()
}
