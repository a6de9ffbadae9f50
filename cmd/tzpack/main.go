package main

import "github.com/oshokin/tzpack/cmd/tzpack/cmd"

func main() {
	cmd.Execute()
}
