package main

import "github.com/krobinsonca/aries-oca-explorer/cmd"

func main() {
	cmd.Execute()
}
