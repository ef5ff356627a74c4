package main

import "github.com/mdekker/adocgen/cmd"

func main() {
	cmd.Execute()
}
