package main

import "github.com/contriborg/contribsync/cmd"

func main() {
	cmd.Execute()
}
