package main

import "github.com/KaramelBytes/polittrack-cli/cmd"

func main() {
	cmd.Execute()
}
