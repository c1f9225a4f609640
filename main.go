package main

import "github.com/KaramelBytes/healthprep-cli/cmd"

func main() {
	cmd.Execute()
}
