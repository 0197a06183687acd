package main

import "ecofix/client/ecofix-cli/cmd"

func main() {
	cmd.Execute()
}
