package main

import "civicreporter-be/cmd"

func main() {
	cmd.Execute()
}
