package main

import "lake-validator/cmd"

func main() {
	cmd.Execute()
}
