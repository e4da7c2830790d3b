package main

import (
	"example.com/backstage/services/assets/cmd"
)

func main() {
	cmd.Execute()
}
