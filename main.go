package main

import (
	"os"

	"yatube/service"
)

var exit = os.Exit

func main() {
	exit(service.Execute())
}
