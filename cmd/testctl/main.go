package main

import (
	"os"

	"pagewatch/internal/testctl"
)

func main() { os.Exit(testctl.Main()) }
