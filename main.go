package main

import (
	"github.com/interchat/interchat/internal/cmd"
)

func main() {
	cmd.Execute()
}
