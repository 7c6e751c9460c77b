package main

import (
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/cli"
)

func main() {
	cli.Execute()
}
