package main

import (
	"context"

	"Mansoor88-6/timeclock/internal/cli"
)

func main() {
	cli.Execute(context.Background())
}
