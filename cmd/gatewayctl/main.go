package main

import (
	"log"

	tool "github.com/registrack/backoffice-gateway/internal/tools/ctl"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
