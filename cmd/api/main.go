// Larder API server entry point
package main

import (
	"flag"

	"github.com/larderapp/larder/internal/infrastructure/container"
)

func main() {
	configPath := flag.String("config", "", "directory containing config.yaml")
	flag.Parse()

	container.New(*configPath).Run()
}
