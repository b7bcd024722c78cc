package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"rooftop-vision/config"
	"rooftop-vision/providers"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
)

func main() {
	log.SetHandler(cli.New(os.Stderr))
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run analyzes the image named by args[0] and prints the result mapping to
// stdout. It returns 0 on success, 1 on any failure and 2 on bad usage.
func run(args []string, stdout io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stdout, "Usage: rooftop-cli <image_path>")
		fmt.Fprintln(stdout, "Example: VISION_PROVIDER=openai rooftop-cli ./roof.jpg")
		return 2
	}

	cfg := config.Load()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	imageData, err := os.ReadFile(args[0])
	if err != nil {
		log.WithError(err).Error("Failed to read image file")
		return 1
	}

	analyzer, err := providers.New(cfg)
	if err != nil {
		log.WithError(err).Error("Failed to initialize analyzer")
		return 1
	}

	result := analyzer.AnalyzeRooftop(context.Background(), imageData)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.WithError(err).Error("Failed to encode result")
		return 1
	}
	fmt.Fprintln(stdout, string(out))

	if !result.OK() {
		return 1
	}
	return 0
}
