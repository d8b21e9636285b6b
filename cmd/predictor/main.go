package main

import "disease-predictor/internal/cli"

func main() {
	cli.Execute()
}
