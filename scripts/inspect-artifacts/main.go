// Command inspect-artifacts prints what a Bolt artifact database holds and
// whether each domain's artifacts load.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"disease-predictor/internal/domain"
	"disease-predictor/internal/ml"
	"disease-predictor/internal/storage"
)

func main() {
	var dataPath = flag.String("data", "./data", "Data directory path")
	flag.Parse()

	fmt.Printf("Inspecting artifacts in: %s\n", *dataPath)

	// Open storage
	store, err := storage.New(*dataPath)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	names, err := store.List()
	if err != nil {
		log.Fatalf("Failed to list artifacts: %v", err)
	}

	fmt.Printf("\nStored artifacts (%d):\n", len(names))
	for _, name := range names {
		data, err := store.Open(name)
		if err != nil {
			fmt.Printf("  %-22s error: %v\n", name, err)
			continue
		}
		fmt.Printf("  %-22s %6d bytes\n", name, len(data))
	}

	fmt.Println("\nDomain status:")
	reg := ml.NewRegistry(store, ml.RegistryConfig{}, nil)
	for _, d := range domain.All() {
		spec, err := reg.Resolve(d.ID)
		if err != nil {
			fmt.Printf("  ✗ %-12s %v\n", d.ID, err)
			continue
		}
		fmt.Printf("  ✓ %-12s %d features, %s scaler, %T\n", d.ID, len(spec.Features), spec.Scaler.Kind, spec.Classifier)
		fmt.Printf("    %s\n", strings.Join(spec.Features, ", "))
	}
}
