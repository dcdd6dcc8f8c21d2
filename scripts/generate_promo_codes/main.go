// Command generate_promo_codes creates sample gzipped promo code files for
// local development. A code is valid when it appears in at least one of the
// configured files and is 6-12 characters long.
package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

func main() {
	dataDir := "data/promocodes"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	promoFiles := map[string][]string{
		"promocodes1.gz": {
			"ARTISAN10",
			"FREESHIP22",
			"COTONOU24",
			"BIENVENUE",
		},
		"promocodes2.gz": {
			"FETE2026",
			"MARCHE12",
			"TISSERAND",
		},
	}

	for filename, codes := range promoFiles {
		filePath := filepath.Join(dataDir, filename)

		if err := createPromoFile(filePath, codes); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d codes\n", filePath, len(codes))
	}

	fmt.Println("\nSample promo code files created successfully!")
	fmt.Printf("\nSet PROMO_FILES=%s,%s to enable them.\n",
		filepath.Join(dataDir, "promocodes1.gz"),
		filepath.Join(dataDir, "promocodes2.gz"))
	fmt.Println("\nNote: codes shorter than 6 or longer than 12 characters are")
	fmt.Println("rejected before any file lookup.")
}

func createPromoFile(filePath string, codes []string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gw := gzip.NewWriter(file)
	defer gw.Close()

	for _, code := range codes {
		if _, err := fmt.Fprintln(gw, code); err != nil {
			return fmt.Errorf("failed to write code: %w", err)
		}
	}

	return nil
}
