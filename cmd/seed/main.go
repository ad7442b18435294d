package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/evanoh/storepulse-backend/config"
	"github.com/evanoh/storepulse-backend/internal/app/model"
	"github.com/evanoh/storepulse-backend/internal/app/repository"
	"github.com/evanoh/storepulse-backend/internal/db"
	"github.com/evanoh/storepulse-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// Bulk store import. Expects an xlsx sheet with a header row followed by
// name, email, address (and optionally image_url) columns, the same layout
// the admin export produces.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Initialize(logger.Config{
		Level:  "info",
		Format: "console",
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	storeRepo := repository.NewStoreRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	stores, skipped, err := readStoresFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total stores to import: %d (skipped %d invalid rows)\n", len(stores), skipped)
	if len(stores) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 1000
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := storeRepo.BulkCreate(stores, batchSize); err != nil {
		log.Fatal("Failed to bulk create stores:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total stores imported: %d\n", len(stores))
}

func readStoresFromXLSX(filePath string) ([]model.Store, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var stores []model.Store
	seenEmails := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		// Header row
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 3 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		email := strings.ToLower(strings.TrimSpace(row[1]))
		address := strings.TrimSpace(row[2])

		var imageURL string
		if len(row) > 3 {
			imageURL = strings.TrimSpace(row[3])
		}

		if name == "" || email == "" || len([]rune(name)) > 60 || len([]rune(address)) > 400 {
			skipped++
			continue
		}
		if !strings.Contains(email, "@") {
			skipped++
			continue
		}

		// The email column is unique; keep the first occurrence.
		if seenEmails[email] {
			skipped++
			continue
		}
		seenEmails[email] = true

		stores = append(stores, model.Store{
			Name:     name,
			Email:    email,
			Address:  address,
			ImageURL: imageURL,
		})
	}

	return stores, skipped, nil
}
