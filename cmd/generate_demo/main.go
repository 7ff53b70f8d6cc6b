// Command generate_demo creates a demo database with a few public domain favorites.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mrlokans/bookfinder/internal/database"
	"github.com/mrlokans/bookfinder/internal/database/favorites"
	"github.com/mrlokans/bookfinder/internal/entities"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create demo directory: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	repo := favorites.NewRepository(db.DB)

	// Stagger save times so the list keeps the order below
	saved := time.Now().Add(-time.Hour)
	for _, book := range demoBooks() {
		fav := entities.FavoriteFromBook(book)
		fav.CreatedAt = saved
		fav.UpdatedAt = saved
		saved = saved.Add(time.Minute)

		if err := repo.Upsert(fav); err != nil {
			log.Printf("Failed to save %s: %v", book.Title, err)
			continue
		}
		log.Printf("Saved: %s by %v", book.Title, book.Authors)
	}

	missing, err := repo.ListMissingDescription()
	if err != nil {
		log.Fatalf("Failed to count favorites without description: %v", err)
	}

	log.Printf("Demo database generated successfully! %d favorites are left without description for the refresh task.", len(missing))
}

func demoBooks() []entities.Book {
	return []entities.Book{
		{
			ID:               "OL66554W",
			Title:            "Pride and Prejudice",
			Description:      strPtr("The story of Elizabeth Bennet and Mr. Darcy in Regency England."),
			ImageURL:         "https://covers.openlibrary.org/b/id/14348537-L.jpg",
			Languages:        []string{"eng"},
			Authors:          []string{"Jane Austen"},
			FirstPublishYear: strPtr("1813"),
			NumEditions:      3400,
		},
		{
			ID:               "OL450063W",
			Title:            "Frankenstein",
			Description:      strPtr("A young scientist creates a living being and is haunted by what he made."),
			ImageURL:         "https://covers.openlibrary.org/b/id/12356249-L.jpg",
			Languages:        []string{"eng"},
			Authors:          []string{"Mary Shelley"},
			FirstPublishYear: strPtr("1818"),
			NumEditions:      2000,
		},
		{
			ID:               "OL102749W",
			Title:            "Moby Dick",
			ImageURL:         "https://covers.openlibrary.org/b/id/12621906-L.jpg",
			Languages:        []string{"eng"},
			Authors:          []string{"Herman Melville"},
			FirstPublishYear: strPtr("1851"),
			NumEditions:      1400,
		},
		{
			ID:               "OL52267W",
			Title:            "The Time Machine",
			Languages:        []string{"eng"},
			Authors:          []string{"H. G. Wells"},
			FirstPublishYear: strPtr("1895"),
			NumEditions:      900,
		},
	}
}

func strPtr(s string) *string {
	return &s
}
