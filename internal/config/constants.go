package config

const (
	// DefaultDatabasePath is the default path for the favorites database
	DefaultDatabasePath = "./bookfinder.db"

	// DefaultOpenLibraryBaseURL is the public OpenLibrary API root
	DefaultOpenLibraryBaseURL = "https://openlibrary.org"

	// DefaultUserAgent identifies this client to OpenLibrary
	DefaultUserAgent = "BookFinder/1.0 (https://github.com/mrlokans/bookfinder)"
)
