package admins

import (
	"embed"
	"io/fs"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

//go:embed views
var viewsFS embed.FS

//go:embed data/fixtures/*.yml
var fixturesFS embed.FS

// GetMigrationsFS returns the migration files for this package
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// GetViewsFS returns the templates rooted at the views directory
func GetViewsFS() fs.FS {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return viewsFS
	}
	return sub
}

// GetFixturesFS returns the seed fixtures
func GetFixturesFS() embed.FS {
	return fixturesFS
}
