package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"quiknote-be/internal/model"
	"quiknote-be/migrations"
	"quiknote-be/pkg/database"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"
)

func main() {
	baas := flag.Bool("baas", false, "apply the backend project schema instead of the board tables")
	down := flag.Bool("down", false, "roll back every backend migration (with -baas)")
	flag.Parse()

	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	if *baas {
		migrateBaaS(*down)
		return
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting board migration...")
	if err := db.AutoMigrate(&model.BoardCard{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}
	log.Println("✅ Success: Board tables are up to date.")
}

// migrateBaaS runs the embedded SQL against the backend project's database.
func migrateBaaS(down bool) {
	dbURL := os.Getenv("BAAS_DATABASE_URL")
	if dbURL == "" {
		log.Fatal("Error: BAAS_DATABASE_URL is not set")
	}

	src, err := iofs.New(migrations.BaaS, "baas")
	if err != nil {
		log.Fatalf("Error: Failed to read embedded migrations: %v", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		log.Fatalf("Error: Failed to create migrator: %v", err)
	}
	defer m.Close()

	if down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Error: Failed to apply migrations: %v", err)
	}

	version, dirty, _ := m.Version()
	log.Printf("✅ Success: Backend schema at version %d (dirty=%v)", version, dirty)
}
