package main

import (
	"database/sql"
	"flag"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/contentdesk/configs"
	"github.com/maheshrc27/contentdesk/migrations"
)

func main() {
	flag.Parse()
	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	switch command {
	case "up":
		err = migrations.Up(db)
	case "down":
		err = migrations.Down(db)
	case "status":
		err = migrations.Status(db)
	default:
		log.Fatalf("unknown command %q, expected up, down or status", command)
	}

	if err != nil {
		log.Fatalf("migrate %s: %v", command, err)
	}
}
