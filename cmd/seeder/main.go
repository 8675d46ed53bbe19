package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/parkvault/pv-backend/internal/config"
	"github.com/parkvault/pv-backend/internal/database"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type SeedData struct {
	Spots []Spot `yaml:"spots"`
	Users []User `yaml:"users"`
}

type Spot struct {
	Name string `yaml:"name"`
}

type User struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return errors.New("command required")
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "migrate":
		return migrateCommand()
	case "seed":
		return seedCommand(args)
	case "nuke":
		return nukeCommand(args)
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func migrateCommand() error {
	cfg := config.Load()

	sqlDB, err := goose.OpenDBWithDriver("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			fmt.Printf("warning: failed to close database: %v\n", err)
		}
	}()

	fmt.Println("applying migrations...")
	if err := goose.Up(sqlDB, "db/migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	fmt.Println("migrations applied")
	return nil
}

func seedCommand(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "", "YAML file to seed from")
	dir := fs.String("dir", "", "Directory of YAML files to seed from")
	dryRun := fs.Bool("dry-run", false, "Validate files without making database changes")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	files, err := resolveFiles(*file, *dir)
	if err != nil {
		return err
	}

	seedData, err := loadSeedData(files)
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}

	if *dryRun {
		fmt.Println("dry run: validating data structure")
		return validateSeedData(seedData)
	}

	cfg := config.Load()
	seedDB, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer seedDB.Close()

	fmt.Printf("seeding database from %d file(s)\n", len(files))
	return applySeedData(context.Background(), seedDB.Queries(), seedData, cfg.Auth.BcryptCost)
}

func nukeCommand(args []string) error {
	fs := flag.NewFlagSet("nuke", flag.ExitOnError)
	force := fs.Bool("force", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if !*force && !confirmNuke() {
		fmt.Println("operation cancelled")
		return nil
	}

	return nukeDatabase()
}

func resolveFiles(file, dir string) ([]string, error) {
	if file == "" && dir == "" {
		return nil, errors.New("must specify either --file or --dir")
	}

	if file != "" && dir != "" {
		return nil, errors.New("cannot specify both --file and --dir")
	}

	if file != "" {
		return []string{file}, nil
	}

	return findYAMLFiles(dir)
}

func findYAMLFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && isYAMLFile(path) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", dir, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no YAML files found in directory: %s", dir)
	}

	return files, nil
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func loadSeedData(files []string) (*SeedData, error) {
	combined := &SeedData{}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}

		var fileData SeedData
		if err := yaml.Unmarshal(data, &fileData); err != nil {
			return nil, fmt.Errorf("failed to parse YAML in %s: %w", file, err)
		}

		combined.Spots = append(combined.Spots, fileData.Spots...)
		combined.Users = append(combined.Users, fileData.Users...)
	}

	return combined, nil
}

func validateSeedData(data *SeedData) error {
	fmt.Printf("  Spots: %d\n", len(data.Spots))
	fmt.Printf("  Users: %d\n", len(data.Users))

	for _, user := range data.Users {
		if user.Email == "" || user.Password == "" {
			return fmt.Errorf("user entries require email and password")
		}
		if user.Role != "admin" && user.Role != "user" {
			return fmt.Errorf("unknown role %q for user %s", user.Role, user.Email)
		}
	}

	fmt.Println("data structure is valid")
	return nil
}

func applySeedData(ctx context.Context, queries *database.Queries, data *SeedData, bcryptCost int) error {
	for _, spot := range data.Spots {
		if _, err := queries.CreateSpot(ctx, spot.Name); err != nil {
			return fmt.Errorf("failed to create spot %s: %w", spot.Name, err)
		}
		fmt.Printf("created spot: %s\n", spot.Name)
	}

	for _, user := range data.Users {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", user.Email, err)
		}

		role := user.Role
		if role == "" {
			role = "user"
		}

		if _, err := queries.CreateUser(ctx, database.CreateUserParams{
			Email:        user.Email,
			PasswordHash: string(hashedPassword),
			Role:         role,
		}); err != nil {
			return fmt.Errorf("failed to create user %s: %w", user.Email, err)
		}
		fmt.Printf("created user: %s (%s)\n", user.Email, role)
	}

	fmt.Println("seeding completed")
	return nil
}

func nukeDatabase() error {
	cfg := config.Load()

	sqlDB, err := goose.OpenDBWithDriver("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			fmt.Printf("warning: failed to close database: %v\n", err)
		}
	}()

	fmt.Println("resetting database with goose...")

	fmt.Println("rolling back all migrations...")
	if err := goose.Reset(sqlDB, "db/migrations"); err != nil {
		return fmt.Errorf("failed to reset migrations: %w", err)
	}

	fmt.Println("applying all migrations...")
	if err := goose.Up(sqlDB, "db/migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	fmt.Println("database reset complete - ready for seeding")
	return nil
}

func confirmNuke() bool {
	fmt.Print("warning: this will delete all data from the database. are you sure? (yes/no): ")

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false
	}

	return strings.ToLower(strings.TrimSpace(response)) == "yes"
}

func printUsage() {
	fmt.Println("Seeder Tool - Database utility for Park Vault")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  seeder <command> [flags]")
	fmt.Println()
	fmt.Println("COMMANDS:")
	fmt.Println("  migrate     Apply pending migrations")
	fmt.Println("  seed        Seed database from YAML files")
	fmt.Println("  nuke        Delete all data from database")
	fmt.Println("  help        Show this help message")
	fmt.Println()
	fmt.Println("SEED FLAGS:")
	fmt.Println("  --file      Path to a single YAML file")
	fmt.Println("  --dir       Path to directory containing YAML files")
	fmt.Println("  --dry-run   Validate files without making database changes")
	fmt.Println()
	fmt.Println("NUKE FLAGS:")
	fmt.Println("  --force     Skip confirmation prompt")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  seeder migrate")
	fmt.Println("  seeder seed --file db/seed.yaml")
	fmt.Println("  seeder nuke --force")
}
