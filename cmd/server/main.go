// Visaport - Visa application back office and customer portal
package main

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/atlasgate/visaport/internal/api"
	"github.com/atlasgate/visaport/internal/auth"
	"github.com/atlasgate/visaport/internal/catalog"
	"github.com/atlasgate/visaport/internal/config"
	"github.com/atlasgate/visaport/internal/content"
	"github.com/atlasgate/visaport/internal/database"
	"github.com/atlasgate/visaport/internal/models"
	"github.com/atlasgate/visaport/internal/notify"
	"github.com/atlasgate/visaport/internal/portal"
)

var Version = "1.0.0"

func main() {
	if len(os.Args) > 1 {
		runCLI()
		return
	}
	startServer()
}

func startServer() {
	fmt.Printf("Visaport %s - Starting...\n", Version)

	db := connectDB()
	log.Println("Database connected")

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations complete")

	jwtService := auth.NewJWTService(requireEnv("JWT_SECRET"))
	settings := config.NewService(db)
	store := catalog.NewStore(db)
	sms := notify.NewSMSService(settings)
	portalService := portal.NewService(db, store, settings, sms)
	contentService := content.NewService(db)

	handler := api.NewHandler(db, store, portalService, contentService, settings, jwtService)

	var origins []string
	if raw := getEnv("ALLOWED_ORIGINS", ""); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	router := api.SetupRouter(handler, jwtService, origins)

	port := getEnv("PORT", "8080")
	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func connectDB() *gorm.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			requireEnv("DB_HOST"),
			requireEnv("DB_PORT"),
			requireEnv("DB_USER"),
			requireEnv("DB_PASSWORD"),
			requireEnv("DB_NAME"),
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	return db
}

func requireEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Missing required env: %s", key)
	}
	return value
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// CLI
func runCLI() {
	cmd := os.Args[1]
	switch cmd {
	case "serve":
		startServer()
	case "setup":
		runSetup()
	case "migrate":
		db := connectDB()
		if err := database.RunMigrations(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Println("Migrations complete")
	case "user":
		runUserCmd()
	default:
		printUsage()
	}
}

func printUsage() {
	fmt.Println(`Usage: visaport <command>
Commands:
  setup                                  Interactive setup wizard
  serve                                  Start server
  migrate                                Run migrations
  user list                              List back-office users
  user create --email= --password=       Create user (--role=admin for admin)`)
}

func runUserCmd() {
	if len(os.Args) < 3 {
		printUsage()
		return
	}
	db := connectDB()
	switch os.Args[2] {
	case "list":
		var users []models.User
		db.Find(&users)
		for _, u := range users {
			fmt.Printf("%s <%s> [%s]\n", u.FullName, u.Email, u.Role)
		}
	case "create":
		email := getFlag("--email")
		password := getFlag("--password")
		if email == "" || password == "" {
			printUsage()
			return
		}
		role := getFlag("--role")
		if role != auth.RoleAdmin {
			role = auth.RoleStaff
		}
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err := db.Create(&models.User{
			Email:        email,
			PasswordHash: string(hash),
			FullName:     getFlag("--name"),
			Role:         role,
			IsActive:     true,
		}).Error; err != nil {
			log.Fatalf("Failed: %v", err)
		}
		fmt.Printf("User created: %s\n", email)
	case "delete":
		email := getFlag("--email")
		if email == "" {
			printUsage()
			return
		}
		db.Where("email = ?", email).Delete(&models.User{})
		fmt.Printf("User deleted: %s\n", email)
	}
}

func getFlag(name string) string {
	prefix := name + "="
	for _, arg := range os.Args {
		if len(arg) > len(prefix) && arg[:len(prefix)] == prefix {
			return arg[len(prefix):]
		}
	}
	return ""
}

// Interactive Setup
func runSetup() {
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("\n=== Visaport Setup Wizard ===")
	fmt.Println()

	fmt.Println("Database Configuration:")
	dbHost := prompt(reader, "  DB Host", "localhost")
	dbPort := prompt(reader, "  DB Port", "5432")
	dbUser := prompt(reader, "  DB User", "visaport")
	dbPassword := promptPassword(reader, "  DB Password")
	dbName := prompt(reader, "  DB Name", "visaport")

	os.Setenv("DB_HOST", dbHost)
	os.Setenv("DB_PORT", dbPort)
	os.Setenv("DB_USER", dbUser)
	os.Setenv("DB_PASSWORD", dbPassword)
	os.Setenv("DB_NAME", dbName)

	fmt.Println("\nConnecting to database...")
	db := connectDB()
	fmt.Println("Connected!")

	fmt.Println("Running migrations...")
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	fmt.Println("Migrations complete!")

	fmt.Println("\nAdmin User:")
	adminEmail := prompt(reader, "  Email", "admin@visaport.local")
	adminPassword := promptPassword(reader, "  Password")
	adminName := prompt(reader, "  Full Name", "Admin")

	hash, _ := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	user := models.User{
		Email:        adminEmail,
		PasswordHash: string(hash),
		FullName:     adminName,
		Role:         auth.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}
	fmt.Printf("Admin user '%s' created!\n", adminEmail)

	fmt.Println("\nPortal Configuration:")
	portalTitle := prompt(reader, "  Portal Title", "Visaport")

	settings := config.NewService(db)
	if err := settings.Set(config.KeyPortalTitle, portalTitle); err != nil {
		log.Fatalf("Failed to save settings: %v", err)
	}
	if err := settings.Set(config.KeySetupComplete, "true"); err != nil {
		log.Fatalf("Failed to save settings: %v", err)
	}

	jwtSecret := generateSecret(32)

	fmt.Println("\nServer Configuration:")
	port := prompt(reader, "  Port", "8080")

	fmt.Println("\n=== Setup Complete ===")
	fmt.Println("\nAdd these to your systemd service or docker-compose:")
	fmt.Println("----------------------------------------")
	fmt.Printf("DB_HOST=%s\n", dbHost)
	fmt.Printf("DB_PORT=%s\n", dbPort)
	fmt.Printf("DB_USER=%s\n", dbUser)
	fmt.Printf("DB_PASSWORD=%s\n", dbPassword)
	fmt.Printf("DB_NAME=%s\n", dbName)
	fmt.Printf("JWT_SECRET=%s\n", jwtSecret)
	fmt.Printf("PORT=%s\n", port)
	fmt.Println("----------------------------------------")
	fmt.Printf("\nStart server: visaport serve\n")
	fmt.Printf("Login: %s / [your password]\n", adminEmail)
}

func prompt(reader *bufio.Reader, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

func promptPassword(reader *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func generateSecret(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)[:length]
}
