// Command createsuperuser creates an active staff and superuser account
// with an admin profile.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/pawhome/pawhome/internal/auth"
	"github.com/pawhome/pawhome/internal/model"
	"github.com/pawhome/pawhome/internal/repository"
	"github.com/pawhome/pawhome/internal/service"
	"github.com/pawhome/pawhome/internal/validate"
)

type output struct {
	UserUUID    string `json:"user_uuid"`
	Email       string `json:"email"`
	AdminName   string `json:"admin_name"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "read .env:", err)
		os.Exit(1)
	}

	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "", "Superuser email")
		password    = flag.String("password", os.Getenv("SUPERUSER_PASSWORD"), "Superuser password (defaults to $SUPERUSER_PASSWORD)")
		name        = flag.String("name", "", "Admin profile name")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *format != "plain" && *format != "json" {
		fmt.Fprintln(os.Stderr, "format must be plain or json")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	registrations := service.NewRegistrationService(repo, auth.NewHasher(auth.DefaultArgon2Params), "", logger, nil)

	user, err := registrations.CreateSuperuser(ctx, service.AdminRegistration{
		Email:     *email,
		Password:  *password,
		AdminName: *name,
	})
	if err != nil {
		reportError(os.Stderr, err)
		repo.Close()
		os.Exit(1)
	}

	if err := writeOutput(os.Stdout, *format, user, *name); err != nil {
		fmt.Fprintln(os.Stderr, "write output:", err)
		repo.Close()
		os.Exit(1)
	}
}

// reportError prints field errors one per line, sorted by field.
func reportError(w io.Writer, err error) {
	errs, ok := validate.FromError(err)
	if !ok {
		fmt.Fprintln(w, "create superuser:", err)
		return
	}
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		for _, msg := range errs[field] {
			fmt.Fprintf(w, "%s: %s\n", field, msg)
		}
	}
}

func writeOutput(w io.Writer, format string, user *model.User, name string) error {
	out := output{
		UserUUID:    user.ID.String(),
		Email:       user.Email,
		AdminName:   name,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
	}
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	_, err := fmt.Fprintf(w, "Superuser created.\nuuid:  %s\nemail: %s\nname:  %s\n", out.UserUUID, out.Email, out.AdminName)
	return err
}
