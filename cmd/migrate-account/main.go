// Command migrate-account moves every practice log of one account to a brand
// new account. Used when someone loses access to the address they signed up with
package main

import (
	"errors"
	"fmt"
	"os"

	"leetgym/api/db"
	"leetgym/api/internal/service"
	"leetgym/api/pkg/security"
	"leetgym/api/pkg/util"
	"leetgym/api/pkg/validators"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	from     = pflag.String("from", "", "Email of the account that currently owns the logs")
	to       = pflag.String("to", "", "Email of the account to create")
	password = pflag.String("password", "", "Password for the new account, generated when empty")
	driver   = pflag.String("db-driver", "", "Database driver, defaults to DB_DRIVER or sqlite")
	dsn      = pflag.String("db-dsn", "", "Database DSN, defaults to DB_DSN or database.db")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file, %w", err)
	}

	pflag.Parse()

	v.BindEnv("db.driver", "DB_DRIVER")
	v.BindEnv("db.dsn", "DB_DSN")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	if *driver != "" {
		v.Set("db.driver", *driver)
	}
	if *dsn != "" {
		v.Set("db.dsn", *dsn)
	}

	if err := validators.EmailValidator(*from); err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	if err := validators.EmailValidator(*to); err != nil {
		return fmt.Errorf("--to: %w", err)
	}
	if *from == *to {
		return errors.New("--from and --to must differ")
	}

	pass := *password
	generated := pass == ""
	if generated {
		var err error
		if pass, err = util.GenerateToken(12); err != nil {
			return fmt.Errorf("failed to generate password, %w", err)
		}
	}

	if err := validators.PasswordValidator(pass); err != nil {
		return fmt.Errorf("--password: %w", err)
	}

	database, err := db.New(v.GetString("db.driver"), v.GetString("db.dsn"))
	if err != nil {
		return err
	}

	hash, err := security.New().GenerateFromPassword(pass)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	res, err := service.MoveLogsToNewAccount(database, *from, *to, hash)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s (id %s) and moved %d logs from %s\n", *to, res.NewUserID, res.MovedLogs, *from)
	if generated {
		fmt.Printf("Generated password: %s\n", pass)
	}

	return nil
}
