package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaopolitica/eleitorado/internal/city"
	"github.com/gestaopolitica/eleitorado/internal/db"
	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/user"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN ou DATABASE_URL")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "create-admin":
		if err := runCreateAdmin(ctx, pool, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao criar administrador")
		}
	case "cities":
		if err := runListCities(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("falha ao listar cidades")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "admin CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  admin create-admin --email admin@exemplo.com --password segredo --nome \"Admin Geral\"")
	fmt.Fprintln(os.Stderr, "  admin cities")
}

func runCreateAdmin(ctx context.Context, pool *pgxpool.Pool, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		email    = fs.String("email", "", "e-mail do administrador")
		password = fs.String("password", "", "senha inicial")
		nome     = fs.String("nome", "", "nome exibido")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" || *nome == "" {
		return errors.New("email, password e nome são obrigatórios")
	}

	service := user.NewService(user.NewRepository(pool), 0)
	created, err := service.Register(ctx, user.CreateInput{
		Email:    *email,
		Password: *password,
		Role:     roles.GeneralAdmin,
		Nome:     *nome,
	})
	if err != nil {
		return err
	}

	log.Info().Str("id", created.ID.String()).Str("email", created.Email).Msg("administrador criado")
	return nil
}

func runListCities(ctx context.Context, pool *pgxpool.Pool) error {
	service := city.NewService(city.NewRepository(pool))
	cities, err := service.List(ctx, roles.Viewer{Role: roles.GeneralAdmin})
	if err != nil {
		return err
	}

	for _, c := range cities {
		fmt.Printf("%s\t%s/%s\t%s\n", c.ID, c.Name, c.State, c.Status)
	}
	log.Info().Int("total", len(cities)).Msg("cidades listadas")
	return nil
}
