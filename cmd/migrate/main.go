// Comando migrate aplica el esquema versionado (goose) sobre la base configurada.
//
//	go run ./cmd/migrate [up|down|status|version]
package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/jhoicas/lavanderia-enterprise-api/migrations"
	"github.com/jhoicas/lavanderia-enterprise-api/pkg/config"
	"github.com/jhoicas/lavanderia-enterprise-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	db, err := sql.Open("postgres", cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("abrir conexión")
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		log.Fatal().Err(err).Msg("crear provider de migraciones")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		for _, r := range results {
			log.Info().Int64("version", r.Source.Version).Str("file", r.Source.Path).Dur("duration", r.Duration).Msg("migración aplicada")
		}
		if err != nil {
			log.Fatal().Err(err).Msg("migrate up")
		}
	case "down":
		r, err := provider.Down(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("migrate down")
		}
		log.Info().Int64("version", r.Source.Version).Str("file", r.Source.Path).Msg("migración revertida")
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("migrate status")
		}
		for _, s := range statuses {
			ev := log.Info().Int64("version", s.Source.Version).Str("file", s.Source.Path).Str("state", string(s.State))
			if !s.AppliedAt.IsZero() {
				ev = ev.Time("applied_at", s.AppliedAt)
			}
			ev.Msg("estado")
		}
	case "version":
		v, err := provider.GetDBVersion(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("migrate version")
		}
		log.Info().Int64("version", v).Msg("versión actual")
	default:
		log.Fatal().Str("command", command).Msg("comando desconocido: use up, down, status o version")
	}
}
