package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/pitchpilot/pitch-analyzer/internal/config"
	"github.com/pitchpilot/pitch-analyzer/internal/store"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed sql/*.sql
var embedded embed.FS

// MigrateStore applies the schema migrations. An empty folder selects the
// migrations compiled into the binary.
func MigrateStore(db *gorm.DB, cfg *config.Config, migrationFolder string) error {
	goose.SetLogger(&logger{})

	fsys, err := migrationFS(migrationFolder)
	if err != nil {
		return err
	}
	goose.SetBaseFS(fsys)

	if err := goose.SetDialect(dialect(cfg)); err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return goose.Up(sqlDB, ".")
}

func migrationFS(folder string) (fs.FS, error) {
	if folder == "" {
		return fs.Sub(embedded, "sql")
	}

	fi, err := os.Stat(folder)
	if err != nil {
		return nil, err
	}

	if !fi.Mode().IsDir() {
		return nil, fmt.Errorf("failed to open migration folder: %s is not a folder", folder)
	}

	return os.DirFS(folder), nil
}

func dialect(cfg *config.Config) string {
	if cfg.Database.Type == store.TypePostgres {
		return "postgres"
	}
	return "sqlite3"
}

/*
logger implements goose.Logger interface

	type Logger interface {
		Fatalf(format string, v ...interface{})
		Printf(format string, v ...interface{})
	}
*/
type logger struct{}

func (m *logger) Printf(format string, v ...interface{}) { zap.S().Named("migrations").Infof(format, v...) }
func (m *logger) Fatalf(format string, v ...interface{}) { zap.S().Named("migrations").Fatalf(format, v...) }
