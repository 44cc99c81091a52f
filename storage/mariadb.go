package backoffice_integration_storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rotisserie/eris"
	boConfig "github.com/zarbox/backoffice-integration/config"
)

// The MariaDB connection only backs the API-call audit log. Everything
// authoritative lives behind the back-office API.

var db *sql.DB

func InitMariaDB(cfg *boConfig.MariaConfig) error {
	if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "" {
		return eris.New("incomplete mariadb configuration")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&allowNativePasswords=%t&multiStatements=%t&tls=%s",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
		cfg.AllowNativePasswords, cfg.MultiStatements, cfg.TSLConfig,
	)

	con, err := sql.Open(cfg.DBDriver, dsn)
	if err != nil {
		return eris.Wrap(err, "opening mariadb connection")
	}

	con.SetMaxOpenConns(int(cfg.MaxOpenConns))
	con.SetMaxIdleConns(int(cfg.MaxIdleConns))
	con.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	if err := con.Ping(); err != nil {
		return eris.Wrap(err, "pinging mariadb")
	}

	slog.Debug("Successfully opened mariadb connection")
	db = con

	return nil
}

func GetDBConnection() *sql.DB {
	return db
}

func CloseMariaDB() error {
	if db == nil {
		slog.Info("MariaDB connection is already closed or is not opened in the first place")
		return nil
	}
	if err := db.Close(); err != nil {
		return eris.Wrap(err, "closing mariadb connection")
	}
	db = nil
	return nil
}
