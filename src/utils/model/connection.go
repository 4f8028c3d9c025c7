package model

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/poidh/indexer/src/utils/config"
	l "github.com/poidh/indexer/src/utils/logger"
	"github.com/poidh/indexer/src/utils/model/sql_migrations"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const migrationTable = "indexer_migrations"

func newGormLogger(log *logrus.Entry) logger.Interface {
	return logger.New(log,
		logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func dsn(dbConfig *config.Database, username, password, applicationName string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=poidh/%s",
		dbConfig.Host,
		dbConfig.Port,
		username,
		password,
		dbConfig.Name,
		dbConfig.SslMode,
		applicationName,
	)
}

// writeCertificates stores PEMs passed in config as temp files, libpq only accepts paths.
// Files are needed only until the connection is established.
func writeCertificates(dbConfig *config.Database) (params string, cleanup func(), err error) {
	var paths []string
	cleanup = func() {
		for _, path := range paths {
			os.Remove(path)
		}
	}

	pems := []struct {
		param   string
		content string
	}{
		{"sslcert", dbConfig.ClientCert},
		{"sslkey", dbConfig.ClientKey},
		{"sslrootcert", dbConfig.CaCert},
	}

	var buf strings.Builder
	for _, pem := range pems {
		var file *os.File
		file, err = os.CreateTemp("", pem.param+"-*.pem")
		if err != nil {
			cleanup()
			return
		}
		paths = append(paths, file.Name())

		_, err = file.WriteString(pem.content)
		file.Close()
		if err != nil {
			cleanup()
			return
		}

		fmt.Fprintf(&buf, " %s=%s", pem.param, file.Name())
	}

	return buf.String(), cleanup, nil
}

// Connect opens a pooled PostgreSQL connection as the given user
func Connect(ctx context.Context, dbConfig *config.Database, username, password, applicationName string) (self *gorm.DB, err error) {
	log := l.NewSublogger("db").WithField("application", applicationName)

	connectionString := dsn(dbConfig, username, password, applicationName)
	if dbConfig.ClientKey != "" && dbConfig.ClientCert != "" && dbConfig.CaCert != "" {
		log.Info("Using SSL certificates from config")

		params, cleanup, err := writeCertificates(dbConfig)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		connectionString += params
	}

	self, err = gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: newGormLogger(log)})
	if err != nil {
		return
	}

	db, err := self.DB()
	if err != nil {
		return
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxIdleTime(dbConfig.ConnMaxIdleTime)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	err = Ping(ctx, dbConfig, self)
	if err != nil {
		db.Close()
		return nil, err
	}
	return
}

// NewConnection migrates the schema and connects as the indexer's user
func NewConnection(ctx context.Context, config *config.Config, applicationName string) (self *gorm.DB, err error) {
	err = Migrate(ctx, config)
	if err != nil {
		return
	}

	return Connect(ctx, &config.Database, config.Database.User, config.Database.Password, applicationName)
}

// Migrate applies pending sql_migrations as the migration user
func Migrate(ctx context.Context, config *config.Config) (err error) {
	log := l.NewSublogger("db-migrate")

	if config.Database.MigrationUser == "" || config.Database.MigrationPassword == "" {
		log.Info("Migration user not set, skipping migrations")
		return
	}

	migrations := &migrate.HttpFileSystemMigrationSource{
		FileSystem: http.FS(sql_migrations.FS),
	}

	self, err := Connect(ctx, &config.Database, config.Database.MigrationUser, config.Database.MigrationPassword, "migration")
	if err != nil {
		return
	}
	defer Close(self)

	db, err := self.DB()
	if err != nil {
		return
	}

	migrationSet := &migrate.MigrationSet{TableName: migrationTable}

	planned, _, err := migrationSet.PlanMigration(db, "postgres", migrations, migrate.Up, 0)
	if err != nil {
		return
	}
	for _, migration := range planned {
		log.WithField("id", migration.Id).Info("Pending migration")
	}

	n, err := migrationSet.Exec(db, "postgres", migrations, migrate.Up)
	if err != nil {
		return
	}

	log.WithField("num", n).Info("Applied migrations")
	return
}

func Ping(ctx context.Context, dbConfig *config.Database, db *gorm.DB) (err error) {
	if dbConfig.PingTimeout < 0 {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbConfig.PingTimeout)
	defer cancel()

	return sqlDB.PingContext(dbCtx)
}

// Close releases the pool behind the gorm connection
func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	err = sqlDB.Close()
	if err != nil {
		l.NewSublogger("db").WithError(err).Error("Failed to close the database")
	}
}
