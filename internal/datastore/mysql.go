package datastore

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tkalin/phototag-go/internal/conf"
	"github.com/tkalin/phototag-go/internal/errors"
)

// MySQLStore implements the store interface for MySQL
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

func validateMySQLConfig(settings *conf.Settings) error {
	var problems []string
	if settings.Output.MySQL.Host == "" {
		problems = append(problems, "host is empty")
	}
	if settings.Output.MySQL.Database == "" {
		problems = append(problems, "database is empty")
	}
	if settings.Output.MySQL.Username == "" {
		problems = append(problems, "username is empty")
	}
	if len(problems) > 0 {
		return errors.Newf("invalid mysql configuration: %v", problems).
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

// Open sets up the MySQL database connection and migrates the schema.
func (store *MySQLStore) Open() error {
	if err := validateMySQLConfig(store.Settings); err != nil {
		return err
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		store.Settings.Output.MySQL.Username, store.Settings.Output.MySQL.Password,
		store.Settings.Output.MySQL.Host, store.Settings.Output.MySQL.Port,
		store.Settings.Output.MySQL.Database)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         createGormLogger(store.Settings.Debug),
		TranslateError: true,
	})
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("driver", "mysql").
			Context("host", store.Settings.Output.MySQL.Host).
			Context("database", store.Settings.Output.MySQL.Database).
			Build()
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "MySQL", store.Settings.Output.MySQL.Host)
}

// Close closes the underlying database connection.
func (store *MySQLStore) Close() error {
	return closeDB(store.DB, "mysql")
}
