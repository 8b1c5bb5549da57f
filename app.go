package attrcare

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/attrcare/attrcare/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/sirupsen/logrus"

	_ "github.com/go-sql-driver/mysql"                      // enable mysql driver
	_ "github.com/golang-migrate/migrate/v4/database/mysql" // enable mysql migrations
	_ "github.com/golang-migrate/migrate/v4/source/file"    // enable file migration source
)

// Application is Service Main Object.
type Application struct {
	container *Container
}

// NewApplication constructor.
func NewApplication(cfg config.Config) *Application {
	return &Application{
		container: NewContainer(cfg),
	}
}

func (s *Application) Container() *Container {
	return s.container
}

func (s *Application) Migrate() error {
	_, err := s.container.DB()
	if err != nil {
		return err
	}

	cfg := s.container.Config()

	err = applyMigrations(cfg.Migrations)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// Close Destructor.
func (s *Application) Close() error {
	logrus.Println("Closing service")

	err := s.container.Close()
	if err != nil {
		return err
	}

	logrus.Println("Service closed")

	return nil
}

func applyMigrations(config config.MigrationsConfig) error {
	logrus.Info("Apply migrations")

	dir := config.Dir
	if dir == "" {
		ex, err := os.Executable()
		if err != nil {
			return err
		}

		exPath := filepath.Dir(ex)
		dir = exPath + "/migrations"
	}

	m, err := migrate.New("file://"+dir, config.DSN)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	logrus.Info("Migrations applied")

	return nil
}
