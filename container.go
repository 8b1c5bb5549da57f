package attrcare

import (
	"database/sql"
	"sync"
	"time"

	"github.com/attrcare/attrcare/approval"
	"github.com/attrcare/attrcare/attrs"
	"github.com/attrcare/attrcare/chaos"
	"github.com/attrcare/attrcare/config"
	"github.com/attrcare/attrcare/duplicates"
	"github.com/attrcare/attrcare/email"
	"github.com/attrcare/attrcare/fillrate"
	"github.com/attrcare/attrcare/i18nbundle"
	"github.com/attrcare/attrcare/log"
	"github.com/attrcare/attrcare/merge"
	"github.com/attrcare/attrcare/setmigration"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql" // enable mysql dialect
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Container Container.
type Container struct {
	config             config.Config
	db                 *sql.DB
	dbMutex            sync.Mutex
	goquDB             *goqu.Database
	redis              *redis.Client
	redisMutex         sync.Mutex
	attrsRepository    *attrs.Repository
	fillRateAnalyzer   *fillrate.Analyzer
	duplicatesDetector *duplicates.Detector
	chaosAnalyzer      *chaos.Analyzer
	merger             *merge.Merger
	setMigrator        *setmigration.Migrator
	approvalRepository *approval.Repository
	approvalManager    *approval.Manager
	logRepository      *log.Repository
	emailSender        email.Sender
	i18n               *i18nbundle.I18n
}

// NewContainer constructor.
func NewContainer(cfg config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

func (s *Container) Close() error {
	s.attrsRepository = nil
	s.fillRateAnalyzer = nil
	s.duplicatesDetector = nil
	s.chaosAnalyzer = nil
	s.merger = nil
	s.setMigrator = nil
	s.approvalManager = nil
	s.goquDB = nil

	if s.db != nil {
		err := s.db.Close()
		if err != nil {
			logrus.Error(err.Error())
		}

		s.db = nil
	}

	if s.redis != nil {
		err := s.redis.Close()
		if err != nil {
			logrus.Error(err.Error())
		}

		s.redis = nil
	}

	return nil
}

func (s *Container) Config() config.Config {
	return s.config
}

func (s *Container) DB() (*sql.DB, error) {
	s.dbMutex.Lock()
	defer s.dbMutex.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	start := time.Now()

	const (
		connectionTimeout = 60 * time.Second
		reconnectDelay    = 100 * time.Millisecond
	)

	logrus.Info("Waiting for mysql")

	var (
		db  *sql.DB
		err error
	)

	for {
		db, err = sql.Open("mysql", s.config.DSN)
		if err != nil {
			return nil, err
		}

		err = db.Ping()
		if err == nil {
			logrus.Info("Started.")

			break
		}

		if time.Since(start) > connectionTimeout {
			return nil, err
		}

		logrus.Infof(". %s", err.Error())
		time.Sleep(reconnectDelay)
	}

	s.db = db

	return s.db, nil
}

func (s *Container) GoquDB() (*goqu.Database, error) {
	if s.goquDB != nil {
		return s.goquDB, nil
	}

	db, err := s.DB()
	if err != nil {
		return nil, err
	}

	s.goquDB = goqu.New("mysql", db)

	return s.goquDB, nil
}

// Redis returns nil without error when no redis endpoint is configured;
// the analyzers then skip caching.
func (s *Container) Redis() (*redis.Client, error) {
	s.redisMutex.Lock()
	defer s.redisMutex.Unlock()

	if s.redis != nil || s.config.Redis == "" {
		return s.redis, nil
	}

	options, err := redis.ParseURL(s.config.Redis)
	if err != nil {
		return nil, err
	}

	s.redis = redis.NewClient(options)

	return s.redis, nil
}

func (s *Container) AttrsRepository() (*attrs.Repository, error) {
	if s.attrsRepository != nil {
		return s.attrsRepository, nil
	}

	db, err := s.GoquDB()
	if err != nil {
		return nil, err
	}

	s.attrsRepository = attrs.NewRepository(db)

	return s.attrsRepository, nil
}

func (s *Container) FillRateAnalyzer() (*fillrate.Analyzer, error) {
	if s.fillRateAnalyzer != nil {
		return s.fillRateAnalyzer, nil
	}

	repo, err := s.AttrsRepository()
	if err != nil {
		return nil, err
	}

	redisClient, err := s.Redis()
	if err != nil {
		return nil, err
	}

	s.fillRateAnalyzer = fillrate.NewAnalyzer(
		repo, s.config.FillRate, redisClient, !s.config.ExcludeSystemAttributes,
	)

	return s.fillRateAnalyzer, nil
}

func (s *Container) DuplicatesDetector() (*duplicates.Detector, error) {
	if s.duplicatesDetector != nil {
		return s.duplicatesDetector, nil
	}

	repo, err := s.AttrsRepository()
	if err != nil {
		return nil, err
	}

	s.duplicatesDetector = duplicates.NewDetector(
		repo, s.config.Duplicates, !s.config.ExcludeSystemAttributes,
	)

	return s.duplicatesDetector, nil
}

func (s *Container) ChaosAnalyzer() (*chaos.Analyzer, error) {
	if s.chaosAnalyzer != nil {
		return s.chaosAnalyzer, nil
	}

	repo, err := s.AttrsRepository()
	if err != nil {
		return nil, err
	}

	s.chaosAnalyzer = chaos.NewAnalyzer(repo)

	return s.chaosAnalyzer, nil
}

func (s *Container) Merger() (*merge.Merger, error) {
	if s.merger != nil {
		return s.merger, nil
	}

	db, err := s.GoquDB()
	if err != nil {
		return nil, err
	}

	repo, err := s.AttrsRepository()
	if err != nil {
		return nil, err
	}

	s.merger = merge.NewMerger(db, repo)

	return s.merger, nil
}

func (s *Container) SetMigrator() (*setmigration.Migrator, error) {
	if s.setMigrator != nil {
		return s.setMigrator, nil
	}

	db, err := s.GoquDB()
	if err != nil {
		return nil, err
	}

	repo, err := s.AttrsRepository()
	if err != nil {
		return nil, err
	}

	redisClient, err := s.Redis()
	if err != nil {
		return nil, err
	}

	s.setMigrator = setmigration.NewMigrator(db, repo, redisClient, s.config.DefaultEntityType)

	return s.setMigrator, nil
}

func (s *Container) LogRepository() (*log.Repository, error) {
	if s.logRepository != nil {
		return s.logRepository, nil
	}

	db, err := s.GoquDB()
	if err != nil {
		return nil, err
	}

	s.logRepository = log.NewRepository(db)

	return s.logRepository, nil
}

func (s *Container) EmailSender() email.Sender {
	if s.emailSender != nil {
		return s.emailSender
	}

	if s.config.SMTP.Hostname == "" {
		s.emailSender = &email.MockSender{}
	} else {
		s.emailSender = &email.SMTPSender{Config: s.config.SMTP}
	}

	return s.emailSender
}

func (s *Container) I18n() (*i18nbundle.I18n, error) {
	if s.i18n != nil {
		return s.i18n, nil
	}

	i18n, err := i18nbundle.New()
	if err != nil {
		return nil, err
	}

	s.i18n = i18n

	return s.i18n, nil
}

func (s *Container) ApprovalRepository() (*approval.Repository, error) {
	if s.approvalRepository != nil {
		return s.approvalRepository, nil
	}

	db, err := s.GoquDB()
	if err != nil {
		return nil, err
	}

	s.approvalRepository = approval.NewRepository(db)

	return s.approvalRepository, nil
}

func (s *Container) ApprovalManager() (*approval.Manager, error) {
	if s.approvalManager != nil {
		return s.approvalManager, nil
	}

	repo, err := s.ApprovalRepository()
	if err != nil {
		return nil, err
	}

	merger, err := s.Merger()
	if err != nil {
		return nil, err
	}

	migrator, err := s.SetMigrator()
	if err != nil {
		return nil, err
	}

	events, err := s.LogRepository()
	if err != nil {
		return nil, err
	}

	i18n, err := s.I18n()
	if err != nil {
		return nil, err
	}

	locales := []string{s.config.DefaultLocale}
	if s.config.ExportAllLocales {
		locales = i18n.Languages()
	}

	notifier := email.NewNotifier(s.EmailSender(), i18n, s.config.Approval, locales)

	s.approvalManager = approval.NewManager(repo, merger, migrator, events, notifier, s.config.Approval)

	return s.approvalManager, nil
}
