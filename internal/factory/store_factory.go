package factory

import (
	"errors"
	"fmt"

	"github.com/mikey/spam-doctor/internal/adapters/store"
	"github.com/mikey/spam-doctor/internal/config"
	"github.com/mikey/spam-doctor/internal/core"
	"go.uber.org/zap"
)

// Stores groups the persistence ports used by the detector
type Stores struct {
	Lexicon core.LexiconStore
	Corpus  core.CorpusStore
	SpamLog core.SpamLog

	closers []func() error
}

// Close releases database and Redis connections
func (s *Stores) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// StoreFactory creates stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateStores opens the configured storage backend and, when configured,
// the shared Redis lexicon in place of the backend's own
func (f *StoreFactory) CreateStores() (*Stores, error) {
	storageCfg := f.cfg.GetStorage()
	logger := f.logger.Named("store")

	stores := &Stores{}
	switch storageCfg.Type {
	case "file", "":
		lexiconStore, err := store.NewFileLexicon(storageCfg.LexiconPath, logger)
		if err != nil {
			return nil, err
		}
		corpus, err := store.NewFileCorpus(storageCfg.CorpusPath, logger)
		if err != nil {
			return nil, err
		}
		spamLog, err := store.NewFileSpamLog(storageCfg.SpamLogPath, logger)
		if err != nil {
			return nil, err
		}
		stores.Lexicon, stores.Corpus, stores.SpamLog = lexiconStore, corpus, spamLog
	case "sqlite":
		db, err := store.NewSQLiteStore(storageCfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		stores.Lexicon, stores.Corpus, stores.SpamLog = db, db, db
		stores.closers = append(stores.closers, db.Close)
	case "mysql":
		db, err := store.NewMySQLStore(storageCfg.MySQLDSN, logger)
		if err != nil {
			return nil, err
		}
		stores.Lexicon, stores.Corpus, stores.SpamLog = db, db, db
		stores.closers = append(stores.closers, db.Close)
	case "memory":
		mem := store.NewMemoryStore(logger)
		stores.Lexicon, stores.Corpus, stores.SpamLog = mem, mem, mem
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageCfg.Type)
	}

	lexiconCfg := f.cfg.GetLexicon()
	switch lexiconCfg.Type {
	case "store", "":
	case "redis":
		redisLexicon, err := store.NewRedisLexicon(lexiconCfg.RedisURL, lexiconCfg.RedisPrefix, logger)
		if err != nil {
			stores.Close()
			return nil, err
		}
		stores.Lexicon = redisLexicon
		stores.closers = append(stores.closers, redisLexicon.Close)
	default:
		stores.Close()
		return nil, fmt.Errorf("unsupported lexicon type: %s", lexiconCfg.Type)
	}

	logger.Info("Opened stores",
		zap.String("storage", storageCfg.Type),
		zap.String("lexicon", lexiconCfg.Type))
	return stores, nil
}
