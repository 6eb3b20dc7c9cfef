package factory

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/mikey/spam-doctor/internal/adapters/bayes"
	"github.com/mikey/spam-doctor/internal/adapters/store"
	"github.com/mikey/spam-doctor/internal/config"
	"github.com/mikey/spam-doctor/internal/core"
	"github.com/mikey/spam-doctor/internal/utils"
)

func testConfig(t *testing.T, values map[string]any) *config.Config {
	t.Helper()
	cfg := config.NewFromViper(config.NewEmptyViper())
	for key, value := range values {
		cfg.Set(key, value)
	}
	return cfg
}

func TestCreateStoresFile(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, map[string]any{
		"storage.type":          "file",
		"storage.lexicon_path":  filepath.Join(dir, "spam_data.txt"),
		"storage.corpus_path":   filepath.Join(dir, "training_data.json"),
		"storage.spam_log_path": filepath.Join(dir, "collected_spam.txt"),
	})

	stores, err := NewStoreFactory(cfg, zaptest.NewLogger(t)).CreateStores()
	if err != nil {
		t.Fatalf("CreateStores failed: %v", err)
	}
	defer stores.Close()

	if _, ok := stores.Lexicon.(*store.FileLexicon); !ok {
		t.Errorf("expected a file lexicon, got %T", stores.Lexicon)
	}
	if _, ok := stores.Corpus.(*store.FileCorpus); !ok {
		t.Errorf("expected a file corpus, got %T", stores.Corpus)
	}
	if _, ok := stores.SpamLog.(*store.FileSpamLog); !ok {
		t.Errorf("expected a file spam log, got %T", stores.SpamLog)
	}
}

func TestCreateStoresSQLite(t *testing.T) {
	cfg := testConfig(t, map[string]any{
		"storage.type":        "sqlite",
		"storage.sqlite_path": filepath.Join(t.TempDir(), "spam.db"),
	})

	stores, err := NewStoreFactory(cfg, zaptest.NewLogger(t)).CreateStores()
	if err != nil {
		t.Fatalf("CreateStores failed: %v", err)
	}
	if _, err := stores.Lexicon.Add(context.Background(), "jackpot"); err != nil {
		t.Errorf("Add failed: %v", err)
	}
	if err := stores.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestCreateStoresMemory(t *testing.T) {
	cfg := testConfig(t, map[string]any{"storage.type": "memory"})

	stores, err := NewStoreFactory(cfg, zaptest.NewLogger(t)).CreateStores()
	if err != nil {
		t.Fatalf("CreateStores failed: %v", err)
	}
	if _, ok := stores.Corpus.(*store.MemoryStore); !ok {
		t.Errorf("expected a memory store, got %T", stores.Corpus)
	}
	if err := stores.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestCreateStoresErrors(t *testing.T) {
	tests := map[string]map[string]any{
		"unknown storage": {"storage.type": "cassandra"},
		"unknown lexicon": {"storage.type": "memory", "lexicon.type": "etcd"},
		"bad redis url":   {"storage.type": "memory", "lexicon.type": "redis", "lexicon.redis_url": "not a url"},
	}

	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewStoreFactory(testConfig(t, values), zaptest.NewLogger(t)).CreateStores(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestCreateClassifier(t *testing.T) {
	logger := zaptest.NewLogger(t)
	tp := utils.NewTextProcessor(logger)

	cfg := testConfig(t, map[string]any{
		"model.type": ModelNaiveBayes,
		"model.path": filepath.Join(t.TempDir(), "model.json"),
	})
	classifier, err := NewClassifierFactory(cfg, logger, tp).CreateClassifier()
	if err != nil {
		t.Fatalf("CreateClassifier failed: %v", err)
	}
	if _, ok := classifier.(*bayes.Classifier); !ok {
		t.Errorf("expected a naive bayes classifier, got %T", classifier)
	}
	if _, ok := classifier.(core.ProbabilityEstimator); !ok {
		t.Error("naive bayes should report probabilities")
	}
}

func TestCreateClassifierErrors(t *testing.T) {
	logger := zaptest.NewLogger(t)
	tp := utils.NewTextProcessor(logger)

	tests := map[string]map[string]any{
		"unknown type":       {"model.type": "svm"},
		"openai without key": {"model.type": ModelOpenAI, "openai.api_key": ""},
		"gemini without key": {"model.type": ModelGemini, "gemini.api_key": ""},
	}

	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewClassifierFactory(testConfig(t, values), logger, tp).CreateClassifier(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
