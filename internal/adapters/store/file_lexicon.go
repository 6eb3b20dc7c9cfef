package store

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mikey/spam-doctor/internal/lexicon"
)

const termSeparator = ","

// FileLexicon keeps the spam lexicon as a single comma-separated file that is
// rewritten on every addition
type FileLexicon struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileLexicon creates a lexicon backed by the file at path
func NewFileLexicon(path string, logger *zap.Logger) (*FileLexicon, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return &FileLexicon{path: path, logger: logger}, nil
}

// Terms returns the stored terms in file order
func (l *FileLexicon) Terms(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

// Add appends term unless it is empty, already present, or contains the
// separator
func (l *FileLexicon) Add(ctx context.Context, term string) (bool, error) {
	term, ok := lexicon.NormalizeTerm(term)
	if !ok {
		return false, nil
	}
	if strings.Contains(term, termSeparator) {
		l.logger.Debug("Rejected lexicon term containing separator", zap.String("term", term))
		return false, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	added := false
	err := withFileLock(l.path, func() error {
		terms, err := l.read()
		if err != nil {
			return err
		}
		for _, existing := range terms {
			if existing == term {
				return nil
			}
		}

		terms = append(terms, term)
		if err := writeFileAtomic(l.path, []byte(strings.Join(terms, termSeparator))); err != nil {
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if added {
		l.logger.Debug("Added lexicon term", zap.String("term", term))
	}
	return added, nil
}

func (l *FileLexicon) read() ([]string, error) {
	data, err := readFileIfExists(l.path)
	if err != nil {
		return nil, err
	}
	return parseTerms(string(data)), nil
}

// parseTerms splits lexicon content, dropping blanks and repeated terms
func parseTerms(content string) []string {
	var terms []string
	seen := make(map[string]struct{})
	for _, raw := range strings.Split(content, termSeparator) {
		term := strings.TrimSpace(raw)
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}
