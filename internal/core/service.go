package core

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikey/spam-doctor/internal/lexicon"
	"github.com/mikey/spam-doctor/internal/matcher"
)

// Sanitizer turns raw input into plain text
type Sanitizer interface {
	Sanitize(text string, isHTML bool) (string, error)
}

// SpamDoctor is the core service for spam detection. It sequences
// sanitization, classification, dictionary matching and learning for each
// check, and keeps the most recent result for the read accessors.
// All methods are serialized; a check runs to completion before the next one.
type SpamDoctor struct {
	classifier Classifier
	lexicon    LexiconStore
	corpus     CorpusStore
	spamLog    SpamLog
	sanitizer  Sanitizer
	learner    *lexicon.Learner
	logger     *zap.Logger

	mu                  sync.Mutex
	modelType           string
	confidenceThreshold float64
	seedDefaultCorpus   bool
	filterItems         []string
	modelReady          bool
	dict                *matcher.Dictionary
	last                *DetectionResult
}

// NewSpamDoctor creates a new detection service
func NewSpamDoctor(
	classifier Classifier,
	lexiconStore LexiconStore,
	corpus CorpusStore,
	spamLog SpamLog,
	sanitizer Sanitizer,
	logger *zap.Logger,
	settings Settings,
) *SpamDoctor {
	d := &SpamDoctor{
		classifier:          classifier,
		lexicon:             lexiconStore,
		corpus:              corpus,
		spamLog:             spamLog,
		sanitizer:           sanitizer,
		learner:             lexicon.NewLearner(),
		logger:              logger,
		modelType:           settings.ModelType,
		confidenceThreshold: clamp(settings.ConfidenceThreshold),
		seedDefaultCorpus:   settings.SeedDefaultCorpus,
	}
	if len(settings.FilterItems) > 0 {
		d.filterItems = append([]string(nil), settings.FilterItems...)
	}
	return d
}

// Check runs the full detection pipeline on text
func (d *SpamDoctor) Check(ctx context.Context, text string, isHTML bool) (*DetectionResult, error) {
	if text == "" {
		return nil, &ValidationError{Field: "text", Message: "text content is missing, please provide some text to check"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	sanitized, err := d.sanitizer.Sanitize(text, isHTML)
	if err != nil {
		return nil, &ValidationError{Field: "text", Message: err.Error()}
	}
	if sanitized == "" {
		return nil, &ValidationError{Field: "text", Message: "text has no content after sanitization"}
	}

	result := &DetectionResult{
		ID:            uuid.NewString(),
		SanitizedText: sanitized,
		CheckedAt:     time.Now(),
	}
	logger := d.logger.With(zap.String("check_id", result.ID))

	result.IsSpamByClassifier, result.MLProbability, err = d.classify(ctx, sanitized, logger)
	if err != nil {
		return nil, err
	}

	terms, err := d.lexicon.Terms(ctx)
	if err != nil {
		logger.Error("Failed to load lexicon", zap.Error(err))
		return nil, &StorageError{Op: "lexicon.read", Err: err}
	}

	match := d.dictionary(d.snapshot(terms)).Match(sanitized)
	for _, r := range match.Records {
		result.Matches = append(result.Matches, MatchRecord{Term: r.Term, Count: r.Count})
	}
	for _, s := range match.Spans {
		result.Spans = append(result.Spans, Span{Start: s.Start, End: s.End})
	}
	result.Positions = match.Positions
	result.HighlightedPlain = match.HighlightedPlain
	result.HighlightedHTML = match.HighlightedHTML
	result.CombinedScore = CombineScore(result.MLProbability, len(result.Matches))

	if result.IsSpamByClassifier {
		if err := d.learnFromSpam(ctx, sanitized, logger); err != nil {
			return nil, err
		}
	}

	logger.Info("Checked message",
		zap.Bool("is_spam", result.IsSpamByClassifier),
		zap.Float64("ml_probability", result.MLProbability),
		zap.Float64("score", result.CombinedScore),
		zap.Int("matched_terms", len(result.Matches)))

	d.last = result
	return result, nil
}

// classify asks the classifier for a verdict. Classifier failures degrade to
// ham with zero probability; storage failures while training are returned.
func (d *SpamDoctor) classify(ctx context.Context, text string, logger *zap.Logger) (bool, float64, error) {
	if err := d.ensureModel(ctx); err != nil {
		var storageErr *StorageError
		if errors.As(err, &storageErr) {
			logger.Error("Failed to prepare classifier", zap.Error(err))
			return false, 0.0, err
		}
		logger.Warn("Classifier unavailable, treating message as ham", zap.Error(err))
		return false, 0.0, nil
	}

	label, err := d.classifier.Predict(ctx, text)
	if err != nil {
		logger.Warn("Classifier prediction failed, treating message as ham",
			zap.Error(&ClassifierError{Op: "predict", Err: err}))
		return false, 0.0, nil
	}
	isSpam := label == LabelSpam

	estimator, ok := d.classifier.(ProbabilityEstimator)
	if !ok {
		if isSpam {
			return true, fallbackSpamProbability, nil
		}
		return false, fallbackHamProbability, nil
	}

	p, err := estimator.PredictProbability(ctx, text)
	if err != nil {
		logger.Warn("Classifier probability failed, treating message as ham",
			zap.Error(&ClassifierError{Op: "predict_probability", Err: err}))
		return false, 0.0, nil
	}
	return isSpam, clamp(p), nil
}

// ensureModel trains the classifier on first use when it holds no model
func (d *SpamDoctor) ensureModel(ctx context.Context) error {
	if d.modelReady {
		return nil
	}
	if reporter, ok := d.classifier.(TrainedReporter); ok && !reporter.Trained() {
		if err := d.train(ctx); err != nil {
			return err
		}
	}
	d.modelReady = true
	return nil
}

// snapshot merges the persisted terms with the user filter items for one check
func (d *SpamDoctor) snapshot(terms []string) []string {
	seen := make(map[string]struct{}, len(terms)+len(d.filterItems))
	out := make([]string, 0, len(terms)+len(d.filterItems))
	for _, list := range [][]string{terms, d.filterItems} {
		for _, term := range list {
			term, ok := lexicon.NormalizeTerm(term)
			if !ok {
				continue
			}
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}
	return out
}

// dictionary returns the compiled snapshot, rebuilding it only when the terms
// have changed since the last check
func (d *SpamDoctor) dictionary(terms []string) *matcher.Dictionary {
	if d.dict == nil || !slices.Equal(d.dict.Terms(), terms) {
		d.dict = matcher.NewDictionary(terms)
	}
	return d.dict
}

// learnFromSpam records a confirmed spam message and feeds it back into the
// corpus and the lexicon
func (d *SpamDoctor) learnFromSpam(ctx context.Context, text string, logger *zap.Logger) error {
	if err := d.spamLog.Record(ctx, text); err != nil {
		logger.Error("Failed to record spam message", zap.Error(err))
		return &StorageError{Op: "spam_log.record", Err: err}
	}

	corpus, err := d.corpus.All(ctx)
	if err != nil {
		logger.Error("Failed to load training corpus", zap.Error(err))
		return &StorageError{Op: "corpus.read", Err: err}
	}
	if !corpus.Contains(text) {
		if err := d.corpus.Append(ctx, TrainingSample{Text: text, Label: LabelSpam}); err != nil {
			logger.Error("Failed to store training sample", zap.Error(err))
			return &StorageError{Op: "corpus.append", Err: err}
		}
	}

	terms, err := d.lexicon.Terms(ctx)
	if err != nil {
		return &StorageError{Op: "lexicon.read", Err: err}
	}

	var learned []string
	for _, candidate := range d.learner.Candidates(text, terms) {
		added, err := d.addTerm(ctx, candidate)
		if err != nil {
			return err
		}
		if added {
			learned = append(learned, candidate)
		}
	}
	if len(learned) > 0 {
		logger.Info("Learned new spam terms", zap.Strings("terms", learned))
	}
	return nil
}

func (d *SpamDoctor) addTerm(ctx context.Context, term string) (bool, error) {
	term, ok := lexicon.NormalizeTerm(term)
	if !ok {
		return false, nil
	}
	added, err := d.lexicon.Add(ctx, term)
	if err != nil {
		d.logger.Error("Failed to add lexicon term", zap.String("term", term), zap.Error(err))
		return false, &StorageError{Op: "lexicon.add", Err: err}
	}
	return added, nil
}

// AddTrainingSample stores a labeled sample. Duplicates are kept on purpose;
// spam samples are also written to the spam log.
func (d *SpamDoctor) AddTrainingSample(ctx context.Context, text string, isSpam bool) error {
	if text == "" {
		return &ValidationError{Field: "text", Message: "training sample is empty"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.corpus.Append(ctx, TrainingSample{Text: text, Label: LabelFor(isSpam)}); err != nil {
		return &StorageError{Op: "corpus.append", Err: err}
	}
	if isSpam {
		if err := d.spamLog.Record(ctx, text); err != nil {
			return &StorageError{Op: "spam_log.record", Err: err}
		}
	}

	d.logger.Debug("Added training sample", zap.Bool("is_spam", isSpam), zap.Int("length", len(text)))
	return nil
}

// RetrainModel rebuilds the classifier from the whole training corpus
func (d *SpamDoctor) RetrainModel(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.modelReady = false
	if err := d.train(ctx); err != nil {
		return err
	}
	d.modelReady = true
	return nil
}

func (d *SpamDoctor) train(ctx context.Context) error {
	corpus, err := d.corpus.All(ctx)
	if err != nil {
		return &StorageError{Op: "corpus.read", Err: err}
	}

	if corpus.Len() == 0 && d.seedDefaultCorpus {
		d.logger.Info("Training corpus is empty, seeding default samples")
		for _, sample := range DefaultTrainingSamples() {
			if err := d.corpus.Append(ctx, sample); err != nil {
				return &StorageError{Op: "corpus.append", Err: err}
			}
		}
		if corpus, err = d.corpus.All(ctx); err != nil {
			return &StorageError{Op: "corpus.read", Err: err}
		}
	}

	if corpus.Len() == 0 {
		return &ClassifierError{Op: "train", Err: errors.New("training corpus is empty")}
	}

	start := time.Now()
	if err := d.classifier.Train(ctx, corpus.Samples, corpus.Labels); err != nil {
		d.logger.Error("Failed to train classifier", zap.Error(err))
		return &ClassifierError{Op: "train", Err: err}
	}

	d.logger.Info("Trained classifier",
		zap.String("model_type", d.modelType),
		zap.Int("samples", corpus.Len()),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// SetConfidenceThreshold stores the threshold reported in the model stats.
// The verdict itself is the classifier label.
func (d *SpamDoctor) SetConfidenceThreshold(threshold float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.confidenceThreshold = clamp(threshold)
}

// ModelStats summarizes the training corpus and model configuration
func (d *SpamDoctor) ModelStats(ctx context.Context) (ModelStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	corpus, err := d.corpus.All(ctx)
	if err != nil {
		return ModelStats{}, &StorageError{Op: "corpus.read", Err: err}
	}

	spam := corpus.Count(LabelSpam)
	return ModelStats{
		TotalSamples:        corpus.Len(),
		SpamSamples:         spam,
		HamSamples:          len(corpus.Labels) - spam,
		ModelType:           d.modelType,
		ConfidenceThreshold: d.confidenceThreshold,
	}, nil
}

// SetFilterItems replaces, or extends when appendItems is set, the extra terms
// matched on every check. They are never written to the lexicon store.
func (d *SpamDoctor) SetFilterItems(items []string, appendItems bool) error {
	if len(items) == 0 {
		return &ValidationError{Field: "items", Message: "items must be a non-empty list"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if appendItems {
		d.filterItems = append(d.filterItems, items...)
	} else {
		d.filterItems = append([]string(nil), items...)
	}
	return nil
}

// TeachDoctor adds every term found in structured (JSON or YAML) data, nested
// to any depth, and returns how many terms were new
func (d *SpamDoctor) TeachDoctor(ctx context.Context, data []byte) (int, error) {
	leaves, err := lexicon.Flatten(data)
	if err != nil {
		return 0, &ValidationError{Field: "data", Message: err.Error()}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	taught := 0
	for _, leaf := range leaves {
		added, err := d.addTerm(ctx, leaf)
		if err != nil {
			return taught, err
		}
		if added {
			taught++
		}
	}

	d.logger.Info("Taught lexicon terms", zap.Int("received", len(leaves)), zap.Int("added", taught))
	return taught, nil
}

// LastResult returns the result of the most recent check, or nil
func (d *SpamDoctor) LastResult() *DetectionResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// IsSpam reports the classifier verdict of the most recent check
func (d *SpamDoctor) IsSpam() bool {
	if r := d.LastResult(); r != nil {
		return r.IsSpamByClassifier
	}
	return false
}

// SpamProbability returns the classifier probability of the most recent check
func (d *SpamDoctor) SpamProbability() float64 {
	if r := d.LastResult(); r != nil {
		return r.MLProbability
	}
	return 0
}

// SpamScore returns the combined score of the most recent check
func (d *SpamDoctor) SpamScore() float64 {
	if r := d.LastResult(); r != nil {
		return r.CombinedScore
	}
	return 0
}

// SpamItems returns the matched terms of the most recent check
func (d *SpamDoctor) SpamItems() []MatchRecord {
	if r := d.LastResult(); r != nil {
		return r.Matches
	}
	return nil
}

// SpamPositions returns the sorted match offsets of the most recent check
func (d *SpamDoctor) SpamPositions() []int {
	if r := d.LastResult(); r != nil {
		return r.Positions
	}
	return nil
}

// Highlighted returns the plain or HTML highlighted text of the most recent check
func (d *SpamDoctor) Highlighted(html bool) string {
	r := d.LastResult()
	if r == nil {
		return ""
	}
	if html {
		return r.HighlightedHTML
	}
	return r.HighlightedPlain
}
