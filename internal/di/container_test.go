package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mikey/spam-doctor/internal/core"
	"github.com/mikey/spam-doctor/internal/factory"
	"github.com/mikey/spam-doctor/internal/ports"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := "model:\n" +
		"  type: naive_bayes\n" +
		"  path: " + filepath.Join(dir, "model.json") + "\n" +
		"storage:\n" +
		"  type: memory\n" +
		"detector:\n" +
		"  filter_items: [meeting]\n" +
		"server:\n" +
		"  listen_address: 127.0.0.1:0\n"
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildContainer(t *testing.T) {
	container, err := BuildContainer(Options{ConfigFile: writeTestConfig(t), Console: true})
	if err != nil {
		t.Fatalf("BuildContainer failed: %v", err)
	}

	err = container.Invoke(func(doctor *core.SpamDoctor, stores *factory.Stores, filter ports.MessageFilter) error {
		defer stores.Close()
		ctx := context.Background()

		if filter == nil {
			t.Error("expected a message filter")
		}

		result, err := doctor.Check(ctx, "URGENT! You have won $1000000! Click here now!", false)
		if err != nil {
			return err
		}
		if !result.IsSpamByClassifier {
			t.Errorf("expected seeded model to flag spam, probability %v", result.MLProbability)
		}

		result, err = doctor.Check(ctx, "Meeting scheduled for tomorrow at 2 PM", false)
		if err != nil {
			return err
		}
		if result.IsSpamByClassifier {
			t.Errorf("expected ham, probability %v", result.MLProbability)
		}
		if len(result.Matches) != 1 || result.Matches[0].Term != "meeting" {
			t.Errorf("expected the configured filter item to match, got %v", result.Matches)
		}

		stats, err := doctor.ModelStats(ctx)
		if err != nil {
			return err
		}
		if stats.ModelType != "naive_bayes" || stats.TotalSamples != len(core.DefaultTrainingSamples()) {
			t.Errorf("unexpected stats %+v", stats)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
}

func TestBuildContainerBadConfig(t *testing.T) {
	container, err := BuildContainer(Options{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml"), Console: true})
	if err != nil {
		t.Fatalf("BuildContainer failed: %v", err)
	}
	if err := container.Invoke(func(*core.SpamDoctor) {}); err == nil {
		t.Error("expected a missing config file to fail resolution")
	}
}
