package materialize

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"neura/internal/config"
	"neura/internal/discovery"
	"neura/internal/layout"
	"neura/internal/manifest"
	"neura/internal/testsupport"
)

func discoverFixture(t *testing.T, episodes int) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	for episode := 0; episode < episodes; episode++ {
		testsupport.SeedEpisode(t, cfg.Paths.DataRoot, "000", episode)
	}
	if _, err := discovery.Run(context.Background(), discovery.OptionsFromConfig(cfg)); err != nil {
		t.Fatalf("discovery: %v", err)
	}
	return cfg
}

func TestRunSymlink(t *testing.T) {
	cfg := discoverFixture(t, 5)

	doc, err := Run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(doc.Entries) != 5 {
		t.Fatalf("entries = %d, want 5", len(doc.Entries))
	}
	total := doc.Counts[SplitTrain] + doc.Counts[SplitVal] + doc.Counts[SplitTest]
	if total != 5 {
		t.Errorf("counts = %v", doc.Counts)
	}

	for _, entry := range doc.Entries {
		info, err := os.Lstat(entry.Parquet)
		if err != nil {
			t.Fatalf("lstat %s: %v", entry.Parquet, err)
		}
		if info.Mode()&os.ModeSymlink == 0 {
			t.Errorf("%s is not a symlink", entry.Parquet)
		}
		// Link targets stay relative so the dataset survives being moved.
		target, err := os.Readlink(entry.Parquet)
		if err != nil {
			t.Fatalf("readlink %s: %v", entry.Parquet, err)
		}
		if filepath.IsAbs(target) {
			t.Errorf("symlink target is absolute: %s", target)
		}
		if _, err := os.Stat(entry.VideoFront); err != nil {
			t.Errorf("front video missing: %v", err)
		}
		if _, err := os.Stat(entry.VideoWrist); err != nil {
			t.Errorf("wrist video missing: %v", err)
		}
	}
}

func TestRunCopy(t *testing.T) {
	cfg := discoverFixture(t, 2)
	cfg.Materialize.LinkMethod = string(LinkCopy)

	doc, err := Run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, entry := range doc.Entries {
		info, err := os.Lstat(entry.Parquet)
		if err != nil {
			t.Fatalf("lstat: %v", err)
		}
		if !info.Mode().IsRegular() {
			t.Errorf("%s is not a regular file", entry.Parquet)
		}
	}
}

func TestRunManifestOnly(t *testing.T) {
	cfg := discoverFixture(t, 3)
	cfg.Materialize.LinkMethod = string(LinkManifestOnly)

	doc, err := Run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(doc.Entries) != 3 {
		t.Fatalf("entries = %d", len(doc.Entries))
	}
	for _, entry := range doc.Entries {
		if _, err := os.Lstat(entry.Parquet); err == nil {
			t.Errorf("manifest-only placed a file at %s", entry.Parquet)
		}
	}

	data, err := os.ReadFile(filepath.Join(cfg.Paths.OutputDir, "dataset", DatasetManifestFile))
	if err != nil {
		t.Fatalf("read dataset manifest: %v", err)
	}
	var decoded DatasetManifest
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("parse dataset manifest: %v", err)
	}
	if decoded.Seed != cfg.Materialize.Seed || len(decoded.Entries) != 3 {
		t.Errorf("decoded = seed %d entries %d", decoded.Seed, len(decoded.Entries))
	}
}

func TestRunSkipsIncompleteEpisodes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.SeedEpisode(t, cfg.Paths.DataRoot, "000", 0)
	testsupport.SeedEpisode(t, cfg.Paths.DataRoot, "000", 1, testsupport.WithoutWrist())
	testsupport.SeedStrayVideo(t, cfg.Paths.DataRoot, "000", 9, layout.ViewFront)
	if _, err := discovery.Run(context.Background(), discovery.OptionsFromConfig(cfg)); err != nil {
		t.Fatalf("discovery: %v", err)
	}

	doc, err := Run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(doc.Entries) != 1 {
		t.Fatalf("entries = %d, want only the complete episode", len(doc.Entries))
	}
	if doc.Entries[0].EpisodeIndex != 0 {
		t.Errorf("entry = %+v", doc.Entries[0])
	}
}

func TestRunIsRerunnable(t *testing.T) {
	cfg := discoverFixture(t, 2)

	if _, err := Run(context.Background(), cfg, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}
	doc, err := Run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(doc.Entries) != 2 {
		t.Errorf("entries = %d", len(doc.Entries))
	}
}

func TestRunRejectsBadLinkMethod(t *testing.T) {
	cfg := discoverFixture(t, 1)
	cfg.Materialize.LinkMethod = "teleport"

	if _, err := Run(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for unknown link method")
	}
}

func TestEligible(t *testing.T) {
	complete := manifest.Row{
		Chunk: "000", EpisodeIndex: 0, ParquetURI: "p",
		ExistsFront: true, ExistsWrist: true, Fingerprint: "f",
		Status: manifest.StatusUnchanged,
	}
	if !eligible(complete) {
		t.Error("complete row rejected")
	}

	missing := complete
	missing.ExistsWrist = false
	missing.Status = manifest.StatusMissingSide
	if eligible(missing) {
		t.Error("missing-side row accepted")
	}

	pending := complete
	pending.Fingerprint = ""
	pending.Status = manifest.StatusPending
	if eligible(pending) {
		t.Error("pending row accepted")
	}
}
