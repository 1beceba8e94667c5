package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prodsound/wavmeta"
)

func TestRunGeneratesTaggedWav(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "bwf.wav")

	err := run([]string{
		"-output", outPath,
		"-length", "0.01",
		"-show", "Test Show",
		"-scene", "5A",
		"-take", "3",
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	fi, err := os.Stat(outPath)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}

	if fi.Size() <= 44 {
		t.Fatalf("unexpected small wav file size: %d", fi.Size())
	}

	rec := wavmeta.ReadFile(outPath)
	if rec.Error != "" {
		t.Fatalf("reading generated file failed: %s", rec.Error)
	}

	if rec.Show != "Test Show" {
		t.Fatalf("show=%q, want %q", rec.Show, "Test Show")
	}

	if rec.Scene != "5A" {
		t.Fatalf("scene=%q, want %q", rec.Scene, "5A")
	}

	if rec.Take != "3" {
		t.Fatalf("take=%q, want %q", rec.Take, "3")
	}
}

func TestRunFlagParseError(t *testing.T) {
	err := run([]string{"-length", "not-a-number"})
	if err == nil {
		t.Fatalf("expected failure for invalid flag value")
	}
}

func TestRunDefaultParams(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "default.wav")

	err := run([]string{"-output", outPath, "-length", "0.01"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	rec := wavmeta.ReadFile(outPath)
	if rec.Error != "" {
		t.Fatalf("reading generated file failed: %s", rec.Error)
	}

	if rec.Show == "" || rec.Scene == "" || rec.Take == "" {
		t.Fatalf("expected default metadata, got %+v", rec)
	}
}
