package wavmeta

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteFile rewrites the wav file at path so its metadata chunks carry the
// record's fields. The audio payload, format parameters and non-core chunks
// of the source are preserved. The original file is backed up to path+".bak"
// before being replaced, unless a backup already exists.
func WriteFile(path string, rec Record) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	dec := NewDecoder(f)

	dec.ReadMetadata()
	if err := dec.Err(); err != nil {
		return fmt.Errorf("failed to read metadata from %s: %w", path, err)
	}

	// Second pass over the same handle for the PCM payload. The metadata
	// walk drained the data chunk, so the stream has to be rewound.
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind %s: %w", path, err)
	}

	pcmBuf, err := NewDecoder(f).FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("failed to read PCM data from %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".wavtag-*.wav")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpPath := tmp.Name()
	// no-op once the rename succeeded
	defer os.Remove(tmpPath)

	enc := NewEncoderFromDecoder(tmp, dec)
	enc.Metadata = buildWriteMetadata(dec.Metadata, rec)

	err = enc.Write(pcmBuf)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write PCM data: %w", err)
	}

	err = enc.Close()
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to finalize temp file: %w", err)
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	err = backupOnce(path)
	if err != nil {
		return err
	}

	err = os.Rename(tmpPath, path)
	if err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

// buildWriteMetadata merges the record into the metadata decoded from the
// source file. Structured fields go into a fresh iXML document, free-text
// show/scene/take labels into the bext description, and decoded INFO fields
// are carried through untouched.
func buildWriteMetadata(existing *Metadata, rec Record) *Metadata {
	meta := &Metadata{}
	if existing != nil {
		meta.Info = existing.Info
		meta.Broadcast = existing.Broadcast
	}

	if doc, err := BuildIXML(rec); err == nil {
		meta.IXML = doc
	}

	desc := describeRecord(rec)
	if desc != "" {
		if meta.Broadcast == nil {
			now := time.Now()
			meta.Broadcast = &BroadcastExtension{
				Version:         1,
				OriginationDate: now.Format("2006-01-02"),
				OriginationTime: now.Format("15:04:05"),
			}
		}

		meta.Broadcast.Description = desc
	}

	return meta
}

// describeRecord renders show/scene/take as labeled lines, the shape the
// free-text extraction patterns recognize.
func describeRecord(rec Record) string {
	var lines []string

	if rec.Show != "" {
		lines = append(lines, "SHOW: "+rec.Show)
	}

	if rec.Scene != "" {
		lines = append(lines, "SCENE: "+rec.Scene)
	}

	if rec.Take != "" {
		lines = append(lines, "TAKE: "+rec.Take)
	}

	return strings.Join(lines, "\n")
}

// backupOnce copies path to path+".bak" unless the backup already exists.
// An existing backup is left alone so repeated writes keep the oldest copy.
func backupOnce(path string) error {
	backupPath := path + ".bak"

	_, err := os.Stat(backupPath)
	if err == nil {
		return nil
	}

	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat backup %s: %w", backupPath, err)
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s for backup: %w", path, err)
	}
	defer src.Close()

	dst, err := os.Create(backupPath)
	if err != nil {
		return fmt.Errorf("failed to create backup %s: %w", backupPath, err)
	}

	_, err = io.Copy(dst, src)
	if err != nil {
		dst.Close()
		os.Remove(backupPath)

		return fmt.Errorf("failed to copy backup %s: %w", backupPath, err)
	}

	err = dst.Close()
	if err != nil {
		return fmt.Errorf("failed to close backup %s: %w", backupPath, err)
	}

	return nil
}
