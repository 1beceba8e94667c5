// Package wavmeta reads and writes production-sound metadata embedded in
// WAV files.
//
// The package walks the RIFF/WAVE container and recovers show, scene, take,
// category and note information from the Broadcast Wave extension (bext),
// iXML and LIST/INFO chunks, merging the sources into a single Record with
// first-found-wins priority. Free-text fields are additionally mined with a
// regex heuristic layer that can be disabled independently.
//
// The read entry point never returns an error: any failure is reported via
// the record's Error field so batch callers can keep going.
//
//	rec := wavmeta.ReadFile("take_012.wav")
//	if rec.Error != "" {
//		log.Println(rec.Error)
//	}
//	fmt.Println(rec.Scene, rec.Take)
//
// WriteFile re-encodes the audio of an existing file and injects a fresh
// iXML chunk (and bext description) built from a Record, preserving
// unrecognized chunks and keeping a .bak copy of the original.
//
// Result caching is explicit and opt-in via Cache; see its documentation
// for the staleness hazard.
package wavmeta
