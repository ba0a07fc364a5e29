package codec

import "github.com/rs/zerolog/log"

// Trace emits the compression walker's slow-path events through a
// scoped zerolog logger, separate from the ambient slog logger the
// rest of the tree uses — mirroring the teacher's split between slog
// for everyday logging and a zerolog-only subsystem for one noisy,
// detail-heavy corner (there: dump/restore; here: codec outcomes).

func TraceIncompressible(tag Tag, key string, length int) {
	log.Debug().
		Str("codec", tag.String()).
		Str("key", key).
		Int("length", length).
		Msg("entry marked incompressible")
}

func TraceCodecFailure(tag Tag, key string) {
	log.Warn().
		Str("codec", tag.String()).
		Str("key", key).
		Msg("codec run failed")
}

func TraceStaleEntry(key string) {
	log.Debug().
		Str("key", key).
		Msg("compression target mutated or destroyed before reacquire; discarding")
}
