// Package importer streams CEAP expense files into storage.
//
// A run reads a semicolon-delimited file row by row. Each row carries a
// registrant (the legislator the expense belongs to) and one expense. The
// registrant is resolved to an internal id through a run-local cache, then
// storage, and is created on first sight after its CPF passes validation.
// Expenses are buffered and written in chunks of [DefaultBatchSize].
//
// # Flow
//
//  1. The header row is captured once and turned into a [Header].
//  2. Rows whose column 5 equals "NA" are out of scope and skipped.
//  3. Rows without a CPF are skipped.
//  4. The CPF is resolved with [Resolver.Resolve].
//  5. The expense is decoded, owned by the resolved id, and handed to a
//     [BatchWriter], which bulk inserts every full chunk.
//  6. At end of stream the remaining partial chunk is flushed.
//
// # Errors
//
// Any failure aborts the run at once and is returned as one of
// [HeaderError], [MalformedRecordError], [InvalidIdentifierError] or
// [PersistenceError]. The pipeline never rolls anything back: callers run it
// inside one transaction and decide commit or rollback from the returned
// error.
//
// A run is single-threaded. The [Store] handed to [Run] must be bound to a
// transaction owned by the caller and must not be shared with another run.
package importer
