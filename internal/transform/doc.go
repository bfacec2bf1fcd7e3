// Package transform defines the row transformers applied to journal batches
// and the registry that selects them by target schema version and table.
//
// Transformers never mutate the batch they are given. They return patches
// that the pipeline applies to its own copy once the transformer finished
// without error.
package transform
