// Package types defines the case record model, the staging buffer contract,
// configuration, and the standard errors shared by the docket packages.
//
// A Case is produced by the extractor, held in a StagingBuffer, and written
// to the relational store by the persistence pipeline. Nothing in this
// package performs I/O.
package types
