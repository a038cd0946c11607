// Package ossearch provides the coordination core of a distributed web
// search-engine backend: a shared crawl frontier, a swarm of crawler and
// indexer workers, and the maintenance loops that promote crawled documents
// from the working index collection to the main serving collection.
//
// This package contains domain types, pure domain logic (URL
// canonicalization, host splitting, boost computation, content
// tokenization), and service interfaces following the standard package
// layout. Implementations live in subdirectories named after their primary
// dependency (e.g., solr/, sqlite/, netlock/); orchestration lives in
// packages named after their function (crawl/, indexer/, maintain/).
package ossearch
