// Package layout maps CIP field UUIDs to readable field names.
//
// Search and field-value responses key every record by field UUID, e.g.
// "{af4b2e00-5f6a-11d2-8f20-0000c0e166dc}". A getlayout response lists the
// fields of a table with their display names ("Filename", "Record Name").
// A Directory remembers those pairs and rewrites record keys to normalized
// names ("filename", "record_name").
//
// Directories are scoped per catalog table through a Registry, so two tables
// never share field entries. Resolution methods return ErrFieldNotFound
// (wrapped in *NotFoundError) for fields that were never registered; the
// rewrite pass instead leaves such keys untouched.
package layout
