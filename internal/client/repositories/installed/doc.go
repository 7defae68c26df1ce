// Package installed persists the install state of synced content.
//
// # Overview
//
// A row (content_id, type, version) claims that the local artifact for that
// item is fully present and matches that version. Rows are written only after
// a complete install, so the table can be trusted by readers and by the next
// sync run alike.
//
// Key Types
//
//   - type Repository: contract used by the sync service
//   - type SQLiteRepository: SQLite implementation over dbx.DBTX
//
// Typical Usage
//
//	repo := installed.NewSQLiteRepository(db)
//	v, ok, _ := repo.GetVersion(ctx, "c1", models.KindConcept)
//	_ = repo.SetVersion(ctx, "c1", models.KindConcept, 2)
//
// Driver failures are wrapped with common.ErrPersistence; a missing row is
// reported as found=false with a nil error.
package installed
