package app

import "invoice-manager/internal/core"

// DocumentResult is returned by every single-document operation. History is
// newest-first and only populated by operations that read it.
type DocumentResult struct {
	Document *core.Document
	History  []core.DocumentHistory
}

// DocumentListResult is returned by ListDocuments.
type DocumentListResult struct {
	Type      core.DocumentType
	Documents []core.Document
}
