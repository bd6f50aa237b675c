package catalog

// Error context messages for wrapped errors
const (
	ErrContextFailedToRead   = "failed to read catalog file"
	ErrContextInvalidSchema  = "catalog does not match schema"
	ErrContextFailedToDecode = "failed to decode catalog"
)

// Log messages
const (
	LogMsgCatalogLoaded = "Catalog loaded"
)

// Log field keys for structured logging
const (
	LogFieldPath  = "path"
	LogFieldSets  = "sets"
	LogFieldCards = "cards"
	LogFieldPacks = "packs"
	LogFieldBoxes = "boxes"
)
