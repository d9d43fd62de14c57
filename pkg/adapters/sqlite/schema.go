package sqlite

const (
	// TargetSchemaVersion is the highest schema version this code supports.
	TargetSchemaVersion int64 = 1
	// PreferencesComponent is the component name recorded in bubbly_versions.
	PreferencesComponent = "preferences"
)

// SchemaV1 creates the version table and the key-value table.
const SchemaV1 = `
CREATE TABLE IF NOT EXISTS bubbly_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS preferences (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    updated_at REAL DEFAULT (unixepoch())
);
`
