package hubdb

// NewMemDatabase - in-memory database for tests, backed by bolt's MemOnly mode.
func NewMemDatabase() *Database {
	return NewDatabase(NewBolt().InMem().MustOpen())
}
