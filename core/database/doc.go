// Package database opens the GORM connection used by the sql cache driver.
//
// Connect supports mysql (DSN built from host, port, user and a URL
// encoded password, with connect, read and write timeouts) and sqlite
// (Name is the file path or ":memory:"). The connection is pinged before
// it is returned, so callers can treat the database as optional and fall
// back to another cache driver on error.
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Database unavailable", zap.Error(err))
//	}
package database
