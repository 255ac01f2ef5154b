package reservation

import "github.com/thesilo/reservations/pkg/dbmetrics"

// DBExecutor интерфейс для работы с БД.
// Поддерживает *sql.DB и *dbmetrics.DB
type DBExecutor = dbmetrics.DBExecutor
