package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

// DBContextKey - ключ, по которому в context хранится *gorm.DB (пул или транзакция)
const DBContextKey = contextKey("db")

// PartyIDKey - ключ gin.Context для идентификатора вызывающей стороны (claim "sub")
const PartyIDKey = "partyID"
