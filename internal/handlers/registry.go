package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	RentalHandler   *RentalHandler
	EvidenceHandler *EvidenceHandler
	ReviewHandler   *ReviewHandler
	WSHandler       *WSHandler
}
