package server

// Данный сервер объединяет специфичные HTTP сервера. Сейчас это только
// DealServer — админский API сделок.
type Server struct {
	DealServer
}

func NewServer(
	dealServer DealServer,
) Server {
	return Server{
		DealServer: dealServer,
	}
}
