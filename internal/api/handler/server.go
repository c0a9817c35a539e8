package handler

type Server struct {
	ProductHandler *ProductHandler
	CartHandler    *CartHandler
	OrderHandler   *OrderHandler
	PaymentHandler *PaymentHandler
	UserHandler    *UserHandler
}

func NewServer(
	productHandler *ProductHandler,
	cartHandler *CartHandler,
	orderHandler *OrderHandler,
	paymentHandler *PaymentHandler,
	userHandler *UserHandler,
) *Server {
	return &Server{
		ProductHandler: productHandler,
		CartHandler:    cartHandler,
		OrderHandler:   orderHandler,
		PaymentHandler: paymentHandler,
		UserHandler:    userHandler,
	}
}
