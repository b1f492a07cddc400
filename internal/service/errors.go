package service

import "errors"

// Domain errors returned by RegisterService. Handlers map them to HTTP status
// codes; messages are user-facing and carry no internal detail.
var (
	ErrRegisterAlreadyOpen  = errors.New("Já existe um caixa aberto para este usuário")
	ErrNoOpenRegister       = errors.New("Não há caixa aberto")
	ErrSaleWithoutRegister  = errors.New("Não é possível realizar vendas sem um caixa aberto")
	ErrInsufficientFunds    = errors.New("Saldo insuficiente para realizar a sangria")
	ErrInvalidAmount        = errors.New("Valor deve ser um número positivo")
	ErrInvalidInitialAmount = errors.New("Valor inicial deve ser um número positivo")
	ErrInvalidCashLimit     = errors.New("Limite de caixa deve ser um número positivo")
	ErrInvalidPaymentMethod = errors.New("Método de pagamento inválido")
)
