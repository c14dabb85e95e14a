package domain

import "errors"

// ValidationError is rejected user input. Message is user-facing (pt-BR).
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError is a reference to a record the account does not have
type NotFoundError struct {
	Code    string
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// Infrastructure errors
var (
	ErrMalformedDocument = errors.New("malformed document")
	ErrUnauthorized      = errors.New("unauthorized")
)

// Not found errors
var (
	ErrProfileNotFound     = &NotFoundError{Code: "profile_not_found", Message: "Perfil não encontrado."}
	ErrTransactionNotFound = &NotFoundError{Code: "transaction_not_found", Message: "Transação não encontrada."}
	ErrGoalNotFound        = &NotFoundError{Code: "goal_not_found", Message: "Meta não encontrada."}
)

// Profile validation
var (
	ErrProfileNameRequired = &ValidationError{Code: "name_required", Field: "name", Message: "Informe o nome do perfil."}
	ErrProfileNameTooLong  = &ValidationError{Code: "name_too_long", Field: "name", Message: "O nome do perfil deve ter no máximo 60 caracteres."}
)

// Transaction validation
var (
	ErrInvalidAmount          = &ValidationError{Code: "invalid_amount", Field: "amount", Message: "O valor deve ser positivo e ter no máximo duas casas decimais."}
	ErrInvalidTransactionType = &ValidationError{Code: "invalid_type", Field: "type", Message: "O tipo deve ser entrada ou saída."}
	ErrCategoryRequired       = &ValidationError{Code: "category_required", Field: "category", Message: "Informe uma categoria."}
	ErrDateRequired           = &ValidationError{Code: "date_required", Field: "date", Message: "Informe a data da transação."}
	ErrGoalLinkedTransaction  = &ValidationError{Code: "goal_linked_transaction", Field: "metaId", Message: "Transações de reserva são alteradas pela própria meta."}
	ErrUnknownGoalReference   = &ValidationError{Code: "unknown_goal", Field: "metaId", Message: "A meta informada não existe."}
	ErrCategoryTooLong        = &ValidationError{Code: "category_too_long", Field: "category", Message: "A categoria deve ter no máximo 60 caracteres."}
	ErrDescriptionTooLong     = &ValidationError{Code: "transaction_description_too_long", Field: "description", Message: "A descrição deve ter no máximo 200 caracteres."}
)

// Goal validation
var (
	ErrGoalDescriptionRequired = &ValidationError{Code: "description_required", Field: "description", Message: "Informe uma descrição para a meta."}
	ErrGoalDescriptionTooLong  = &ValidationError{Code: "description_too_long", Field: "description", Message: "A descrição deve ter no máximo 120 caracteres."}
	ErrInvalidGoalTarget       = &ValidationError{Code: "invalid_target", Field: "target", Message: "Informe um objetivo válido maior que zero."}
	ErrInsufficientSaved       = &ValidationError{Code: "insufficient_saved", Field: "amount", Message: "Valor de retirada maior que o saldo guardado na meta."}
	ErrConfirmationRequired    = &ValidationError{Code: "confirmation_required", Field: "confirm", Message: "Confirme a exclusão da meta."}
	ErrWithdrawalReasonTooLong = &ValidationError{Code: "reason_too_long", Field: "reason", Message: "O motivo da retirada deve ter no máximo 60 caracteres."}
)

// Report validation
var (
	ErrInvalidScope          = &ValidationError{Code: "invalid_scope", Field: "scope", Message: "Tipo de visualização inválido."}
	ErrInvalidPeriod         = &ValidationError{Code: "invalid_period", Field: "month", Message: "Período inválido."}
	ErrCasalRequiresTwo      = &ValidationError{Code: "casal_requires_two_profiles", Field: "profileIds", Message: "A visualização de casal exige exatamente 2 perfis."}
	ErrIndividualRequiresOne = &ValidationError{Code: "individual_requires_one_profile", Field: "profileIds", Message: "A visualização individual exige exatamente 1 perfil."}
	ErrDuplicateProfile      = &ValidationError{Code: "duplicate_profile", Field: "profileIds", Message: "Um perfil foi selecionado mais de uma vez."}
)

// Validation constants
const (
	MaxProfileNameLength     = 60
	MaxGoalDescriptionLength = 120
	MaxCategoryLength        = 60
	MaxDescriptionLength     = 200
	// goal description + ": " + reason must fit a transaction description
	MaxWithdrawalReasonLength = 60
)
