package bank

import "errors"

// Input fields a front end clears after a denial.
const (
	FieldLoginUsername  = "loginUsername"
	FieldLoginPIN       = "loginPin"
	FieldTransferTo     = "transferTo"
	FieldTransferAmount = "transferAmount"
	FieldLoanAmount     = "loanAmount"
	FieldCloseUsername  = "closeUsername"
	FieldClosePIN       = "closePin"
)

// Denials. None of them mutate state.
var (
	ErrAccountNotFound     = errors.New("account does not exist")
	ErrIncorrectPIN        = errors.New("incorrect PIN")
	ErrNotAuthenticated    = errors.New("not logged in")
	ErrSelfTransfer        = errors.New("cannot transfer to your own account")
	ErrRecipientNotFound   = errors.New("recipient account does not exist")
	ErrInsufficientBalance = errors.New("not enough balance")
	ErrNegativeAmount      = errors.New("cannot transfer a negative amount")
	ErrLoanDenied          = errors.New("loan denied: enter a whole amount and hold a movement of at least 10% of it")
	ErrWrongCredentials    = errors.New("wrong credentials")
)

// clearOnDenial lists the inputs reset after each denial.
var clearOnDenial = map[error][]string{
	ErrAccountNotFound:     {FieldLoginUsername, FieldLoginPIN},
	ErrIncorrectPIN:        {FieldLoginPIN},
	ErrSelfTransfer:        {FieldTransferTo},
	ErrRecipientNotFound:   {FieldTransferTo},
	ErrInsufficientBalance: {FieldTransferAmount},
	ErrNegativeAmount:      {FieldTransferAmount},
	ErrLoanDenied:          {FieldLoanAmount},
}

// ClearFields returns the inputs a front end should reset after err.
// A wrong closure confirmation keeps its inputs.
func ClearFields(err error) []string {
	for target, fields := range clearOnDenial {
		if errors.Is(err, target) {
			return append([]string(nil), fields...)
		}
	}
	return nil
}
