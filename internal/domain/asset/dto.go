package asset

// ConnectRequest carries the bank credentials needed to link an account.
type ConnectRequest struct {
	UserID      int64  `json:"user_id"`
	BankName    string `json:"bank_name"`
	BankAccount string `json:"bank_account"`
	LoginID     string `json:"bank_id"`
	Password    string `json:"bank_pw"`
}

// Validate reports whether every credential field required to reach the
// aggregator is present.
func (r ConnectRequest) Validate() error {
	if r.UserID == 0 || r.BankName == "" || r.BankAccount == "" || r.LoginID == "" || r.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}
