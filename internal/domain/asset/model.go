package asset

import "time"

// Role slots. A user holds at most one non-revoked account per slot.
const (
	RoleMain = "main"
	RoleSub  = "sub"
)

// Account is one linked bank account. LoginID and Password are stored
// AES-encrypted; the repository decrypts them on read, so a loaded Account
// carries usable credential values that must never be logged.
type Account struct {
	ID          int64     `json:"asset_id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"asset_name"`
	BankName    string    `json:"bank_name"`
	BankAccount string    `json:"-"`
	LoginID     string    `json:"-"`
	Password    string    `json:"-"`
	ConnectedID string    `json:"-"`
	Balance     int64     `json:"balance"`
	Role        string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
