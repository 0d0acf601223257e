package codef

import "encoding/json"

// Credentials are the bank login details for one account. The password is
// plaintext in memory only: it is RSA-encrypted before leaving the process
// and AES-encrypted before hitting storage.
type Credentials struct {
	BankName    string
	BankAccount string
	LoginID     string
	Password    string
}

// envelope is the common response shape of the aggregator API.
type envelope struct {
	Result resultInfo      `json:"result"`
	Data   json.RawMessage `json:"data"`
}

type resultInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type sessionData struct {
	ConnectedID string `json:"connectedId"`
}

// TransactionHistory is the aggregator's answer to a history query. Balance
// is a pointer because some responses omit it.
type TransactionHistory struct {
	Balance     *string        `json:"resAccountBalance"`
	AccountName string         `json:"resAccountName"`
	History     []HistoryEntry `json:"resTrHistoryList"`
}

// HistoryEntry is one raw bank transaction as the aggregator reports it:
// amounts and timestamps are unparsed strings, and the transaction id is
// absent for some banks.
type HistoryEntry struct {
	Date          string `json:"resAccountTrDate"`
	Time          string `json:"resAccountTrTime"`
	Out           string `json:"resAccountOut"`
	In            string `json:"resAccountIn"`
	Description   string `json:"resAccountDesc3"`
	AfterBalance  string `json:"resAfterTranBalance"`
	TransactionID string `json:"codefTransactionId"`
}

type grantResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
