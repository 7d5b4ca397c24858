package domain

// User is the identity reference used for attribution on ledger records.
// User management itself lives outside the ledger core; only the ID matters here.
type User struct {
	UserID string `json:"userID"`
	Name   string `json:"name"`
}
