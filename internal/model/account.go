// Package model holds the records exchanged between devices, the server and
// the statement ingestion pipeline.
package model

// AccountRecord is one payment card as synchronized between devices.
//
// CardNumber, CVV, FrontImage and BackImage are ciphertext produced on the
// device; the server stores and returns them without interpretation. IV is
// the initialisation vector of that encryption layer and is carried the same
// way.
type AccountRecord struct {
	SyncID         string `json:"syncId" firestore:"syncId"`
	DisplayName    string `json:"name" firestore:"name"`
	BankName       string `json:"bank" firestore:"bank"`
	CardNumber     string `json:"cardNumber" firestore:"cardNumber"`
	CVV            string `json:"cvv" firestore:"cvv"`
	ExpiryDate     string `json:"expiryDate" firestore:"expiryDate"`
	HolderName     string `json:"cardholderName" firestore:"cardholderName"`
	CreditLimit    int64  `json:"creditLimit" firestore:"creditLimit"`
	BillingDay     int    `json:"billingDay" firestore:"billingDay"`
	PaymentDueDay  int    `json:"paymentDueDay" firestore:"paymentDueDay"`
	ColorTag       string `json:"color" firestore:"color"`
	FrontImage     string `json:"cardFrontImage" firestore:"cardFrontImage"`
	BackImage      string `json:"cardBackImage" firestore:"cardBackImage"`
	Notes          string `json:"notes" firestore:"notes"`
	IV             string `json:"iv" firestore:"iv"`
	OwnerLabel     string `json:"owner" firestore:"owner"`
	LastFourDigits string `json:"lastFour" firestore:"lastFour"`
	IsDeleted      bool   `json:"isDeleted" firestore:"isDeleted"`
	CreatedAt      int64  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt      int64  `json:"updatedAt" firestore:"updatedAt"`
}

// Clone returns a copy that shares no state with r.
func (r *AccountRecord) Clone() *AccountRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Newer reports whether r should replace stored under last-writer-wins.
// Equal timestamps keep the stored value.
func (r *AccountRecord) Newer(stored *AccountRecord) bool {
	if stored == nil {
		return true
	}
	return r.UpdatedAt > stored.UpdatedAt
}

// MergeInto copies every field of r onto stored except CreatedAt, which is
// fixed by the first write.
func (r *AccountRecord) MergeInto(stored *AccountRecord) {
	createdAt := stored.CreatedAt
	*stored = *r
	stored.CreatedAt = createdAt
}
